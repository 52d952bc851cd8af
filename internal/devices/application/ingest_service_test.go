package application

import (
	"context"
	"errors"
	"testing"
	"time"

	batchapp "refurb-cloud/internal/batches/application"
	batches "refurb-cloud/internal/batches/domain"
	batchmem "refurb-cloud/internal/batches/infrastructure/memory"
	devices "refurb-cloud/internal/devices/domain"
	devmem "refurb-cloud/internal/devices/infrastructure/memory"
	"refurb-cloud/internal/eventing"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type ingestFixture struct {
	service   *IngestService
	devRepo   *devmem.DeviceRepository
	batchRepo *batchmem.BatchRepository
	batchSvc  *batchapp.Service
	bus       *eventing.InMemoryBus
}

func newIngestFixture(t *testing.T, quantity int) *ingestFixture {
	t.Helper()
	devRepo := devmem.NewDeviceRepository()
	batchRepo := batchmem.NewBatchRepository()
	batchSvc, err := batchapp.NewService(batchRepo)
	if err != nil {
		t.Fatalf("batch service: %v", err)
	}
	if _, err := batchSvc.Create(context.Background(), batches.Input{
		ID:          "batch-1",
		Model:       "iPhone 13",
		Quantity:    quantity,
		ArrivalDate: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	bus := eventing.NewInMemoryBus()
	service, err := NewIngestService(devRepo, batchSvc, bus, fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("ingest service: %v", err)
	}
	return &ingestFixture{service: service, devRepo: devRepo, batchRepo: batchRepo, batchSvc: batchSvc, bus: bus}
}

func reading(imei string, battery, fails int) devices.Reading {
	return devices.Reading{
		IMEI:          imei,
		Model:         "iPhone 13",
		BatteryHealth: battery,
		CycleCount:    210,
		FailCount:     fails,
		TesterName:    "Dana",
	}
}

func TestIngestClassifiesAndUpdatesBatchCounters(t *testing.T) {
	fx := newIngestFixture(t, 10)
	ctx := context.Background()

	stored, err := fx.service.Ingest(ctx, "batch-1", []devices.Reading{
		reading("imei-1", 92, 0),
		reading("imei-2", 75, 1),
		reading("imei-3", 88, 4),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(stored))
	}
	if stored[0].Status() != devices.StatusAutoPass {
		t.Fatalf("imei-1 status = %s", stored[0].Status())
	}
	if stored[1].Status() != devices.StatusManualQC || stored[2].Status() != devices.StatusManualQC {
		t.Fatalf("expected manual qc for imei-2 and imei-3")
	}

	batch, err := fx.batchRepo.Get(ctx, "batch-1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if batch.QCPass() != 1 || batch.Defects() != 2 {
		t.Fatalf("batch counters = %d/%d, expected 1/2", batch.QCPass(), batch.Defects())
	}
	if batch.Status() != batches.StatusInQC {
		t.Fatalf("batch status = %s, expected %s", batch.Status(), batches.StatusInQC)
	}
}

func TestIngestPublishesClassificationEvents(t *testing.T) {
	fx := newIngestFixture(t, 5)

	var got []DeviceClassified
	fx.bus.Subscribe(eventing.EventTypeOf[DeviceClassified](), func(ctx context.Context, event any) error {
		got = append(got, event.(DeviceClassified))
		return nil
	})

	if _, err := fx.service.Ingest(context.Background(), "batch-1", []devices.Reading{
		reading("imei-1", 92, 0),
		reading("imei-2", 60, 0),
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if !got[0].Passed || got[1].Passed {
		t.Fatalf("event dispositions wrong: %+v", got)
	}
}

func TestIngestDuplicateLeavesCountersUntouched(t *testing.T) {
	fx := newIngestFixture(t, 10)
	ctx := context.Background()

	if _, err := fx.service.Ingest(ctx, "batch-1", []devices.Reading{reading("imei-1", 92, 0)}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	_, err := fx.service.Ingest(ctx, "batch-1", []devices.Reading{
		reading("imei-2", 85, 0),
		reading("imei-1", 90, 0),
	})
	if !errors.Is(err, devices.ErrDuplicateIMEI) {
		t.Fatalf("expected ErrDuplicateIMEI, got %v", err)
	}

	batch, err := fx.batchRepo.Get(ctx, "batch-1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if batch.QCPass() != 1 || batch.Defects() != 0 {
		t.Fatalf("rejected set touched counters: %d/%d", batch.QCPass(), batch.Defects())
	}
	if _, err := fx.devRepo.Get(ctx, "imei-2"); !errors.Is(err, devices.ErrDeviceNotFound) {
		t.Fatalf("rejected set stored imei-2: %v", err)
	}
}

func TestIngestOverflowStoresNoDevices(t *testing.T) {
	fx := newIngestFixture(t, 1)
	ctx := context.Background()

	_, err := fx.service.Ingest(ctx, "batch-1", []devices.Reading{
		reading("imei-1", 92, 0),
		reading("imei-2", 60, 0),
	})
	if !errors.Is(err, batches.ErrCounterOverflow) {
		t.Fatalf("expected ErrCounterOverflow, got %v", err)
	}
	if got := fx.devRepo.Count(); got != 0 {
		t.Fatalf("expected empty registry after overflow, got %d devices", got)
	}
}

type insertFailingRepo struct {
	*devmem.DeviceRepository
}

func (r insertFailingRepo) Insert(ctx context.Context, batch ...*devices.Device) error {
	return errors.New("storage unavailable")
}

func TestIngestInsertFailureRevertsBatchCounters(t *testing.T) {
	fx := newIngestFixture(t, 10)
	ctx := context.Background()

	service, err := NewIngestService(insertFailingRepo{fx.devRepo}, fx.batchSvc, fx.bus, fixedClock{now: time.Now().UTC()})
	if err != nil {
		t.Fatalf("ingest service: %v", err)
	}

	_, err = service.Ingest(ctx, "batch-1", []devices.Reading{
		reading("imei-1", 92, 0),
		reading("imei-2", 60, 0),
	})
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}

	batch, getErr := fx.batchRepo.Get(ctx, "batch-1")
	if getErr != nil {
		t.Fatalf("get batch: %v", getErr)
	}
	if batch.QCPass() != 0 || batch.Defects() != 0 {
		t.Fatalf("failed ingest left batch counters at %d/%d", batch.QCPass(), batch.Defects())
	}
}

func TestIngestUnknownBatch(t *testing.T) {
	fx := newIngestFixture(t, 5)
	_, err := fx.service.Ingest(context.Background(), "batch-missing", []devices.Reading{reading("imei-1", 92, 0)})
	if !errors.Is(err, batches.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestIngestInvalidReadingRejectsWholeSet(t *testing.T) {
	fx := newIngestFixture(t, 5)
	ctx := context.Background()

	_, err := fx.service.Ingest(ctx, "batch-1", []devices.Reading{
		reading("imei-1", 92, 0),
		reading("imei-2", 140, 0),
	})
	if !errors.Is(err, devices.ErrInvalidReading) {
		t.Fatalf("expected ErrInvalidReading, got %v", err)
	}
	if got := fx.devRepo.Count(); got != 0 {
		t.Fatalf("invalid set stored %d devices", got)
	}
}
