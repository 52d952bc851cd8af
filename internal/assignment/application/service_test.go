package application

import (
	"context"
	"errors"
	"testing"
	"time"

	batches "refurb-cloud/internal/batches/domain"
	batchmem "refurb-cloud/internal/batches/infrastructure/memory"
	devices "refurb-cloud/internal/devices/domain"
	devmem "refurb-cloud/internal/devices/infrastructure/memory"
	techmem "refurb-cloud/internal/technicians/infrastructure/memory"
)

type fixture struct {
	service   *Service
	devRepo   *devmem.DeviceRepository
	batchRepo *batchmem.BatchRepository
}

func newFixture(t *testing.T, quantity int) *fixture {
	t.Helper()
	devRepo := devmem.NewDeviceRepository()
	batchRepo := batchmem.NewBatchRepository()
	techRepo := techmem.NewTechnicianRepository([]string{"Alice", "Bob"})

	batch, err := batches.NewBatch(batches.Input{
		ID:          "batch-1",
		Model:       "Pixel 7",
		Quantity:    quantity,
		ArrivalDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("new batch: %v", err)
	}
	if err := batchRepo.Insert(context.Background(), batch); err != nil {
		t.Fatalf("insert batch: %v", err)
	}

	service, err := NewService(devRepo, batchRepo, techRepo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{service: service, devRepo: devRepo, batchRepo: batchRepo}
}

func (f *fixture) seedDevice(t *testing.T, imei string) {
	t.Helper()
	device, err := devices.NewDevice(devices.Reading{
		IMEI:          imei,
		Model:         "Pixel 7",
		BatteryHealth: 70,
		CycleCount:    300,
		FailCount:     1,
		TesterName:    "Dana",
	}, "batch-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	if err := f.devRepo.Insert(context.Background(), device); err != nil {
		t.Fatalf("insert device: %v", err)
	}
}

func TestAssignBindsDeviceAndBumpsBatch(t *testing.T) {
	fx := newFixture(t, 5)
	fx.seedDevice(t, "imei-1")

	result, err := fx.service.Assign(context.Background(), "imei-1", "Alice", "Battery swap")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.Device.AssignedTo() != "Alice" {
		t.Fatalf("assigned to %q, expected Alice", result.Device.AssignedTo())
	}
	if result.Device.Status() != devices.StatusRepairing {
		t.Fatalf("device status = %s, expected %s", result.Device.Status(), devices.StatusRepairing)
	}
	if result.Batch.Assigned() != 1 {
		t.Fatalf("batch assigned = %d, expected 1", result.Batch.Assigned())
	}
	if result.Batch.Status() != batches.StatusProcessing {
		t.Fatalf("batch status = %s, expected %s", result.Batch.Status(), batches.StatusProcessing)
	}
}

func TestAssignRejectsUnknownTechnician(t *testing.T) {
	fx := newFixture(t, 5)
	fx.seedDevice(t, "imei-1")

	_, err := fx.service.Assign(context.Background(), "imei-1", "Mallory", "")
	if err == nil {
		t.Fatal("expected error for unknown technician")
	}

	device, getErr := fx.devRepo.Get(context.Background(), "imei-1")
	if getErr != nil {
		t.Fatalf("get device: %v", getErr)
	}
	if device.AssignedTo() != "" {
		t.Fatalf("rejected assignment still bound device to %q", device.AssignedTo())
	}
}

func TestAssignFirstAssignmentWins(t *testing.T) {
	fx := newFixture(t, 5)
	fx.seedDevice(t, "imei-1")
	ctx := context.Background()

	if _, err := fx.service.Assign(ctx, "imei-1", "Alice", "Screen"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if _, err := fx.service.Assign(ctx, "imei-1", "Bob", "Screen"); !errors.Is(err, devices.ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}

	device, err := fx.devRepo.Get(ctx, "imei-1")
	if err != nil {
		t.Fatalf("get device: %v", err)
	}
	if device.AssignedTo() != "Alice" {
		t.Fatalf("second assign overwrote technician: %q", device.AssignedTo())
	}
	batch, err := fx.batchRepo.Get(ctx, "batch-1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if batch.Assigned() != 1 {
		t.Fatalf("batch assigned = %d after rejected retry, expected 1", batch.Assigned())
	}
}

func TestAssignRollsBackDeviceWhenBatchUpdateFails(t *testing.T) {
	fx := newFixture(t, 1)
	fx.seedDevice(t, "imei-1")
	fx.seedDevice(t, "imei-2")
	ctx := context.Background()

	if _, err := fx.service.Assign(ctx, "imei-1", "Alice", ""); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	// The batch has capacity for one unit; the second assignment
	// overflows the counter and must leave the device unassigned.
	_, err := fx.service.Assign(ctx, "imei-2", "Bob", "")
	if !errors.Is(err, batches.ErrCounterOverflow) {
		t.Fatalf("expected ErrCounterOverflow, got %v", err)
	}

	device, getErr := fx.devRepo.Get(ctx, "imei-2")
	if getErr != nil {
		t.Fatalf("get device: %v", getErr)
	}
	if device.AssignedTo() != "" {
		t.Fatalf("failed pairing left device bound to %q", device.AssignedTo())
	}
	if device.Status() == devices.StatusRepairing {
		t.Fatal("failed pairing left device in Repairing")
	}
}

func TestCompleteClosesBatchOnLastUnit(t *testing.T) {
	fx := newFixture(t, 2)
	fx.seedDevice(t, "imei-1")
	fx.seedDevice(t, "imei-2")
	ctx := context.Background()

	for _, imei := range []string{"imei-1", "imei-2"} {
		if _, err := fx.service.Assign(ctx, imei, "Alice", "Battery"); err != nil {
			t.Fatalf("assign %s: %v", imei, err)
		}
	}

	first, err := fx.service.Complete(ctx, "imei-1")
	if err != nil {
		t.Fatalf("complete imei-1: %v", err)
	}
	if first.Batch.Status() == batches.StatusCompleted {
		t.Fatal("batch closed before the last unit completed")
	}

	last, err := fx.service.Complete(ctx, "imei-2")
	if err != nil {
		t.Fatalf("complete imei-2: %v", err)
	}
	if last.Device.Status() != devices.StatusCompleted {
		t.Fatalf("device status = %s, expected %s", last.Device.Status(), devices.StatusCompleted)
	}
	if last.Batch.Completed() != 2 {
		t.Fatalf("batch completed = %d, expected 2", last.Batch.Completed())
	}
	if last.Batch.Status() != batches.StatusCompleted {
		t.Fatalf("batch status = %s, expected %s", last.Batch.Status(), batches.StatusCompleted)
	}
}

func TestCompleteRejectsDoubleCompletion(t *testing.T) {
	fx := newFixture(t, 2)
	fx.seedDevice(t, "imei-1")
	fx.seedDevice(t, "imei-2")
	ctx := context.Background()

	if _, err := fx.service.Assign(ctx, "imei-1", "Alice", "Battery"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := fx.service.Complete(ctx, "imei-1"); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	// Completing the same device again must not count it twice or close
	// the batch while imei-2 is still open.
	if _, err := fx.service.Complete(ctx, "imei-1"); !errors.Is(err, devices.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	batch, err := fx.batchRepo.Get(ctx, "batch-1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if batch.Completed() != 1 {
		t.Fatalf("batch completed = %d, expected 1", batch.Completed())
	}
	if batch.Status() == batches.StatusCompleted {
		t.Fatal("batch closed with an open unit remaining")
	}
}

func TestCompleteUnknownDevice(t *testing.T) {
	fx := newFixture(t, 2)
	_, err := fx.service.Complete(context.Background(), "imei-missing")
	if !errors.Is(err, devices.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}
