package integration

import (
	"context"
	"testing"
	"time"

	analytics "refurb-cloud/internal/analytics/application"
	assignapp "refurb-cloud/internal/assignment/application"
	batchapp "refurb-cloud/internal/batches/application"
	batches "refurb-cloud/internal/batches/domain"
	batchmem "refurb-cloud/internal/batches/infrastructure/memory"
	devapp "refurb-cloud/internal/devices/application"
	devices "refurb-cloud/internal/devices/domain"
	devmem "refurb-cloud/internal/devices/infrastructure/memory"
	"refurb-cloud/internal/eventing"
	techmem "refurb-cloud/internal/technicians/infrastructure/memory"
)

type clock struct{}

func (clock) Now() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

// TestRefurbishmentClosedLoop walks a lot through the full workflow:
// intake, diagnostic ingestion, technician assignment, completion, and
// the dashboard view after each stage.
func TestRefurbishmentClosedLoop(t *testing.T) {
	ctx := context.Background()

	devRepo := devmem.NewDeviceRepository()
	batchRepo := batchmem.NewBatchRepository()
	techRepo := techmem.NewTechnicianRepository([]string{"Alice", "Bob"})

	batchSvc, err := batchapp.NewService(batchRepo)
	if err != nil {
		t.Fatalf("batch service: %v", err)
	}
	ingestSvc, err := devapp.NewIngestService(devRepo, batchSvc, eventing.NewInMemoryBus(), clock{})
	if err != nil {
		t.Fatalf("ingest service: %v", err)
	}
	assignSvc, err := assignapp.NewService(devRepo, batchRepo, techRepo)
	if err != nil {
		t.Fatalf("assignment service: %v", err)
	}
	dashboard, err := analytics.NewDashboardService(batchRepo, devRepo)
	if err != nil {
		t.Fatalf("dashboard service: %v", err)
	}

	// Intake.
	if _, err := batchSvc.Create(ctx, batches.Input{
		ID:          "batch-1",
		Type:        batches.TypeCustomerReturn,
		Model:       "iPhone 13",
		Source:      "TelcoReturns GmbH",
		Quantity:    3,
		ArrivalDate: time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	// Diagnostic ingestion: one auto pass, two manual qc.
	stored, err := ingestSvc.Ingest(ctx, "batch-1", []devices.Reading{
		{IMEI: "imei-1", Model: "iPhone 13", BatteryHealth: 93, CycleCount: 180, TesterName: "Dana"},
		{IMEI: "imei-2", Model: "iPhone 13", BatteryHealth: 72, CycleCount: 650, FailCount: 1, TesterName: "Dana"},
		{IMEI: "imei-3", Model: "iPhone 13", BatteryHealth: 85, CycleCount: 400, FailCount: 3, TesterName: "Dana"},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(stored))
	}

	snap, err := dashboard.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot after ingest: %v", err)
	}
	if snap.Distribution.Pass != 1 || snap.Distribution.Defects != 2 || snap.Distribution.Pending != 0 {
		t.Fatalf("distribution after ingest = %+v", snap.Distribution)
	}
	if snap.ManualQCQueue != 2 {
		t.Fatalf("manual qc queue = %d, expected 2", snap.ManualQCQueue)
	}
	if snap.ActiveBatches != 1 {
		t.Fatalf("active batches = %d, expected 1", snap.ActiveBatches)
	}

	// Assignment moves the batch into Processing and then stays In QC
	// because QC outcomes already advanced it further.
	for _, pair := range []struct{ imei, tech string }{
		{"imei-1", "Alice"},
		{"imei-2", "Bob"},
		{"imei-3", "Alice"},
	} {
		result, err := assignSvc.Assign(ctx, pair.imei, pair.tech, "Intake repair")
		if err != nil {
			t.Fatalf("assign %s: %v", pair.imei, err)
		}
		if result.Device.Status() != devices.StatusRepairing {
			t.Fatalf("%s status = %s after assignment", pair.imei, result.Device.Status())
		}
	}

	snap, err = dashboard.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot after assignment: %v", err)
	}
	if snap.Assigned != 3 {
		t.Fatalf("assigned = %d, expected 3", snap.Assigned)
	}

	// Completion closes the batch on the last unit.
	var last *assignapp.Result
	for _, imei := range []string{"imei-1", "imei-2", "imei-3"} {
		last, err = assignSvc.Complete(ctx, imei)
		if err != nil {
			t.Fatalf("complete %s: %v", imei, err)
		}
	}
	if last.Batch.Status() != batches.StatusCompleted {
		t.Fatalf("batch status = %s, expected %s", last.Batch.Status(), batches.StatusCompleted)
	}

	snap, err = dashboard.Snapshot(ctx)
	if err != nil {
		t.Fatalf("final snapshot: %v", err)
	}
	if snap.CompletionRate != 1 {
		t.Fatalf("completion rate = %v, expected 1", snap.CompletionRate)
	}
	if snap.ActiveBatches != 0 {
		t.Fatalf("active batches = %d, expected 0", snap.ActiveBatches)
	}
	if snap.ManualQCQueue != 0 {
		t.Fatalf("manual qc queue = %d, expected 0", snap.ManualQCQueue)
	}
}
