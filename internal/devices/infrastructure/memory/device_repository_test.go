package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	devices "refurb-cloud/internal/devices/domain"
)

func mustDevice(t *testing.T, imei string, battery, fails int) *devices.Device {
	t.Helper()
	device, err := devices.NewDevice(devices.Reading{
		IMEI:          imei,
		Model:         "iPhone 13 Pro",
		BatteryHealth: battery,
		FailCount:     fails,
		TesterName:    "Station 1",
	}, "batch-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	return device
}

func TestInsertAndGet(t *testing.T) {
	repo := NewDeviceRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, mustDevice(t, "imei-1", 90, 0)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	device, err := repo.Get(ctx, "imei-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if device.IMEI() != "imei-1" {
		t.Fatalf("expected imei-1, got %s", device.IMEI())
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, devices.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestInsertDuplicateIsAllOrNothing(t *testing.T) {
	repo := NewDeviceRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, mustDevice(t, "imei-1", 90, 0)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := repo.Insert(ctx, mustDevice(t, "imei-2", 85, 1), mustDevice(t, "imei-1", 70, 4))
	if !errors.Is(err, devices.ErrDuplicateIMEI) {
		t.Fatalf("expected ErrDuplicateIMEI, got %v", err)
	}
	if _, err := repo.Get(ctx, "imei-2"); !errors.Is(err, devices.ErrDeviceNotFound) {
		t.Fatalf("partial insert leaked imei-2: %v", err)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected 1 stored device, got %d", repo.Count())
	}
}

func TestInsertRejectsDuplicateWithinSet(t *testing.T) {
	repo := NewDeviceRepository()
	err := repo.Insert(context.Background(), mustDevice(t, "imei-1", 90, 0), mustDevice(t, "imei-1", 85, 1))
	if !errors.Is(err, devices.ErrDuplicateIMEI) {
		t.Fatalf("expected ErrDuplicateIMEI, got %v", err)
	}
	if repo.Count() != 0 {
		t.Fatalf("expected empty repository, got %d", repo.Count())
	}
}

func TestListFiltersAndPreservesOrder(t *testing.T) {
	repo := NewDeviceRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx,
		mustDevice(t, "350001", 90, 0),
		mustDevice(t, "350002", 60, 0),
		mustDevice(t, "440003", 95, 1),
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	all, err := repo.List(ctx, devices.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(all))
	}
	if all[0].IMEI() != "350001" || all[2].IMEI() != "440003" {
		t.Fatalf("insertion order not preserved: %s..%s", all[0].IMEI(), all[2].IMEI())
	}

	flagged, err := repo.List(ctx, devices.Filter{Status: devices.StatusManualQC})
	if err != nil {
		t.Fatalf("list flagged: %v", err)
	}
	if len(flagged) != 1 || flagged[0].IMEI() != "350002" {
		t.Fatalf("expected only 350002 flagged, got %d rows", len(flagged))
	}

	matched, err := repo.List(ctx, devices.Filter{Query: "3500"})
	if err != nil {
		t.Fatalf("list query: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 imei matches, got %d", len(matched))
	}
}

func TestListReturnsDetachedSnapshot(t *testing.T) {
	repo := NewDeviceRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, mustDevice(t, "imei-1", 90, 0)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snapshot, err := repo.List(ctx, devices.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := snapshot[0].Assign("Alice", "fault"); err != nil {
		t.Fatalf("assign clone: %v", err)
	}

	stored, err := repo.Get(ctx, "imei-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.AssignedTo() != "" {
		t.Fatalf("snapshot mutation leaked into store")
	}
}

func TestSaveRequiresExistingDevice(t *testing.T) {
	repo := NewDeviceRepository()
	err := repo.Save(context.Background(), mustDevice(t, "imei-1", 90, 0))
	if !errors.Is(err, devices.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}
