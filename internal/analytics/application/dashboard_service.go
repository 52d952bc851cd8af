package application

import (
	"context"
	"errors"

	batches "refurb-cloud/internal/batches/domain"
	devices "refurb-cloud/internal/devices/domain"
)

// Distribution is the pass/defect/pending split across all batches.
type Distribution struct {
	Pass    int `json:"pass"`
	Defects int `json:"defects"`
	Pending int `json:"pending"`
}

// Snapshot is the full dashboard view derived from the registries.
type Snapshot struct {
	TotalDevices   int          `json:"total_devices"`
	QCPassRate     float64      `json:"qc_pass_rate"`
	DefectRate     float64      `json:"defect_rate"`
	CompletionRate float64      `json:"completion_rate"`
	Assigned       int          `json:"assigned"`
	Completed      int          `json:"completed"`
	Distribution   Distribution `json:"distribution"`
	ActiveBatches  int          `json:"active_batches"`
	ManualQCQueue  int          `json:"manual_qc_queue"`
}

// DashboardService derives dashboard statistics on demand. Nothing is
// cached; every call recomputes from the current registry state.
type DashboardService struct {
	batchRepo  batches.Repository
	deviceRepo devices.Repository
}

// NewDashboardService constructs a service.
func NewDashboardService(batchRepo batches.Repository, deviceRepo devices.Repository) (*DashboardService, error) {
	if batchRepo == nil {
		return nil, errors.New("dashboard service: nil batch repository")
	}
	if deviceRepo == nil {
		return nil, errors.New("dashboard service: nil device repository")
	}
	return &DashboardService{batchRepo: batchRepo, deviceRepo: deviceRepo}, nil
}

// Snapshot computes the current dashboard statistics.
func (s *DashboardService) Snapshot(ctx context.Context) (Snapshot, error) {
	all, err := s.batchRepo.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	for _, batch := range all {
		snap.TotalDevices += batch.Quantity()
		snap.Distribution.Pass += batch.QCPass()
		snap.Distribution.Defects += batch.Defects()
		snap.Assigned += batch.Assigned()
		snap.Completed += batch.Completed()
		// Clamp so inconsistent upstream counters never produce a
		// negative pending slice.
		pending := batch.Quantity() - batch.QCPass() - batch.Defects()
		if pending > 0 {
			snap.Distribution.Pending += pending
		}
		if batch.Status() != batches.StatusCompleted {
			snap.ActiveBatches++
		}
	}

	if snap.TotalDevices > 0 {
		total := float64(snap.TotalDevices)
		snap.QCPassRate = float64(snap.Distribution.Pass) / total
		snap.DefectRate = float64(snap.Distribution.Defects) / total
		snap.CompletionRate = float64(snap.Completed) / total
	}

	queue, err := s.deviceRepo.List(ctx, devices.Filter{Status: devices.StatusManualQC})
	if err != nil {
		return Snapshot{}, err
	}
	snap.ManualQCQueue = len(queue)
	return snap, nil
}
