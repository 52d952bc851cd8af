package application

import (
	"context"
	"errors"
	"time"

	devices "refurb-cloud/internal/devices/domain"
	"refurb-cloud/internal/eventing"
	"refurb-cloud/internal/observability/metrics"
)

// BatchRecorder correlates classified devices into their batch counters.
// Implemented by the batches application service.
type BatchRecorder interface {
	RecordQCOutcome(ctx context.Context, batchID string, passDelta, defectDelta int) error
	UndoQCOutcome(ctx context.Context, batchID string, passDelta, defectDelta int) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IngestService turns structured diagnostic readings into classified
// device records and keeps the correlated batch counters in step.
type IngestService struct {
	repo    devices.Repository
	batches BatchRecorder
	bus     eventing.EventBus
	clock   Clock
}

// NewIngestService constructs a service.
func NewIngestService(repo devices.Repository, batches BatchRecorder, bus eventing.EventBus, clock Clock) (*IngestService, error) {
	if repo == nil {
		return nil, errors.New("ingest service: nil repository")
	}
	if batches == nil {
		return nil, errors.New("ingest service: nil batch recorder")
	}
	if clock == nil {
		return nil, errors.New("ingest service: nil clock")
	}
	return &IngestService{repo: repo, batches: batches, bus: bus, clock: clock}, nil
}

// Ingest classifies and stores a set of readings against a batch.
// The call is all-or-nothing: a duplicate imei, an invalid reading or a
// batch counter overflow fails the whole set and leaves no state behind.
func (s *IngestService) Ingest(ctx context.Context, batchID string, readings []devices.Reading) ([]*devices.Device, error) {
	start := s.clock.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveIngest(result, len(readings), time.Since(start))
	}()

	if batchID == "" {
		result = metrics.ResultError
		return nil, errors.New("ingest service: empty batch id")
	}
	if len(readings) == 0 {
		return nil, nil
	}

	uploadDate := s.clock.Now()
	built := make([]*devices.Device, 0, len(readings))
	passCount := 0
	for _, reading := range readings {
		device, err := devices.NewDevice(reading, batchID, uploadDate)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		if !device.ManualQCFlag() {
			passCount++
		}
		built = append(built, device)
	}

	// Pre-check duplicates before touching counters so a rejected set
	// leaves the batch untouched.
	seen := make(map[string]struct{}, len(built))
	for _, device := range built {
		if _, ok := seen[device.IMEI()]; ok {
			result = metrics.ResultError
			return nil, devices.ErrDuplicateIMEI
		}
		seen[device.IMEI()] = struct{}{}
		if _, err := s.repo.Get(ctx, device.IMEI()); err == nil {
			result = metrics.ResultError
			return nil, devices.ErrDuplicateIMEI
		} else if !errors.Is(err, devices.ErrDeviceNotFound) {
			result = metrics.ResultError
			return nil, err
		}
	}

	if err := s.batches.RecordQCOutcome(ctx, batchID, passCount, len(built)-passCount); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	if err := s.repo.Insert(ctx, built...); err != nil {
		// Transactional pairing: revert the batch counters before surfacing.
		_ = s.batches.UndoQCOutcome(ctx, batchID, passCount, len(built)-passCount)
		result = metrics.ResultError
		return nil, err
	}

	for _, device := range built {
		disposition := "auto_pass"
		if device.ManualQCFlag() {
			disposition = "manual_qc"
		}
		metrics.ObserveClassified(disposition)
		if s.bus != nil {
			_ = s.bus.Publish(ctx, DeviceClassified{
				IMEI:    device.IMEI(),
				BatchID: batchID,
				Model:   device.Model(),
				Passed:  !device.ManualQCFlag(),
				At:      uploadDate,
			})
		}
	}
	return built, nil
}
