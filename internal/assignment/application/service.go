package application

import (
	"context"
	"errors"
	"time"

	batches "refurb-cloud/internal/batches/domain"
	devices "refurb-cloud/internal/devices/domain"
	"refurb-cloud/internal/observability/metrics"
	technicians "refurb-cloud/internal/technicians/domain"
)

// Result reports the state both registries ended up in after an
// assignment or completion.
type Result struct {
	Device *devices.Device
	Batch  *batches.Batch
}

// Service binds devices to technicians and keeps the device and batch
// registries consistent. Mutations always touch the device registry
// first and roll it back when the batch update fails, so callers never
// observe partial state.
type Service struct {
	deviceRepo devices.Repository
	batchRepo  batches.Repository
	techRepo   technicians.Repository
}

// NewService constructs a service.
func NewService(deviceRepo devices.Repository, batchRepo batches.Repository, techRepo technicians.Repository) (*Service, error) {
	if deviceRepo == nil {
		return nil, errors.New("assignment service: nil device repository")
	}
	if batchRepo == nil {
		return nil, errors.New("assignment service: nil batch repository")
	}
	if techRepo == nil {
		return nil, errors.New("assignment service: nil technician repository")
	}
	return &Service{deviceRepo: deviceRepo, batchRepo: batchRepo, techRepo: techRepo}, nil
}

// Assign hands a device to a technician and bumps the correlated batch
// assigned counter. First assignment wins.
func (s *Service) Assign(ctx context.Context, imei, technicianName, faultType string) (*Result, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveAssignment(result, time.Since(start))
	}()

	if _, err := s.techRepo.FindByName(ctx, technicianName); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	device, err := s.deviceRepo.Get(ctx, imei)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	prior := device.Clone()
	if err := device.Assign(technicianName, faultType); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	batch, err := s.applyBatchAssignment(ctx, device.BatchID())
	if err != nil {
		// Transactional pairing: restore the device before surfacing.
		_ = s.deviceRepo.Save(ctx, prior)
		result = metrics.ResultError
		return nil, err
	}
	return &Result{Device: device, Batch: batch}, nil
}

func (s *Service) applyBatchAssignment(ctx context.Context, batchID string) (*batches.Batch, error) {
	batch, err := s.batchRepo.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := batch.RecordAssignment(); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Complete marks a device finished and bumps the correlated batch
// completed counter, closing the batch when every unit is done.
func (s *Service) Complete(ctx context.Context, imei string) (*Result, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCompletion(result)
	}()

	device, err := s.deviceRepo.Get(ctx, imei)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	prior := device.Clone()
	if err := device.Complete(); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	batch, err := s.applyBatchCompletion(ctx, device.BatchID())
	if err != nil {
		_ = s.deviceRepo.Save(ctx, prior)
		result = metrics.ResultError
		return nil, err
	}
	return &Result{Device: device, Batch: batch}, nil
}

func (s *Service) applyBatchCompletion(ctx context.Context, batchID string) (*batches.Batch, error) {
	batch, err := s.batchRepo.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := batch.RecordCompletion(); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}
