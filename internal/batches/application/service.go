package application

import (
	"context"
	"errors"

	batches "refurb-cloud/internal/batches/domain"
)

// Service coordinates batch registry workflows.
type Service struct {
	repo batches.Repository
}

// NewService constructs a service.
func NewService(repo batches.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("batch service: nil repository")
	}
	return &Service{repo: repo}, nil
}

// Create registers a new batch in Arrived state.
func (s *Service) Create(ctx context.Context, input batches.Input) (*batches.Batch, error) {
	batch, err := batches.NewBatch(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Get loads a batch by id.
func (s *Service) Get(ctx context.Context, id string) (*batches.Batch, error) {
	return s.repo.Get(ctx, id)
}

// List returns all batches in registration order.
func (s *Service) List(ctx context.Context) ([]*batches.Batch, error) {
	return s.repo.List(ctx)
}

// RecordQCOutcome applies classified pass/defect deltas to a batch.
// A counter overflow fails before any state changes.
func (s *Service) RecordQCOutcome(ctx context.Context, batchID string, passDelta, defectDelta int) error {
	batch, err := s.repo.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if err := batch.RecordQCOutcome(passDelta, defectDelta); err != nil {
		return err
	}
	return s.repo.Save(ctx, batch)
}

// UndoQCOutcome reverts previously recorded pass/defect deltas after a
// failed cross-registry update.
func (s *Service) UndoQCOutcome(ctx context.Context, batchID string, passDelta, defectDelta int) error {
	batch, err := s.repo.Get(ctx, batchID)
	if err != nil {
		return err
	}
	batch.UndoQCOutcome(passDelta, defectDelta)
	return s.repo.Save(ctx, batch)
}
