package memory

import (
	"context"
	"sync"

	batches "refurb-cloud/internal/batches/domain"
)

// BatchRepository is an in-memory batch registry.
type BatchRepository struct {
	mu    sync.RWMutex
	data  map[string]*batches.Batch
	order []string
}

// NewBatchRepository constructs a repository.
func NewBatchRepository() *BatchRepository {
	return &BatchRepository{data: make(map[string]*batches.Batch)}
}

// Get loads a batch by id.
func (r *BatchRepository) Get(ctx context.Context, id string) (*batches.Batch, error) {
	_ = ctx
	if id == "" {
		return nil, batches.ErrInvalidInput
	}

	r.mu.RLock()
	batch := r.data[id]
	r.mu.RUnlock()
	if batch == nil {
		return nil, batches.ErrBatchNotFound
	}
	return batch.Clone(), nil
}

// List returns a snapshot of all batches in insertion order.
func (r *BatchRepository) List(ctx context.Context) ([]*batches.Batch, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*batches.Batch, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.data[id].Clone())
	}
	return result, nil
}

// Insert stores a new batch, rejecting duplicate ids.
func (r *BatchRepository) Insert(ctx context.Context, batch *batches.Batch) error {
	_ = ctx
	if batch == nil {
		return batches.ErrNilBatch
	}
	id := batch.ID()
	if id == "" {
		return batches.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; ok {
		return batches.ErrDuplicateID
	}
	r.data[id] = batch.Clone()
	r.order = append(r.order, id)
	return nil
}

// Save overwrites an existing batch record.
func (r *BatchRepository) Save(ctx context.Context, batch *batches.Batch) error {
	_ = ctx
	if batch == nil {
		return batches.ErrNilBatch
	}
	id := batch.ID()
	if id == "" {
		return batches.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return batches.ErrBatchNotFound
	}
	r.data[id] = batch.Clone()
	return nil
}

// CountActive returns the number of batches not yet completed, for gauges.
func (r *BatchRepository) CountActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, batch := range r.data {
		if batch.Status() != batches.StatusCompleted {
			count++
		}
	}
	return count
}
