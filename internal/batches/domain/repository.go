package batches

import "context"

// Repository manages batch persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Batch, error)
	// List returns a snapshot of all batches in insertion order.
	List(ctx context.Context) ([]*Batch, error)
	// Insert stores a new batch, failing with ErrDuplicateID if the id exists.
	Insert(ctx context.Context, batch *Batch) error
	Save(ctx context.Context, batch *Batch) error
}
