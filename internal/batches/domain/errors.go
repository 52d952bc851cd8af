package batches

import "errors"

var (
	// ErrInvalidInput is returned when a batch registration is malformed.
	ErrInvalidInput = errors.New("batches: invalid input")
	// ErrBatchNotFound is returned when a lookup misses.
	ErrBatchNotFound = errors.New("batches: not found")
	// ErrDuplicateID is returned when creating a batch id that already exists.
	ErrDuplicateID = errors.New("batches: duplicate id")
	// ErrCounterOverflow guards the quantity bound on every counter.
	ErrCounterOverflow = errors.New("batches: counter overflow")
	// ErrNegativeDelta is returned when a counter delta is negative.
	ErrNegativeDelta = errors.New("batches: negative delta")
	// ErrNilBatch is returned when saving a nil batch.
	ErrNilBatch = errors.New("batches: nil batch")
)
