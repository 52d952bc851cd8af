package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	batches "refurb-cloud/internal/batches/domain"
)

const defaultBatchesTable = "qc_batches"

// BatchRepository is a Postgres implementation of the batch registry.
type BatchRepository struct {
	db    *sql.DB
	table string
}

// NewBatchRepository constructs a repository.
func NewBatchRepository(db *sql.DB, opts ...BatchRepositoryOption) *BatchRepository {
	repo := &BatchRepository{db: db, table: defaultBatchesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// BatchRepositoryOption configures the repository.
type BatchRepositoryOption func(*BatchRepository)

// WithBatchesTable overrides the default table.
func WithBatchesTable(table string) BatchRepositoryOption {
	return func(repo *BatchRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const batchColumns = `id, batch_type, model, source, invoice, quantity, arrival_date,
	qc_pass, defects, assigned, completed, status, position`

// Get loads a batch by id.
func (r *BatchRepository) Get(ctx context.Context, id string) (*batches.Batch, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("batch repo: nil db")
	}
	if id == "" {
		return nil, batches.ErrInvalidInput
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1`, batchColumns, r.table)
	return scanBatch(r.db.QueryRowContext(ctx, query, id))
}

// List returns all batches in registration order.
func (r *BatchRepository) List(ctx context.Context) ([]*batches.Batch, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("batch repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY position`, batchColumns, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*batches.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, batch)
	}
	return result, rows.Err()
}

// Insert stores a new batch, rejecting duplicate ids.
func (r *BatchRepository) Insert(ctx context.Context, batch *batches.Batch) error {
	if r == nil || r.db == nil {
		return errors.New("batch repo: nil db")
	}
	if batch == nil {
		return batches.ErrNilBatch
	}

	rec := batch.Record()
	query := fmt.Sprintf(`
INSERT INTO %s (id, batch_type, model, source, invoice, quantity, arrival_date,
	qc_pass, defects, assigned, completed, status, position)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,
	(SELECT COALESCE(MAX(position), 0) + 1 FROM %s))
ON CONFLICT (id) DO NOTHING`, r.table, r.table)
	result, err := r.db.ExecContext(ctx, query,
		rec.ID, string(rec.Type), rec.Model, rec.Source, rec.Invoice, rec.Quantity, rec.ArrivalDate,
		rec.QCPass, rec.Defects, rec.Assigned, rec.Completed, string(rec.Status),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return batches.ErrDuplicateID
	}
	return nil
}

// Save overwrites an existing batch record.
func (r *BatchRepository) Save(ctx context.Context, batch *batches.Batch) error {
	if r == nil || r.db == nil {
		return errors.New("batch repo: nil db")
	}
	if batch == nil {
		return batches.ErrNilBatch
	}

	rec := batch.Record()
	query := fmt.Sprintf(`
UPDATE %s SET
	batch_type = $2, model = $3, source = $4, invoice = $5, quantity = $6,
	arrival_date = $7, qc_pass = $8, defects = $9, assigned = $10,
	completed = $11, status = $12
WHERE id = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query,
		rec.ID, string(rec.Type), rec.Model, rec.Source, rec.Invoice, rec.Quantity,
		rec.ArrivalDate, rec.QCPass, rec.Defects, rec.Assigned, rec.Completed, string(rec.Status),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return batches.ErrBatchNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*batches.Batch, error) {
	var rec batches.Record
	var batchType, status string
	var position int
	err := row.Scan(
		&rec.ID, &batchType, &rec.Model, &rec.Source, &rec.Invoice, &rec.Quantity, &rec.ArrivalDate,
		&rec.QCPass, &rec.Defects, &rec.Assigned, &rec.Completed, &status, &position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, batches.ErrBatchNotFound
		}
		return nil, err
	}
	rec.Type = batches.BatchType(batchType)
	rec.Status = batches.BatchStatus(status)
	return batches.Restore(rec)
}
