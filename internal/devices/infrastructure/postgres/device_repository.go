package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	devices "refurb-cloud/internal/devices/domain"
)

const defaultDevicesTable = "qc_devices"

// DeviceRepository is a Postgres implementation of the device registry.
type DeviceRepository struct {
	db    *sql.DB
	table string
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository(db *sql.DB, opts ...DeviceRepositoryOption) *DeviceRepository {
	repo := &DeviceRepository{db: db, table: defaultDevicesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// DeviceRepositoryOption configures the repository.
type DeviceRepositoryOption func(*DeviceRepository)

// WithDevicesTable overrides the default table.
func WithDevicesTable(table string) DeviceRepositoryOption {
	return func(repo *DeviceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const deviceColumns = `imei, batch_id, model, battery_health, cycle_count, fail_count,
	tester_name, upload_date, manual_qc_flag, score, status, assigned_to, fault_type, position`

// Get loads a device by imei.
func (r *DeviceRepository) Get(ctx context.Context, imei string) (*devices.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	if imei == "" {
		return nil, devices.ErrEmptyIMEI
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE imei = $1`, deviceColumns, r.table)
	return scanDevice(r.db.QueryRowContext(ctx, query, imei))
}

// List returns matching devices in ingestion order.
func (r *DeviceRepository) List(ctx context.Context, filter devices.Filter) ([]*devices.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}

	var conditions []string
	var args []any
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(imei) LIKE $%d OR LOWER(model) LIKE $%d)", idx, idx))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", deviceColumns, r.table)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY position"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*devices.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, device)
	}
	return result, rows.Err()
}

// Insert stores new devices within one transaction.
func (r *DeviceRepository) Insert(ctx context.Context, batch ...*devices.Device) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (%s)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,
	(SELECT COALESCE(MAX(position), 0) + 1 FROM %s))
ON CONFLICT (imei) DO NOTHING`, r.table, deviceColumns, r.table)
	for _, device := range batch {
		if device == nil {
			_ = tx.Rollback()
			return devices.ErrNilDevice
		}
		rec := device.Record()
		result, err := tx.ExecContext(ctx, query,
			rec.IMEI, rec.BatchID, rec.Model, rec.BatteryHealth, rec.CycleCount, rec.FailCount,
			rec.TesterName, rec.UploadDate, rec.ManualQCFlag, rec.Score, string(rec.Status),
			rec.AssignedTo, rec.FaultType,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if affected == 0 {
			_ = tx.Rollback()
			return devices.ErrDuplicateIMEI
		}
	}
	return tx.Commit()
}

// Save overwrites an existing device record.
func (r *DeviceRepository) Save(ctx context.Context, device *devices.Device) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}
	if device == nil {
		return devices.ErrNilDevice
	}

	rec := device.Record()
	query := fmt.Sprintf(`
UPDATE %s SET
	batch_id = $2, model = $3, battery_health = $4, cycle_count = $5, fail_count = $6,
	tester_name = $7, upload_date = $8, manual_qc_flag = $9, score = $10,
	status = $11, assigned_to = $12, fault_type = $13
WHERE imei = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query,
		rec.IMEI, rec.BatchID, rec.Model, rec.BatteryHealth, rec.CycleCount, rec.FailCount,
		rec.TesterName, rec.UploadDate, rec.ManualQCFlag, rec.Score, string(rec.Status),
		rec.AssignedTo, rec.FaultType,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return devices.ErrDeviceNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*devices.Device, error) {
	var rec devices.Record
	var status string
	var assignedTo sql.NullString
	var faultType sql.NullString
	var position int
	err := row.Scan(
		&rec.IMEI, &rec.BatchID, &rec.Model, &rec.BatteryHealth, &rec.CycleCount, &rec.FailCount,
		&rec.TesterName, &rec.UploadDate, &rec.ManualQCFlag, &rec.Score, &status,
		&assignedTo, &faultType, &position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, devices.ErrDeviceNotFound
		}
		return nil, err
	}
	rec.Status = devices.DeviceStatus(status)
	rec.AssignedTo = assignedTo.String
	rec.FaultType = faultType.String
	return devices.Restore(rec)
}
