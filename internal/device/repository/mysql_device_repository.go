package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/maisonhub/sentinel/internal/database"
	"github.com/maisonhub/sentinel/internal/device/domain"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

// MySQLDeviceRepository handles trusted device persistence for MySQL
type MySQLDeviceRepository struct {
	db *sql.DB
}

// NewMySQLDeviceRepository creates a new MySQLDeviceRepository
func NewMySQLDeviceRepository(db *sql.DB) *MySQLDeviceRepository {
	return &MySQLDeviceRepository{
		db: db,
	}
}

// Upsert inserts or replaces the record for the (subject, device) pair
func (r *MySQLDeviceRepository) Upsert(ctx context.Context, device *domain.TrustedDevice) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO trusted_devices (id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			    display_name = VALUES(display_name),
			    device_kind = VALUES(device_kind),
			    is_active = VALUES(is_active),
			    last_seen_at = VALUES(last_seen_at)`

	_, err := querier.ExecContext(ctx, query,
		device.ID.String(), device.SubjectID, device.DeviceID, device.DisplayName,
		device.DeviceKind, device.IsActive, device.LastSeenAt, device.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert trusted device")
	}
	return nil
}

// Get retrieves the record for the (subject, device) pair
func (r *MySQLDeviceRepository) Get(ctx context.Context, subjectID, deviceID string) (*domain.TrustedDevice, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at
			  FROM trusted_devices WHERE subject_id = ? AND device_id = ?`

	row := querier.QueryRowContext(ctx, query, subjectID, deviceID)
	device, err := scanMySQLDevice(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get trusted device")
	}

	return device, nil
}

// ListBySubject returns all records for a subject
func (r *MySQLDeviceRepository) ListBySubject(ctx context.Context, subjectID string) ([]*domain.TrustedDevice, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at
			  FROM trusted_devices WHERE subject_id = ? ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list trusted devices")
	}
	defer func() { _ = rows.Close() }()

	return collectMySQLDevices(rows)
}

// ListAll returns every record in the registry
func (r *MySQLDeviceRepository) ListAll(ctx context.Context) ([]*domain.TrustedDevice, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at
			  FROM trusted_devices ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list trusted devices")
	}
	defer func() { _ = rows.Close() }()

	return collectMySQLDevices(rows)
}

// scanMySQLDevice reads a row where the id column is stored as CHAR(36)
func scanMySQLDevice(scan func(dest ...any) error) (*domain.TrustedDevice, error) {
	var device domain.TrustedDevice
	var rawID string

	err := scan(
		&rawID, &device.SubjectID, &device.DeviceID, &device.DisplayName,
		&device.DeviceKind, &device.IsActive, &device.LastSeenAt, &device.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	device.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse trusted device id")
	}
	return &device, nil
}

func collectMySQLDevices(rows *sql.Rows) ([]*domain.TrustedDevice, error) {
	var result []*domain.TrustedDevice
	for rows.Next() {
		device, err := scanMySQLDevice(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan trusted device")
		}
		result = append(result, device)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate trusted devices")
	}
	return result, nil
}
