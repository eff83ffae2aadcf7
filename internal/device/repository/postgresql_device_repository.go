package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/maisonhub/sentinel/internal/database"
	"github.com/maisonhub/sentinel/internal/device/domain"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

// PostgreSQLDeviceRepository handles trusted device persistence for PostgreSQL
type PostgreSQLDeviceRepository struct {
	db *sql.DB
}

// NewPostgreSQLDeviceRepository creates a new PostgreSQLDeviceRepository
func NewPostgreSQLDeviceRepository(db *sql.DB) *PostgreSQLDeviceRepository {
	return &PostgreSQLDeviceRepository{
		db: db,
	}
}

// Upsert inserts or replaces the record for the (subject, device) pair
func (r *PostgreSQLDeviceRepository) Upsert(ctx context.Context, device *domain.TrustedDevice) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO trusted_devices (id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (subject_id, device_id) DO UPDATE SET
			    display_name = EXCLUDED.display_name,
			    device_kind = EXCLUDED.device_kind,
			    is_active = EXCLUDED.is_active,
			    last_seen_at = EXCLUDED.last_seen_at`

	_, err := querier.ExecContext(ctx, query,
		device.ID, device.SubjectID, device.DeviceID, device.DisplayName,
		device.DeviceKind, device.IsActive, device.LastSeenAt, device.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert trusted device")
	}
	return nil
}

// Get retrieves the record for the (subject, device) pair
func (r *PostgreSQLDeviceRepository) Get(ctx context.Context, subjectID, deviceID string) (*domain.TrustedDevice, error) {
	var device domain.TrustedDevice
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at
			  FROM trusted_devices WHERE subject_id = $1 AND device_id = $2`

	err := querier.QueryRowContext(ctx, query, subjectID, deviceID).Scan(
		&device.ID, &device.SubjectID, &device.DeviceID, &device.DisplayName,
		&device.DeviceKind, &device.IsActive, &device.LastSeenAt, &device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get trusted device")
	}

	return &device, nil
}

// ListBySubject returns all records for a subject
func (r *PostgreSQLDeviceRepository) ListBySubject(ctx context.Context, subjectID string) ([]*domain.TrustedDevice, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at
			  FROM trusted_devices WHERE subject_id = $1 ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list trusted devices")
	}
	defer func() { _ = rows.Close() }()

	return scanDevices(rows)
}

// ListAll returns every record in the registry
func (r *PostgreSQLDeviceRepository) ListAll(ctx context.Context) ([]*domain.TrustedDevice, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, subject_id, device_id, display_name, device_kind, is_active, last_seen_at, created_at
			  FROM trusted_devices ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list trusted devices")
	}
	defer func() { _ = rows.Close() }()

	return scanDevices(rows)
}

func scanDevices(rows *sql.Rows) ([]*domain.TrustedDevice, error) {
	var result []*domain.TrustedDevice
	for rows.Next() {
		var device domain.TrustedDevice
		err := rows.Scan(
			&device.ID, &device.SubjectID, &device.DeviceID, &device.DisplayName,
			&device.DeviceKind, &device.IsActive, &device.LastSeenAt, &device.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan trusted device")
		}
		result = append(result, &device)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate trusted devices")
	}
	return result, nil
}
