package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonhub/sentinel/internal/device/domain"
)

func TestPostgreSQLDeviceRepositoryUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLDeviceRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	device := domain.NewTrustedDevice("user:alice", "dev-1", "Kitchen display", "display", now)

	mock.ExpectExec("INSERT INTO trusted_devices").
		WithArgs(device.ID, device.SubjectID, device.DeviceID, device.DisplayName,
			device.DeviceKind, device.IsActive, device.LastSeenAt, device.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Upsert(context.Background(), device)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLDeviceRepositoryGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLDeviceRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	device := domain.NewTrustedDevice("user:alice", "dev-1", "Kitchen display", "display", now)

	rows := sqlmock.NewRows([]string{
		"id", "subject_id", "device_id", "display_name", "device_kind", "is_active", "last_seen_at", "created_at",
	}).AddRow(device.ID, device.SubjectID, device.DeviceID, device.DisplayName,
		device.DeviceKind, device.IsActive, device.LastSeenAt, device.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM trusted_devices WHERE subject_id").
		WithArgs("user:alice", "dev-1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "user:alice", "dev-1")
	require.NoError(t, err)
	assert.Equal(t, device.ID, got.ID)
	assert.Equal(t, "Kitchen display", got.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLDeviceRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLDeviceRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM trusted_devices WHERE subject_id").
		WithArgs("user:alice", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "subject_id", "device_id", "display_name", "device_kind", "is_active", "last_seen_at", "created_at",
		}))

	_, err = repo.Get(context.Background(), "user:alice", "missing")
	assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLDeviceRepositoryListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLDeviceRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := domain.NewTrustedDevice("user:alice", "dev-1", "", "phone", now)
	second := domain.NewTrustedDevice("user:bob", "dev-2", "", "tablet", now)

	rows := sqlmock.NewRows([]string{
		"id", "subject_id", "device_id", "display_name", "device_kind", "is_active", "last_seen_at", "created_at",
	}).
		AddRow(first.ID, first.SubjectID, first.DeviceID, first.DisplayName,
			first.DeviceKind, first.IsActive, first.LastSeenAt, first.CreatedAt).
		AddRow(second.ID, second.SubjectID, second.DeviceID, second.DisplayName,
			second.DeviceKind, second.IsActive, second.LastSeenAt, second.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM trusted_devices ORDER BY created_at").
		WillReturnRows(rows)

	devices, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
