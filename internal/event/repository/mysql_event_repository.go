package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/maisonhub/sentinel/internal/database"
	apperrors "github.com/maisonhub/sentinel/internal/errors"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
)

// MySQLEventRepository implements security event persistence for MySQL.
// UUIDs are stored as CHAR(36); details as JSON.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts a new security event. Handles nil details as database NULL.
func (m *MySQLEventRepository) Create(ctx context.Context, event *eventDomain.SecurityEvent) error {
	querier := database.GetTx(ctx, m.db)

	var detailsJSON []byte
	var err error

	if event.Details != nil {
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal security event details")
		}
	}

	query := `INSERT INTO security_events
			  (id, subject_id, event_type, severity, details, client_ip, user_agent, device_id, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID.String(),
		event.SubjectID,
		event.EventType,
		string(event.Severity),
		detailsJSON,
		event.ClientIP,
		event.UserAgent,
		event.DeviceID,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create security event")
	}

	return nil
}

// ListRecent retrieves events for a subject created at or after since, ordered
// by created_at descending (newest first). An empty severities slice matches
// all severities.
func (m *MySQLEventRepository) ListRecent(
	ctx context.Context,
	subjectID string,
	since time.Time,
	severities []eventDomain.Severity,
	limit int,
) ([]*eventDomain.SecurityEvent, error) {
	querier := database.GetTx(ctx, m.db)

	if limit <= 0 {
		limit = 1000
	}

	wanted := severities
	if len(wanted) == 0 {
		wanted = []eventDomain.Severity{
			eventDomain.SeverityInfo,
			eventDomain.SeverityWarning,
			eventDomain.SeverityError,
			eventDomain.SeverityCritical,
		}
	}

	placeholders := make([]string, 0, len(wanted))
	args := []any{subjectID, since}
	for _, s := range wanted {
		placeholders = append(placeholders, "?")
		args = append(args, string(s))
	}
	args = append(args, limit)

	query := `SELECT id, subject_id, event_type, severity, details, client_ip, user_agent, device_id, created_at
			  FROM security_events
			  WHERE subject_id = ? AND created_at >= ? AND severity IN (` +
		strings.Join(placeholders, ", ") + `)
			  ORDER BY created_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*eventDomain.SecurityEvent, 0)
	for rows.Next() {
		event, err := scanMySQLEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate security events")
	}

	return events, nil
}

// DeleteOlderThan removes events created before the cutoff and returns the
// number of rows deleted.
func (m *MySQLEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM security_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete old security events")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted security events")
	}
	return deleted, nil
}

// scanMySQLEvent reads one security event row with a CHAR(36) id column.
func scanMySQLEvent(rows *sql.Rows) (*eventDomain.SecurityEvent, error) {
	var event eventDomain.SecurityEvent
	var id string
	var detailsJSON []byte
	var severity string

	err := rows.Scan(
		&id,
		&event.SubjectID,
		&event.EventType,
		&severity,
		&detailsJSON,
		&event.ClientIP,
		&event.UserAgent,
		&event.DeviceID,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan security event")
	}

	parsed, err := parseEventID(id)
	if err != nil {
		return nil, err
	}
	event.ID = parsed
	event.Severity = eventDomain.Severity(severity)

	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal security event details")
		}
	}

	return &event, nil
}
