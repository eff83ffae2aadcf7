package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/maisonhub/sentinel/internal/database"
	apperrors "github.com/maisonhub/sentinel/internal/errors"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
)

// PostgreSQLEventRepository implements security event persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts a new security event. Handles nil details as database NULL.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *eventDomain.SecurityEvent) error {
	querier := database.GetTx(ctx, p.db)

	var detailsJSON []byte
	var err error

	// Handle nil details as NULL
	if event.Details != nil {
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal security event details")
		}
	}

	query := `INSERT INTO security_events
			  (id, subject_id, event_type, severity, details, client_ip, user_agent, device_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
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
func (p *PostgreSQLEventRepository) ListRecent(
	ctx context.Context,
	subjectID string,
	since time.Time,
	severities []eventDomain.Severity,
	limit int,
) ([]*eventDomain.SecurityEvent, error) {
	querier := database.GetTx(ctx, p.db)

	if limit <= 0 {
		limit = 1000
	}

	query := `SELECT id, subject_id, event_type, severity, details, client_ip, user_agent, device_id, created_at
			  FROM security_events
			  WHERE subject_id = $1 AND created_at >= $2 AND severity = ANY($3)
			  ORDER BY created_at DESC
			  LIMIT $4`

	wanted := severities
	if len(wanted) == 0 {
		wanted = []eventDomain.Severity{
			eventDomain.SeverityInfo,
			eventDomain.SeverityWarning,
			eventDomain.SeverityError,
			eventDomain.SeverityCritical,
		}
	}
	severityStrings := make([]string, 0, len(wanted))
	for _, s := range wanted {
		severityStrings = append(severityStrings, string(s))
	}

	rows, err := querier.QueryContext(ctx, query, subjectID, since, pq.Array(severityStrings), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	events := make([]*eventDomain.SecurityEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
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
// number of rows deleted. Used by the retention command; the core never
// deletes events on its own.
func (p *PostgreSQLEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM security_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete old security events")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted security events")
	}
	return deleted, nil
}

// scanEvent reads one security event row.
func scanEvent(rows *sql.Rows) (*eventDomain.SecurityEvent, error) {
	var event eventDomain.SecurityEvent
	var detailsJSON []byte
	var severity string

	err := rows.Scan(
		&event.ID,
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

	event.Severity = eventDomain.Severity(severity)

	// Unmarshal details if not NULL
	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal security event details")
		}
	}

	return &event, nil
}
