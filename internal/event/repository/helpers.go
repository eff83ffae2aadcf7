package repository

import (
	"github.com/google/uuid"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

// parseEventID parses a CHAR(36) id column into a UUID.
func parseEventID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to parse security event id")
	}
	return parsed, nil
}
