package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
)

// RunCleanSecurityEvents deletes security events older than the specified
// number of days from the durable store. Supports text and JSON output.
//
// Requirements: a durable store must be configured and migrated.
func RunCleanSecurityEvents(
	ctx context.Context,
	repo eventUseCase.EventRepository,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if repo == nil {
		return fmt.Errorf("no durable store is configured (DB_ENABLED=false)")
	}

	logger.Info("cleaning security events", slog.Int("days", days))

	cutoff := time.Now().AddDate(0, 0, -days)
	count, err := repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete security events: %w", err)
	}

	if format == "json" {
		result := map[string]interface{}{
			"count": count,
			"days":  days,
		}
		if err := json.NewEncoder(writer).Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		fmt.Fprintf(writer, "Successfully deleted %d security event(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	return nil
}
