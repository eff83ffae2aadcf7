// Package http provides HTTP handlers for querying the security event log.
package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	"github.com/maisonhub/sentinel/internal/event/http/dto"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
	"github.com/maisonhub/sentinel/internal/httputil"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

const defaultListWindow = 24 * time.Hour

// EventHandler handles HTTP requests for the security event log. The log is
// an operator surface; routes using this handler sit behind the admin key.
type EventHandler struct {
	recorder eventUseCase.Recorder
	logger   *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(recorder eventUseCase.Recorder, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// ListHandler returns recent events, newest first.
// GET /v1/events?subject_id=...&since_minutes=...&severity=warning&severity=critical
func (h *EventHandler) ListHandler(c *gin.Context) {
	subjectID := c.Query("subject_id")

	since := time.Now().UTC().Add(-defaultListWindow)
	if raw := c.Query("since_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			httputil.HandleBadRequestGin(c, apperrors.New("since_minutes must be a positive integer"), h.logger)
			return
		}
		since = time.Now().UTC().Add(-time.Duration(minutes) * time.Minute)
	}

	var severities []eventDomain.Severity
	for _, raw := range c.QueryArray("severity") {
		severity := eventDomain.Severity(raw)
		if !severity.IsValid() {
			httputil.HandleBadRequestGin(c, apperrors.New("invalid severity: "+raw), h.logger)
			return
		}
		severities = append(severities, severity)
	}

	events, err := h.recorder.Recent(c.Request.Context(), subjectID, since, severities)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}
