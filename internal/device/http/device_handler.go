// Package http provides HTTP handlers for trusted device management.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maisonhub/sentinel/internal/device/http/dto"
	deviceUseCase "github.com/maisonhub/sentinel/internal/device/usecase"
	"github.com/maisonhub/sentinel/internal/httputil"

	customValidation "github.com/maisonhub/sentinel/internal/validation"
)

// DeviceHandler handles HTTP requests for the trusted device registry.
type DeviceHandler struct {
	registry deviceUseCase.Registry
	logger   *slog.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(registry deviceUseCase.Registry, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{
		registry: registry,
		logger:   logger,
	}
}

// RegisterHandler registers a (subject, device) pair as trusted.
// POST /v1/devices
func (h *DeviceHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	device, err := h.registry.Register(c.Request.Context(), req.SubjectID, req.DeviceID, req.DisplayName, req.DeviceKind)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapDeviceToResponse(device))
}

// DeactivateHandler soft-deletes a trusted device.
// POST /v1/devices/deactivate
func (h *DeviceHandler) DeactivateHandler(c *gin.Context) {
	var req dto.DeviceRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.registry.Deactivate(c.Request.Context(), req.SubjectID, req.DeviceID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler returns a subject's registered devices.
// GET /v1/devices?subject_id=...
func (h *DeviceHandler) ListHandler(c *gin.Context) {
	subjectID := c.Query("subject_id")

	devices, err := h.registry.ListBySubject(c.Request.Context(), subjectID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDevicesToListResponse(devices))
}
