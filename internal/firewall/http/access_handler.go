// Package http provides the access check handler, the admin blocklist
// handlers and the firewall middleware applied to the whole API surface.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	firewallDomain "github.com/maisonhub/sentinel/internal/firewall/domain"
	"github.com/maisonhub/sentinel/internal/firewall/http/dto"
	firewallUseCase "github.com/maisonhub/sentinel/internal/firewall/usecase"
	"github.com/maisonhub/sentinel/internal/httputil"

	customValidation "github.com/maisonhub/sentinel/internal/validation"
)

// AccessHandler handles explicit access decision requests.
type AccessHandler struct {
	pipeline firewallUseCase.Pipeline
	logger   *slog.Logger
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(pipeline firewallUseCase.Pipeline, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// CheckHandler runs the pipeline for one action attempt and returns the
// verdict document. The HTTP status of this endpoint is 200 whenever the
// check itself ran; the decision lives in the body.
// POST /v1/access/check
func (h *AccessHandler) CheckHandler(c *gin.Context) {
	var req dto.AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	verdict := h.pipeline.CheckRequest(c.Request.Context(), &firewallDomain.Request{
		ClientIdentity: c.ClientIP(),
		SubjectID:      req.SubjectID,
		Action:         req.Action,
		TargetID:       req.TargetID,
		Payload:        req.Payload,
		DeviceID:       req.DeviceID,
		ClientIP:       c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
		Path:           c.Request.URL.Path,
		ContentType:    c.ContentType(),
	})

	c.JSON(http.StatusOK, dto.MapVerdictToResponse(verdict))
}

// AdminHandler handles explicit blocklist mutations.
type AdminHandler struct {
	admin  firewallUseCase.BlocklistAdmin
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin firewallUseCase.BlocklistAdmin, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// BlockHandler adds an identity to the blocklist.
// POST /v1/admin/block
func (h *AdminHandler) BlockHandler(c *gin.Context) {
	var req dto.IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.admin.BlockIdentity(c.Request.Context(), req.Identity); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnblockHandler removes an identity from the blocklist.
// POST /v1/admin/unblock
func (h *AdminHandler) UnblockHandler(c *gin.Context) {
	var req dto.IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.admin.UnblockIdentity(c.Request.Context(), req.Identity); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
