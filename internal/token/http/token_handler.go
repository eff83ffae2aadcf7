// Package http provides HTTP handlers for capability token operations.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maisonhub/sentinel/internal/httputil"
	"github.com/maisonhub/sentinel/internal/token/http/dto"
	tokenUseCase "github.com/maisonhub/sentinel/internal/token/usecase"

	customValidation "github.com/maisonhub/sentinel/internal/validation"
)

// TokenHandler handles HTTP requests for capability tokens.
type TokenHandler struct {
	tokenService tokenUseCase.TokenService
	logger       *slog.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokenService tokenUseCase.TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		logger:       logger,
	}
}

// IssueHandler mints a capability token.
// POST /v1/tokens
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	token, err := h.tokenService.Issue(c.Request.Context(), req.SubjectID, req.Action, req.TargetID, ttl)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.IssueTokenResponse{Token: token})
}

// VerifyHandler resolves a token to its grant.
// POST /v1/tokens/verify
func (h *TokenHandler) VerifyHandler(c *gin.Context) {
	var req dto.VerifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	grant, err := h.tokenService.Verify(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToVerifyResponse(grant))
}

// RevokeHandler evicts a token before its expiry.
// POST /v1/tokens/revoke
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	var req dto.VerifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.tokenService.Revoke(c.Request.Context(), req.Token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
