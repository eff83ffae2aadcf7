package http

import (
	"log/slog"
	"net/http"

	"github.com/allisson/go-pwdhash"
	"github.com/gin-gonic/gin"

	firewallDomain "github.com/maisonhub/sentinel/internal/firewall/domain"
	firewallUseCase "github.com/maisonhub/sentinel/internal/firewall/usecase"
	"github.com/maisonhub/sentinel/internal/httputil"
)

// FirewallMiddleware runs the access pipeline against every request before
// the handler executes. The request body is not read here; payload-level
// checks run through the explicit /v1/access/check endpoint. A denied
// request is aborted with the verdict's status code.
func FirewallMiddleware(pipeline firewallUseCase.Pipeline, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		verdict := pipeline.CheckRequest(c.Request.Context(), &firewallDomain.Request{
			ClientIdentity: c.ClientIP(),
			ClientIP:       c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
			Path:           c.Request.URL.Path,
			ContentType:    c.ContentType(),
		})
		if !verdict.Allowed {
			logger.Warn("request denied by firewall",
				slog.String("client_ip", c.ClientIP()),
				slog.String("path", c.Request.URL.Path),
				slog.String("reason", verdict.Reason),
			)
			c.AbortWithStatusJSON(verdict.StatusCode, httputil.ErrorResponse{
				Error:   "forbidden",
				Message: verdict.Reason,
			})
			return
		}
		c.Next()
	}
}

// AdminKeyMiddleware protects the admin surface with a pre-shared key carried
// in the X-Admin-Key header. The key is verified against its argon2id hash
// from the configuration. An empty hash disables the whole surface.
func AdminKeyMiddleware(adminKeyHash string, logger *slog.Logger) gin.HandlerFunc {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		// Only possible with an invalid policy constant.
		panic(err)
	}

	return func(c *gin.Context) {
		if adminKeyHash == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, httputil.ErrorResponse{
				Error:   "not_found",
				Message: "The requested resource was not found",
			})
			return
		}

		key := c.GetHeader("X-Admin-Key")
		ok, err := hasher.Verify([]byte(key), adminKeyHash)
		if err != nil || !ok {
			logger.Warn("admin key rejected", slog.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Error:   "unauthorized",
				Message: "Authentication is required",
			})
			return
		}
		c.Next()
	}
}
