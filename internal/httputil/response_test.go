package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

func ginContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"NotFound", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"Conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"InvalidInput", apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
		{"Unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"RateLimited", apperrors.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{
			"RequiresVerification",
			apperrors.ErrRequiresVerification,
			http.StatusForbidden,
			"requires_verification",
		},
		{"Forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"TokenExpired", apperrors.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{"TokenInvalid", apperrors.ErrTokenInvalid, http.StatusUnauthorized, "token_invalid"},
		{"Internal", apperrors.New("database exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := ginContext(t)
			HandleErrorGin(c, tt.err, slog.Default())

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestHandleErrorGin_WrappedErrorsKeepMapping(t *testing.T) {
	c, w := ginContext(t)
	err := apperrors.Wrap(apperrors.ErrRateLimited, "pipeline check")
	HandleErrorGin(c, err, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHandleErrorGin_InternalErrorHidesDetails(t *testing.T) {
	c, w := ginContext(t)
	HandleErrorGin(c, apperrors.New("secret rule #42 matched"), nil)

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Message, "rule #42")
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := ginContext(t)
	HandleBadRequestGin(c, apperrors.New("unexpected EOF"), slog.Default())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := ginContext(t)
	HandleValidationErrorGin(c, apperrors.New("subject_id: must not be blank"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMakeJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	MakeJSONResponse(w, http.StatusTeapot, map[string]string{"status": "short and stout"})

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "short and stout")
}
