package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonhub/sentinel/internal/clock"
	"github.com/maisonhub/sentinel/internal/device/http/dto"
	deviceRepository "github.com/maisonhub/sentinel/internal/device/repository"
	deviceUseCase "github.com/maisonhub/sentinel/internal/device/usecase"
	eventRepository "github.com/maisonhub/sentinel/internal/event/repository"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
)

func setupDeviceRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.Default()
	clk := clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	recorder := eventUseCase.NewEventLogUseCase(
		eventRepository.NewMemoryEventRepository(100), nil, nil, 16, logger,
	)
	registry := deviceUseCase.NewDeviceRegistryUseCase(
		deviceRepository.NewMemoryDeviceRepository(), nil, clk, recorder, logger,
	)
	handler := NewDeviceHandler(registry, logger)

	router := gin.New()
	router.POST("/v1/devices", handler.RegisterHandler)
	router.POST("/v1/devices/deactivate", handler.DeactivateHandler)
	router.GET("/v1/devices", handler.ListHandler)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterDeviceHandler(t *testing.T) {
	router := setupDeviceRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/devices", dto.RegisterDeviceRequest{
		SubjectID:   "user:alice",
		DeviceID:    "dev-1",
		DisplayName: "Tablette salon",
		DeviceKind:  "tablet",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.DeviceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dev-1", resp.DeviceID)
	assert.True(t, resp.IsActive)
}

func TestRegisterDeviceHandlerValidation(t *testing.T) {
	router := setupDeviceRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/devices", dto.RegisterDeviceRequest{
		SubjectID: "user:alice",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeactivateDeviceHandler(t *testing.T) {
	router := setupDeviceRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/devices", dto.RegisterDeviceRequest{
		SubjectID: "user:alice",
		DeviceID:  "dev-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/devices/deactivate", dto.DeviceRefRequest{
		SubjectID: "user:alice",
		DeviceID:  "dev-1",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeactivateUnknownDeviceHandler(t *testing.T) {
	router := setupDeviceRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/devices/deactivate", dto.DeviceRefRequest{
		SubjectID: "user:alice",
		DeviceID:  "dev-404",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDevicesHandler(t *testing.T) {
	router := setupDeviceRouter(t)

	for _, deviceID := range []string{"dev-1", "dev-2"} {
		w := doJSON(t, router, http.MethodPost, "/v1/devices", dto.RegisterDeviceRequest{
			SubjectID: "user:alice",
			DeviceID:  deviceID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/v1/devices?subject_id=user:alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ListDevicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}
