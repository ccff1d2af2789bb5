package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/services"
)

type fakeProbe bool

func (p fakeProbe) HasDataset() bool { return bool(p) }

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		probe       services.DatasetProbe
		wantMessage string
	}{
		{"empty session", fakeProbe(false), "no dataset loaded"},
		{"loaded session", fakeProbe(true), "dataset loaded"},
		{"no probe", nil, "no dataset loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(services.NewHealthService("v1.0.0-test", tt.probe, logger), logger)

			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Status   string                           `json:"status"`
				Version  string                           `json:"version"`
				Services map[string]services.ServiceHealth `json:"services"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "ok", body.Status)
			assert.Equal(t, "v1.0.0-test", body.Version)
			assert.Equal(t, "ready", body.Services["session"].Status)
			assert.Equal(t, tt.wantMessage, body.Services["session"].Message)
		})
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHealthHandler(services.NewHealthService("v1", nil, logger), logger)

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alive", body["status"])
	runtime, ok := body["runtime"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, runtime, "go_version")
}
