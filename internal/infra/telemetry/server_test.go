package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerReportsStatus(t *testing.T) {
	var probed bool
	handler := HealthHandler(func(_ context.Context, probe bool) HealthReport {
		probed = probe
		if probe {
			return HealthReport{Status: "degraded", Probed: true, Error: "unauthorized"}
		}
		return HealthReport{Status: "ok"}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, probed)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/healthz?probe=true", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.True(t, probed)

	var report HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, "unauthorized", report.Error)
}

func TestMountObservabilityServesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewPrometheusMetrics(registry).ObserveToolCall("diagnostics", 0, nil)

	r := chi.NewRouter()
	MountObservability(r, registry, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "raindropmcp_tool_calls_total")
}
