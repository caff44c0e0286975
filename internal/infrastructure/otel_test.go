package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel(t *testing.T) {
	cfg := config.TelemetryConfig{
		ServiceName:   "dashboard-test",
		EnableTracing: true,
		EnableMetrics: true,
	}

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Metrics)
	require.NotNil(t, providers.PrometheusHTTP)

	ctx := context.Background()
	providers.Metrics.RecordDatasetLoaded(ctx, "sample")
	providers.Metrics.RecordAnalysis(ctx, "cluster", 150*time.Millisecond, nil)
	providers.Metrics.RecordAnalysis(ctx, "distribution", time.Millisecond, errors.New("boom"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datasets_loaded_total")
	assert.Contains(t, rec.Body.String(), "analyses_run_total")
}

func TestInitializeOTelDisabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{ServiceName: "off"}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Metrics)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestNoopProviders(t *testing.T) {
	p := NoopProviders(nil)
	require.NotNil(t, p.Metrics)

	ctx, span := p.Tracer.Start(context.Background(), "noop")
	defer span.End()
	p.Metrics.RecordAnalysis(ctx, "timeseries", time.Second, nil)
	RecordError(ctx, errors.New("ignored"))

	var nilMetrics *BusinessMetrics
	nilMetrics.RecordAnalysis(ctx, "x", 0, nil)
	nilMetrics.RecordDatasetLoaded(ctx, "x")
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "analysis.cluster")
	defer span.End()
	assert.NotNil(t, ctx)
}
