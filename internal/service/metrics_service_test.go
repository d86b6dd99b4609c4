package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/notice-suspension-api/pkg/errors"
)

func TestMetricsServiceRecordsOutcomes(t *testing.T) {
	metrics := NewMetricsService()
	store := newMemStore()
	store.addNotice(noticeAt("N1", "RD1"))
	svc, _ := newApplier(t, store, WithMetrics(metrics))

	svc.Apply(context.Background(), staffApply("N1", ts, "ACR"))
	svc.Apply(context.Background(), staffApply("N1", ts, "ACR"))
	svc.Apply(context.Background(), staffApply("N404", ts, "ACR"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.outcomes.WithLabelValues("apply", "TS", appErrors.CodeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.outcomes.WithLabelValues("apply", "TS", appErrors.CodeAlreadyApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.outcomes.WithLabelValues("apply", "TS", appErrors.CodeInvalidNotice)))
}

func TestMetricsServiceHandler(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodPost, "/api/v1/staff/suspensions", http.StatusOK, 10*time.Millisecond)
	metrics.RecordAutoRevival(TriggerExpired, OutcomeRevived)
	metrics.ObserveSweep(time.Second)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="POST",path="/api/v1/staff/suspensions",status="200"} 1`)
	assert.Contains(t, string(body), `auto_revival_total{outcome="revived",trigger="expired"} 1`)
	assert.Contains(t, string(body), "auto_revival_sweep_seconds_count 1")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	assert.NotPanics(t, func() {
		metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		metrics.RecordCacheOperation(true, time.Millisecond)
		metrics.ObserveCacheWrite(time.Millisecond)
		metrics.RecordOutcome("apply", "TS", appErrors.CodeSuccess)
		metrics.RecordAutoRevival(TriggerPayment, OutcomeFailed)
		metrics.ObserveSweep(time.Second)
	})
	assert.Nil(t, metrics.Registry())

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
