package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/kpis", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/kpis", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/kpis", http.StatusServiceUnavailable, time.Millisecond)
	m.ObserveGeneration(nil)
	m.ObserveGeneration(errors.New("disk full"))
	m.ObserveGeneration(nil)
	m.SetDatasetRows(13140)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/kpis", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/kpis", "503")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DatasetGenerations.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetGenerations.WithLabelValues(StatusFailure)))
	assert.Equal(t, 13140.0, testutil.ToFloat64(m.DatasetRows))
}

func TestHandler(t *testing.T) {
	m := New()
	m.SetDatasetRows(42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "dataset_rows 42"))
	assert.Contains(t, body, "go_goroutines")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.ObserveGeneration(nil)
		m.SetDatasetRows(1)
	})
}
