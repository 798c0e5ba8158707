package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("create", "ok")
	m.ObserveOperation("create", "ok")
	m.ObserveOperation("get", "not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.projectOps.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.projectOps.WithLabelValues("get", "not_found")))
}

func TestSetStoreUp(t *testing.T) {
	m := New()
	m.SetStoreUp(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeUp))
	m.SetStoreUp(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.storeUp))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("create", "ok")
		m.ObserveRequest("GET", "/", "200", 0.1)
		m.SetStoreUp(true)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/projects", "200", 0.01)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cinematic_http_requests_total")
	assert.Contains(t, rr.Body.String(), "cinematic_http_request_duration_seconds")
}
