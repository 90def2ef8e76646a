package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CollectorsCount(t *testing.T) {
	m := New()

	m.EventsPublished.WithLabelValues("NEW_MESSAGE").Inc()
	m.EventsPublished.WithLabelValues("NEW_MESSAGE").Inc()
	m.AIRequests.WithLabelValues("translate", "error").Inc()
	m.WSConnections.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("NEW_MESSAGE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AIRequests.WithLabelValues("translate", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.WSConnections))
}

func TestHandler_ServesTextFormat(t *testing.T) {
	m := New()
	m.HTTPRateLimited.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "sigmax_http_rate_limited_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.HTTPRateLimited.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.HTTPRateLimited))
}
