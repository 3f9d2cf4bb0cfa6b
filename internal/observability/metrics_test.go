package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIsolated(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.ObserveIngestion("created")
	first.ObserveIngestion("created")
	first.ObserveIngestion("failed")
	first.ObserveUpload(128)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.ingestions.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.ingestions.WithLabelValues("failed")))
	assert.Equal(t, 128.0, testutil.ToFloat64(first.uploadedBytes))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.uploadedBytes))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("/", "GET", "200", 0.02)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `blog_http_requests_total{code="200",method="GET",route="/"} 1`)
	assert.Contains(t, string(body), "blog_http_request_duration_seconds_bucket")
}
