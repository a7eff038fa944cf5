package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncProviderAttempt("mock", "purpose")
	pr.IncProviderAttempt("mock", "purpose")
	pr.IncProviderRetry("mock", "purpose")
	pr.IncFallback("mock", "purpose")
	pr.ObserveGeneration(ResultSuccess, 150*time.Millisecond)
	pr.IncWriteFailure("index")

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.attempts.WithLabelValues("mock", "purpose")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.retries.WithLabelValues("mock", "purpose")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.fallbacks.WithLabelValues("mock", "purpose")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.writeFailures.WithLabelValues("index")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scribe_provider_attempts_total")
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncProviderAttempt("a", "b")
		pr.ObserveGeneration(ResultFailed, time.Second)
	})
	assert.NotPanics(t, func() {
		NoopRecorder{}.IncFallback("a", "b")
	})
}
