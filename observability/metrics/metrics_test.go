package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHTTPObserveSplitsOutcomes(t *testing.T) {
	m := HTTP()
	before := testutil.ToFloat64(m.errors.WithLabelValues("/v1/claims", http.MethodPost, "409"))

	m.Observe("/v1/claims", http.MethodPost, http.StatusOK, 5*time.Millisecond)
	m.Observe("/v1/claims", http.MethodPost, http.StatusConflict, time.Millisecond)

	require.Equal(t, before+1, testutil.ToFloat64(m.errors.WithLabelValues("/v1/claims", http.MethodPost, "409")))
	require.GreaterOrEqual(t, testutil.ToFloat64(m.requests.WithLabelValues("/v1/claims", http.MethodPost, "success")), 1.0)
}

func TestRewardsCounters(t *testing.T) {
	m := Rewards()
	before := testutil.ToFloat64(m.claims.WithLabelValues("escrow"))
	m.ObserveClaim("escrow", 25)
	require.Equal(t, before+1, testutil.ToFloat64(m.claims.WithLabelValues("escrow")))

	m.SetCurrentEpoch(17)
	require.Equal(t, 17.0, testutil.ToFloat64(m.currentEpoch))

	var nilMetrics *HTTPMetrics
	nilMetrics.Observe("", http.MethodGet, http.StatusOK, 0)
	nilMetrics.RecordThrottle("")
}
