package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardMetrics_Record(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.CacheLookup("daily", true)
	m.CacheLookup("daily", false)
	m.CacheLookup("daily", false)
	m.Fetch("weekly", nil)
	m.Fetch("weekly", errors.New("boom"))
	m.BatchDone(120*time.Millisecond, true)
	m.BatchDone(time.Second, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("daily", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("daily", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("weekly", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("weekly", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches.WithLabelValues("discarded")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.batchDuration))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	m.Fetch("daily", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `weather_board_fetches_total{kind="daily",status="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
