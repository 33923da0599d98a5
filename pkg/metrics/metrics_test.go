package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("getattr", "ok"))

	RecordOperation("getattr", "ok", 2*time.Millisecond)
	RecordOperation("getattr", "ok", 3*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(OperationsTotal.WithLabelValues("getattr", "ok")))
}

func TestRecordDiskUsageCache(t *testing.T) {
	hits := testutil.ToFloat64(DiskUsageCacheTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(DiskUsageCacheTotal.WithLabelValues("miss"))

	RecordDiskUsageCache(true)
	RecordDiskUsageCache(false)
	RecordDiskUsageCache(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(DiskUsageCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(DiskUsageCacheTotal.WithLabelValues("miss")))
}

func TestServerExposesRegistry(t *testing.T) {
	RecordEngineRequest("list_images")
	SetOpenHandles(2)

	server := NewServer("127.0.0.1:0")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `dockerfs_engine_requests_total{call="list_images"}`)
	assert.Contains(t, body, "dockerfs_open_handles 2")
	assert.Contains(t, body, "go_goroutines")
}
