package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegistryExposesObservations(t *testing.T) {
	r := New()
	r.ObserveHTTP("/savings", "GET", 200, 15*time.Millisecond)
	r.ObserveStore("read", "budget", nil, time.Millisecond)
	r.ObserveStore("append", "savings", errors.New("boom"), time.Millisecond)
	r.CacheHit("budget")
	r.CacheMiss("income")
	r.RowSynced(nil)

	out := scrape(t, r)
	assert.Contains(t, out, `fintrack_http_requests_total{code="200",method="GET",route="/savings"} 1`)
	assert.Contains(t, out, `fintrack_store_operations_total{op="read",result="ok",sheet="budget"} 1`)
	assert.Contains(t, out, `fintrack_store_operations_total{op="append",result="error",sheet="savings"} 1`)
	assert.Contains(t, out, `fintrack_cache_hits_total{sheet="budget"} 1`)
	assert.Contains(t, out, `fintrack_cache_misses_total{sheet="income"} 1`)
	assert.Contains(t, out, `fintrack_rows_synced_total{result="ok"} 1`)
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveHTTP("/", "GET", 200, time.Millisecond)
		r.ObserveStore("read", "budget", nil, time.Millisecond)
		r.CacheHit("budget")
		r.CacheMiss("budget")
		r.RowSynced(nil)
	})
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
