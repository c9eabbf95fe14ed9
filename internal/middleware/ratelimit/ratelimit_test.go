package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, perWindow int) (*Limiter, *clock) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerWindow: perWindow, Window: time.Minute})
	t.Cleanup(rl.Stop)
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl.now = c.now
	return rl, c
}

func TestAllowWindow(t *testing.T) {
	rl, c := newTestLimiter(t, 2)

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "limits are per client")

	c.t = c.t.Add(time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"), "new window")
	assert.Equal(t, 2, rl.ActiveClients())
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, c := newTestLimiter(t, 5)
	rl.Allow("1.1.1.1")
	c.t = c.t.Add(90 * time.Second)
	rl.Allow("2.2.2.2")
	c.t = c.t.Add(time.Minute)

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddlewareOnlyLimitsConfiguredMethods(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/", nil))
		return rr
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	rr := do(http.MethodPost)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
