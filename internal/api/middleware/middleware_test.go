package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lineupsheet/internal/api/apierr"
	"github.com/mcoot/lineupsheet/internal/metrics"
	"github.com/mcoot/lineupsheet/internal/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func send(h http.Handler, remoteAddr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lineups", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	rec := metrics.NewRecorder()
	limiter := NewRateLimiter(1, 2, false, rec)
	h := limiter.Limit(okHandler)

	assert.Equal(t, http.StatusOK, send(h, "10.0.0.1:1234", nil).Code)
	assert.Equal(t, http.StatusOK, send(h, "10.0.0.1:5678", nil).Code)

	w := send(h, "10.0.0.1:9999", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierr.CodeRateLimited, body.Error.Code)

	// Other clients keep their own budget
	assert.Equal(t, http.StatusOK, send(h, "10.0.0.2:1234", nil).Code)
}

func TestRateLimiterForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(1, 1, true, nil)
	h := limiter.Limit(okHandler)

	assert.Equal(t, http.StatusOK, send(h, "127.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}).Code)
	assert.Equal(t, http.StatusOK, send(h, "127.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.8"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(h, "127.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7"}).Code)
}

func TestRateLimiterIgnoresForwardedForUnlessTrusted(t *testing.T) {
	limiter := NewRateLimiter(1, 1, false, nil)
	h := limiter.Limit(okHandler)

	assert.Equal(t, http.StatusOK, send(h, "127.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(h, "127.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.8"}).Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 1, false, nil)
	limiter.now = func() time.Time { return now }

	send(limiter.Limit(okHandler), "10.0.0.1:1", nil)
	require.Equal(t, 1, limiter.Len())

	now = now.Add(defaultIdleTTL + time.Second)
	limiter.Cleanup()
	assert.Zero(t, limiter.Len())
}

func TestNilRateLimiterPassesThrough(t *testing.T) {
	var limiter *RateLimiter
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send(limiter.Limit(okHandler), "10.0.0.1:1", nil).Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/lineups/X/claim", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSSimpleRequest(t *testing.T) {
	w := httptest.NewRecorder()
	CORS(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryWritesJSON(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierr.CodeInternalError, body.Error.Code)
}
