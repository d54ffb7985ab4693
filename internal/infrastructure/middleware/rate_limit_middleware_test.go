package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulsehub/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newLimitedRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewHTTPRateLimitMiddleware(cfg))
	router.GET("/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doGet(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestHTTPRateLimitMiddleware_DisabledPassesEverything(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = false
	router := newLimitedRouter(t, cfg)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "10.0.0.1:5000").Code)
	}
}

func TestHTTPRateLimitMiddleware_LimitsPerClient(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.HTTP.RequestsPerSecond = 1
	cfg.RateLimiting.HTTP.Burst = 1
	router := newLimitedRouter(t, cfg)

	require.Equal(t, http.StatusOK, doGet(router, "10.0.0.1:5000").Code)

	// Second immediate request from the same client is over budget.
	w := doGet(router, "10.0.0.1:5000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, doGet(router, "10.0.0.2:5000").Code)
}

func TestIPLimiters_EvictsIdleEntries(t *testing.T) {
	limiters := newIPLimiters(rate.Limit(1), 1)
	limiters.maxIdle = 10 * time.Millisecond

	limiters.get("10.0.0.1")
	time.Sleep(20 * time.Millisecond)

	// A new client triggers eviction of the stale bucket.
	limiters.get("10.0.0.2")

	_, stale := limiters.entries["10.0.0.1"]
	assert.False(t, stale)
	_, fresh := limiters.entries["10.0.0.2"]
	assert.True(t, fresh)
}
