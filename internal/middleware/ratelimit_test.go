package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestClientRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewClientRateLimiter(1, 1)
	base := time.Now()
	rl.now = func() time.Time { return base }

	rl.limiter("1.1.1.1")
	rl.limiter("2.2.2.2")
	require.Len(t, rl.limiters, 2)

	// A sweep before the idle TTL keeps recent clients.
	rl.now = func() time.Time { return base.Add(limiterSweepEvery) }
	rl.limiter("3.3.3.3")
	require.Len(t, rl.limiters, 3)

	// Past the idle TTL everything untouched since base goes away.
	rl.now = func() time.Time { return base.Add(limiterSweepEvery + limiterIdleTTL + time.Second) }
	rl.limiter("4.4.4.4")
	require.Len(t, rl.limiters, 1)
	require.Contains(t, rl.limiters, "4.4.4.4")
}

func TestClientRateLimiter_BlocksOverBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewClientRateLimiter(0.001, 1)
	router := gin.New()
	router.GET("/shared", rl.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/shared", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/shared", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}
