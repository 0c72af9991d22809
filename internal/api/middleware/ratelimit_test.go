package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
)

func rateLimitedRouter(bucketSize, refillRate int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		RateLimitBucketSize: bucketSize,
		RateLimitRefillRate: refillRate,
	}
	rm := middleware.NewRateLimiterMiddleware(cfg)

	r := gin.New()
	r.Use(rm.Limit())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func TestRateLimiter_AllowsWithinBucket(t *testing.T) {
	r := rateLimitedRouter(3, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_RejectsWhenBucketExhausted(t *testing.T) {
	// Refill rate of zero so the bucket never recovers during the test.
	r := rateLimitedRouter(2, 0)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiter_TracksClientsSeparately(t *testing.T) {
	r := rateLimitedRouter(1, 0)

	first := httptest.NewRecorder()
	req1, _ := http.NewRequest("GET", "/ping", nil)
	req1.RemoteAddr = "10.0.0.3:1234"
	r.ServeHTTP(first, req1)
	assert.Equal(t, http.StatusOK, first.Code)

	// The first client is out of tokens but a new client is not.
	second := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/ping", nil)
	req2.RemoteAddr = "10.0.0.4:1234"
	r.ServeHTTP(second, req2)
	assert.Equal(t, http.StatusOK, second.Code)
}
