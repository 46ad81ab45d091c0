package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"renovation_consult_server/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRedisLimiter(t *testing.T) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimiter(client), mr
}

func serve(router *gin.Engine, method, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	limiter, mr := newRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, err := limiter.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := limiter.Allow(ctx, "other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other)

	assert.True(t, mr.Exists("k"))
	assert.NoError(t, limiter.Ping(ctx))
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, _ := newRedisLimiter(t)

	router := gin.New()
	router.POST("/submit", RateLimit(limiter, 2, zaptest.NewLogger(t), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/submit", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/submit", "10.0.0.1:1234").Code)

	w := serve(router, http.MethodPost, "/submit", "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limited")

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/submit", "10.0.0.2:1234").Code)
}

func TestRedisRateLimiter_RejectedAttemptsDoNotFillWindow(t *testing.T) {
	limiter, _ := newRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}
	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	count, err := limiter.client.ZCard(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRateLimit_CustomRejection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, _ := newRedisLimiter(t)

	router := gin.New()
	reached := 0
	onLimited := func(c *gin.Context) {
		c.String(http.StatusTooManyRequests, "slow down")
	}
	router.POST("/", RateLimit(limiter, 1, zaptest.NewLogger(t), onLimited), func(c *gin.Context) {
		reached++
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/", "").Code)
	w := serve(router, http.MethodPost, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "slow down", w.Body.String())
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, 1, reached)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/submit", RateLimit(brokenLimiter{}, 1, zaptest.NewLogger(t), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/submit", "").Code)
	}
}

func TestRateLimit_DisabledWithoutLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/submit", RateLimit(nil, 1, nil, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/submit", "").Code)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = logger.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/", "")
		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, seen)
	})
	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("any origin by default", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(nil))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
	t.Run("restricted origins", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"https://ok.example"}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://ok.example")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://ok.example", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestAccessLogAndMetrics_PassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), AccessLog(zaptest.NewLogger(t)), Metrics())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	assert.Equal(t, http.StatusTeapot, serve(router, http.MethodGet, "/x", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/missing", "").Code)
}
