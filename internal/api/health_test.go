package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func serveReady(t *testing.T, h *HealthHandler) readinessResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ready", h.Ready)
	router.GET("/health", h.Health)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestReady(t *testing.T) {
	t.Run("redis disabled", func(t *testing.T) {
		resp := serveReady(t, NewHealthHandler(nil))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "disabled", resp.Checks["redis"].Status)
	})
	t.Run("redis ok", func(t *testing.T) {
		resp := serveReady(t, NewHealthHandler(fakePinger{}))
		assert.Equal(t, "ok", resp.Checks["redis"].Status)
	})
	t.Run("redis down degrades only", func(t *testing.T) {
		resp := serveReady(t, NewHealthHandler(fakePinger{err: errors.New("connection refused")}))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "degraded", resp.Checks["redis"].Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	})
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthHandler(nil).Health)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
