package api

import (
	handlers "renovation_consult_server/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up the endpoints. submitGuard runs in front of both submit routes.
func RegisterRoutes(router *gin.Engine, h *handlers.APIHandler, health *handlers.HealthHandler, submitGuard gin.HandlerFunc) {
	router.SetHTMLTemplate(handlers.PageTemplate())

	// --- Form page ---
	router.GET("/", h.ShowForm)
	router.POST("/", submitGuard, h.SubmitForm)

	// --- JSON API ---
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/options", h.ListOptions)
		apiGroup.POST("/consultations", submitGuard, h.SubmitConsultation)
	}

	// --- Probes & metrics ---
	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
