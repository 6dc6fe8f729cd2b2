package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tably/tably/internal/auth"
	"github.com/tably/tably/internal/middleware"
)

// NewRouter assembles the gin engine with the full middleware stack and all
// routes. registry may be nil to skip the metrics endpoint (tests).
func NewRouter(sessions *SessionHandler, payments *PaymentHandler, jwtManager *auth.JWTManager, allowOrigins []string, registry *prometheus.Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/sessions", sessions.Create)
		api.POST("/sessions/:id/join", sessions.Join)

		authed := api.Group("", middleware.RequireAuth(jwtManager))
		{
			authed.GET("/sessions/:id", sessions.View)
			authed.POST("/sessions/:id/heartbeat", sessions.Heartbeat)
			authed.POST("/sessions/:id/leave", sessions.Leave)
			authed.PUT("/sessions/:id/selection", sessions.UpdateSelection)
			authed.POST("/payments/validate", payments.Validate)
		}
	}

	return router
}
