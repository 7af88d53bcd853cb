package main

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/luxetrack-api/config"
	"github.com/kendall-kelly/luxetrack-api/controllers"
	"github.com/kendall-kelly/luxetrack-api/middleware"
	"github.com/kendall-kelly/luxetrack-api/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// application holds everything the HTTP layer needs. It is built once in main.
type application struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     services.Store
	ledger    *services.Ledger
	assistant *services.Assistant
	images    services.ImageService
	metrics   *services.Metrics
}

// setupRouter creates the Gin engine with middleware and every route
func setupRouter(app *application) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(app.logger),
		middleware.Recovery(app.logger),
		cors.New(corsConfig(app.cfg.CORSAllowedOrigins)),
	)

	orders := controllers.NewOrderController(app.ledger, app.logger)
	dashboard := controllers.NewDashboardController(app.ledger)
	ai := controllers.NewAIController(app.assistant, app.images, app.logger)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Order store status endpoint
		v1.GET("/store/status", controllers.StoreStatus(app.store, app.cfg.StoreDriver, app.logger))

		v1.GET("/orders", orders.ListOrders)
		v1.GET("/orders/brands", orders.ListBrands)
		v1.POST("/orders/preview", orders.PreviewOrder)
		v1.GET("/orders/:id", orders.GetOrder)
		v1.POST("/orders", orders.CreateOrder)
		v1.PUT("/orders/:id", orders.UpdateOrder)
		v1.DELETE("/orders/:id", orders.DeleteOrder)

		v1.GET("/dashboard", dashboard.GetDashboard)
		v1.GET("/dashboard/stats", dashboard.GetStats)

		v1.POST("/ai/chat", ai.Chat)
		v1.GET("/ai/chat/history", ai.ChatHistory)
		v1.POST("/ai/vision", ai.AnalyzeImage)
		v1.DELETE("/ai/vision/images/*key", ai.DeleteImage)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AddAllowHeaders(middleware.RequestIDHeader)
	corsCfg.AddExposeHeaders(middleware.RequestIDHeader)

	if len(origins) == 0 || slices.Contains(origins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "LuxeTrack API is running",
	})
}
