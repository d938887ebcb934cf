package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ovapp/sales-ledger/internal/config"
	"github.com/ovapp/sales-ledger/internal/http/middleware"
)

// NewRouter assembles the gin engine with middleware and all API routes.
func NewRouter(h *Handler, authMiddleware gin.HandlerFunc, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(authMiddleware)

	clients := api.Group("/clients")
	{
		clients.POST("", h.createClient)
		clients.GET("", h.listClients)
		clients.GET("/:id", h.getClient)
		clients.GET("/:id/stats", h.clientStats)
		clients.PUT("/:id", h.updateClient)
		clients.DELETE("/:id", h.deleteClient)
	}

	contracts := api.Group("/contracts")
	{
		contracts.POST("", h.createContract)
		contracts.GET("", h.listContracts)
		contracts.GET("/stats", h.contractStats)
		contracts.GET("/:id", h.getContract)
		contracts.PUT("/:id", h.updateContract)
		contracts.DELETE("/:id", h.deleteContract)
		contracts.POST("/:id/cancel", h.cancelContract)
		contracts.POST("/:id/reactivate", h.reactivateContract)
		contracts.POST("/:id/refresh-status", h.refreshContractStatus)
		contracts.GET("/:id/orders", h.listContractOrders)
		contracts.GET("/:id/statement", h.contractStatement)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/stats", h.orderStats)
		orders.GET("/:id", h.getOrder)
		orders.PUT("/:id", h.updateOrder)
		orders.DELETE("/:id", h.deleteOrder)
		orders.POST("/:id/deliver", h.deliverOrder)
		orders.POST("/:id/cancel", h.cancelOrder)
		orders.POST("/:id/reactivate", h.reactivateOrder)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/stats", h.dashboardStats)
		dashboard.GET("/recent", h.dashboardRecent)
		dashboard.GET("/trends", h.dashboardTrends)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", h.getSettings)
		settings.PUT("", middleware.RequireAdmin(), h.updateSettings)
		settings.POST("/reset", middleware.RequireAdmin(), h.resetSettings)
	}

	api.POST("/export", h.exportData)

	return router
}
