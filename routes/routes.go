package routes

import (
	"net/http"

	"stockwatch/config"
	"stockwatch/controllers"
	"stockwatch/middleware"
	"stockwatch/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, server *services.StockServer, hub *services.AlertHub) {
	adminController := controllers.NewAdminController(server)
	limiter := middleware.NewLoginRateLimiter()
	authController := controllers.NewAuthController(cfg, limiter)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/api/auth")
	auth.Use(middleware.LoginRateLimitMiddleware(limiter))
	{
		auth.POST("/login", authController.Login)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		admin.GET("/hello", adminController.SayHello)
		admin.GET("/lastprices", adminController.GetLastPrices)
		admin.GET("/pricehistories", adminController.GetLastPriceHistories)
		admin.GET("/quotes", adminController.GetQuotes)
		admin.POST("/stocks", adminController.AddStock)
		admin.DELETE("/stocks/:code", adminController.DeleteStock)
		admin.POST("/forceprices", adminController.ForcePrices)
	}

	if hub != nil {
		router.GET("/ws/alerts", func(c *gin.Context) {
			if err := hub.HandleConnection(c.Writer, c.Request); err != nil {
				c.Status(http.StatusServiceUnavailable)
			}
		})
	}
}
