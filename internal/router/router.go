// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/handlers"
	"github.com/agrilink/agrilink-backend/internal/middleware"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	listingService := services.NewListingService(db)
	negotiationService := services.NewNegotiationService(db, listingService, notificationService)

	authService := services.NewAuthService(db, cfg)
	farmService := services.NewFarmService(db)
	budgetService := services.NewBudgetService(db, farmService)
	billingService := services.NewBillingService(db, cfg)
	adminService := services.NewAdminService(db, notificationService)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	weatherService := services.NewWeatherService(
		services.NewOpenWeatherProvider(cfg.Weather),
		redisClient,
		cfg.Weather,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService, storageService)
	negotiationHandler := handlers.NewNegotiationHandler(negotiationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	farmHandler := handlers.NewFarmHandler(farmService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	billingHandler := handlers.NewBillingHandler(billingService)
	weatherHandler := handlers.NewWeatherHandler(weatherService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(corsOrigins(cfg)))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Offer routes
		offers := v1.Group("/offers")
		{
			offers.GET("", middleware.OptionalAuth(), listingHandler.GetOffers)
			offers.GET("/:id", middleware.OptionalAuth(), listingHandler.GetOffer)

			protected := offers.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", listingHandler.CreateOffer)
				protected.PUT("/:id", listingHandler.UpdateOffer)
				protected.DELETE("/:id", listingHandler.DeleteOffer)
			}
		}

		// Demand routes
		demands := v1.Group("/demands")
		{
			demands.GET("", middleware.OptionalAuth(), listingHandler.GetDemands)
			demands.GET("/:id", middleware.OptionalAuth(), listingHandler.GetDemand)

			protected := demands.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", listingHandler.CreateDemand)
				protected.PUT("/:id", listingHandler.UpdateDemand)
				protected.DELETE("/:id", listingHandler.DeleteDemand)
			}
		}

		// Negotiation routes
		negotiations := v1.Group("/negotiations")
		negotiations.Use(middleware.AuthRequired())
		{
			negotiations.POST("", negotiationHandler.CreateNegotiation)
			negotiations.GET("", negotiationHandler.GetNegotiations)
			negotiations.GET("/:id", negotiationHandler.GetNegotiation)
			negotiations.PUT("/:id", negotiationHandler.UpdateNegotiation)
			negotiations.DELETE("/:id", negotiationHandler.DeleteNegotiation)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		// Farm routes
		farms := v1.Group("/farms")
		farms.Use(middleware.AuthRequired())
		{
			farms.GET("", farmHandler.GetFarms)
			farms.POST("", farmHandler.CreateFarm)
			farms.GET("/:id", farmHandler.GetFarm)
			farms.DELETE("/:id", farmHandler.DeleteFarm)
			farms.POST("/:id/plots", farmHandler.AddPlot)
			farms.POST("/:id/members", farmHandler.AddMember)
			farms.DELETE("/:id/members/:userId", farmHandler.RemoveMember)
		}

		// Budget routes
		budgets := v1.Group("/budgets")
		budgets.Use(middleware.AuthRequired())
		{
			budgets.GET("", budgetHandler.GetBudgets)
			budgets.POST("", budgetHandler.CreateBudget)
			budgets.GET("/:id", budgetHandler.GetBudget)
			budgets.POST("/:id/entries", budgetHandler.AddEntry)
			budgets.DELETE("/:id/entries/:entryId", budgetHandler.DeleteEntry)
		}

		// Billing routes
		billing := v1.Group("/billing")
		billing.Use(middleware.AuthRequired())
		{
			billing.GET("/subscription", billingHandler.GetSubscription)
			billing.POST("/upgrade", billingHandler.CreateUpgradeIntent)
			billing.POST("/confirm", billingHandler.ConfirmUpgrade)
			billing.POST("/cancel", billingHandler.CancelSubscription)
		}

		// Weather routes
		weather := v1.Group("/weather")
		weather.Use(middleware.AuthRequired())
		{
			weather.GET("", weatherHandler.GetWeather)
		}

		// Upload routes
		uploads := v1.Group("/uploads")
		uploads.Use(middleware.AuthRequired())
		{
			uploads.POST("/images", middleware.UploadRateLimit(), listingHandler.UploadImages)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", getCategoriesHandler)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.GetUsers)
				adminUsers.PUT("/:id/status", adminHandler.UpdateUserStatus)
			}

			adminNegotiations := admin.Group("/negotiations")
			{
				adminNegotiations.GET("", adminHandler.GetNegotiations)
			}

			adminAudit := admin.Group("/audit-logs")
			{
				adminAudit.GET("", adminHandler.GetAuditLogs)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.Frontend.BaseURL == "" {
		return nil
	}
	return []string{cfg.Frontend.BaseURL}
}

func getCategoriesHandler(c *gin.Context) {
	categories := []map[string]interface{}{
		{"id": string(models.CategoryCrops), "name": "Crops", "icon": "wheat"},
		{"id": string(models.CategorySeeds), "name": "Seeds", "icon": "seedling"},
		{"id": string(models.CategoryFertilizer), "name": "Fertilizer", "icon": "flask"},
		{"id": string(models.CategoryEquipment), "name": "Equipment", "icon": "tractor"},
		{"id": string(models.CategoryLivestock), "name": "Livestock", "icon": "cow"},
		{"id": string(models.CategoryServices), "name": "Services", "icon": "handshake"},
		{"id": string(models.CategoryOther), "name": "Other", "icon": "box"},
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
	})
}
