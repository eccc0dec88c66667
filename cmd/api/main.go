package main

import (
	"fmt"
	"net/http"
	"os"

	"costtrak/internal/config"
	"costtrak/internal/database"
	"costtrak/internal/handlers"
	"costtrak/internal/logger"
	"costtrak/internal/middleware"
	"costtrak/internal/models"
	"costtrak/internal/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "costtrak/internal/docs" // Import swagger docs
)

// @title           CostTrak API
// @version         1.0
// @description     CostTrak is a construction project cost management API: labor actuals and forecasting, purchase orders, change orders, and budget reporting.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	projectService := services.NewProjectService(db)
	craftTypeService := services.NewCraftTypeService(db)
	laborService := services.NewLaborService(db)
	forecastService := services.NewForecastService(db, appConfig.StandardHoursPerWeek, appConfig.ForecastLookbackWeeks)
	purchaseOrderService := services.NewPurchaseOrderService(db)
	notificationService := services.NewNotificationService(db)
	changeOrderService := services.NewChangeOrderService(db, notificationService)
	budgetService := services.NewBudgetService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	craftTypeHandler := handlers.NewCraftTypeHandler(craftTypeService, auditService)
	laborHandler := handlers.NewLaborHandler(laborService, auditService)
	forecastHandler := handlers.NewForecastHandler(forecastService, appConfig.ForecastLookbackWeeks, appConfig.ForecastWeeksAhead)
	purchaseOrderHandler := handlers.NewPurchaseOrderHandler(purchaseOrderService, auditService)
	changeOrderHandler := handlers.NewChangeOrderHandler(changeOrderService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Payroll import: machine auth via API key, no user token
	v1.POST("/projects/:id/labor-actuals/import",
		middleware.ImportAuthMiddleware(appConfig.PayrollImportAPIKey),
		laborHandler.ImportLaborActuals)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	canEdit := middleware.RequireRole(models.UserRoleController, models.UserRoleProjectManager)
	controllerOnly := middleware.RequireRole(models.UserRoleController)

	// Project routes
	projects := protected.Group("/projects")
	projects.POST("", controllerOnly, projectHandler.CreateProject)
	projects.GET("", projectHandler.GetProjects)
	projects.GET("/:id", projectHandler.GetProjectByID)
	projects.PUT("/:id", controllerOnly, projectHandler.UpdateProject)
	projects.DELETE("/:id", controllerOnly, projectHandler.DeleteProject)

	// Labor actuals and headcount plan
	projects.POST("/:id/labor-actuals", canEdit, laborHandler.UpsertLaborActual)
	projects.GET("/:id/labor-actuals", laborHandler.GetLaborActuals)
	projects.POST("/:id/headcount", canEdit, laborHandler.SaveHeadcountGrid)
	projects.GET("/:id/headcount", laborHandler.GetHeadcountForecasts)

	// Forecast
	projects.GET("/:id/forecast", forecastHandler.GetForecast)
	projects.GET("/:id/running-averages", forecastHandler.GetRunningAverages)

	// Purchase orders
	projects.POST("/:id/purchase-orders", canEdit, purchaseOrderHandler.CreatePurchaseOrder)
	projects.GET("/:id/purchase-orders", purchaseOrderHandler.GetProjectPurchaseOrders)
	purchaseOrders := protected.Group("/purchase-orders")
	purchaseOrders.GET("/:id", purchaseOrderHandler.GetPurchaseOrderByID)
	purchaseOrders.PUT("/:id", canEdit, purchaseOrderHandler.UpdatePurchaseOrder)
	purchaseOrders.DELETE("/:id", canEdit, purchaseOrderHandler.DeletePurchaseOrder)

	// Change orders
	projects.POST("/:id/change-orders", canEdit, changeOrderHandler.CreateChangeOrder)
	projects.GET("/:id/change-orders", changeOrderHandler.GetProjectChangeOrders)
	changeOrders := protected.Group("/change-orders")
	changeOrders.GET("/:id", changeOrderHandler.GetChangeOrderByID)
	changeOrders.PUT("/:id", canEdit, changeOrderHandler.UpdateChangeOrder)
	changeOrders.POST("/:id/approve", controllerOnly, changeOrderHandler.ApproveChangeOrder)
	changeOrders.POST("/:id/reject", controllerOnly, changeOrderHandler.RejectChangeOrder)

	// Budget
	projects.POST("/:id/budget", canEdit, budgetHandler.CreateLineItem)
	projects.GET("/:id/budget", budgetHandler.GetLineItems)
	projects.GET("/:id/budget-vs-actual", budgetHandler.GetBudgetVsActual)
	budgetItems := protected.Group("/budget-items")
	budgetItems.PUT("/:id", canEdit, budgetHandler.UpdateLineItem)
	budgetItems.DELETE("/:id", canEdit, budgetHandler.DeleteLineItem)

	// Craft type reference data
	craftTypes := protected.Group("/craft-types")
	craftTypes.POST("", controllerOnly, craftTypeHandler.CreateCraftType)
	craftTypes.GET("", craftTypeHandler.GetCraftTypes)
	craftTypes.GET("/:id", craftTypeHandler.GetCraftTypeByID)
	craftTypes.PUT("/:id", controllerOnly, craftTypeHandler.UpdateCraftType)
	craftTypes.DELETE("/:id", controllerOnly, craftTypeHandler.DeactivateCraftType)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	log.Infof("Starting CostTrak backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
