package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"costtrak/internal/config"
	"costtrak/internal/handlers"
	"costtrak/internal/logger"
	"costtrak/internal/middleware"
	"costtrak/internal/models"
	"costtrak/internal/services"
	"costtrak/internal/validator"
)

const (
	testJWTSecret    = "integration-test-secret"
	testImportAPIKey = "integration-test-import-key"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()

	// The auth middleware validates tokens against the configured shared
	// secret, so pin it before the config singleton loads.
	os.Setenv("JWT_SECRET", testJWTSecret)
	os.Setenv("PAYROLL_IMPORT_API_KEY", testImportAPIKey)
	if _, err := config.Load(); err != nil {
		panic(err)
	}
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Project{},
		&models.CraftType{},
		&models.LaborActual{},
		&models.HeadcountForecast{},
		&models.PurchaseOrder{},
		&models.ChangeOrder{},
		&models.BudgetLineItem{},
		&models.Notification{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite, with the same route layout as the server entrypoint.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	appConfig := config.Get()

	// Services
	auditService := services.NewAuditService(db)
	projectService := services.NewProjectService(db)
	craftTypeService := services.NewCraftTypeService(db)
	laborService := services.NewLaborService(db)
	forecastService := services.NewForecastService(db, appConfig.StandardHoursPerWeek, appConfig.ForecastLookbackWeeks)
	purchaseOrderService := services.NewPurchaseOrderService(db)
	notificationService := services.NewNotificationService(db)
	changeOrderService := services.NewChangeOrderService(db, notificationService)
	budgetService := services.NewBudgetService(db)

	// Handlers
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	craftTypeHandler := handlers.NewCraftTypeHandler(craftTypeService, auditService)
	laborHandler := handlers.NewLaborHandler(laborService, auditService)
	forecastHandler := handlers.NewForecastHandler(forecastService, appConfig.ForecastLookbackWeeks, appConfig.ForecastWeeksAhead)
	purchaseOrderHandler := handlers.NewPurchaseOrderHandler(purchaseOrderService, auditService)
	changeOrderHandler := handlers.NewChangeOrderHandler(changeOrderService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	v1.POST("/projects/:id/labor-actuals/import",
		middleware.ImportAuthMiddleware(appConfig.PayrollImportAPIKey),
		laborHandler.ImportLaborActuals)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	canEdit := middleware.RequireRole(models.UserRoleController, models.UserRoleProjectManager)
	controllerOnly := middleware.RequireRole(models.UserRoleController)

	projects := protected.Group("/projects")
	projects.POST("", controllerOnly, projectHandler.CreateProject)
	projects.GET("", projectHandler.GetProjects)
	projects.GET("/:id", projectHandler.GetProjectByID)
	projects.PUT("/:id", controllerOnly, projectHandler.UpdateProject)
	projects.DELETE("/:id", controllerOnly, projectHandler.DeleteProject)

	projects.POST("/:id/labor-actuals", canEdit, laborHandler.UpsertLaborActual)
	projects.GET("/:id/labor-actuals", laborHandler.GetLaborActuals)
	projects.POST("/:id/headcount", canEdit, laborHandler.SaveHeadcountGrid)
	projects.GET("/:id/headcount", laborHandler.GetHeadcountForecasts)

	projects.GET("/:id/forecast", forecastHandler.GetForecast)
	projects.GET("/:id/running-averages", forecastHandler.GetRunningAverages)

	projects.POST("/:id/purchase-orders", canEdit, purchaseOrderHandler.CreatePurchaseOrder)
	projects.GET("/:id/purchase-orders", purchaseOrderHandler.GetProjectPurchaseOrders)
	purchaseOrders := protected.Group("/purchase-orders")
	purchaseOrders.GET("/:id", purchaseOrderHandler.GetPurchaseOrderByID)
	purchaseOrders.PUT("/:id", canEdit, purchaseOrderHandler.UpdatePurchaseOrder)
	purchaseOrders.DELETE("/:id", canEdit, purchaseOrderHandler.DeletePurchaseOrder)

	projects.POST("/:id/change-orders", canEdit, changeOrderHandler.CreateChangeOrder)
	projects.GET("/:id/change-orders", changeOrderHandler.GetProjectChangeOrders)
	changeOrders := protected.Group("/change-orders")
	changeOrders.GET("/:id", changeOrderHandler.GetChangeOrderByID)
	changeOrders.PUT("/:id", canEdit, changeOrderHandler.UpdateChangeOrder)
	changeOrders.POST("/:id/approve", controllerOnly, changeOrderHandler.ApproveChangeOrder)
	changeOrders.POST("/:id/reject", controllerOnly, changeOrderHandler.RejectChangeOrder)

	projects.POST("/:id/budget", canEdit, budgetHandler.CreateLineItem)
	projects.GET("/:id/budget", budgetHandler.GetLineItems)
	projects.GET("/:id/budget-vs-actual", budgetHandler.GetBudgetVsActual)
	budgetItems := protected.Group("/budget-items")
	budgetItems.PUT("/:id", canEdit, budgetHandler.UpdateLineItem)
	budgetItems.DELETE("/:id", canEdit, budgetHandler.DeleteLineItem)

	craftTypes := protected.Group("/craft-types")
	craftTypes.POST("", controllerOnly, craftTypeHandler.CreateCraftType)
	craftTypes.GET("", craftTypeHandler.GetCraftTypes)
	craftTypes.GET("/:id", craftTypeHandler.GetCraftTypeByID)
	craftTypes.PUT("/:id", controllerOnly, craftTypeHandler.UpdateCraftType)
	craftTypes.DELETE("/:id", controllerOnly, craftTypeHandler.DeactivateCraftType)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	return &testApp{DB: db, Router: router}
}

// createUser provisions a user row and mints an access token for them, the
// way the external identity provider would.
func (app *testApp) createUser(t *testing.T, role models.UserRole) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", dbCounter.Add(1)),
		Role:     role,
		IsActive: true,
	}
	if err := app.DB.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user, mintToken(t, user.ID, user.Email, role)
}

// mintToken signs an access token with the shared secret, standing in for
// the external identity provider.
func mintToken(t *testing.T, userID uint, email string, role models.UserRole) string {
	t.Helper()

	claims := &middleware.JWTClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// importRequest makes a payroll import request authenticated with an API key.
func (app *testApp) importRequest(path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// assertErrorCode fails unless the response carries the given error code.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got: %s", rec.Body.String())
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}
