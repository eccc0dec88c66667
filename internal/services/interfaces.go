package services

import (
	"time"

	"costtrak/internal/models"
	"costtrak/internal/pagination"
)

// ProjectServicer defines the contract for project-related business logic.
type ProjectServicer interface {
	CreateProject(jobNumber, name, clientName, description string, originalContract float64, startDate *time.Time) (*models.Project, error)
	GetProjects(page pagination.PageRequest, status *models.ProjectStatus) (*pagination.PageResponse[models.Project], error)
	GetProjectByID(projectID uint) (*models.Project, error)
	UpdateProject(projectID uint, name, clientName, description string, status *models.ProjectStatus, originalContract *float64) (*models.Project, error)
	DeleteProject(projectID uint) error
}

// CraftTypeServicer defines the contract for craft type reference data.
// Craft types are deactivated rather than deleted: historical actuals
// keep referring to them.
type CraftTypeServicer interface {
	CreateCraftType(name, code string, category models.CraftCategory) (*models.CraftType, error)
	GetCraftTypes(page pagination.PageRequest, includeInactive bool) (*pagination.PageResponse[models.CraftType], error)
	GetCraftTypeByID(craftTypeID uint) (*models.CraftType, error)
	UpdateCraftType(craftTypeID uint, name string, category *models.CraftCategory) (*models.CraftType, error)
	DeactivateCraftType(craftTypeID uint) error
}

// LaborImportRow is one row of a payroll export. Payroll keys its weeks
// by the Tuesday "week starting" date; the import converts to the
// canonical Sunday week-ending at this boundary and nowhere else.
type LaborImportRow struct {
	CraftCode    string  `json:"craft_code" binding:"required"`
	WeekStarting string  `json:"week_starting" binding:"required,date_string"`
	TotalCost    float64 `json:"total_cost" binding:"min=0"`
	TotalHours   float64 `json:"total_hours" binding:"min=0"`
}

// HeadcountEntryInput is one cell of the planner's headcount grid.
type HeadcountEntryInput struct {
	CraftTypeID uint   `json:"craft_type_id" binding:"required"`
	WeekEnding  string `json:"week_ending" binding:"required,date_string"`
	Headcount   int    `json:"headcount" binding:"min=0"`
}

// LaborServicer defines the contract for labor actuals and headcount plans.
type LaborServicer interface {
	UpsertLaborActual(projectID, craftTypeID uint, weekEnding time.Time, totalCost, totalHours float64) (*models.LaborActual, error)
	ImportLaborActuals(projectID uint, rows []LaborImportRow) (int, error)
	GetLaborActuals(projectID uint, from, to *time.Time) ([]models.LaborActual, error)
	SaveHeadcountGrid(projectID uint, entries []HeadcountEntryInput) (int, error)
	GetHeadcountForecasts(projectID uint, from, to *time.Time) ([]models.HeadcountForecast, error)
}

// RunningAverage is the trailing average hourly rate for one craft type,
// derived on demand from labor actuals over the lookback window. It is a
// view, never authoritative storage. AvgRate is nil when no hours
// contributed: "no data" must stay distinguishable from a $0/hr rate.
type RunningAverage struct {
	CraftTypeID    uint                 `json:"craft_type_id"`
	CraftName      string               `json:"craft_name"`
	CraftCode      string               `json:"craft_code"`
	Category       models.CraftCategory `json:"category"`
	AvgRate        *float64             `json:"avg_rate"`
	WeeksOfData    int                  `json:"weeks_of_data"`
	LastActualWeek string               `json:"last_actual_week,omitempty"`
}

// ForecastEntry is one craft's projection for one week.
type ForecastEntry struct {
	CraftTypeID uint                 `json:"craft_type_id"`
	CraftName   string               `json:"craft_name"`
	CraftCode   string               `json:"craft_code"`
	Category    models.CraftCategory `json:"category"`
	Headcount   int                  `json:"headcount"`
	Hours       float64              `json:"hours"`
	Cost        float64              `json:"cost"`
	// HasRate is false when the craft had no running-average rate and the
	// cost was projected at $0/hr. Surfaced, never silently merged.
	HasRate bool `json:"has_rate"`
}

// WeekTotals sums one week's entries.
type WeekTotals struct {
	Headcount  int     `json:"headcount"`
	TotalHours float64 `json:"total_hours"`
	TotalCost  float64 `json:"total_cost"`
}

// ForecastWeek is one week's rollup, rebuilt on every call.
type ForecastWeek struct {
	WeekEnding string          `json:"week_ending"`
	Entries    []ForecastEntry `json:"entries"`
	Totals     WeekTotals      `json:"totals"`
}

// CategorySummary rolls forecast totals up by labor category. AvgRate is
// total cost over total hours for the category, not an average of
// per-craft averages.
type CategorySummary struct {
	Category       models.CraftCategory `json:"category"`
	CraftCount     int                  `json:"craft_count"`
	TotalHeadcount int                  `json:"total_headcount"`
	TotalHours     float64              `json:"total_hours"`
	TotalCost      float64              `json:"total_cost"`
	AvgRate        float64              `json:"avg_rate"`
}

// ForecastResult is the full labor cost projection for a project.
type ForecastResult struct {
	ProjectID          uint              `json:"project_id"`
	StartDate          string            `json:"start_date"`
	WeeksAhead         int               `json:"weeks_ahead"`
	Weeks              []ForecastWeek    `json:"weeks"`
	GrandTotals        WeekTotals        `json:"grand_totals"`
	CategorySummary    []CategorySummary `json:"category_summary"`
	CraftsWithoutRates []string          `json:"crafts_without_rates"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

// ForecastServicer defines the contract for the labor forecast core:
// running-average rates and headcount-to-cost projection.
type ForecastServicer interface {
	RunningAverages(projectID uint, lookbackWeeks int) ([]RunningAverage, error)
	CalculateForecast(projectID uint, startDate *time.Time, weeksAhead int) (*ForecastResult, error)
}

// PurchaseOrderServicer defines the contract for purchase order business logic.
type PurchaseOrderServicer interface {
	CreatePurchaseOrder(projectID uint, poNumber, vendor, description string, costCategory models.CostCategory, committedAmount float64, issueDate *time.Time) (*models.PurchaseOrder, error)
	GetProjectPurchaseOrders(projectID uint, page pagination.PageRequest, status *models.POStatus) (*pagination.PageResponse[models.PurchaseOrder], error)
	GetPurchaseOrderByID(poID uint) (*models.PurchaseOrder, error)
	UpdatePurchaseOrder(poID uint, vendor, description string, committedAmount, invoicedAmount *float64, status *models.POStatus) (*models.PurchaseOrder, error)
	DeletePurchaseOrder(poID uint) error
}

// ChangeOrderServicer defines the contract for change order business logic.
type ChangeOrderServicer interface {
	CreateChangeOrder(projectID uint, coNumber, description string, amount float64, submittedDate time.Time) (*models.ChangeOrder, error)
	GetProjectChangeOrders(projectID uint, page pagination.PageRequest, status *models.COStatus) (*pagination.PageResponse[models.ChangeOrder], error)
	GetChangeOrderByID(coID uint) (*models.ChangeOrder, error)
	UpdateChangeOrder(coID uint, description string, amount *float64) (*models.ChangeOrder, error)
	ApproveChangeOrder(coID, approverID uint) (*models.ChangeOrder, error)
	RejectChangeOrder(coID, approverID uint) (*models.ChangeOrder, error)
}

// CategoryActual is budget-vs-actual data for one cost category.
type CategoryActual struct {
	CostCategory models.CostCategory `json:"cost_category"`
	Budget       float64             `json:"budget"`
	Committed    float64             `json:"committed"`
	Actual       float64             `json:"actual"`
	Variance     float64             `json:"variance"`
	PercentUsed  float64             `json:"percent_used"`
}

// BudgetVsActualReport is the per-category budget report for a project.
type BudgetVsActualReport struct {
	ProjectID      uint             `json:"project_id"`
	Categories     []CategoryActual `json:"categories"`
	TotalBudget    float64          `json:"total_budget"`
	TotalCommitted float64          `json:"total_committed"`
	TotalActual    float64          `json:"total_actual"`
	TotalVariance  float64          `json:"total_variance"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// BudgetServicer defines the contract for budget line items and reporting.
type BudgetServicer interface {
	CreateLineItem(projectID uint, costCategory models.CostCategory, description string, amount float64) (*models.BudgetLineItem, error)
	GetLineItems(projectID uint) ([]models.BudgetLineItem, error)
	UpdateLineItem(itemID uint, description string, amount *float64) (*models.BudgetLineItem, error)
	DeleteLineItem(itemID uint) error
	GetBudgetVsActual(projectID uint) (*BudgetVsActualReport, error)
}

// NotificationServicer defines the contract for in-app notifications.
type NotificationServicer interface {
	Notify(userID uint, title, message, notificationType string, priority models.NotificationPriority, relatedType string, relatedID uint) error
	NotifyRole(role models.UserRole, title, message, notificationType string, priority models.NotificationPriority, relatedType string, relatedID uint) error
	GetUserNotifications(userID uint, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
	DeleteNotification(userID, notificationID uint) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
