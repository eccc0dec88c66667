package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"costtrak/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProject creates an active project with a unique job number.
func CreateTestProject(t *testing.T, db *gorm.DB) *models.Project {
	t.Helper()

	n := nextID()
	project := &models.Project{
		JobNumber:        fmt.Sprintf("JOB-%04d", n),
		Name:             fmt.Sprintf("Test Project %d", n),
		ClientName:       "Test Client",
		Status:           models.ProjectStatusActive,
		OriginalContract: 1000000,
		RevisedContract:  1000000,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTestCraftType creates an active craft type in the given category.
func CreateTestCraftType(t *testing.T, db *gorm.DB, name string, category models.CraftCategory) *models.CraftType {
	t.Helper()

	craft := &models.CraftType{
		Name:     name,
		Code:     fmt.Sprintf("CR%04d", nextID()),
		Category: category,
		IsActive: true,
	}
	if err := db.Create(craft).Error; err != nil {
		t.Fatalf("failed to create test craft type: %v", err)
	}
	return craft
}

// CreateTestLaborActual records actual cost and hours for a craft week.
func CreateTestLaborActual(t *testing.T, db *gorm.DB, projectID, craftTypeID uint, weekEnding time.Time, cost, hours float64) *models.LaborActual {
	t.Helper()

	actual := &models.LaborActual{
		ProjectID:   projectID,
		CraftTypeID: craftTypeID,
		WeekEnding:  weekEnding,
		TotalCost:   cost,
		TotalHours:  hours,
	}
	if err := db.Create(actual).Error; err != nil {
		t.Fatalf("failed to create test labor actual: %v", err)
	}
	return actual
}

// CreateTestHeadcount plans headcount for a craft week.
func CreateTestHeadcount(t *testing.T, db *gorm.DB, projectID, craftTypeID uint, weekEnding time.Time, headcount int) *models.HeadcountForecast {
	t.Helper()

	hc := &models.HeadcountForecast{
		ProjectID:   projectID,
		CraftTypeID: craftTypeID,
		WeekEnding:  weekEnding,
		Headcount:   headcount,
	}
	if err := db.Create(hc).Error; err != nil {
		t.Fatalf("failed to create test headcount entry: %v", err)
	}
	return hc
}

// CreateTestPurchaseOrder creates a purchase order in the given status.
func CreateTestPurchaseOrder(t *testing.T, db *gorm.DB, projectID uint, category models.CostCategory, status models.POStatus, committed, invoiced float64) *models.PurchaseOrder {
	t.Helper()

	po := &models.PurchaseOrder{
		ProjectID:       projectID,
		PONumber:        fmt.Sprintf("PO-%04d", nextID()),
		Vendor:          "Test Vendor",
		CostCategory:    category,
		CommittedAmount: committed,
		InvoicedAmount:  invoiced,
		Status:          status,
	}
	if err := db.Create(po).Error; err != nil {
		t.Fatalf("failed to create test purchase order: %v", err)
	}
	return po
}

// CreateTestChangeOrder creates a pending change order.
func CreateTestChangeOrder(t *testing.T, db *gorm.DB, projectID uint, amount float64) *models.ChangeOrder {
	t.Helper()

	co := &models.ChangeOrder{
		ProjectID:     projectID,
		CONumber:      fmt.Sprintf("CO-%04d", nextID()),
		Description:   "Test change order",
		Amount:        amount,
		Status:        models.COStatusPending,
		SubmittedDate: time.Now().UTC(),
	}
	if err := db.Create(co).Error; err != nil {
		t.Fatalf("failed to create test change order: %v", err)
	}
	return co
}

// CreateTestBudgetLineItem creates a budget line item for a cost category.
func CreateTestBudgetLineItem(t *testing.T, db *gorm.DB, projectID uint, category models.CostCategory, amount float64) *models.BudgetLineItem {
	t.Helper()

	item := &models.BudgetLineItem{
		ProjectID:    projectID,
		CostCategory: category,
		Description:  fmt.Sprintf("Test budget item %d", nextID()),
		Amount:       amount,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test budget line item: %v", err)
	}
	return item
}
