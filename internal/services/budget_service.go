package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
)

// budgetService handles budget line items and budget-vs-actual reporting.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateLineItem creates a budget line item for a project cost category.
func (s *budgetService) CreateLineItem(projectID uint, costCategory models.CostCategory, description string, amount float64) (*models.BudgetLineItem, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	item := &models.BudgetLineItem{
		ProjectID:    projectID,
		CostCategory: costCategory,
		Description:  description,
		Amount:       amount,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// GetLineItems returns a project's budget line items.
func (s *budgetService) GetLineItems(projectID uint) ([]models.BudgetLineItem, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	var items []models.BudgetLineItem
	if err := s.db.Where("project_id = ?", projectID).Order("cost_category, id").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// UpdateLineItem updates a budget line item's description or amount.
func (s *budgetService) UpdateLineItem(itemID uint, description string, amount *float64) (*models.BudgetLineItem, error) {
	var item models.BudgetLineItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := make(map[string]interface{})
	if description != "" {
		updates["description"] = description
	}
	if amount != nil {
		updates["amount"] = *amount
	}

	if len(updates) > 0 {
		if err := s.db.Model(&item).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return &item, nil
}

// DeleteLineItem soft-deletes a budget line item.
func (s *budgetService) DeleteLineItem(itemID uint) error {
	var item models.BudgetLineItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBudgetItemNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetVsActual builds the per-category budget report for a project.
// Budget comes from line items; committed from approved and closed
// purchase orders; actual from invoiced purchase order amounts, plus
// recorded labor actual cost for the labor category. Sums stay unrounded;
// display rounding is the client's concern.
func (s *budgetService) GetBudgetVsActual(projectID uint) (*BudgetVsActualReport, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	byCategory := make(map[models.CostCategory]*CategoryActual)
	category := func(c models.CostCategory) *CategoryActual {
		ca := byCategory[c]
		if ca == nil {
			ca = &CategoryActual{CostCategory: c}
			byCategory[c] = ca
		}
		return ca
	}

	var items []models.BudgetLineItem
	if err := s.db.Where("project_id = ?", projectID).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataUnavailable, err)
	}
	for _, item := range items {
		category(item.CostCategory).Budget += item.Amount
	}

	var pos []models.PurchaseOrder
	if err := s.db.Where("project_id = ?", projectID).Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataUnavailable, err)
	}
	for _, po := range pos {
		ca := category(po.CostCategory)
		if po.Status == models.POStatusApproved || po.Status == models.POStatusClosed {
			ca.Committed += po.CommittedAmount
			ca.Actual += po.InvoicedAmount
		}
	}

	var laborCost float64
	if err := s.db.Model(&models.LaborActual{}).
		Select("COALESCE(SUM(total_cost), 0)").
		Where("project_id = ?", projectID).
		Scan(&laborCost).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataUnavailable, err)
	}
	category(models.CostCategoryLabor).Actual += laborCost

	report := &BudgetVsActualReport{
		ProjectID:   projectID,
		GeneratedAt: time.Now().UTC(),
	}
	for _, cat := range []models.CostCategory{
		models.CostCategoryLabor,
		models.CostCategoryMaterial,
		models.CostCategoryEquipment,
		models.CostCategorySubcontract,
		models.CostCategoryOther,
	} {
		ca, ok := byCategory[cat]
		if !ok {
			continue
		}
		ca.Variance = ca.Budget - ca.Actual
		if ca.Budget > 0 {
			ca.PercentUsed = ca.Actual / ca.Budget * 100
		}
		report.Categories = append(report.Categories, *ca)
		report.TotalBudget += ca.Budget
		report.TotalCommitted += ca.Committed
		report.TotalActual += ca.Actual
	}
	report.TotalVariance = report.TotalBudget - report.TotalActual

	return report, nil
}
