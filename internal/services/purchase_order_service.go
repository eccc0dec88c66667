package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
)

// purchaseOrderService handles purchase order business logic.
type purchaseOrderService struct {
	db *gorm.DB
}

// NewPurchaseOrderService creates a new PurchaseOrderServicer.
func NewPurchaseOrderService(db *gorm.DB) PurchaseOrderServicer {
	return &purchaseOrderService{db: db}
}

// CreatePurchaseOrder creates a new purchase order in draft status.
func (s *purchaseOrderService) CreatePurchaseOrder(projectID uint, poNumber, vendor, description string, costCategory models.CostCategory, committedAmount float64, issueDate *time.Time) (*models.PurchaseOrder, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	po := &models.PurchaseOrder{
		ProjectID:       projectID,
		PONumber:        poNumber,
		Vendor:          vendor,
		Description:     description,
		CostCategory:    costCategory,
		CommittedAmount: committedAmount,
		Status:          models.POStatusDraft,
		IssueDate:       issueDate,
	}

	if err := s.db.Create(po).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicatePONumber
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return po, nil
}

// GetProjectPurchaseOrders returns a paginated list of a project's
// purchase orders with an optional status filter.
func (s *purchaseOrderService) GetProjectPurchaseOrders(projectID uint, page pagination.PageRequest, status *models.POStatus) (*pagination.PageResponse[models.PurchaseOrder], error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.PurchaseOrder{}).Where("project_id = ?", projectID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var pos []models.PurchaseOrder
	if err := base.Order("po_number").Scopes(pagination.Paginate(page)).Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(pos, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPurchaseOrderByID returns a purchase order by ID.
func (s *purchaseOrderService) GetPurchaseOrderByID(poID uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := s.db.First(&po, poID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPurchaseOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &po, nil
}

// UpdatePurchaseOrder updates an existing purchase order. Closed purchase
// orders are immutable.
func (s *purchaseOrderService) UpdatePurchaseOrder(poID uint, vendor, description string, committedAmount, invoicedAmount *float64, status *models.POStatus) (*models.PurchaseOrder, error) {
	po, err := s.GetPurchaseOrderByID(poID)
	if err != nil {
		return nil, err
	}
	if po.Status == models.POStatusClosed && (status == nil || *status == models.POStatusClosed) {
		return nil, apperrors.ErrPurchaseOrderClosed
	}

	updates := make(map[string]interface{})
	if vendor != "" {
		updates["vendor"] = vendor
	}
	if description != "" {
		updates["description"] = description
	}
	if committedAmount != nil {
		updates["committed_amount"] = *committedAmount
	}
	if invoicedAmount != nil {
		updates["invoiced_amount"] = *invoicedAmount
	}
	if status != nil {
		updates["status"] = *status
	}

	if len(updates) > 0 {
		if err := s.db.Model(po).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return po, nil
}

// DeletePurchaseOrder soft-deletes a purchase order.
func (s *purchaseOrderService) DeletePurchaseOrder(poID uint) error {
	po, err := s.GetPurchaseOrderByID(poID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(po).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
