package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/logger"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
)

// changeOrderService handles change order business logic.
type changeOrderService struct {
	db            *gorm.DB
	notifications NotificationServicer
}

// NewChangeOrderService creates a new ChangeOrderServicer.
func NewChangeOrderService(db *gorm.DB, notifications NotificationServicer) ChangeOrderServicer {
	return &changeOrderService{db: db, notifications: notifications}
}

// CreateChangeOrder creates a new change order in pending status.
func (s *changeOrderService) CreateChangeOrder(projectID uint, coNumber, description string, amount float64, submittedDate time.Time) (*models.ChangeOrder, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	co := &models.ChangeOrder{
		ProjectID:     projectID,
		CONumber:      coNumber,
		Description:   description,
		Amount:        amount,
		Status:        models.COStatusPending,
		SubmittedDate: submittedDate,
	}

	if err := s.db.Create(co).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "A change order with this number already exists for the project")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return co, nil
}

// GetProjectChangeOrders returns a paginated list of a project's change
// orders with an optional status filter.
func (s *changeOrderService) GetProjectChangeOrders(projectID uint, page pagination.PageRequest, status *models.COStatus) (*pagination.PageResponse[models.ChangeOrder], error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.ChangeOrder{}).Where("project_id = ?", projectID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cos []models.ChangeOrder
	if err := base.Order("submitted_date").Scopes(pagination.Paginate(page)).Find(&cos).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cos, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetChangeOrderByID returns a change order by ID.
func (s *changeOrderService) GetChangeOrderByID(coID uint) (*models.ChangeOrder, error) {
	var co models.ChangeOrder
	if err := s.db.First(&co, coID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrChangeOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &co, nil
}

// UpdateChangeOrder updates a pending change order's description or amount.
func (s *changeOrderService) UpdateChangeOrder(coID uint, description string, amount *float64) (*models.ChangeOrder, error) {
	co, err := s.GetChangeOrderByID(coID)
	if err != nil {
		return nil, err
	}
	if co.Status != models.COStatusPending {
		return nil, apperrors.ErrChangeOrderNotPending
	}

	updates := make(map[string]interface{})
	if description != "" {
		updates["description"] = description
	}
	if amount != nil {
		updates["amount"] = *amount
	}

	if len(updates) > 0 {
		if err := s.db.Model(co).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return co, nil
}

// ApproveChangeOrder approves a pending change order, adding its amount
// to the project's revised contract. The status change and the contract
// adjustment commit in one transaction.
func (s *changeOrderService) ApproveChangeOrder(coID, approverID uint) (*models.ChangeOrder, error) {
	co, err := s.GetChangeOrderByID(coID)
	if err != nil {
		return nil, err
	}

	// The status update is guarded on pending inside the transaction, so
	// two concurrent approvals cannot both adjust the contract: the loser
	// matches zero rows and the whole transaction rolls back.
	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ChangeOrder{}).
			Where("id = ? AND status = ?", co.ID, models.COStatusPending).
			Updates(map[string]interface{}{
				"status":        models.COStatusApproved,
				"approved_date": now,
				"approved_by":   approverID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrChangeOrderNotPending
		}
		return tx.Model(&models.Project{}).
			Where("id = ?", co.ProjectID).
			Update("revised_contract", gorm.Expr("revised_contract + ?", co.Amount)).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	co.Status = models.COStatusApproved
	co.ApprovedDate = &now
	co.ApprovedBy = &approverID

	if err := s.notifications.NotifyRole(models.UserRoleProjectManager,
		"Change order approved",
		fmt.Sprintf("Change order %s was approved for $%.2f", co.CONumber, co.Amount),
		"change_order_approved", models.NotificationPriorityMedium,
		"change_order", co.ID); err != nil {
		// Notification failure never rolls back an approval.
		logger.Get().Errorw("failed to notify change order approval", "error", err, "change_order_id", co.ID)
	}

	return co, nil
}

// RejectChangeOrder rejects a pending change order. The project contract
// is untouched.
func (s *changeOrderService) RejectChangeOrder(coID, approverID uint) (*models.ChangeOrder, error) {
	co, err := s.GetChangeOrderByID(coID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res := s.db.Model(&models.ChangeOrder{}).
		Where("id = ? AND status = ?", co.ID, models.COStatusPending).
		Updates(map[string]interface{}{
			"status":        models.COStatusRejected,
			"approved_date": now,
			"approved_by":   approverID,
		})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrChangeOrderNotPending
	}

	co.Status = models.COStatusRejected
	co.ApprovedDate = &now
	co.ApprovedBy = &approverID
	return co, nil
}
