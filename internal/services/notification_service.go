package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
)

// notificationService handles in-app notifications.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// Notify creates a notification for one user.
func (s *notificationService) Notify(userID uint, title, message, notificationType string, priority models.NotificationPriority, relatedType string, relatedID uint) error {
	n := &models.Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        notificationType,
		Priority:    priority,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	}
	if err := s.db.Create(n).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// NotifyRole creates the same notification for every active user with
// the given role.
func (s *notificationService) NotifyRole(role models.UserRole, title, message, notificationType string, priority models.NotificationPriority, relatedType string, relatedID uint) error {
	var users []models.User
	if err := s.db.Where("role = ? AND is_active = ?", role, true).Find(&users).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, user := range users {
		if err := s.Notify(user.ID, title, message, notificationType, priority, relatedType, relatedID); err != nil {
			return err
		}
	}
	return nil
}

// GetUserNotifications returns a paginated list of a user's notifications,
// newest first, optionally unread only.
func (s *notificationService) GetUserNotifications(userID uint, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		base = base.Where("is_read = ?", false)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// MarkRead marks one notification read if it belongs to the user.
func (s *notificationService) MarkRead(userID, notificationID uint) error {
	n, err := s.getUserNotification(userID, notificationID)
	if err != nil {
		return err
	}

	if err := s.db.Model(n).Update("is_read", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MarkAllRead marks all of a user's notifications read.
func (s *notificationService) MarkAllRead(userID uint) error {
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteNotification soft-deletes a notification if it belongs to the user.
func (s *notificationService) DeleteNotification(userID, notificationID uint) error {
	n, err := s.getUserNotification(userID, notificationID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(n).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *notificationService) getUserNotification(userID, notificationID uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &n, nil
}
