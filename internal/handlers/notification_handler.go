package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/pagination"
	"costtrak/internal/services"
)

// NotificationHandler handles in-app notification requests.
type NotificationHandler struct {
	notificationService services.NotificationServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotificationsRequest represents the query parameters for listing notifications.
type ListNotificationsRequest struct {
	pagination.PageRequest
	UnreadOnly bool `form:"unread_only"`
}

// GetNotifications handles the retrieval of the authenticated user's notifications.
// @Summary     List notifications
// @Description Get a paginated list of the authenticated user's notifications
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int  false "Page number (default 1)"
// @Param       page_size   query int  false "Items per page (default 20, max 100)"
// @Param       unread_only query bool false "Only unread notifications"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.notificationService.GetUserNotifications(userID, req.PageRequest, req.UnreadOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkRead handles marking one notification as read.
// @Summary     Mark notification read
// @Description Mark one of the authenticated user's notifications as read
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Notification ID"
// @Success     200 {object} map[string]string "Confirmation"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Router      /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles marking all of the user's notifications as read.
// @Summary     Mark all notifications read
// @Description Mark all of the authenticated user's notifications as read
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Confirmation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.MarkAllRead(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// DeleteNotification handles deleting a notification.
// @Summary     Delete notification
// @Description Delete one of the authenticated user's notifications
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Notification ID"
// @Success     200 {object} map[string]string "Deletion confirmation"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Router      /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.DeleteNotification(userID, notificationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
