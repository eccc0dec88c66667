package models

// NotificationPriority represents how urgently a notification should surface
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification represents an in-app message for a user
type Notification struct {
	Base
	UserID      uint                 `gorm:"not null;index" json:"user_id"`
	Title       string               `gorm:"not null" json:"title"`
	Message     string               `json:"message"`
	Type        string               `gorm:"not null" json:"type"`
	Priority    NotificationPriority `gorm:"not null;default:medium" json:"priority"`
	IsRead      bool                 `gorm:"default:false" json:"is_read"`
	RelatedType string               `json:"related_type,omitempty"`
	RelatedID   uint                 `json:"related_id,omitempty"`
}
