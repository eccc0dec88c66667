package models

// UserRole represents the access level of a user. Identity itself is
// provisioned by the external auth provider; this table mirrors it.
type UserRole string

const (
	UserRoleController     UserRole = "controller"
	UserRoleProjectManager UserRole = "project_manager"
	UserRoleViewer         UserRole = "viewer"
)

// User represents an externally-provisioned user of the system
type User struct {
	Base
	Email     string   `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      UserRole `gorm:"not null;default:viewer" json:"role"`
	IsActive  bool     `gorm:"default:true" json:"is_active"`

	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}
