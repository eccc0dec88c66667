package models

import "time"

// COStatus represents the approval state of a change order
type COStatus string

const (
	COStatusPending  COStatus = "pending"
	COStatusApproved COStatus = "approved"
	COStatusRejected COStatus = "rejected"
)

// ChangeOrder represents a requested change to a project's contract
// value. Approval adds the amount to the project's revised contract.
type ChangeOrder struct {
	Base
	ProjectID     uint       `gorm:"not null;index:idx_co_number,unique" json:"project_id"`
	CONumber      string     `gorm:"not null;index:idx_co_number,unique" json:"co_number"`
	Description   string     `json:"description"`
	Amount        float64    `gorm:"not null" json:"amount"`
	Status        COStatus   `gorm:"not null;default:pending" json:"status"`
	SubmittedDate time.Time  `gorm:"not null" json:"submitted_date"`
	ApprovedDate  *time.Time `json:"approved_date,omitempty"`
	ApprovedBy    *uint      `json:"approved_by,omitempty"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}
