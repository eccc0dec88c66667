package models

import "time"

// POStatus represents the lifecycle state of a purchase order
type POStatus string

const (
	POStatusDraft     POStatus = "draft"
	POStatusApproved  POStatus = "approved"
	POStatusClosed    POStatus = "closed"
	POStatusCancelled POStatus = "cancelled"
)

// PurchaseOrder represents a commitment to a vendor against a project
type PurchaseOrder struct {
	Base
	ProjectID       uint         `gorm:"not null;index:idx_po_number,unique" json:"project_id"`
	PONumber        string       `gorm:"not null;index:idx_po_number,unique" json:"po_number"`
	Vendor          string       `gorm:"not null" json:"vendor"`
	Description     string       `json:"description"`
	CostCategory    CostCategory `gorm:"not null" json:"cost_category"`
	CommittedAmount float64      `gorm:"not null" json:"committed_amount"`
	InvoicedAmount  float64      `gorm:"not null;default:0" json:"invoiced_amount"`
	Status          POStatus     `gorm:"not null;default:draft" json:"status"`
	IssueDate       *time.Time   `json:"issue_date,omitempty"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}
