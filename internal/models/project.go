package models

import "time"

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Project represents a construction project being cost-managed
type Project struct {
	Base
	JobNumber        string        `gorm:"uniqueIndex;not null" json:"job_number"`
	Name             string        `gorm:"not null" json:"name"`
	ClientName       string        `json:"client_name"`
	Description      string        `json:"description"`
	Status           ProjectStatus `gorm:"not null;default:planning" json:"status"`
	OriginalContract float64       `json:"original_contract"`
	RevisedContract  float64       `json:"revised_contract"`
	StartDate        *time.Time    `json:"start_date,omitempty"`

	// Relationships
	LaborActuals       []LaborActual       `gorm:"foreignKey:ProjectID" json:"labor_actuals,omitempty"`
	HeadcountForecasts []HeadcountForecast `gorm:"foreignKey:ProjectID" json:"headcount_forecasts,omitempty"`
	PurchaseOrders     []PurchaseOrder     `gorm:"foreignKey:ProjectID" json:"purchase_orders,omitempty"`
	ChangeOrders       []ChangeOrder       `gorm:"foreignKey:ProjectID" json:"change_orders,omitempty"`
	BudgetLineItems    []BudgetLineItem    `gorm:"foreignKey:ProjectID" json:"budget_line_items,omitempty"`
}
