package models

// CostCategory groups costs for budget-vs-actual rollups
type CostCategory string

const (
	CostCategoryLabor       CostCategory = "labor"
	CostCategoryMaterial    CostCategory = "material"
	CostCategoryEquipment   CostCategory = "equipment"
	CostCategorySubcontract CostCategory = "subcontract"
	CostCategoryOther       CostCategory = "other"
)

// BudgetLineItem represents one budgeted amount for a project cost category
type BudgetLineItem struct {
	Base
	ProjectID    uint         `gorm:"not null;index" json:"project_id"`
	CostCategory CostCategory `gorm:"not null" json:"cost_category"`
	Description  string       `json:"description"`
	Amount       float64      `gorm:"not null" json:"amount"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}
