package models

// CraftCategory groups craft types for budget rollups
type CraftCategory string

const (
	CraftCategoryDirect   CraftCategory = "direct"
	CraftCategoryIndirect CraftCategory = "indirect"
	CraftCategoryStaff    CraftCategory = "staff"
)

// CraftType represents a labor classification (e.g. Carpenter, Foreman).
// Reference data: craft types are deactivated, never deleted.
type CraftType struct {
	Base
	Name     string        `gorm:"not null" json:"name"`
	Code     string        `gorm:"uniqueIndex;not null" json:"code"`
	Category CraftCategory `gorm:"not null" json:"category"`
	IsActive bool          `gorm:"default:true" json:"is_active"`

	// Relationships
	LaborActuals       []LaborActual       `gorm:"foreignKey:CraftTypeID" json:"labor_actuals,omitempty"`
	HeadcountForecasts []HeadcountForecast `gorm:"foreignKey:CraftTypeID" json:"headcount_forecasts,omitempty"`
}
