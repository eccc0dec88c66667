package models

import "time"

// LaborActual records actual labor cost and hours for one craft type in
// one reporting week. WeekEnding is the Sunday that closes the week,
// stored at UTC midnight. Rows are upserted keyed on
// (project, craft, week); a row with zero hours carries cost information
// but contributes no rate signal to running averages.
type LaborActual struct {
	Base
	ProjectID   uint      `gorm:"not null;index:idx_labor_actual_key,unique" json:"project_id"`
	CraftTypeID uint      `gorm:"not null;index:idx_labor_actual_key,unique" json:"craft_type_id"`
	WeekEnding  time.Time `gorm:"not null;index:idx_labor_actual_key,unique" json:"week_ending"`
	TotalCost   float64   `gorm:"not null" json:"total_cost"`
	TotalHours  float64   `gorm:"not null" json:"total_hours"`

	// Relationships
	Project   Project   `gorm:"foreignKey:ProjectID" json:"-"`
	CraftType CraftType `gorm:"foreignKey:CraftTypeID" json:"craft_type,omitempty"`
}
