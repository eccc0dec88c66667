package models

import "time"

// HeadcountForecast is a planner-supplied projection of how many workers
// of a craft type are planned for a future week. One row per
// (project, craft, week); upserted on re-entry.
type HeadcountForecast struct {
	Base
	ProjectID   uint      `gorm:"not null;index:idx_headcount_key,unique" json:"project_id"`
	CraftTypeID uint      `gorm:"not null;index:idx_headcount_key,unique" json:"craft_type_id"`
	WeekEnding  time.Time `gorm:"not null;index:idx_headcount_key,unique" json:"week_ending"`
	Headcount   int       `gorm:"not null" json:"headcount"`

	// Relationships
	Project   Project   `gorm:"foreignKey:ProjectID" json:"-"`
	CraftType CraftType `gorm:"foreignKey:CraftTypeID" json:"craft_type,omitempty"`
}
