// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"costtrak/internal/week"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("date_string", validateDateString)
		_ = v.RegisterValidation("craft_category", validateCraftCategory)
		_ = v.RegisterValidation("project_status", validateProjectStatus)
		_ = v.RegisterValidation("po_status", validatePOStatus)
		_ = v.RegisterValidation("co_status", validateCOStatus)
		_ = v.RegisterValidation("cost_category", validateCostCategory)
		_ = v.RegisterValidation("notification_priority", validateNotificationPriority)
	}
}

// validateDateString accepts YYYY-MM-DD dates, tolerating a trailing time
// component. Handlers still normalize through week.ParseDate; this tag
// rejects garbage before it reaches a service.
func validateDateString(fl validator.FieldLevel) bool {
	return week.IsValidDateString(fl.Field().String())
}

func validateCraftCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "direct", "indirect", "staff":
		return true
	}
	return false
}

func validateProjectStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "planning", "active", "on_hold", "completed", "cancelled":
		return true
	}
	return false
}

func validatePOStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "draft", "approved", "closed", "cancelled":
		return true
	}
	return false
}

func validateCOStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "approved", "rejected":
		return true
	}
	return false
}

func validateCostCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "labor", "material", "equipment", "subcontract", "other":
		return true
	}
	return false
}

func validateNotificationPriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "low", "medium", "high":
		return true
	}
	return false
}
