package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
)

// craftTypeService handles craft type reference data.
type craftTypeService struct {
	db *gorm.DB
}

// NewCraftTypeService creates a new CraftTypeServicer.
func NewCraftTypeService(db *gorm.DB) CraftTypeServicer {
	return &craftTypeService{db: db}
}

// CreateCraftType creates a new craft type. Codes are stored uppercase.
func (s *craftTypeService) CreateCraftType(name, code string, category models.CraftCategory) (*models.CraftType, error) {
	craft := &models.CraftType{
		Name:     name,
		Code:     strings.ToUpper(strings.TrimSpace(code)),
		Category: category,
		IsActive: true,
	}

	if err := s.db.Create(craft).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateCraftCode
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return craft, nil
}

// GetCraftTypes returns a paginated list of craft types. Deactivated
// crafts are excluded unless includeInactive is set.
func (s *craftTypeService) GetCraftTypes(page pagination.PageRequest, includeInactive bool) (*pagination.PageResponse[models.CraftType], error) {
	page.Defaults()

	base := s.db.Model(&models.CraftType{})
	if !includeInactive {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var crafts []models.CraftType
	if err := base.Order("name").Scopes(pagination.Paginate(page)).Find(&crafts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(crafts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCraftTypeByID returns a craft type by ID.
func (s *craftTypeService) GetCraftTypeByID(craftTypeID uint) (*models.CraftType, error) {
	var craft models.CraftType
	if err := s.db.First(&craft, craftTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCraftTypeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &craft, nil
}

// UpdateCraftType updates a craft type's name or category. The code is
// immutable: historical payroll rows are keyed to it.
func (s *craftTypeService) UpdateCraftType(craftTypeID uint, name string, category *models.CraftCategory) (*models.CraftType, error) {
	craft, err := s.GetCraftTypeByID(craftTypeID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if category != nil {
		updates["category"] = *category
	}

	if len(updates) > 0 {
		if err := s.db.Model(craft).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return craft, nil
}

// DeactivateCraftType marks a craft type inactive. Craft types are never
// deleted; deactivation stops new entries while history stays intact.
func (s *craftTypeService) DeactivateCraftType(craftTypeID uint) error {
	craft, err := s.GetCraftTypeByID(craftTypeID)
	if err != nil {
		return err
	}

	if err := s.db.Model(craft).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
