package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
)

// projectService handles project-related business logic.
type projectService struct {
	db *gorm.DB
}

// NewProjectService creates a new ProjectServicer.
func NewProjectService(db *gorm.DB) ProjectServicer {
	return &projectService{db: db}
}

// CreateProject creates a new project. The revised contract starts equal
// to the original; approved change orders move it later.
func (s *projectService) CreateProject(jobNumber, name, clientName, description string, originalContract float64, startDate *time.Time) (*models.Project, error) {
	project := &models.Project{
		JobNumber:        strings.TrimSpace(jobNumber),
		Name:             name,
		ClientName:       clientName,
		Description:      description,
		Status:           models.ProjectStatusPlanning,
		OriginalContract: originalContract,
		RevisedContract:  originalContract,
		StartDate:        startDate,
	}

	if err := s.db.Create(project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateJobNumber
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return project, nil
}

// GetProjects returns a paginated list of projects with an optional status filter.
func (s *projectService) GetProjects(page pagination.PageRequest, status *models.ProjectStatus) (*pagination.PageResponse[models.Project], error) {
	page.Defaults()

	base := s.db.Model(&models.Project{})
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var projects []models.Project
	if err := base.Order("job_number").Scopes(pagination.Paginate(page)).Find(&projects).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(projects, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProjectByID returns a project by ID.
func (s *projectService) GetProjectByID(projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &project, nil
}

// UpdateProject updates an existing project's fields. Changing the
// original contract re-bases the revised contract by the same delta.
func (s *projectService) UpdateProject(projectID uint, name, clientName, description string, status *models.ProjectStatus, originalContract *float64) (*models.Project, error) {
	project, err := s.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if clientName != "" {
		updates["client_name"] = clientName
	}
	if description != "" {
		updates["description"] = description
	}
	if status != nil {
		updates["status"] = *status
	}
	if originalContract != nil {
		delta := *originalContract - project.OriginalContract
		updates["original_contract"] = *originalContract
		updates["revised_contract"] = project.RevisedContract + delta
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return project, nil
}

// DeleteProject soft-deletes a project.
func (s *projectService) DeleteProject(projectID uint) error {
	project, err := s.GetProjectByID(projectID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(project).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// isUniqueViolation recognizes unique-constraint failures from both the
// postgres and sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
