package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
	"costtrak/internal/services"
	"costtrak/internal/week"
)

// ProjectHandler handles project-related requests.
type ProjectHandler struct {
	projectService services.ProjectServicer
	auditService   services.AuditServicer
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService services.ProjectServicer, auditService services.AuditServicer) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, auditService: auditService}
}

// CreateProjectRequest represents the request payload for creating a project.
type CreateProjectRequest struct {
	JobNumber        string  `json:"job_number" binding:"required,min=1,max=50"`
	Name             string  `json:"name" binding:"required,min=1,max=200"`
	ClientName       string  `json:"client_name" binding:"max=200"`
	Description      string  `json:"description" binding:"max=1000"`
	OriginalContract float64 `json:"original_contract" binding:"gte=0"`
	StartDate        *string `json:"start_date" binding:"omitempty,date_string"`
}

// UpdateProjectRequest represents the request payload for updating a project.
type UpdateProjectRequest struct {
	Name             string   `json:"name" binding:"omitempty,min=1,max=200"`
	ClientName       string   `json:"client_name" binding:"omitempty,max=200"`
	Description      string   `json:"description" binding:"omitempty,max=1000"`
	Status           *string  `json:"status" binding:"omitempty,project_status"`
	OriginalContract *float64 `json:"original_contract" binding:"omitempty,gte=0"`
}

// ListProjectsRequest represents the query parameters for listing projects.
type ListProjectsRequest struct {
	pagination.PageRequest
	Status *string `form:"status" binding:"omitempty,project_status"`
}

// CreateProject handles the creation of a new project.
// @Summary     Create a project
// @Description Create a new construction project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateProjectRequest true "Project details"
// @Success     201 {object} models.Project "Project created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate job number"
// @Router      /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var startDate *time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		parsed, parseErr := week.ParseDate(*req.StartDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format"))
			return
		}
		startDate = &parsed
	}

	project, err := h.projectService.CreateProject(
		req.JobNumber,
		req.Name,
		req.ClientName,
		req.Description,
		req.OriginalContract,
		startDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PROJECT", "project", project.ID, c.ClientIP(),
		map[string]interface{}{"job_number": req.JobNumber, "name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// GetProjects handles the retrieval of projects.
// @Summary     List projects
// @Description Get a paginated list of projects with an optional status filter
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       status    query string false "Filter by status (active, completed, on_hold)"
// @Success     200 {object} pagination.PageResponse[models.Project] "Paginated projects"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /projects [get]
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	var req ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.ProjectStatus
	if req.Status != nil {
		s := models.ProjectStatus(*req.Status)
		status = &s
	}

	result, err := h.projectService.GetProjects(req.PageRequest, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProjectByID handles the retrieval of a specific project.
// @Summary     Get project by ID
// @Description Get a specific project by ID
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Project ID"
// @Success     200 {object} models.Project "Project details"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id} [get]
func (h *ProjectHandler) GetProjectByID(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	project, err := h.projectService.GetProjectByID(projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// UpdateProject handles updating a project.
// @Summary     Update project
// @Description Update an existing project. Changing the original contract re-bases the revised contract.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Project ID"
// @Param       request body UpdateProjectRequest true "Updated project details"
// @Success     200 {object} models.Project "Updated project"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.ProjectStatus
	if req.Status != nil {
		s := models.ProjectStatus(*req.Status)
		status = &s
	}

	project, err := h.projectService.UpdateProject(projectID, req.Name, req.ClientName, req.Description, status, req.OriginalContract)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PROJECT", "project", projectID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// DeleteProject handles deleting a project.
// @Summary     Delete project
// @Description Soft-delete a project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Project ID"
// @Success     200 {object} map[string]string "Deletion confirmation"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.projectService.DeleteProject(projectID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PROJECT", "project", projectID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
