package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/services"
	"costtrak/internal/week"
)

// LaborHandler handles labor actuals and headcount plan requests.
type LaborHandler struct {
	laborService services.LaborServicer
	auditService services.AuditServicer
}

// NewLaborHandler creates a new LaborHandler.
func NewLaborHandler(laborService services.LaborServicer, auditService services.AuditServicer) *LaborHandler {
	return &LaborHandler{laborService: laborService, auditService: auditService}
}

// UpsertLaborActualRequest represents the request payload for recording
// one craft week of actual cost and hours.
type UpsertLaborActualRequest struct {
	CraftTypeID uint    `json:"craft_type_id" binding:"required"`
	WeekEnding  string  `json:"week_ending" binding:"required,date_string"`
	TotalCost   float64 `json:"total_cost" binding:"min=0"`
	TotalHours  float64 `json:"total_hours" binding:"min=0"`
}

// ImportLaborActualsRequest represents a payroll export payload. Rows are
// keyed by the payroll Tuesday week-starting date.
type ImportLaborActualsRequest struct {
	Rows []services.LaborImportRow `json:"rows" binding:"required,min=1,dive"`
}

// SaveHeadcountGridRequest represents a batch of planner headcount entries.
type SaveHeadcountGridRequest struct {
	Entries []services.HeadcountEntryInput `json:"entries" binding:"required,min=1,dive"`
}

// laborWindowRequest represents the optional date window query parameters.
type laborWindowRequest struct {
	From *string `form:"from" binding:"omitempty,date_string"`
	To   *string `form:"to" binding:"omitempty,date_string"`
}

func (r *laborWindowRequest) window() (from, to *time.Time, err error) {
	if r.From != nil && *r.From != "" {
		parsed, parseErr := week.ParseDate(*r.From)
		if parseErr != nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from date")
		}
		from = &parsed
	}
	if r.To != nil && *r.To != "" {
		parsed, parseErr := week.ParseDate(*r.To)
		if parseErr != nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to date")
		}
		to = &parsed
	}
	return from, to, nil
}

// UpsertLaborActual handles recording or correcting one craft week of actuals.
// @Summary     Record labor actuals
// @Description Record (or correct, by re-entry) actual cost and hours for one craft and week. The week-ending date snaps forward to Sunday.
// @Tags        labor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Project ID"
// @Param       request body UpsertLaborActualRequest true "Labor actuals for one craft week"
// @Success     200 {object} models.LaborActual "Recorded labor actual"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Project or craft type not found"
// @Router      /projects/{id}/labor-actuals [post]
func (h *LaborHandler) UpsertLaborActual(c *gin.Context) {
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

	var req UpsertLaborActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	weekEnding, err := week.ParseDate(req.WeekEnding)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid week_ending format"))
		return
	}

	actual, err := h.laborService.UpsertLaborActual(projectID, req.CraftTypeID, weekEnding, req.TotalCost, req.TotalHours)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPSERT_LABOR_ACTUAL", "labor_actual", actual.ID, c.ClientIP(),
		map[string]interface{}{"craft_type_id": req.CraftTypeID, "week_ending": week.FormatDate(actual.WeekEnding)})

	c.JSON(http.StatusOK, gin.H{"labor_actual": actual})
}

// GetLaborActuals handles the retrieval of a project's labor actuals.
// @Summary     List labor actuals
// @Description Get a project's labor actuals, optionally windowed by week-ending date
// @Tags        labor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  int    true  "Project ID"
// @Param       from query string false "Earliest week-ending date (YYYY-MM-DD)"
// @Param       to   query string false "Latest week-ending date (YYYY-MM-DD)"
// @Success     200 {array} models.LaborActual "Labor actuals"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/labor-actuals [get]
func (h *LaborHandler) GetLaborActuals(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req laborWindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	from, to, err := req.window()
	if err != nil {
		respondWithError(c, err)
		return
	}

	actuals, err := h.laborService.GetLaborActuals(projectID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"labor_actuals": actuals})
}

// ImportLaborActuals handles a payroll export import. The route is
// protected by an API key rather than a user token, so there is no
// authenticated user to attribute the audit entry to.
// @Summary     Import payroll labor actuals
// @Description Ingest a payroll export. Rows are keyed by the payroll Tuesday week-starting date and converted to Sunday week-ending dates on the way in. Unknown craft codes fail the whole import.
// @Tags        labor
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string                    true "Payroll import API key"
// @Param       id        path   int                       true "Project ID"
// @Param       request   body   ImportLaborActualsRequest true "Payroll export rows"
// @Success     200 {object} map[string]int "Imported row count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Project or craft code not found"
// @Router      /projects/{id}/labor-actuals/import [post]
func (h *LaborHandler) ImportLaborActuals(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ImportLaborActualsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	count, err := h.laborService.ImportLaborActuals(projectID, req.Rows)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// SaveHeadcountGrid handles saving a batch of planner headcount entries.
// @Summary     Save headcount plan
// @Description Upsert a batch of headcount entries (craft x week) for a project
// @Tags        labor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Project ID"
// @Param       request body SaveHeadcountGridRequest true "Headcount grid entries"
// @Success     200 {object} map[string]int "Saved entry count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Project or craft type not found"
// @Router      /projects/{id}/headcount [post]
func (h *LaborHandler) SaveHeadcountGrid(c *gin.Context) {
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

	var req SaveHeadcountGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	count, err := h.laborService.SaveHeadcountGrid(projectID, req.Entries)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SAVE_HEADCOUNT_GRID", "project", projectID, c.ClientIP(),
		map[string]interface{}{"entries": count})

	c.JSON(http.StatusOK, gin.H{"saved": count})
}

// GetHeadcountForecasts handles the retrieval of a project's headcount plan.
// @Summary     List headcount plan
// @Description Get a project's planned headcount entries, optionally windowed by week-ending date
// @Tags        labor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  int    true  "Project ID"
// @Param       from query string false "Earliest week-ending date (YYYY-MM-DD)"
// @Param       to   query string false "Latest week-ending date (YYYY-MM-DD)"
// @Success     200 {array} models.HeadcountForecast "Headcount entries"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/headcount [get]
func (h *LaborHandler) GetHeadcountForecasts(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req laborWindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	from, to, err := req.window()
	if err != nil {
		respondWithError(c, err)
		return
	}

	forecasts, err := h.laborService.GetHeadcountForecasts(projectID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"headcount": forecasts})
}
