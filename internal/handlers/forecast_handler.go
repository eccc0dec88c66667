package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/services"
	"costtrak/internal/week"
)

// ForecastHandler handles labor forecast requests.
type ForecastHandler struct {
	forecastService services.ForecastServicer
	lookbackWeeks   int
	weeksAhead      int
}

// NewForecastHandler creates a new ForecastHandler. lookbackWeeks and
// weeksAhead are the configured defaults applied when the query string
// leaves them out.
func NewForecastHandler(forecastService services.ForecastServicer, lookbackWeeks, weeksAhead int) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService, lookbackWeeks: lookbackWeeks, weeksAhead: weeksAhead}
}

// ForecastRequest represents the query parameters for a forecast.
type ForecastRequest struct {
	StartDate  *string `form:"start_date" binding:"omitempty,date_string"`
	WeeksAhead *int    `form:"weeks_ahead" binding:"omitempty,min=1,max=52"`
}

// RunningAveragesRequest represents the query parameters for running averages.
type RunningAveragesRequest struct {
	LookbackWeeks *int `form:"lookback_weeks" binding:"omitempty,min=1,max=52"`
}

// GetForecast handles the calculation of a project's labor forecast.
// @Summary     Get labor forecast
// @Description Project labor cost week by week: planned headcount times standard hours times the trailing average rate per craft. Recomputed on every call.
// @Tags        forecast
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id          path  int    true  "Project ID"
// @Param       start_date  query string false "First week to project (YYYY-MM-DD, snaps to the next Sunday; default next week)"
// @Param       weeks_ahead query int    false "Number of weeks to project (default 12)"
// @Success     200 {object} services.ForecastResult "Labor forecast"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     503 {object} ErrorResponse "Underlying data unavailable"
// @Router      /projects/{id}/forecast [get]
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
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

	weeksAhead := h.weeksAhead
	if req.WeeksAhead != nil {
		weeksAhead = *req.WeeksAhead
	}

	result, err := h.forecastService.CalculateForecast(projectID, startDate, weeksAhead)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRunningAverages handles the retrieval of trailing average rates.
// @Summary     Get running average rates
// @Description Trailing average hourly rate per craft type over the lookback window. Crafts with no contributing hours report a null rate, never zero.
// @Tags        forecast
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id             path  int true  "Project ID"
// @Param       lookback_weeks query int false "Lookback window in weeks (default 8)"
// @Success     200 {array} services.RunningAverage "Running averages per craft"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     503 {object} ErrorResponse "Underlying data unavailable"
// @Router      /projects/{id}/running-averages [get]
func (h *ForecastHandler) GetRunningAverages(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RunningAveragesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	lookback := h.lookbackWeeks
	if req.LookbackWeeks != nil {
		lookback = *req.LookbackWeeks
	}

	averages, err := h.forecastService.RunningAverages(projectID, lookback)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"running_averages": averages})
}
