package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/services"
)

// --- mock forecast service ---

type mockForecastService struct {
	runningAveragesFn   func(projectID uint, lookbackWeeks int) ([]services.RunningAverage, error)
	calculateForecastFn func(projectID uint, startDate *time.Time, weeksAhead int) (*services.ForecastResult, error)
}

func (m *mockForecastService) RunningAverages(projectID uint, lookbackWeeks int) ([]services.RunningAverage, error) {
	if m.runningAveragesFn != nil {
		return m.runningAveragesFn(projectID, lookbackWeeks)
	}
	return []services.RunningAverage{}, nil
}

func (m *mockForecastService) CalculateForecast(projectID uint, startDate *time.Time, weeksAhead int) (*services.ForecastResult, error) {
	if m.calculateForecastFn != nil {
		return m.calculateForecastFn(projectID, startDate, weeksAhead)
	}
	return &services.ForecastResult{}, nil
}

// verify interface compliance
var _ services.ForecastServicer = (*mockForecastService)(nil)

func setupForecastRouter(handler *ForecastHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.GET("/projects/:id/forecast", handler.GetForecast)
	auth.GET("/projects/:id/running-averages", handler.GetRunningAverages)
	return r
}

// --- tests ---

func TestForecastHandler_GetForecast(t *testing.T) {
	t.Run("returns 200 with the forecast", func(t *testing.T) {
		fcSvc := &mockForecastService{
			calculateForecastFn: func(projectID uint, _ *time.Time, weeksAhead int) (*services.ForecastResult, error) {
				return &services.ForecastResult{
					ProjectID:  projectID,
					StartDate:  "2025-09-07",
					WeeksAhead: weeksAhead,
					Weeks: []services.ForecastWeek{
						{
							WeekEnding: "2025-09-07",
							Entries:    []services.ForecastEntry{},
							Totals:     services.WeekTotals{Headcount: 10, TotalHours: 400, TotalCost: 10000},
						},
					},
					GrandTotals: services.WeekTotals{Headcount: 10, TotalHours: 400, TotalCost: 10000},
					GeneratedAt: time.Now().UTC(),
				}, nil
			},
		}
		handler := NewForecastHandler(fcSvc, 8, 12)
		r := setupForecastRouter(handler)

		rec := doRequest(r, "GET", "/projects/1/forecast", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["start_date"] != "2025-09-07" {
			t.Errorf("expected start_date 2025-09-07, got %v", result["start_date"])
		}
		totals := result["grand_totals"].(map[string]interface{})
		if totals["total_cost"] != 10000.0 {
			t.Errorf("expected total cost 10000, got %v", totals["total_cost"])
		}
	})

	t.Run("applies the configured default weeks ahead", func(t *testing.T) {
		var gotWeeksAhead int
		fcSvc := &mockForecastService{
			calculateForecastFn: func(_ uint, _ *time.Time, weeksAhead int) (*services.ForecastResult, error) {
				gotWeeksAhead = weeksAhead
				return &services.ForecastResult{}, nil
			},
		}
		handler := NewForecastHandler(fcSvc, 8, 12)
		r := setupForecastRouter(handler)

		doRequest(r, "GET", "/projects/1/forecast", "")
		if gotWeeksAhead != 12 {
			t.Errorf("expected default 12 weeks, got %d", gotWeeksAhead)
		}

		doRequest(r, "GET", "/projects/1/forecast?weeks_ahead=4", "")
		if gotWeeksAhead != 4 {
			t.Errorf("expected 4 weeks from query, got %d", gotWeeksAhead)
		}
	})

	t.Run("passes the parsed start date to the service", func(t *testing.T) {
		var gotStart *time.Time
		fcSvc := &mockForecastService{
			calculateForecastFn: func(_ uint, startDate *time.Time, _ int) (*services.ForecastResult, error) {
				gotStart = startDate
				return &services.ForecastResult{}, nil
			},
		}
		handler := NewForecastHandler(fcSvc, 8, 12)
		r := setupForecastRouter(handler)

		rec := doRequest(r, "GET", "/projects/1/forecast?start_date=2025-09-03", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotStart == nil || gotStart.Format("2006-01-02") != "2025-09-03" {
			t.Errorf("expected start date 2025-09-03, got %v", gotStart)
		}
	})

	t.Run("returns 400 on malformed start date", func(t *testing.T) {
		handler := NewForecastHandler(&mockForecastService{}, 8, 12)
		r := setupForecastRouter(handler)

		rec := doRequest(r, "GET", "/projects/1/forecast?start_date=garbage", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 503 when data is unavailable", func(t *testing.T) {
		fcSvc := &mockForecastService{
			calculateForecastFn: func(_ uint, _ *time.Time, _ int) (*services.ForecastResult, error) {
				return nil, apperrors.ErrDataUnavailable
			},
		}
		handler := NewForecastHandler(fcSvc, 8, 12)
		r := setupForecastRouter(handler)

		rec := doRequest(r, "GET", "/projects/1/forecast", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DATA_UNAVAILABLE")
	})
}

func TestForecastHandler_GetRunningAverages(t *testing.T) {
	t.Run("returns 200 with null rates preserved", func(t *testing.T) {
		rate := 27.5
		fcSvc := &mockForecastService{
			runningAveragesFn: func(_ uint, _ int) ([]services.RunningAverage, error) {
				return []services.RunningAverage{
					{CraftTypeID: 1, CraftName: "Carpenter", AvgRate: &rate, WeeksOfData: 6},
					{CraftTypeID: 2, CraftName: "Millwright", AvgRate: nil, WeeksOfData: 0},
				}, nil
			},
		}
		handler := NewForecastHandler(fcSvc, 8, 12)
		r := setupForecastRouter(handler)

		rec := doRequest(r, "GET", "/projects/1/running-averages", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		averages := result["running_averages"].([]interface{})
		if len(averages) != 2 {
			t.Fatalf("expected 2 averages, got %d", len(averages))
		}
		noData := averages[1].(map[string]interface{})
		if noData["avg_rate"] != nil {
			t.Errorf("expected null avg_rate, got %v", noData["avg_rate"])
		}
	})

	t.Run("applies the configured default lookback", func(t *testing.T) {
		var gotLookback int
		fcSvc := &mockForecastService{
			runningAveragesFn: func(_ uint, lookbackWeeks int) ([]services.RunningAverage, error) {
				gotLookback = lookbackWeeks
				return []services.RunningAverage{}, nil
			},
		}
		handler := NewForecastHandler(fcSvc, 8, 12)
		r := setupForecastRouter(handler)

		doRequest(r, "GET", "/projects/1/running-averages", "")
		if gotLookback != 8 {
			t.Errorf("expected default lookback 8, got %d", gotLookback)
		}

		doRequest(r, "GET", "/projects/1/running-averages?lookback_weeks=13", "")
		if gotLookback != 13 {
			t.Errorf("expected lookback 13 from query, got %d", gotLookback)
		}
	})

	t.Run("returns 404 when project is missing", func(t *testing.T) {
		fcSvc := &mockForecastService{
			runningAveragesFn: func(_ uint, _ int) ([]services.RunningAverage, error) {
				return nil, apperrors.ErrProjectNotFound
			},
		}
		handler := NewForecastHandler(fcSvc, 8, 12)
		r := setupForecastRouter(handler)

		rec := doRequest(r, "GET", "/projects/42/running-averages", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
