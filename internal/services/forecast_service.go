package services

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/week"
)

// forecastService computes running-average labor rates and forward cost
// projections. It is stateless: every call reads the store and folds the
// rows in memory. Concurrent calls for the same project see whatever the
// store returns at query time (read-committed); no locking is attempted.
type forecastService struct {
	db *gorm.DB
	// standardHours is the assumed hours one person works in one week.
	standardHours float64
	// lookbackWeeks is the rate window used when a forecast is generated.
	lookbackWeeks int
}

// NewForecastService creates a new ForecastServicer. standardHours is the
// configured hours-per-person-per-week (normally 40); lookbackWeeks is the
// configured running-average window (normally 8).
func NewForecastService(db *gorm.DB, standardHours float64, lookbackWeeks int) ForecastServicer {
	if lookbackWeeks <= 0 {
		lookbackWeeks = 8
	}
	return &forecastService{db: db, standardHours: standardHours, lookbackWeeks: lookbackWeeks}
}

// RunningAverages computes the trailing average hourly rate per craft type
// from labor actuals within the lookback window. Every active craft in the
// catalog gets an entry, even with zero contributing weeks: callers render
// "no data yet", never a misleading $0/hr. Rows with zero hours are
// excluded from both numerator and denominator.
func (s *forecastService) RunningAverages(projectID uint, lookbackWeeks int) ([]RunningAverage, error) {
	if lookbackWeeks <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "lookback_weeks must be a positive integer")
	}
	if err := s.checkProject(projectID); err != nil {
		return nil, err
	}

	crafts, err := s.craftCatalog()
	if err != nil {
		return nil, err
	}

	windowStart := week.UTCMidnight(time.Now()).AddDate(0, 0, -lookbackWeeks*7)

	var actuals []models.LaborActual
	if err := s.db.
		Where("project_id = ? AND week_ending >= ?", projectID, windowStart).
		Find(&actuals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataUnavailable, err)
	}

	type accum struct {
		cost, hours float64
		weeks       map[string]struct{}
		lastWeek    time.Time
	}
	byCraft := make(map[uint]*accum)
	for _, a := range actuals {
		acc := byCraft[a.CraftTypeID]
		if acc == nil {
			acc = &accum{weeks: make(map[string]struct{})}
			byCraft[a.CraftTypeID] = acc
		}
		// Zero-hour weeks carry no rate signal. They are not a zero rate.
		if a.TotalHours > 0 {
			acc.cost += a.TotalCost
			acc.hours += a.TotalHours
			acc.weeks[week.FormatDate(a.WeekEnding)] = struct{}{}
			if a.WeekEnding.After(acc.lastWeek) {
				acc.lastWeek = a.WeekEnding
			}
		}
	}

	averages := make([]RunningAverage, 0, len(crafts))
	for _, craft := range crafts {
		ra := RunningAverage{
			CraftTypeID: craft.ID,
			CraftName:   craft.Name,
			CraftCode:   craft.Code,
			Category:    craft.Category,
		}
		if acc, ok := byCraft[craft.ID]; ok && acc.hours > 0 {
			rate := acc.cost / acc.hours
			ra.AvgRate = &rate
			ra.WeeksOfData = len(acc.weeks)
			ra.LastActualWeek = week.FormatDate(acc.lastWeek)
		}
		averages = append(averages, ra)
	}
	return averages, nil
}

// CalculateForecast projects labor hours and cost per week for a project,
// combining the planner's headcount grid with running-average rates.
// startDate defaults to today and is snapped forward to the next Sunday
// week-ending; the result covers exactly weeksAhead weeks from there.
func (s *forecastService) CalculateForecast(projectID uint, startDate *time.Time, weeksAhead int) (*ForecastResult, error) {
	if weeksAhead <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "weeks_ahead must be a positive integer")
	}
	if err := s.checkProject(projectID); err != nil {
		return nil, err
	}

	start := time.Now()
	if startDate != nil {
		start = *startDate
	}
	startWeek := week.NextWeekEnding(start)
	endWeek := startWeek.AddDate(0, 0, (weeksAhead-1)*7)

	averages, err := s.RunningAverages(projectID, s.lookbackWeeks)
	if err != nil {
		return nil, err
	}
	rateByCraft := make(map[uint]*float64, len(averages))
	for i := range averages {
		rateByCraft[averages[i].CraftTypeID] = averages[i].AvgRate
	}

	var entries []models.HeadcountForecast
	if err := s.db.
		Preload("CraftType").
		Where("project_id = ? AND week_ending >= ? AND week_ending <= ?", projectID, startWeek, endWeek).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataUnavailable, err)
	}

	byWeek := make(map[string][]ForecastEntry)
	noRateCrafts := make(map[string]struct{})
	catTotals := make(map[models.CraftCategory]*CategorySummary)
	catCrafts := make(map[models.CraftCategory]map[uint]struct{})

	var grand WeekTotals
	for _, hc := range entries {
		// Crafts deactivated after planning drop out of the projection.
		// Only the active catalog carries rates, so pricing them here
		// would read as $0/hr regardless of their actual history.
		if !hc.CraftType.IsActive {
			continue
		}

		hours := float64(hc.Headcount) * s.standardHours

		// Fallback policy: a craft with no history projects at $0/hr, and
		// that fact is surfaced in crafts_without_rates rather than hidden.
		var rate float64
		hasRate := false
		if r := rateByCraft[hc.CraftTypeID]; r != nil {
			rate = *r
			hasRate = true
		} else {
			noRateCrafts[hc.CraftType.Name] = struct{}{}
		}
		cost := hours * rate

		entry := ForecastEntry{
			CraftTypeID: hc.CraftTypeID,
			CraftName:   hc.CraftType.Name,
			CraftCode:   hc.CraftType.Code,
			Category:    hc.CraftType.Category,
			Headcount:   hc.Headcount,
			Hours:       hours,
			Cost:        cost,
			HasRate:     hasRate,
		}
		key := week.FormatDate(hc.WeekEnding)
		byWeek[key] = append(byWeek[key], entry)

		grand.Headcount += hc.Headcount
		grand.TotalHours += hours
		grand.TotalCost += cost

		cat := catTotals[entry.Category]
		if cat == nil {
			cat = &CategorySummary{Category: entry.Category}
			catTotals[entry.Category] = cat
			catCrafts[entry.Category] = make(map[uint]struct{})
		}
		cat.TotalHeadcount += hc.Headcount
		cat.TotalHours += hours
		cat.TotalCost += cost
		catCrafts[entry.Category][hc.CraftTypeID] = struct{}{}
	}

	// Every week in the window appears in the output, with or without
	// planned headcount, so the horizon the caller asked for is explicit.
	weeks := make([]ForecastWeek, 0, weeksAhead)
	for i := 0; i < weeksAhead; i++ {
		we := startWeek.AddDate(0, 0, i*7)
		key := week.FormatDate(we)
		weekEntries := byWeek[key]
		sort.Slice(weekEntries, func(a, b int) bool {
			return weekEntries[a].CraftName < weekEntries[b].CraftName
		})
		if weekEntries == nil {
			weekEntries = []ForecastEntry{}
		}

		var totals WeekTotals
		for _, e := range weekEntries {
			totals.Headcount += e.Headcount
			totals.TotalHours += e.Hours
			totals.TotalCost += e.Cost
		}
		weeks = append(weeks, ForecastWeek{WeekEnding: key, Entries: weekEntries, Totals: totals})
	}

	summary := make([]CategorySummary, 0, len(catTotals))
	for cat, cs := range catTotals {
		cs.CraftCount = len(catCrafts[cat])
		if cs.TotalHours > 0 {
			cs.AvgRate = cs.TotalCost / cs.TotalHours
		}
		summary = append(summary, *cs)
	}
	sort.Slice(summary, func(a, b int) bool { return summary[a].Category < summary[b].Category })

	caveats := make([]string, 0, len(noRateCrafts))
	for name := range noRateCrafts {
		caveats = append(caveats, name)
	}
	sort.Strings(caveats)

	return &ForecastResult{
		ProjectID:          projectID,
		StartDate:          week.FormatDate(startWeek),
		WeeksAhead:         weeksAhead,
		Weeks:              weeks,
		GrandTotals:        grand,
		CategorySummary:    summary,
		CraftsWithoutRates: caveats,
		GeneratedAt:        time.Now().UTC(),
	}, nil
}

// checkProject fails fast with ErrProjectNotFound before any computation.
func (s *forecastService) checkProject(projectID uint) error {
	var project models.Project
	if err := s.db.Select("id").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProjectNotFound
		}
		return apperrors.Wrap(apperrors.ErrDataUnavailable, err)
	}
	return nil
}

// craftCatalog returns all active craft types.
func (s *forecastService) craftCatalog() ([]models.CraftType, error) {
	var crafts []models.CraftType
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&crafts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataUnavailable, err)
	}
	return crafts, nil
}
