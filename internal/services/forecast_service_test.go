package services

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"costtrak/internal/models"
	"costtrak/internal/testutil"
	"costtrak/internal/week"
)

const floatTolerance = 1e-9

// lastSunday returns the most recent completed Sunday, which always falls
// inside the default lookback window.
func lastSunday() time.Time {
	return week.NextWeekEnding(time.Now()).AddDate(0, 0, -7)
}

// nextSunday returns the upcoming Sunday week-ending.
func nextSunday() time.Time {
	return week.NextWeekEnding(time.Now()).AddDate(0, 0, 7)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

func findAverage(averages []RunningAverage, craftTypeID uint) *RunningAverage {
	for i := range averages {
		if averages[i].CraftTypeID == craftTypeID {
			return &averages[i]
		}
	}
	return nil
}

func TestRunningAverages(t *testing.T) {
	t.Run("rate is total cost over total hours", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Carpenter", models.CraftCategoryDirect)

		w := lastSunday()
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, w, 12000, 400)
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, w.AddDate(0, 0, -7), 9000, 360)

		averages, err := svc.RunningAverages(project.ID, 8)
		testutil.AssertNoError(t, err)

		ra := findAverage(averages, craft.ID)
		if ra == nil {
			t.Fatal("expected a running average for the craft")
		}
		if ra.AvgRate == nil {
			t.Fatal("expected a rate, got nil")
		}
		want := (12000.0 + 9000.0) / (400.0 + 360.0)
		if !almostEqual(*ra.AvgRate, want) {
			t.Errorf("expected rate %v, got %v", want, *ra.AvgRate)
		}
		if ra.WeeksOfData != 2 {
			t.Errorf("expected 2 weeks of data, got %d", ra.WeeksOfData)
		}
		if ra.LastActualWeek != week.FormatDate(w) {
			t.Errorf("expected last actual week %s, got %s", week.FormatDate(w), ra.LastActualWeek)
		}
	})

	t.Run("zero-hour weeks are excluded from both sides of the ratio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Electrician", models.CraftCategoryDirect)

		w := lastSunday()
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, w, 10000, 400)
		// A week with cost but no hours must not drag the rate down.
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, w.AddDate(0, 0, -7), 5000, 0)

		averages, err := svc.RunningAverages(project.ID, 8)
		testutil.AssertNoError(t, err)

		ra := findAverage(averages, craft.ID)
		if ra == nil || ra.AvgRate == nil {
			t.Fatal("expected a rate")
		}
		if !almostEqual(*ra.AvgRate, 25.0) {
			t.Errorf("expected rate 25, got %v", *ra.AvgRate)
		}
		if ra.WeeksOfData != 1 {
			t.Errorf("expected 1 contributing week, got %d", ra.WeeksOfData)
		}
	})

	t.Run("craft with no history has nil rate, not zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Scaffolder", models.CraftCategoryIndirect)

		averages, err := svc.RunningAverages(project.ID, 8)
		testutil.AssertNoError(t, err)

		ra := findAverage(averages, craft.ID)
		if ra == nil {
			t.Fatal("expected an entry for every craft in the catalog")
		}
		if ra.AvgRate != nil {
			t.Errorf("expected nil rate for craft with no history, got %v", *ra.AvgRate)
		}
		if ra.WeeksOfData != 0 {
			t.Errorf("expected 0 weeks of data, got %d", ra.WeeksOfData)
		}
	})

	t.Run("actuals outside the lookback window are ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Pipefitter", models.CraftCategoryDirect)

		// 20 weeks back is well outside a 4-week window.
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, lastSunday().AddDate(0, 0, -20*7), 99999, 100)

		averages, err := svc.RunningAverages(project.ID, 4)
		testutil.AssertNoError(t, err)

		ra := findAverage(averages, craft.ID)
		if ra == nil {
			t.Fatal("expected an entry for the craft")
		}
		if ra.AvgRate != nil {
			t.Errorf("expected nil rate, got %v", *ra.AvgRate)
		}
	})

	t.Run("invalid lookback fails fast", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)

		_, err := svc.RunningAverages(project.ID, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown project fails fast", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)

		_, err := svc.RunningAverages(9999, 8)
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
	})
}

func TestCalculateForecast(t *testing.T) {
	t.Run("headcount 10 at $25/hr projects 400 hours and $10,000 per week", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Carpenter", models.CraftCategoryDirect)

		// History establishing a $25/hr running average.
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, lastSunday(), 10000, 400)

		start := nextSunday()
		testutil.CreateTestHeadcount(t, db, project.ID, craft.ID, start, 10)

		result, err := svc.CalculateForecast(project.ID, &start, 1)
		testutil.AssertNoError(t, err)

		if len(result.Weeks) != 1 {
			t.Fatalf("expected 1 week, got %d", len(result.Weeks))
		}
		wk := result.Weeks[0]
		if wk.Totals.Headcount != 10 {
			t.Errorf("expected headcount 10, got %d", wk.Totals.Headcount)
		}
		if !almostEqual(wk.Totals.TotalHours, 400) {
			t.Errorf("expected 400 hours, got %v", wk.Totals.TotalHours)
		}
		if !almostEqual(wk.Totals.TotalCost, 10000) {
			t.Errorf("expected $10,000, got %v", wk.Totals.TotalCost)
		}
	})

	t.Run("two crafts roll up into week totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		carpenter := testutil.CreateTestCraftType(t, db, "Carpenter", models.CraftCategoryDirect)
		foreman := testutil.CreateTestCraftType(t, db, "Foreman", models.CraftCategoryStaff)

		// $30/hr and $45/hr running averages.
		testutil.CreateTestLaborActual(t, db, project.ID, carpenter.ID, lastSunday(), 12000, 400)
		testutil.CreateTestLaborActual(t, db, project.ID, foreman.ID, lastSunday(), 7200, 160)

		start := nextSunday()
		testutil.CreateTestHeadcount(t, db, project.ID, carpenter.ID, start, 8)
		testutil.CreateTestHeadcount(t, db, project.ID, foreman.ID, start, 4)

		result, err := svc.CalculateForecast(project.ID, &start, 1)
		testutil.AssertNoError(t, err)

		wk := result.Weeks[0]
		if wk.Totals.Headcount != 12 {
			t.Errorf("expected headcount 12, got %d", wk.Totals.Headcount)
		}
		if !almostEqual(wk.Totals.TotalHours, 480) {
			t.Errorf("expected 480 hours, got %v", wk.Totals.TotalHours)
		}
		// (8*40*30) + (4*40*45) = 9600 + 7200 = 16800
		if !almostEqual(wk.Totals.TotalCost, 16800) {
			t.Errorf("expected $16,800, got %v", wk.Totals.TotalCost)
		}

		// Entries are ordered by craft name within the week.
		if wk.Entries[0].CraftName != "Carpenter" || wk.Entries[1].CraftName != "Foreman" {
			t.Errorf("expected entries ordered by craft name, got %s, %s", wk.Entries[0].CraftName, wk.Entries[1].CraftName)
		}
		if !almostEqual(wk.Entries[0].Hours, 320) || !almostEqual(wk.Entries[1].Hours, 160) {
			t.Errorf("expected 320/160 hours, got %v/%v", wk.Entries[0].Hours, wk.Entries[1].Hours)
		}
	})

	t.Run("window has exactly N weeks strictly 7 days apart", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)

		start := nextSunday()
		result, err := svc.CalculateForecast(project.ID, &start, 12)
		testutil.AssertNoError(t, err)

		if len(result.Weeks) != 12 {
			t.Fatalf("expected 12 weeks, got %d", len(result.Weeks))
		}
		if result.Weeks[0].WeekEnding != week.FormatDate(start) {
			t.Errorf("expected first week %s, got %s", week.FormatDate(start), result.Weeks[0].WeekEnding)
		}
		for i := 1; i < len(result.Weeks); i++ {
			prev, _ := week.ParseDate(result.Weeks[i-1].WeekEnding)
			cur, _ := week.ParseDate(result.Weeks[i].WeekEnding)
			if !cur.Equal(prev.AddDate(0, 0, 7)) {
				t.Errorf("weeks not 7 days apart: %s -> %s", result.Weeks[i-1].WeekEnding, result.Weeks[i].WeekEnding)
			}
		}
	})

	t.Run("start date snaps to the next Sunday", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)

		wednesday := nextSunday().AddDate(0, 0, -4)
		result, err := svc.CalculateForecast(project.ID, &wednesday, 1)
		testutil.AssertNoError(t, err)

		if result.StartDate != week.FormatDate(nextSunday()) {
			t.Errorf("expected start %s, got %s", week.FormatDate(nextSunday()), result.StartDate)
		}
	})

	t.Run("grand totals equal the sum of week totals and entries", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)

		crafts := []*models.CraftType{
			testutil.CreateTestCraftType(t, db, "Carpenter", models.CraftCategoryDirect),
			testutil.CreateTestCraftType(t, db, "Electrician", models.CraftCategoryDirect),
			testutil.CreateTestCraftType(t, db, "Foreman", models.CraftCategoryStaff),
			testutil.CreateTestCraftType(t, db, "Safety Officer", models.CraftCategoryIndirect),
		}
		rates := []float64{28.5, 33.25, 47.0, 31.75}
		for i, c := range crafts {
			testutil.CreateTestLaborActual(t, db, project.ID, c.ID, lastSunday(), rates[i]*100, 100)
		}

		start := nextSunday()
		headcounts := []int{7, 3, 2, 1}
		for w := 0; w < 6; w++ {
			for i, c := range crafts {
				testutil.CreateTestHeadcount(t, db, project.ID, c.ID, start.AddDate(0, 0, w*7), headcounts[i]+w)
			}
		}

		result, err := svc.CalculateForecast(project.ID, &start, 6)
		testutil.AssertNoError(t, err)

		var sumHeadcount int
		var sumHours, sumCost float64
		for _, wk := range result.Weeks {
			var wkHeadcount int
			var wkHours, wkCost float64
			for _, e := range wk.Entries {
				wkHeadcount += e.Headcount
				wkHours += e.Hours
				wkCost += e.Cost
			}
			if wkHeadcount != wk.Totals.Headcount || !almostEqual(wkHours, wk.Totals.TotalHours) || !almostEqual(wkCost, wk.Totals.TotalCost) {
				t.Errorf("week %s totals do not match entries", wk.WeekEnding)
			}
			sumHeadcount += wk.Totals.Headcount
			sumHours += wk.Totals.TotalHours
			sumCost += wk.Totals.TotalCost
		}
		if sumHeadcount != result.GrandTotals.Headcount || !almostEqual(sumHours, result.GrandTotals.TotalHours) || !almostEqual(sumCost, result.GrandTotals.TotalCost) {
			t.Errorf("grand totals do not match the sum of week totals")
		}

		var catHours, catCost float64
		for _, cs := range result.CategorySummary {
			catHours += cs.TotalHours
			catCost += cs.TotalCost
			if cs.TotalHours > 0 && !almostEqual(cs.AvgRate, cs.TotalCost/cs.TotalHours) {
				t.Errorf("category %s avg rate is not cost/hours", cs.Category)
			}
		}
		if !almostEqual(catHours, result.GrandTotals.TotalHours) || !almostEqual(catCost, result.GrandTotals.TotalCost) {
			t.Errorf("category summary does not add up to grand totals")
		}
	})

	t.Run("craft without history projects at zero and is surfaced", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Millwright", models.CraftCategoryDirect)

		start := nextSunday()
		testutil.CreateTestHeadcount(t, db, project.ID, craft.ID, start, 5)

		result, err := svc.CalculateForecast(project.ID, &start, 1)
		testutil.AssertNoError(t, err)

		entry := result.Weeks[0].Entries[0]
		if entry.HasRate {
			t.Error("expected has_rate to be false")
		}
		if !almostEqual(entry.Cost, 0) {
			t.Errorf("expected zero cost, got %v", entry.Cost)
		}
		if !almostEqual(entry.Hours, 200) {
			t.Errorf("expected 200 hours, got %v", entry.Hours)
		}
		if len(result.CraftsWithoutRates) != 1 || result.CraftsWithoutRates[0] != "Millwright" {
			t.Errorf("expected Millwright in crafts_without_rates, got %v", result.CraftsWithoutRates)
		}
	})

	t.Run("deactivated craft drops out of the projection entirely", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Boilermaker", models.CraftCategoryDirect)

		// $25/hr history and planned headcount, then the craft is retired.
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, lastSunday(), 10000, 400)
		start := nextSunday()
		testutil.CreateTestHeadcount(t, db, project.ID, craft.ID, start, 10)
		testutil.AssertNoError(t, NewCraftTypeService(db).DeactivateCraftType(craft.ID))

		result, err := svc.CalculateForecast(project.ID, &start, 1)
		testutil.AssertNoError(t, err)

		// The craft must vanish from the forecast, not get priced at $0.
		if len(result.Weeks[0].Entries) != 0 {
			t.Errorf("expected no entries for a retired craft, got %d", len(result.Weeks[0].Entries))
		}
		if result.GrandTotals.Headcount != 0 || !almostEqual(result.GrandTotals.TotalCost, 0) {
			t.Errorf("expected zero grand totals, got %+v", result.GrandTotals)
		}
		for _, name := range result.CraftsWithoutRates {
			if name == "Boilermaker" {
				t.Error("retired craft must not be reported as missing a rate")
			}
		}
	})

	t.Run("project with no headcount returns a well-formed zero result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)

		start := nextSunday()
		result, err := svc.CalculateForecast(project.ID, &start, 4)
		testutil.AssertNoError(t, err)

		if result.GrandTotals.TotalCost != 0 || result.GrandTotals.Headcount != 0 {
			t.Errorf("expected zero grand totals, got %+v", result.GrandTotals)
		}
		for _, wk := range result.Weeks {
			if len(wk.Entries) != 0 {
				t.Errorf("expected no entries for week %s", wk.WeekEnding)
			}
		}
	})

	t.Run("identical inputs yield identical output except generated_at", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Ironworker", models.CraftCategoryDirect)
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, lastSunday(), 8000, 250)

		start := nextSunday()
		testutil.CreateTestHeadcount(t, db, project.ID, craft.ID, start, 6)

		first, err := svc.CalculateForecast(project.ID, &start, 3)
		testutil.AssertNoError(t, err)
		second, err := svc.CalculateForecast(project.ID, &start, 3)
		testutil.AssertNoError(t, err)

		first.GeneratedAt = second.GeneratedAt
		a, _ := json.Marshal(first)
		b, _ := json.Marshal(second)
		if string(a) != string(b) {
			t.Errorf("expected identical results, got:\n%s\n%s", a, b)
		}
	})

	t.Run("invalid weeks_ahead fails fast", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)
		project := testutil.CreateTestProject(t, db)

		_, err := svc.CalculateForecast(project.ID, nil, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CalculateForecast(project.ID, nil, -3)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown project fails fast with no partial result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 40, 8)

		result, err := svc.CalculateForecast(12345, nil, 12)
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
		if result != nil {
			t.Error("expected nil result on error")
		}
	})

	t.Run("configured standard hours are respected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewForecastService(db, 36, 8)
		project := testutil.CreateTestProject(t, db)
		craft := testutil.CreateTestCraftType(t, db, "Laborer", models.CraftCategoryDirect)
		testutil.CreateTestLaborActual(t, db, project.ID, craft.ID, lastSunday(), 3600, 180)

		start := nextSunday()
		testutil.CreateTestHeadcount(t, db, project.ID, craft.ID, start, 2)

		result, err := svc.CalculateForecast(project.ID, &start, 1)
		testutil.AssertNoError(t, err)

		if !almostEqual(result.GrandTotals.TotalHours, 72) {
			t.Errorf("expected 72 hours with a 36-hour week, got %v", result.GrandTotals.TotalHours)
		}
	})
}
