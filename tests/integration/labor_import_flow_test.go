package integration

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"costtrak/internal/models"
	"costtrak/internal/testutil"
)

func TestPayrollImportFlow(t *testing.T) {
	app := setupApp(t)
	project := testutil.CreateTestProject(t, app.DB)
	carpenter := testutil.CreateTestCraftType(t, app.DB, "Carpenter", models.CraftCategoryDirect)
	foreman := testutil.CreateTestCraftType(t, app.DB, "Foreman", models.CraftCategoryIndirect)

	path := fmt.Sprintf("/api/v1/projects/%d/labor-actuals/import", project.ID)

	// Payroll rows are keyed by the Tuesday week-starting date
	body := fmt.Sprintf(`{"rows":[
		{"craft_code":%q,"week_starting":"2025-08-05","total_cost":12000,"total_hours":400},
		{"craft_code":%q,"week_starting":"2025-08-05","total_cost":4500,"total_hours":100}
	]}`, carpenter.Code, foreman.Code)

	// No API key
	rec := app.importRequest(path, body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without API key, got %d", rec.Code)
	}

	// Wrong API key
	rec = app.importRequest(path, body, "wrong-key")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong API key, got %d", rec.Code)
	}

	// Valid key imports both rows
	rec = app.importRequest(path, body, testImportAPIKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["imported"] != 2.0 {
		t.Errorf("expected 2 imported rows, got %v", result["imported"])
	}

	// Rows landed on the Sunday ending the payroll week
	_, token := app.createUser(t, models.UserRoleViewer)
	rec = app.request("GET", fmt.Sprintf("/api/v1/projects/%d/labor-actuals", project.ID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	actuals := parseJSON(t, rec)["labor_actuals"].([]interface{})
	if len(actuals) != 2 {
		t.Fatalf("expected 2 labor actuals, got %d", len(actuals))
	}
	for _, a := range actuals {
		weekEnding := a.(map[string]interface{})["week_ending"].(string)
		if !strings.HasPrefix(weekEnding, "2025-08-10") {
			t.Errorf("expected week ending 2025-08-10, got %s", weekEnding)
		}
	}

	// Re-import overwrites rather than duplicates
	corrected := fmt.Sprintf(`{"rows":[{"craft_code":%q,"week_starting":"2025-08-05","total_cost":12600,"total_hours":420}]}`, carpenter.Code)
	rec = app.importRequest(path, corrected, testImportAPIKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on re-import, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int64
	app.DB.Model(&models.LaborActual{}).
		Where("project_id = ? AND craft_type_id = ?", project.ID, carpenter.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row after re-import, got %d", count)
	}
	var actual models.LaborActual
	app.DB.Where("project_id = ? AND craft_type_id = ?", project.ID, carpenter.ID).First(&actual)
	if actual.TotalCost != 12600 {
		t.Errorf("expected corrected cost 12600, got %v", actual.TotalCost)
	}
}

func TestPayrollImportUnknownCraftCode(t *testing.T) {
	app := setupApp(t)
	project := testutil.CreateTestProject(t, app.DB)
	carpenter := testutil.CreateTestCraftType(t, app.DB, "Carpenter", models.CraftCategoryDirect)

	path := fmt.Sprintf("/api/v1/projects/%d/labor-actuals/import", project.ID)
	body := fmt.Sprintf(`{"rows":[
		{"craft_code":%q,"week_starting":"2025-08-05","total_cost":12000,"total_hours":400},
		{"craft_code":"NOPE","week_starting":"2025-08-05","total_cost":100,"total_hours":10}
	]}`, carpenter.Code)

	rec := app.importRequest(path, body, testImportAPIKey)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown craft code, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "CRAFT_TYPE_NOT_FOUND")

	// The whole batch is rejected, nothing partial
	var count int64
	app.DB.Model(&models.LaborActual{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no rows after failed import, got %d", count)
	}
}
