/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Employees are created
	- One saved pay run per scenario
	- Saved breakdowns match the engine
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/payrun"
	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

func setupTestHandler(t *testing.T) *Handler {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := salary.NewEngine(salary.DefaultRules())
	return NewHandler(store, engine, payrun.NewRunner(engine, 2, nil), zap.NewNop())
}

func TestScenario_EveryScenarioLoads(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			handler := setupTestHandler(t)
			ctx := context.Background()

			runID, err := handler.loadScenario(ctx, s, 4, 2026)
			require.NoError(t, err)
			require.NotEmpty(t, runID)

			employees, err := handler.Store.ListEmployees(ctx)
			require.NoError(t, err)
			assert.Len(t, employees, len(s.employees))

			recs, err := handler.Store.ListSalaryRecords(ctx, sqlite.RecordFilter{PayRunID: runID})
			require.NoError(t, err)
			assert.Len(t, recs, len(s.employees))
		})
	}
}

func TestScenario_CollegeStaff(t *testing.T) {
	// GIVEN: the college staff scenario
	// THEN: the professor's record is the sixth pay worked example

	handler := setupTestHandler(t)
	ctx := context.Background()

	s, ok := findScenario("college-staff")
	require.True(t, ok)
	_, err := handler.loadScenario(ctx, s, 4, 2026)
	require.NoError(t, err)

	recs, err := handler.Store.ListSalaryRecords(ctx, sqlite.RecordFilter{EmployeeName: "Meera Patil"})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	b := recs[0].Breakdown
	assert.Equal(t, salary.SixthPayCommission, b.Mode)
	assert.True(t, b.Gross.Equal(salary.ParseNonNegative("138420")))
	assert.True(t, b.NetSalary.Equal(salary.ParseNonNegative("131420")))
}

func TestScenario_PartialMonthIsProRata(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	s, _ := findScenario("partial-month")
	_, err := handler.loadScenario(ctx, s, 4, 2026)
	require.NoError(t, err)

	recs, err := handler.Store.ListSalaryRecords(ctx, sqlite.RecordFilter{})
	require.NoError(t, err)
	for _, rec := range recs {
		assert.True(t, rec.Breakdown.IsProRata, rec.EmployeeName)
	}
}

func TestLoadScenario_Endpoint(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ScenarioDTO](t, rec), len(scenarios))

	rec = do(t, h, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "decided-salary"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/employees", nil)
	assert.Len(t, decodeBody[[]EmployeeDTO](t, rec), 2)

	rec = do(t, h, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/scenarios/load", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
