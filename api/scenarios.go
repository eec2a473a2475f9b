/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	payroll data for demos. Each scenario creates employees and saves one
	pay run for the current month through the same runner the API uses.

AVAILABLE SCENARIOS:

	college-staff:   Sixth Pay Commission for lecturers and office staff
	partial-month:   Joiners and leavers paid for the days they worked
	decided-salary:  Actual salary built from an agreed monthly figure

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees
 3. Build one pay run job per employee
 4. Compute and save the run

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "college-staff"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - payrun/payrun.go: Runner used to compute and save
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/salary-engine/payrun"
	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenarioEmployee struct {
	employee sqlite.Employee
	mode     salary.CalculationMode
	inputs   salary.RawInputs
}

type scenario struct {
	ScenarioDTO
	employees []scenarioEmployee
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "college-staff",
			Name:        "College Staff",
			Description: "Sixth Pay Commission for teaching and non-teaching staff",
		},
		employees: []scenarioEmployee{
			{
				employee: sqlite.Employee{ID: "emp-001", Name: "Meera Patil", StaffType: salary.Teaching, Designation: "Associate Professor"},
				mode:     salary.SixthPayCommission,
				inputs: salary.RawInputs{
					"basic_salary": "40000", "agp": "8000", "city": "X",
					"transport_allowance": "3000", "cla_allowance": "1000", "medical_allowance": "500",
					"tds_deduction": "5000", "epf_deduction": "1800", "professional_tax": "200",
				},
			},
			{
				employee: sqlite.Employee{ID: "emp-002", Name: "Rahul Joshi", StaffType: salary.Teaching, Designation: "Lecturer"},
				mode:     salary.SixthPayCommission,
				inputs: salary.RawInputs{
					"basic_salary": "30000", "agp": "5000", "city": "Y",
					"transport_allowance": "3200", "cla_allowance": "240", "medical_allowance": "1250",
					"tds_deduction": "2000", "epf_deduction": "1800", "professional_tax": "200",
				},
			},
			{
				employee: sqlite.Employee{ID: "emp-003", Name: "Arun Deshmukh", StaffType: salary.NonTeaching, Designation: "Office Superintendent"},
				mode:     salary.SixthPayCommission,
				inputs: salary.RawInputs{
					"basic_salary": "20000", "grade_pay": "2400", "city": "Z",
					"epf_deduction": "1800", "professional_tax": "200",
				},
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "partial-month",
			Name:        "Partial Month",
			Description: "Mid-month joiner and an unpaid leave stretch, paid pro rata",
		},
		employees: []scenarioEmployee{
			{
				employee: sqlite.Employee{ID: "emp-101", Name: "Sana Shaikh", StaffType: salary.Teaching, Designation: "Lecturer"},
				mode:     salary.SixthPayCommission,
				inputs: salary.RawInputs{
					"basic_salary": "30000", "agp": "5000",
					"epf_deduction": "1800", "working_days": "16", "total_month_days": "30",
				},
			},
			{
				employee: sqlite.Employee{ID: "emp-102", Name: "Vikas More", StaffType: salary.NonTeaching, Designation: "Lab Assistant"},
				mode:     salary.ActualSalary,
				inputs: salary.RawInputs{
					"basic_salary": "18000", "hra_rate": "2700", "transport_allowance": "800",
					"epf_deduction": "1800", "working_days": "24", "total_month_days": "31",
				},
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "decided-salary",
			Name:        "Decided Salary",
			Description: "Contract staff on an agreed monthly figure",
		},
		employees: []scenarioEmployee{
			{
				employee: sqlite.Employee{ID: "emp-201", Name: "Priya Kulkarni", StaffType: salary.NonTeaching, Designation: "Accountant"},
				mode:     salary.ActualSalary,
				inputs:   salary.RawInputs{"decided_salary": "90000", "tds_deduction": "6000"},
			},
			{
				employee: sqlite.Employee{ID: "emp-202", Name: "Nikhil Pawar", StaffType: salary.Teaching, Designation: "Visiting Faculty"},
				mode:     salary.ActualSalary,
				inputs:   salary.RawInputs{"decided_salary": "45000"},
			},
		},
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.writeInternal(w, "Failed to reset database", err)
		return
	}

	now := time.Now()
	runID, err := h.loadScenario(ctx, s, int(now.Month()), now.Year())
	if err != nil {
		h.writeInternal(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.logger.Info("scenario loaded", zap.String("scenario", s.ID), zap.String("run_id", runID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID, "run_id": runID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

func (h *Handler) loadScenario(ctx context.Context, s scenario, month, year int) (string, error) {
	jobs := make([]payrun.Job, 0, len(s.employees))
	for _, se := range s.employees {
		if err := h.Store.SaveEmployee(ctx, se.employee); err != nil {
			return "", fmt.Errorf("failed to create employee %s: %w", se.employee.ID, err)
		}
		jobs = append(jobs, payrun.Job{
			EmployeeID:   se.employee.ID,
			EmployeeName: se.employee.Name,
			StaffType:    se.employee.StaffType,
			Mode:         se.mode,
			Inputs:       salary.ParseInputs(se.inputs),
		})
	}

	results, summary, err := h.Runner.Run(ctx, jobs)
	if err != nil {
		return "", err
	}
	return h.Runner.Save(ctx, h.Store, month, year, results, summary)
}
