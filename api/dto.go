/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money leaves the API as
  JSON numbers rounded to 2 decimal places; inside the engine it stays an
  exact decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest

  Salary:
    SalaryRequest, SaveSalaryRequest, BreakdownDTO, PreviewDTO,
    SalaryRecordDTO, ProfessionalTaxDTO

  Pay runs:
    PayRunRequest, PayRunResponse, PayRunSummaryDTO, PayRunDTO

RAW INPUTS:
  Salary figures arrive as a flat "inputs" object keyed by field name
  (basic_salary, hra_rate, working_days, ...). Values may be numbers or
  strings such as "₹45,000"; both are normalized by salary.ParseInputs, and
  anything unreadable becomes 0.

VALIDATION:
  Request structs carry validator/v10 tags. Field names in validation
  messages follow the json tags.

SEE ALSO:
  - handlers.go: Uses these types
  - salary/parse.go: Input normalization
*/
package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/payrun"
	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StaffType   string `json:"staff_type"`
	Designation string `json:"designation,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	StaffType   string `json:"staff_type" validate:"required"`
	Designation string `json:"designation"`
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:          e.ID,
		Name:        e.Name,
		StaffType:   string(e.StaffType),
		Designation: e.Designation,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SALARY
// =============================================================================

// SalaryRequest describes one salary computation.
type SalaryRequest struct {
	EmployeeID string         `json:"employee_id"`
	StaffType  string         `json:"staff_type"`
	Mode       string         `json:"mode"`
	Inputs     map[string]any `json:"inputs"`
}

// SaveSalaryRequest computes and stores a salary for a period.
type SaveSalaryRequest struct {
	SalaryRequest
	EmployeeName string `json:"employee_name"`
	Month        int    `json:"month" validate:"required,min=1,max=12"`
	Year         int    `json:"year" validate:"required,min=1900,max=9999"`
}

// EarningsDTO lists earning components.
type EarningsDTO struct {
	Basic      float64 `json:"basic"`
	AGP        float64 `json:"agp"`
	GradePay   float64 `json:"grade_pay"`
	DA         float64 `json:"da"`
	HRA        float64 `json:"hra"`
	TA         float64 `json:"ta"`
	CLA        float64 `json:"cla"`
	Medical    float64 `json:"medical"`
	Special    float64 `json:"special"`
	Conveyance float64 `json:"conveyance"`
	Others     float64 `json:"others"`
}

// DeductionsDTO lists deduction components.
type DeductionsDTO struct {
	TDS       float64 `json:"tds"`
	EPF       float64 `json:"epf"`
	Advance   float64 `json:"advance"`
	PT        float64 `json:"pt"`
	ESI       float64 `json:"esi"`
	Loan      float64 `json:"loan"`
	Insurance float64 `json:"insurance"`
	Other     float64 `json:"other"`
}

// BreakdownDTO is a computed salary in API responses.
type BreakdownDTO struct {
	Mode            string        `json:"mode"`
	StaffType       string        `json:"staff_type"`
	Strategy        string        `json:"strategy"`
	Earnings        EarningsDTO   `json:"earnings"`
	Gross           float64       `json:"gross"`
	Deductions      DeductionsDTO `json:"deductions"`
	TotalDeductions float64       `json:"total_deductions"`
	NetSalary       float64       `json:"net_salary"`
	FullMonthSalary float64       `json:"full_month_salary"`
	PerDayRate      float64       `json:"per_day_rate"`
	WorkingDays     float64       `json:"working_days"`
	TotalMonthDays  float64       `json:"total_month_days"`
	DailyRatio      float64       `json:"daily_ratio"`
	IsProRata       bool          `json:"is_pro_rata"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// PreviewDTO is a breakdown plus the slab-table tax estimate.
type PreviewDTO struct {
	Breakdown         BreakdownDTO `json:"breakdown"`
	MonthlyPTEstimate float64      `json:"monthly_pt_estimate"`
	AnnualPTEstimate  float64      `json:"annual_pt_estimate"`
}

// ProfessionalTaxDTO is the response of the tax lookup.
type ProfessionalTaxDTO struct {
	AnnualGross float64 `json:"annual_gross"`
	AnnualTax   float64 `json:"annual_tax"`
	MonthlyTax  float64 `json:"monthly_tax"`
}

// SalaryRecordDTO represents a stored salary record.
type SalaryRecordDTO struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employee_id,omitempty"`
	EmployeeName string        `json:"employee_name"`
	Month        int           `json:"month"`
	Year         int           `json:"year"`
	PayRunID     string        `json:"pay_run_id,omitempty"`
	Inputs       salary.Inputs `json:"inputs"`
	Breakdown    BreakdownDTO  `json:"breakdown"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

func toBreakdownDTO(b salary.Breakdown) BreakdownDTO {
	e, d := b.Earnings, b.Deductions
	return BreakdownDTO{
		Mode:      string(b.Mode),
		StaffType: string(b.StaffType),
		Strategy:  string(b.Strategy),
		Earnings: EarningsDTO{
			Basic:      money(e.Basic),
			AGP:        money(e.AGP),
			GradePay:   money(e.GradePay),
			DA:         money(e.DA),
			HRA:        money(e.HRA),
			TA:         money(e.TA),
			CLA:        money(e.CLA),
			Medical:    money(e.Medical),
			Special:    money(e.Special),
			Conveyance: money(e.Conveyance),
			Others:     money(e.Others),
		},
		Gross: money(b.Gross),
		Deductions: DeductionsDTO{
			TDS:       money(d.TDS),
			EPF:       money(d.EPF),
			Advance:   money(d.Advance),
			PT:        money(d.PT),
			ESI:       money(d.ESI),
			Loan:      money(d.Loan),
			Insurance: money(d.Insurance),
			Other:     money(d.Other),
		},
		TotalDeductions: money(b.TotalDeductions),
		NetSalary:       money(b.NetSalary),
		FullMonthSalary: money(b.FullMonthSalary),
		PerDayRate:      money(b.PerDayRate),
		WorkingDays:     money(b.WorkingDays),
		TotalMonthDays:  money(b.TotalMonthDays),
		DailyRatio:      b.DailyRatio.Round(4).InexactFloat64(),
		IsProRata:       b.IsProRata,
		Warnings:        payrun.Warnings(b),
	}
}

func toSalaryRecordDTO(rec sqlite.SalaryRecord) SalaryRecordDTO {
	return SalaryRecordDTO{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		EmployeeName: rec.EmployeeName,
		Month:        rec.Month,
		Year:         rec.Year,
		PayRunID:     rec.PayRunID,
		Inputs:       rec.Inputs,
		Breakdown:    toBreakdownDTO(rec.Breakdown),
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    rec.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PAY RUNS
// =============================================================================

// PayRunRequest computes salaries for several employees in one period.
type PayRunRequest struct {
	Month     int              `json:"month" validate:"required,min=1,max=12"`
	Year      int              `json:"year" validate:"required,min=1900,max=9999"`
	Save      bool             `json:"save"`
	Employees []PayRunEmployee `json:"employees" validate:"required,min=1,dive"`
}

// PayRunEmployee is one line of a pay run request.
type PayRunEmployee struct {
	SalaryRequest
	EmployeeName string `json:"employee_name"`
}

// PayRunResultDTO is one computed line of a pay run.
type PayRunResultDTO struct {
	EmployeeID   string       `json:"employee_id,omitempty"`
	EmployeeName string       `json:"employee_name"`
	Breakdown    BreakdownDTO `json:"breakdown"`
}

// PayRunSummaryDTO aggregates a pay run.
type PayRunSummaryDTO struct {
	EmployeeCount   int            `json:"employee_count"`
	TotalGross      float64        `json:"total_gross"`
	TotalDeductions float64        `json:"total_deductions"`
	TotalNet        float64        `json:"total_net"`
	Warnings        map[string]int `json:"warnings"`
}

// PayRunResponse is returned by POST /api/payruns.
type PayRunResponse struct {
	RunID   string            `json:"run_id,omitempty"`
	Month   int               `json:"month"`
	Year    int               `json:"year"`
	Saved   bool              `json:"saved"`
	Summary PayRunSummaryDTO  `json:"summary"`
	Results []PayRunResultDTO `json:"results"`
}

// PayRunDTO represents a recorded pay run.
type PayRunDTO struct {
	ID        string           `json:"id"`
	Month     int              `json:"month"`
	Year      int              `json:"year"`
	Saved     bool             `json:"saved"`
	Summary   PayRunSummaryDTO `json:"summary"`
	CreatedAt string           `json:"created_at"`
}

func toPayRunSummaryDTO(s payrun.Summary) PayRunSummaryDTO {
	warnings := s.Warnings
	if warnings == nil {
		warnings = map[string]int{}
	}
	return PayRunSummaryDTO{
		EmployeeCount:   s.EmployeeCount,
		TotalGross:      money(s.TotalGross),
		TotalDeductions: money(s.TotalDeductions),
		TotalNet:        money(s.TotalNet),
		Warnings:        warnings,
	}
}

func toPayRunDTO(run sqlite.PayRunRecord) PayRunDTO {
	return PayRunDTO{
		ID:    run.ID,
		Month: run.Month,
		Year:  run.Year,
		Saved: run.Saved,
		Summary: toPayRunSummaryDTO(payrun.Summary{
			EmployeeCount:   run.EmployeeCount,
			TotalGross:      run.TotalGross,
			TotalDeductions: run.TotalDeductions,
			TotalNet:        run.TotalNet,
			Warnings:        run.Warnings,
		}),
		CreatedAt: run.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// COMMON
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// rawInputs flattens a JSON inputs object into the string form the salary
// parser expects. Values that are neither numbers nor strings become blank.
func rawInputs(in map[string]any) salary.RawInputs {
	raw := make(salary.RawInputs, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			raw[k] = val
		case json.Number:
			raw[k] = val.String()
		case float64:
			raw[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil, bool:
			raw[k] = ""
		default:
			raw[k] = fmt.Sprint(val)
		}
	}
	return raw
}
