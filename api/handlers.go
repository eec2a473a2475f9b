/*
handlers.go - HTTP API handlers for the salary engine

PURPOSE:
  Exposes salary computation, the employee directory, saved salary records
  and pay runs via REST API. Handles HTTP request/response and JSON, and
  delegates every calculation to the salary engine.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create or update employee
    GET    /api/employees/{id}            Get employee details
    DELETE /api/employees/{id}            Remove employee

  Salary:
    POST   /api/salary/preview            Compute a breakdown, nothing saved
    GET    /api/salary/professional-tax   Slab lookup (?annual_gross=)
    GET    /api/salary/rules              Rule set in effect

  Records:
    GET    /api/salary/records            List (?month=&year=&employee=)
    POST   /api/salary/records            Compute and save for a period
    GET    /api/salary/records/{id}       Get record
    DELETE /api/salary/records/{id}       Delete record

  Pay runs:
    GET    /api/payruns                   List recorded runs (?year=)
    POST   /api/payruns                   Compute many employees, optionally save

  Demo:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Reset and load a scenario
    POST   /api/reset                     Clear all data

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Engine: Salary computation under the configured rules
  - Runner: Batch computation over the same engine

REQUEST FLOW:
  1. Decode and validate the request
  2. Resolve the employee (directory lookup when employee_id is given)
  3. Normalize raw inputs and labels
  4. Compute with the engine; the preview and the save path share it
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, unknown staff type, missing employee
  - 404: Resource not found
  - 422: Breakdown that cannot be saved (zero gross)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/factory"
	"github.com/warp/salary-engine/payrun"
	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

var errEmployeeNotFound = errors.New("employee not found")

// Pay runs per second per client, and the burst allowed above that.
const (
	payRunRate  = 2
	payRunBurst = 5
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Engine       *salary.Engine
	Runner       *payrun.Runner
	RulesFactory *factory.RulesFactory

	// PayRunLimiter throttles POST /api/payruns per client.
	PayRunLimiter *IPRateLimiter

	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates a new handler. A nil logger disables logging.
func NewHandler(store *sqlite.Store, engine *salary.Engine, runner *payrun.Runner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:         store,
		Engine:        engine,
		Runner:        runner,
		RulesFactory:  factory.NewRulesFactory(),
		PayRunLimiter: NewIPRateLimiter(payRunRate, payRunBurst),
		validate:      newValidator(),
		logger:        logger.Named("api"),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeInternal(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeInternal(w, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	staff, err := salary.ParseStaffType(req.StaffType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid staff_type", err)
		return
	}

	emp := sqlite.Employee{
		ID:          strings.TrimSpace(req.ID),
		Name:        strings.TrimSpace(req.Name),
		StaffType:   staff,
		Designation: strings.TrimSpace(req.Designation),
	}
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeInternal(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee from the directory.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// PreviewSalary computes a breakdown without saving it.
func (h *Handler) PreviewSalary(w http.ResponseWriter, r *http.Request) {
	var req SalaryRequest
	if !h.decode(w, r, &req) {
		return
	}

	_, staff, err := h.resolveEmployee(r, req.EmployeeID, "", req.StaffType)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	p := h.Engine.Preview(salary.ParseInputs(rawInputs(req.Inputs)), salary.ParseCalculationMode(req.Mode), staff)
	writeJSON(w, http.StatusOK, PreviewDTO{
		Breakdown:         toBreakdownDTO(p.Breakdown),
		MonthlyPTEstimate: money(p.MonthlyPTEstimate),
		AnnualPTEstimate:  money(p.AnnualPTEstimate),
	})
}

// GetProfessionalTax looks up the annual professional tax for a gross.
func (h *Handler) GetProfessionalTax(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("annual_gross")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "annual_gross is required", nil)
		return
	}

	gross := salary.ParseNonNegative(raw)
	annual := h.Engine.Rules.ProfessionalTax(gross)
	writeJSON(w, http.StatusOK, ProfessionalTaxDTO{
		AnnualGross: money(gross),
		AnnualTax:   money(annual),
		MonthlyTax:  money(annual.Div(monthsPerYear)),
	})
}

// GetRules returns the rule set in effect as a rules document.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.RulesFactory.ToJSON(h.Engine.Rules))
}

// =============================================================================
// SALARY RECORD HANDLERS
// =============================================================================

// ListSalaryRecords returns saved records, optionally filtered by period
// and employee name.
func (h *Handler) ListSalaryRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, err := optionalInt(q.Get("month"))
	if err != nil || month < 0 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	year, err := optionalInt(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	recs, err := h.Store.ListSalaryRecords(r.Context(), sqlite.RecordFilter{
		Month:        month,
		Year:         year,
		EmployeeName: strings.TrimSpace(q.Get("employee")),
	})
	if err != nil {
		h.writeInternal(w, "Failed to list salary records", err)
		return
	}

	dtos := make([]SalaryRecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toSalaryRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveSalaryRecord computes a salary and stores it for the period. Saving
// the same employee and period again replaces the earlier record.
func (h *Handler) SaveSalaryRecord(w http.ResponseWriter, r *http.Request) {
	var req SaveSalaryRequest
	if !h.decode(w, r, &req) {
		return
	}

	name, staff, err := h.resolveEmployee(r, req.EmployeeID, req.EmployeeName, req.StaffType)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	in := salary.ParseInputs(rawInputs(req.Inputs))
	b := h.Engine.Compute(in, salary.ParseCalculationMode(req.Mode), staff)
	if err := payrun.CheckSavable(name, b); err != nil {
		h.writeDomainError(w, err)
		return
	}

	rec, err := h.Store.SaveSalaryRecord(r.Context(), sqlite.SalaryRecord{
		EmployeeID:   req.EmployeeID,
		EmployeeName: name,
		Month:        req.Month,
		Year:         req.Year,
		Inputs:       in,
		Breakdown:    b,
	})
	if err != nil {
		h.writeInternal(w, "Failed to save salary record", err)
		return
	}

	h.logger.Info("salary record saved",
		zap.String("record_id", rec.ID),
		zap.String("employee", name),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Bool(payrun.WarnNegativeNet, b.IsNegativeNet()),
	)
	writeJSON(w, http.StatusCreated, toSalaryRecordDTO(*rec))
}

// GetSalaryRecord returns a single record.
func (h *Handler) GetSalaryRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetSalaryRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeInternal(w, "Failed to get salary record", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Salary record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryRecordDTO(*rec))
}

// DeleteSalaryRecord removes a record.
func (h *Handler) DeleteSalaryRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteSalaryRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAY RUN HANDLERS
// =============================================================================

// CreatePayRun computes salaries for every listed employee and, when asked,
// saves them as one run.
func (h *Handler) CreatePayRun(w http.ResponseWriter, r *http.Request) {
	var req PayRunRequest
	if !h.decode(w, r, &req) {
		return
	}

	jobs := make([]payrun.Job, len(req.Employees))
	for i, e := range req.Employees {
		name, staff, err := h.resolveEmployee(r, e.EmployeeID, e.EmployeeName, e.StaffType)
		if err != nil {
			h.writeDomainError(w, fmt.Errorf("employees[%d]: %w", i, err))
			return
		}
		jobs[i] = payrun.Job{
			EmployeeID:   e.EmployeeID,
			EmployeeName: name,
			StaffType:    staff,
			Mode:         salary.ParseCalculationMode(e.Mode),
			Inputs:       salary.ParseInputs(rawInputs(e.Inputs)),
		}
	}

	if req.Save {
		if err := payrun.CheckJobs(jobs); err != nil {
			h.writeDomainError(w, err)
			return
		}
	}

	results, summary, err := h.Runner.Run(r.Context(), jobs)
	if err != nil {
		h.writeInternal(w, "Pay run failed", err)
		return
	}

	resp := PayRunResponse{
		Month:   req.Month,
		Year:    req.Year,
		Summary: toPayRunSummaryDTO(summary),
		Results: make([]PayRunResultDTO, len(results)),
	}
	for i, res := range results {
		resp.Results[i] = PayRunResultDTO{
			EmployeeID:   res.Job.EmployeeID,
			EmployeeName: res.Job.EmployeeName,
			Breakdown:    toBreakdownDTO(res.Breakdown),
		}
	}

	if !req.Save {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	runID, err := h.Runner.Save(r.Context(), h.Store, req.Month, req.Year, results, summary)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	resp.RunID = runID
	resp.Saved = true
	writeJSON(w, http.StatusCreated, resp)
}

// ListPayRuns returns recorded pay runs.
func (h *Handler) ListPayRuns(w http.ResponseWriter, r *http.Request) {
	year, err := optionalInt(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	runs, err := h.Store.ListPayRuns(r.Context(), year)
	if err != nil {
		h.writeInternal(w, "Failed to list pay runs", err)
		return
	}

	dtos := make([]PayRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toPayRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeInternal(w, "Failed to reset database", err)
		return
	}
	h.logger.Warn("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

var monthsPerYear = decimal.NewFromInt(12)

// resolveEmployee settles who a computation is for. When employeeID is set
// the directory fills in a missing name and staff type.
func (h *Handler) resolveEmployee(r *http.Request, employeeID, name, staffType string) (string, salary.StaffType, error) {
	name = strings.TrimSpace(name)
	if employeeID != "" {
		emp, err := h.Store.GetEmployee(r.Context(), employeeID)
		if err != nil {
			return "", "", err
		}
		if emp == nil {
			return "", "", fmt.Errorf("%w: %s", errEmployeeNotFound, employeeID)
		}
		if name == "" {
			name = emp.Name
		}
		if strings.TrimSpace(staffType) == "" {
			staffType = string(emp.StaffType)
		}
	}

	staff, err := salary.ParseStaffType(staffType)
	if err != nil {
		return "", "", err
	}
	return name, staff, nil
}

// decode reads and validates a JSON body. On failure it writes the error
// response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", validationDetails(err))
		return false
	}
	return true
}

// writeDomainError maps engine, store and pay run errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payrun.ErrEmployeeRequired):
		writeError(w, http.StatusBadRequest, "Employee is required", err)
	case errors.Is(err, payrun.ErrDuplicateEmployee):
		writeError(w, http.StatusBadRequest, "Employee listed more than once", err)
	case errors.Is(err, salary.ErrUnknownStaffType):
		writeError(w, http.StatusBadRequest, "Invalid staff_type", err)
	case errors.Is(err, payrun.ErrZeroGross):
		writeError(w, http.StatusUnprocessableEntity, "Gross salary is zero", err)
	case errors.Is(err, errEmployeeNotFound):
		writeError(w, http.StatusNotFound, "Employee not found", err)
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		h.writeInternal(w, "Internal error", err)
	}
}

func (h *Handler) writeInternal(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, zap.Error(err))
	writeError(w, http.StatusInternalServerError, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	resp := ErrorResponse{Error: message}
	switch d := details.(type) {
	case nil:
	case error:
		resp.Details = d.Error()
	default:
		resp.Details = d
	}
	writeJSON(w, status, resp)
}

// validationDetails turns validator errors into "field is required" style
// messages keyed by json field name.
func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			details = append(details, fe.Field()+" is required")
			continue
		}
		details = append(details, fe.Field()+" is invalid")
	}
	return details
}

func optionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
