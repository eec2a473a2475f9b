/*
Package sqlite provides a SQLite-backed salary record store and employee
directory.

PURPOSE:
  The salary engine never persists anything itself. This package is the
  persistence collaborator that sits beside it: it stores computed
  breakdowns per employee and period, the employee directory used to pick
  who a breakdown belongs to, and a log of batch pay runs.

KEY TABLES:
  employees:       Directory of employees (name, staff type, designation)
  salary_records:  One record per (employee_name, month, year); the raw
                   inputs and the computed breakdown are stored as JSON
  pay_runs:        Summary of each batch run (totals, warning counts)

CREATE OR UPDATE:
  SaveSalaryRecord upserts on (employee_name, month, year). Saving the same
  employee and period twice replaces the earlier calculation and keeps the
  original record ID and created_at.

IDENTIFIERS:
  New salary records and pay runs get a random UUID when the caller does
  not supply an ID.

CONCURRENCY:
  Uses sync.RWMutex around the connection; SQLite itself runs in WAL mode
  so readers don't block each other.

USAGE:
  store, err := sqlite.New("./data/salary.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  rec, err := store.SaveSalaryRecord(ctx, sqlite.SalaryRecord{
      EmployeeName: "A. Kulkarni", Month: 4, Year: 2026, Breakdown: b,
  })

SEE ALSO:
  - salary/engine.go: Produces the breakdowns stored here
  - payrun/payrun.go: Batch runs that save through this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/salary-engine/salary"
)

// ErrNotFound is returned by delete operations when no row matched.
var ErrNotFound = errors.New("record not found")

// Store implements salary record, employee and pay-run persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each new connection to ":memory:" is a fresh database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees (directory)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		staff_type TEXT NOT NULL,
		designation TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_name
		ON employees(name);

	-- Salary records (one per employee and period)
	CREATE TABLE IF NOT EXISTS salary_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT,
		employee_name TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		staff_type TEXT NOT NULL,
		mode TEXT NOT NULL,
		gross TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		inputs_json TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		pay_run_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_name, month, year)
	);

	CREATE INDEX IF NOT EXISTS idx_salary_records_period
		ON salary_records(year, month);
	CREATE INDEX IF NOT EXISTS idx_salary_records_pay_run
		ON salary_records(pay_run_id) WHERE pay_run_id IS NOT NULL;

	-- Pay runs (batch computation summaries)
	CREATE TABLE IF NOT EXISTS pay_runs (
		id TEXT PRIMARY KEY,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		employee_count INTEGER NOT NULL,
		total_gross TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		total_net TEXT NOT NULL,
		warnings_json TEXT,
		saved BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pay_runs_period
		ON pay_runs(year, month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// Employee represents an employee record.
type Employee struct {
	ID          string
	Name        string
	StaffType   salary.StaffType
	Designation string
	CreatedAt   time.Time
}

// SaveEmployee saves an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, staff_type, designation, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			staff_type = excluded.staff_type,
			designation = excluded.designation
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, string(emp.StaffType), nullString(emp.Designation),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID. Returns nil when not found.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp Employee
	var staffType, createdAt string
	var designation sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, staff_type, designation, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &staffType, &designation, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	emp.StaffType = salary.StaffType(staffType)
	emp.Designation = designation.String
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, staff_type, designation, created_at FROM employees ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var staffType, createdAt string
		var designation sql.NullString
		if err := rows.Scan(&emp.ID, &emp.Name, &staffType, &designation, &createdAt); err != nil {
			return nil, err
		}
		emp.StaffType = salary.StaffType(staffType)
		emp.Designation = designation.String
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee. Salary records are kept.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return execAffecting(ctx, s.db, "DELETE FROM employees WHERE id = ?", id)
}

// =============================================================================
// SALARY RECORDS
// =============================================================================

// SalaryRecord is a stored, computed salary for one employee and period.
type SalaryRecord struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Month        int
	Year         int
	Inputs       salary.Inputs
	Breakdown    salary.Breakdown
	PayRunID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecordFilter narrows ListSalaryRecords. Zero values match everything.
type RecordFilter struct {
	Month        int
	Year         int
	EmployeeName string
	PayRunID     string
}

// SaveSalaryRecord creates or updates the record for the employee and
// period, and returns the stored record.
func (s *Store) SaveSalaryRecord(ctx context.Context, rec SalaryRecord) (*SalaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := upsertSalaryRecord(ctx, s.db, rec); err != nil {
		return nil, err
	}
	return getSalaryRecordByPeriod(ctx, s.db, rec.EmployeeName, rec.Month, rec.Year)
}

// SaveSalaryRecords upserts a batch atomically.
func (s *Store) SaveSalaryRecords(ctx context.Context, recs []SalaryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if err := upsertSalaryRecord(ctx, tx, rec); err != nil {
			return fmt.Errorf("failed to save record for %q: %w", rec.EmployeeName, err)
		}
	}
	return tx.Commit()
}

// GetSalaryRecord retrieves a record by ID. Returns nil when not found.
func (s *Store) GetSalaryRecord(ctx context.Context, id string) (*SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, err := querySalaryRecords(ctx, s.db, salaryRecordColumns+" WHERE id = ?", id)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// ListSalaryRecords returns records matching filter, newest period first.
func (s *Store) ListSalaryRecords(ctx context.Context, filter RecordFilter) ([]SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if filter.Month != 0 {
		where = append(where, "month = ?")
		args = append(args, filter.Month)
	}
	if filter.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.EmployeeName != "" {
		where = append(where, "employee_name = ?")
		args = append(args, filter.EmployeeName)
	}
	if filter.PayRunID != "" {
		where = append(where, "pay_run_id = ?")
		args = append(args, filter.PayRunID)
	}

	query := salaryRecordColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year DESC, month DESC, employee_name"

	return querySalaryRecords(ctx, s.db, query, args...)
}

// DeleteSalaryRecord removes a record by ID.
func (s *Store) DeleteSalaryRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return execAffecting(ctx, s.db, "DELETE FROM salary_records WHERE id = ?", id)
}

const salaryRecordColumns = `
	SELECT id, employee_id, employee_name, month, year, inputs_json, breakdown_json,
		pay_run_id, created_at, updated_at
	FROM salary_records`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func upsertSalaryRecord(ctx context.Context, db execer, rec SalaryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	inputsJSON, err := json.Marshal(rec.Inputs)
	if err != nil {
		return fmt.Errorf("failed to encode inputs: %w", err)
	}
	breakdownJSON, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `
		INSERT INTO salary_records (
			id, employee_id, employee_name, month, year, staff_type, mode,
			gross, total_deductions, net_salary, inputs_json, breakdown_json,
			pay_run_id, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_name, month, year) DO UPDATE SET
			employee_id = excluded.employee_id,
			staff_type = excluded.staff_type,
			mode = excluded.mode,
			gross = excluded.gross,
			total_deductions = excluded.total_deductions,
			net_salary = excluded.net_salary,
			inputs_json = excluded.inputs_json,
			breakdown_json = excluded.breakdown_json,
			pay_run_id = excluded.pay_run_id,
			updated_at = excluded.updated_at
	`

	b := rec.Breakdown
	_, err = db.ExecContext(ctx, query,
		rec.ID, nullString(rec.EmployeeID), rec.EmployeeName, rec.Month, rec.Year,
		string(b.StaffType), string(b.Mode),
		b.Gross.String(), b.TotalDeductions.String(), b.NetSalary.String(),
		string(inputsJSON), string(breakdownJSON),
		nullString(rec.PayRunID), now, now,
	)
	return err
}

func getSalaryRecordByPeriod(ctx context.Context, db querier, employeeName string, month, year int) (*SalaryRecord, error) {
	recs, err := querySalaryRecords(ctx, db,
		salaryRecordColumns+" WHERE employee_name = ? AND month = ? AND year = ?",
		employeeName, month, year,
	)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("salary record for %q %d/%d: %w", employeeName, month, year, ErrNotFound)
	}
	return &recs[0], nil
}

func querySalaryRecords(ctx context.Context, db querier, query string, args ...any) ([]SalaryRecord, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []SalaryRecord
	for rows.Next() {
		var rec SalaryRecord
		var employeeID, payRunID sql.NullString
		var inputsJSON, breakdownJSON, createdAt, updatedAt string
		if err := rows.Scan(&rec.ID, &employeeID, &rec.EmployeeName, &rec.Month, &rec.Year,
			&inputsJSON, &breakdownJSON, &payRunID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(inputsJSON), &rec.Inputs); err != nil {
			return nil, fmt.Errorf("failed to decode inputs of %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(breakdownJSON), &rec.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown of %s: %w", rec.ID, err)
		}
		rec.EmployeeID = employeeID.String
		rec.PayRunID = payRunID.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// =============================================================================
// PAY RUNS
// =============================================================================

// PayRunRecord summarizes one batch computation.
type PayRunRecord struct {
	ID              string
	Month           int
	Year            int
	EmployeeCount   int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	Warnings        map[string]int
	Saved           bool
	CreatedAt       time.Time
}

// SavePayRun records a pay run summary and returns its ID.
func (s *Store) SavePayRun(ctx context.Context, run PayRunRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertPayRun(ctx, s.db, run)
}

// SavePayRunWithRecords writes a run's salary records and its summary row
// in one transaction. Either both land or neither does.
func (s *Store) SavePayRunWithRecords(ctx context.Context, run PayRunRecord, recs []SalaryRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	for _, rec := range recs {
		rec.PayRunID = run.ID
		if err := upsertSalaryRecord(ctx, tx, rec); err != nil {
			return "", fmt.Errorf("failed to save record for %q: %w", rec.EmployeeName, err)
		}
	}
	id, err := insertPayRun(ctx, tx, run)
	if err != nil {
		return "", fmt.Errorf("failed to record pay run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func insertPayRun(ctx context.Context, db execer, run PayRunRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	warningsJSON, err := json.Marshal(run.Warnings)
	if err != nil {
		return "", err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO pay_runs (id, month, year, employee_count, total_gross,
			total_deductions, total_net, warnings_json, saved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Month, run.Year, run.EmployeeCount,
		run.TotalGross.String(), run.TotalDeductions.String(), run.TotalNet.String(),
		string(warningsJSON), run.Saved,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListPayRuns returns pay runs, newest first. A zero year lists all.
func (s *Store) ListPayRuns(ctx context.Context, year int) ([]PayRunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, month, year, employee_count, total_gross, total_deductions,
			total_net, warnings_json, saved, created_at
		FROM pay_runs`
	var args []any
	if year != 0 {
		query += " WHERE year = ?"
		args = append(args, year)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []PayRunRecord
	for rows.Next() {
		var run PayRunRecord
		var gross, deductions, net, createdAt string
		var warningsJSON sql.NullString
		if err := rows.Scan(&run.ID, &run.Month, &run.Year, &run.EmployeeCount,
			&gross, &deductions, &net, &warningsJSON, &run.Saved, &createdAt); err != nil {
			return nil, err
		}
		run.TotalGross = parseDecimal(gross)
		run.TotalDeductions = parseDecimal(deductions)
		run.TotalNet = parseDecimal(net)
		if warningsJSON.Valid && warningsJSON.String != "" {
			if err := json.Unmarshal([]byte(warningsJSON.String), &run.Warnings); err != nil {
				return nil, fmt.Errorf("failed to decode warnings for pay run %s: %w", run.ID, err)
			}
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITY
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"salary_records", "pay_runs", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func execAffecting(ctx context.Context, db execer, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
