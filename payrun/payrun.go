/*
Package payrun computes salaries for many employees at once.

PURPOSE:
  A pay run takes one job per employee (staff type, calculation mode and
  the raw figures entered for the month), computes every breakdown with the
  salary engine and summarizes the batch. Saving is a separate step so a run
  can be previewed before anything is written.

CONCURRENCY:
  Jobs are fanned out over a bounded errgroup. Results come back in job
  order regardless of which worker finished first. A cancelled context stops
  the run; jobs not yet started are skipped and Run returns ctx.Err().

WARNINGS:
  negative_net  Deductions exceed earnings. Allowed, but worth a look.
  zero_gross    Nothing earned. Such a breakdown cannot be saved.

USAGE:
  runner := payrun.NewRunner(salary.NewEngine(rules), 4, logger)
  results, summary, err := runner.Run(ctx, jobs)
  ...
  runID, err := runner.Save(ctx, store, 4, 2026, results, summary)

SEE ALSO:
  - salary/engine.go: The computation applied to each job
  - store/sqlite/sqlite.go: Where saved runs end up
*/
package payrun

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

// Warning codes attached to results and counted in the Summary.
const (
	WarnNegativeNet = "negative_net"
	WarnZeroGross   = "zero_gross"
)

// DefaultWorkers is used when a Runner is built with a non-positive limit.
const DefaultWorkers = 4

// =============================================================================
// TYPES
// =============================================================================

// Job is one employee's salary computation within a run.
type Job struct {
	EmployeeID   string
	EmployeeName string
	StaffType    salary.StaffType
	Mode         salary.CalculationMode
	Inputs       salary.Inputs
}

// Result pairs a job with its computed breakdown.
type Result struct {
	Job       Job
	Breakdown salary.Breakdown
	Warnings  []string
}

// Summary aggregates a run.
type Summary struct {
	EmployeeCount   int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	Warnings        map[string]int
}

// RecordStore is the persistence a run is saved to.
// The records and the run summary must be written atomically.
type RecordStore interface {
	SavePayRunWithRecords(ctx context.Context, run sqlite.PayRunRecord, recs []sqlite.SalaryRecord) (string, error)
}

// Slip is what a Renderer turns into a printable document.
type Slip struct {
	EmployeeName string
	Designation  string
	Month        int
	Year         int
	Breakdown    salary.Breakdown
}

// Renderer produces a salary slip document. No renderer ships with the
// engine; callers plug in their own format.
type Renderer interface {
	Render(w io.Writer, slip Slip) error
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes pay runs against a salary engine.
type Runner struct {
	Engine  *salary.Engine
	Workers int

	logger *zap.Logger
}

// NewRunner creates a runner. A nil logger disables logging.
func NewRunner(engine *salary.Engine, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Engine:  engine,
		Workers: workers,
		logger:  logger.Named("payrun"),
	}
}

// Run computes every job and returns results in job order.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, Summary, error) {
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := r.Engine.Compute(job.Inputs, job.Mode, job.StaffType)
			results[i] = Result{Job: job, Breakdown: b, Warnings: Warnings(b)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Warn("pay run interrupted",
			zap.Int("jobs", len(jobs)),
			zap.Error(err),
		)
		return nil, Summary{}, err
	}

	summary := Summarize(results)
	r.logger.Info("pay run computed",
		zap.Int("employees", summary.EmployeeCount),
		zap.String("total_net", summary.TotalNet.StringFixed(2)),
		zap.Int(WarnNegativeNet, summary.Warnings[WarnNegativeNet]),
		zap.Int(WarnZeroGross, summary.Warnings[WarnZeroGross]),
	)
	return results, summary, nil
}

// Save persists a computed run for the given period. Every result must pass
// CheckSavable and name a distinct employee; nothing is written otherwise.
// Returns the pay run ID.
func (r *Runner) Save(ctx context.Context, store RecordStore, month, year int, results []Result, summary Summary) (string, error) {
	if err := CheckJobs(jobsOf(results)); err != nil {
		return "", err
	}
	for _, res := range results {
		if err := CheckSavable(res.Job.EmployeeName, res.Breakdown); err != nil {
			return "", err
		}
	}

	runID := uuid.NewString()
	recs := make([]sqlite.SalaryRecord, 0, len(results))
	for _, res := range results {
		recs = append(recs, sqlite.SalaryRecord{
			EmployeeID:   res.Job.EmployeeID,
			EmployeeName: strings.TrimSpace(res.Job.EmployeeName),
			Month:        month,
			Year:         year,
			Inputs:       res.Job.Inputs,
			Breakdown:    res.Breakdown,
			PayRunID:     runID,
		})
	}

	_, err := store.SavePayRunWithRecords(ctx, sqlite.PayRunRecord{
		ID:              runID,
		Month:           month,
		Year:            year,
		EmployeeCount:   summary.EmployeeCount,
		TotalGross:      summary.TotalGross,
		TotalDeductions: summary.TotalDeductions,
		TotalNet:        summary.TotalNet,
		Warnings:        summary.Warnings,
		Saved:           true,
	}, recs)
	if err != nil {
		return "", fmt.Errorf("failed to save pay run: %w", err)
	}

	r.logger.Info("pay run saved",
		zap.String("run_id", runID),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("records", len(recs)),
	)
	return runID, nil
}

// =============================================================================
// CHECKS
// =============================================================================

// CheckSavable reports whether a breakdown may be persisted for an employee.
// A negative net salary is allowed.
func CheckSavable(employeeName string, b salary.Breakdown) error {
	if strings.TrimSpace(employeeName) == "" {
		return ErrEmployeeRequired
	}
	if b.Gross.Sign() <= 0 {
		return fmt.Errorf("%s: %w", employeeName, ErrZeroGross)
	}
	return nil
}

// CheckJobs rejects a run that names the same employee twice. Saved records
// are keyed by name and period, so the second job would replace the first.
func CheckJobs(jobs []Job) error {
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		name := strings.TrimSpace(job.EmployeeName)
		if name == "" {
			continue
		}
		if seen[name] {
			return fmt.Errorf("%s: %w", name, ErrDuplicateEmployee)
		}
		seen[name] = true
	}
	return nil
}

func jobsOf(results []Result) []Job {
	jobs := make([]Job, len(results))
	for i, res := range results {
		jobs[i] = res.Job
	}
	return jobs
}

// Warnings lists the warning codes that apply to a breakdown.
func Warnings(b salary.Breakdown) []string {
	var warnings []string
	if b.Gross.Sign() <= 0 {
		warnings = append(warnings, WarnZeroGross)
	}
	if b.IsNegativeNet() {
		warnings = append(warnings, WarnNegativeNet)
	}
	return warnings
}

// Summarize totals a set of results.
func Summarize(results []Result) Summary {
	s := Summary{
		EmployeeCount:   len(results),
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
		Warnings:        map[string]int{},
	}
	for _, res := range results {
		s.TotalGross = s.TotalGross.Add(res.Breakdown.Gross)
		s.TotalDeductions = s.TotalDeductions.Add(res.Breakdown.TotalDeductions)
		s.TotalNet = s.TotalNet.Add(res.Breakdown.NetSalary)
		for _, w := range res.Warnings {
			s.Warnings[w]++
		}
	}
	return s
}
