package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/csvcheck/internal/logging"
	"github.com/roach88/csvcheck/internal/validator"
)

// RunIDGenerator produces the id stamped on every Result.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Harness runs suites against data files.
type Harness struct {
	logger *slog.Logger
	runIDs RunIDGenerator
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used by the harness and its validators.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRunIDGenerator replaces the UUIDv7 run id generator.
// Tests use testutil.FixedRunIDGenerator for reproducible reports.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(h *Harness) {
		if gen != nil {
			h.runIDs = gen
		}
	}
}

// New creates a Harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: logging.Discard(),
		runIDs: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RunOptions narrows a run.
type RunOptions struct {
	// Markers is a marker expression. Empty selects every check.
	Markers string
}

// Run executes suite against the file at dataPath and returns the result.
//
// Checks run sequentially in suite order. Each check expands into cases:
// one per data row for age_in_range, one per (id, expected) pair for
// active_flag, one otherwise. Checks not selected by opts.Markers are
// recorded as deselected without touching the file.
//
// A failing case never aborts the run. Run returns an error only for an
// invalid marker expression or a cancelled context, which is checked
// between cases.
func (h *Harness) Run(ctx context.Context, suite *Suite, dataPath string, opts RunOptions) (*Result, error) {
	expr, err := ParseMarkerExpr(opts.Markers, suite.Markers)
	if err != nil {
		return nil, err
	}

	v := validator.New(append(suite.validatorOptions(), validator.WithLogger(h.logger))...)
	result := NewResult(h.runIDs.Generate(), suite.Name, dataPath)

	h.logger.Info("run started",
		"run_id", result.RunID,
		"suite", suite.Name,
		"data_file", dataPath,
		"markers", expr.String(),
	)

	for _, spec := range suite.Checks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s cancelled at check %s: %w", result.RunID, spec.Check, err)
		}

		if !expr.Match(spec.Markers) {
			for _, c := range plannedCases(spec) {
				c.Outcome = OutcomeDeselected
				result.Add(c)
			}
			continue
		}

		if err := h.runCheck(ctx, v, spec, dataPath, result); err != nil {
			return nil, err
		}
	}

	h.logger.Info("run finished",
		"run_id", result.RunID,
		"pass", result.Pass,
		"passed", result.Summary.Passed,
		"failed", result.Summary.Failed,
		"skipped", result.Summary.Skipped,
		"deselected", result.Summary.Deselected,
	)

	return result, nil
}

// runCheck expands one selected check into cases and records them.
func (h *Harness) runCheck(ctx context.Context, v *validator.Validator, spec CheckSpec, path string, result *Result) error {
	record := func(id string, err error) {
		c := CaseResult{ID: id, Check: spec.Check, Markers: spec.Markers}
		evaluate(&c, spec.Expect, err)
		h.logger.Debug("case completed",
			"case", c.ID,
			"outcome", c.Outcome,
			"kind", c.Kind,
		)
		result.Add(c)
	}

	switch spec.Check {
	case CheckNonEmpty:
		record(spec.Check, v.CheckNonEmpty(path))
	case CheckHasDataRows:
		record(spec.Check, v.CheckHasDataRows(path))
	case CheckHeaderShape:
		record(spec.Check, v.CheckHeaderShape(path))
	case CheckEmailValid:
		record(spec.Check, v.CheckEmailColumnValid(path))
	case CheckNoDuplicateRows:
		record(spec.Check, v.CheckNoDuplicateRows(path))

	case CheckAgeInRange:
		rows := 0
		for r := range v.CheckAgeInRange(path) {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run %s cancelled at %s: %w", result.RunID, ageCaseID(r.Row), err)
			}
			rows++
			record(ageCaseID(r.Row), r.Err)
		}
		if rows == 0 {
			result.Add(CaseResult{
				ID:      spec.Check,
				Check:   spec.Check,
				Markers: spec.Markers,
				Outcome: OutcomeSkipped,
				Message: "no data rows",
			})
		}

	case CheckActiveFlag:
		for _, ac := range spec.Cases {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run %s cancelled at %s: %w", result.RunID, activeCaseID(ac), err)
			}
			record(activeCaseID(ac), v.CheckActiveFlag(path, ac.ID, ac.Expected))
		}

	default:
		// validateSuite rejects unknown checks; a hand-built Suite may not.
		return fmt.Errorf("unknown check %q", spec.Check)
	}
	return nil
}

// Collect lists the cases Run would produce without reading any data file.
// Selected cases have an empty Outcome; the rest are marked deselected.
// Per-row age cases collapse into a single "age_in_range[row=*]" entry.
func (h *Harness) Collect(suite *Suite, markers string) ([]CaseResult, error) {
	expr, err := ParseMarkerExpr(markers, suite.Markers)
	if err != nil {
		return nil, err
	}

	var cases []CaseResult
	for _, spec := range suite.Checks {
		selected := expr.Match(spec.Markers)
		for _, c := range plannedCases(spec) {
			if !selected {
				c.Outcome = OutcomeDeselected
			}
			cases = append(cases, c)
		}
	}
	return cases, nil
}

// plannedCases returns the cases of spec as far as they are known before
// the data file is read.
func plannedCases(spec CheckSpec) []CaseResult {
	switch spec.Check {
	case CheckAgeInRange:
		return []CaseResult{{ID: spec.Check + "[row=*]", Check: spec.Check, Markers: spec.Markers}}
	case CheckActiveFlag:
		cases := make([]CaseResult, 0, len(spec.Cases))
		for _, ac := range spec.Cases {
			cases = append(cases, CaseResult{ID: activeCaseID(ac), Check: spec.Check, Markers: spec.Markers})
		}
		return cases
	default:
		return []CaseResult{{ID: spec.Check, Check: spec.Check, Markers: spec.Markers}}
	}
}

// ageCaseID names an age case. Row 0 means the failure concerns the file.
func ageCaseID(row int) string {
	if row == 0 {
		return CheckAgeInRange
	}
	return fmt.Sprintf("%s[row=%d]", CheckAgeInRange, row)
}

func activeCaseID(ac ActiveCase) string {
	return fmt.Sprintf("%s[id=%d-%t]", CheckActiveFlag, ac.ID, ac.Expected)
}
