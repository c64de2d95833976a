package harness

// Outcome is the result of one case.
type Outcome string

const (
	OutcomePassed     Outcome = "passed"
	OutcomeFailed     Outcome = "failed"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeDeselected Outcome = "deselected"
)

// CaseResult records one executed (or deselected) case.
type CaseResult struct {
	// ID names the case, e.g. "age_in_range[row=3]" or "active_flag[id=2-true]".
	ID string `json:"id"`

	// Check is the check the case belongs to.
	Check string `json:"check"`

	// Markers are the markers of the owning check.
	Markers []string `json:"markers,omitempty"`

	// Outcome is empty for collected cases that have not run.
	Outcome Outcome `json:"outcome,omitempty"`

	// Kind is the failure kind the check produced, if any.
	Kind string `json:"kind,omitempty"`

	// Message explains a failed or skipped case.
	Message string `json:"message,omitempty"`
}

// Summary counts cases by outcome.
type Summary struct {
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Deselected int `json:"deselected"`
	Total      int `json:"total"`
}

// Result is the outcome of running a suite against one data file.
type Result struct {
	RunID    string `json:"run_id"`
	Suite    string `json:"suite"`
	DataFile string `json:"data_file"`

	// Pass is true when no case failed.
	Pass bool `json:"pass"`

	Summary Summary      `json:"summary"`
	Cases   []CaseResult `json:"cases"`
}

// NewResult creates a new passing result with no cases.
func NewResult(runID, suite, dataFile string) *Result {
	return &Result{
		RunID:    runID,
		Suite:    suite,
		DataFile: dataFile,
		Pass:     true,
		Cases:    []CaseResult{},
	}
}

// Add appends a case and updates the summary.
func (r *Result) Add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	r.Summary.Total++
	switch c.Outcome {
	case OutcomePassed:
		r.Summary.Passed++
	case OutcomeFailed:
		r.Summary.Failed++
		r.Pass = false
	case OutcomeSkipped:
		r.Summary.Skipped++
	case OutcomeDeselected:
		r.Summary.Deselected++
	}
}

// Failures returns the failed cases in run order.
func (r *Result) Failures() []CaseResult {
	var failed []CaseResult
	for _, c := range r.Cases {
		if c.Outcome == OutcomeFailed {
			failed = append(failed, c)
		}
	}
	return failed
}
