package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/csvcheck/internal/validator"
)

// ExpectationError is returned when a check with an expect clause does not
// fail the way the suite says it should.
type ExpectationError struct {
	Case     string         // Case id
	Expected validator.Kind // Kind named by the expect clause
	Actual   validator.Kind // Kind the check produced; empty if it passed
	Err      error          // Error the check produced, if any
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: expected %s", e.Case, e.Expected)
	if e.Actual == "" {
		buf.WriteString(", check passed")
		return buf.String()
	}
	fmt.Fprintf(&buf, ", got %s", e.Actual)
	if e.Err != nil {
		fmt.Fprintf(&buf, " (%v)", e.Err)
	}
	return buf.String()
}

func (e *ExpectationError) Unwrap() error {
	return e.Err
}

// evaluate turns the error a check returned into a case outcome.
//
// Without an expect clause a nil error passes. With one, the case passes
// only when err carries exactly the expected kind.
func evaluate(c *CaseResult, expect *ExpectClause, err error) {
	if err != nil {
		c.Kind = string(validator.KindOf(err))
	}

	if expect == nil {
		if err == nil {
			c.Outcome = OutcomePassed
			return
		}
		c.Outcome = OutcomeFailed
		c.Message = err.Error()
		return
	}

	want := validator.Kind(expect.Kind)
	if err != nil && validator.KindOf(err) == want {
		c.Outcome = OutcomePassed
		return
	}
	c.Outcome = OutcomeFailed
	c.Message = (&ExpectationError{
		Case:     c.ID,
		Expected: want,
		Actual:   validator.KindOf(err),
		Err:      err,
	}).Error()
}
