// Package validator implements the battery of checks run against a roster
// record file.
//
// Every check takes the path of the file, reads it in full through
// records.Read and returns before holding any handle. Checks never write to
// the file and share no state, so they may run in any order or in parallel.
//
// A nil error means the check passed. A failure is one of the typed errors in
// errors.go, each carrying enough context (expected and actual values, the
// offending row) to diagnose the problem without re-running.
package validator

import (
	"log/slog"
	"slices"

	"github.com/roach88/csvcheck/internal/logging"
)

// Column names the checks read.
const (
	ColumnID       = "id"
	ColumnName     = "name"
	ColumnAge      = "age"
	ColumnEmail    = "email"
	ColumnIsActive = "is_active"
)

// DefaultHeader is the exact, ordered header a roster file must carry.
var DefaultHeader = []string{ColumnID, ColumnName, ColumnAge, ColumnEmail, ColumnIsActive}

// Default inclusive age bounds.
const (
	DefaultMinAge = 0
	DefaultMaxAge = 100
)

// DuplicateIDPolicy decides what LoadActiveFlags does when an id repeats.
type DuplicateIDPolicy string

const (
	// LastWriteWins keeps the value from the later row. Each overwrite is
	// logged at WARN.
	LastWriteWins DuplicateIDPolicy = "last_write_wins"

	// FirstWriteWins keeps the value from the earlier row.
	FirstWriteWins DuplicateIDPolicy = "first_write_wins"

	// RejectDuplicates fails the load with a DuplicateIDError.
	RejectDuplicates DuplicateIDPolicy = "reject"
)

// ValidDuplicateIDPolicies lists the accepted policy values.
var ValidDuplicateIDPolicies = []DuplicateIDPolicy{LastWriteWins, FirstWriteWins, RejectDuplicates}

// Validator runs checks against record files.
// A Validator holds only configuration and is safe for concurrent use.
type Validator struct {
	header []string
	minAge int
	maxAge int
	dupIDs DuplicateIDPolicy
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithExpectedHeader overrides DefaultHeader.
func WithExpectedHeader(header []string) Option {
	return func(v *Validator) {
		v.header = slices.Clone(header)
	}
}

// WithAgeRange overrides the inclusive age bounds.
func WithAgeRange(lo, hi int) Option {
	return func(v *Validator) {
		v.minAge = lo
		v.maxAge = hi
	}
}

// WithDuplicateIDPolicy sets how LoadActiveFlags treats repeated ids.
func WithDuplicateIDPolicy(p DuplicateIDPolicy) Option {
	return func(v *Validator) {
		v.dupIDs = p
	}
}

// New creates a Validator with the default roster contract.
func New(opts ...Option) *Validator {
	v := &Validator{
		header: slices.Clone(DefaultHeader),
		minAge: DefaultMinAge,
		maxAge: DefaultMaxAge,
		dupIDs: LastWriteWins,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ExpectedHeader returns a copy of the header the validator requires.
func (v *Validator) ExpectedHeader() []string {
	return slices.Clone(v.header)
}
