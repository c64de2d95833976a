package harness

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	playground "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/csvcheck/internal/validator"
)

// Suite declares the checks to run against a data file.
type Suite struct {
	// Name uniquely identifies this suite.
	Name string `yaml:"name" json:"name" validate:"required"`

	// Description explains what this suite validates.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// DataFile is the file name discovery looks for. Defaults to data.csv.
	DataFile string `yaml:"data_file,omitempty" json:"data_file,omitempty"`

	// Header overrides the expected header for header_shape.
	Header []string `yaml:"header,omitempty" json:"header,omitempty"`

	// AgeRange overrides the inclusive bounds for age_in_range.
	AgeRange *AgeRange `yaml:"age_range,omitempty" json:"age_range,omitempty"`

	// DuplicateIDs selects how active_flag treats repeated ids.
	// One of last_write_wins (default), first_write_wins, reject.
	DuplicateIDs string `yaml:"duplicate_ids,omitempty" json:"duplicate_ids,omitempty" validate:"omitempty,oneof=last_write_wins first_write_wins reject"`

	// Markers registers marker names with a short description.
	// Checks may only use registered markers.
	Markers map[string]string `yaml:"markers,omitempty" json:"markers,omitempty"`

	// Checks run in the listed order.
	Checks []CheckSpec `yaml:"checks" json:"checks" validate:"required,min=1,dive"`
}

// AgeRange holds inclusive age bounds.
type AgeRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max" validate:"gtefield=Min"`
}

// CheckSpec selects one check and its parameters.
type CheckSpec struct {
	// Check is the check name (see the Check* constants).
	Check string `yaml:"check" json:"check" validate:"required"`

	// Markers tag the check for selection with a marker expression.
	Markers []string `yaml:"markers,omitempty" json:"markers,omitempty"`

	// Cases parametrize active_flag. Required for active_flag, rejected elsewhere.
	Cases []ActiveCase `yaml:"cases,omitempty" json:"cases,omitempty"`

	// Expect, when set, inverts the check: every case must fail with Kind.
	Expect *ExpectClause `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// ActiveCase is one (id, expected) pair for active_flag.
type ActiveCase struct {
	ID       int  `yaml:"id" json:"id"`
	Expected bool `yaml:"expected" json:"expected"`
}

// ExpectClause names the failure kind a check is expected to produce.
type ExpectClause struct {
	Kind string `yaml:"kind" json:"kind" validate:"required"`
}

// Check names.
const (
	CheckNonEmpty        = "non_empty"
	CheckHasDataRows     = "has_data_rows"
	CheckHeaderShape     = "header_shape"
	CheckAgeInRange      = "age_in_range"
	CheckEmailValid      = "email_valid"
	CheckNoDuplicateRows = "no_duplicate_rows"
	CheckActiveFlag      = "active_flag"
)

// KnownChecks lists every check name in battery order.
var KnownChecks = []string{
	CheckNonEmpty,
	CheckHasDataRows,
	CheckHeaderShape,
	CheckAgeInRange,
	CheckEmailValid,
	CheckNoDuplicateRows,
	CheckActiveFlag,
}

//go:embed default_suite.yaml
var defaultSuiteYAML []byte

// DefaultSuite returns the built-in suite covering every check.
func DefaultSuite() *Suite {
	s, err := decodeYAMLSuite(defaultSuiteYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in suite is invalid: %v", err))
	}
	if err := validateSuite(s); err != nil {
		panic(fmt.Sprintf("built-in suite is invalid: %v", err))
	}
	return s
}

// LoadSuite reads and parses a suite file. The format follows the extension:
// .yaml and .yml are YAML, .cue is CUE.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or fails validation.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var suite *Suite
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		suite, err = decodeYAMLSuite(data)
	case ".cue":
		suite, err = decodeCUESuite(path, data)
	default:
		return nil, fmt.Errorf("unsupported suite file extension %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := validateSuite(suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	return suite, nil
}

func decodeYAMLSuite(data []byte) (*Suite, error) {
	// Strict field validation catches typos like "check:" vs "checks:"
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &suite, nil
}

// validateSuite checks required fields and cross-field rules.
func validateSuite(s *Suite) error {
	if err := playground.New().Struct(s); err != nil {
		var verrs playground.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s fails %q", fe.Namespace(), fe.Tag())
		}
		return err
	}

	seen := make(map[string]bool, len(s.Checks))
	for i, spec := range s.Checks {
		if !slices.Contains(KnownChecks, spec.Check) {
			return fmt.Errorf("checks[%d]: unknown check %q", i, spec.Check)
		}
		if seen[spec.Check] {
			return fmt.Errorf("checks[%d]: check %q listed more than once", i, spec.Check)
		}
		seen[spec.Check] = true

		for _, m := range spec.Markers {
			if _, ok := s.Markers[m]; !ok {
				return fmt.Errorf("checks[%d]: marker %q is not registered", i, m)
			}
		}

		if spec.Check == CheckActiveFlag && len(spec.Cases) == 0 {
			return fmt.Errorf("checks[%d]: cases are required for %s", i, CheckActiveFlag)
		}
		if spec.Check != CheckActiveFlag && len(spec.Cases) > 0 {
			return fmt.Errorf("checks[%d]: cases are only valid for %s", i, CheckActiveFlag)
		}

		if spec.Expect != nil && !slices.Contains(validator.AllKinds, validator.Kind(spec.Expect.Kind)) {
			return fmt.Errorf("checks[%d].expect: unknown kind %q", i, spec.Expect.Kind)
		}
	}

	columns := make(map[string]bool, len(s.Header))
	for _, c := range s.Header {
		if columns[c] {
			return fmt.Errorf("header: column %q listed more than once", c)
		}
		columns[c] = true
	}

	return nil
}

// validatorOptions translates suite settings into validator options.
func (s *Suite) validatorOptions() []validator.Option {
	var opts []validator.Option
	if len(s.Header) > 0 {
		opts = append(opts, validator.WithExpectedHeader(s.Header))
	}
	if s.AgeRange != nil {
		opts = append(opts, validator.WithAgeRange(s.AgeRange.Min, s.AgeRange.Max))
	}
	if s.DuplicateIDs != "" {
		opts = append(opts, validator.WithDuplicateIDPolicy(validator.DuplicateIDPolicy(s.DuplicateIDs)))
	}
	return opts
}
