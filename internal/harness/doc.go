// Package harness runs declarative check suites against roster files.
//
// A suite is a YAML or CUE file listing checks by name, each with optional
// markers, parameters and an expect clause:
//
//	name: data_csv
//	markers:
//	  integration: reads the data file end to end
//	  api: exercises the id lookup
//	checks:
//	  - check: header_shape
//	    markers: [integration]
//	  - check: active_flag
//	    markers: [api]
//	    cases:
//	      - { id: 1, expected: false }
//	      - { id: 2, expected: true }
//
// Checks expand into cases. age_in_range produces one case per data row and
// active_flag one case per (id, expected) pair; every other check is a single
// case. A marker expression such as "integration and not api" deselects
// checks without running them.
//
// An expect clause turns a check into a negative test: its cases pass only
// when they fail with the named kind, e.g. HeaderMismatchError.
//
// DefaultSuite is the built-in battery used when no suite file is given.
// AssertGolden snapshots a Result for regression tests.
package harness
