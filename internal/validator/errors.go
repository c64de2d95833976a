package validator

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a failure category. The values are stable and appear in reports.
type Kind string

const (
	KindEmptyFile          Kind = "EmptyFileError"
	KindNoDataRows         Kind = "NoDataRowsError"
	KindHeaderMismatch     Kind = "HeaderMismatchError"
	KindAgeParse           Kind = "AgeParseError"
	KindAgeRange           Kind = "AgeRangeError"
	KindMissingColumn      Kind = "MissingColumnError"
	KindEmailFormat        Kind = "EmailFormatError"
	KindDuplicateRows      Kind = "DuplicateRowsError"
	KindIDParse            Kind = "IdParseError"
	KindDuplicateID        Kind = "DuplicateIdError"
	KindUnknownID          Kind = "UnknownIdError"
	KindActiveFlagMismatch Kind = "ActiveFlagMismatchError"

	// KindRead covers I/O and parse failures that happen before a check can
	// look at the data.
	KindRead Kind = "ReadError"
)

// AllKinds lists every Kind.
var AllKinds = []Kind{
	KindEmptyFile,
	KindNoDataRows,
	KindHeaderMismatch,
	KindAgeParse,
	KindAgeRange,
	KindMissingColumn,
	KindEmailFormat,
	KindDuplicateRows,
	KindIDParse,
	KindDuplicateID,
	KindUnknownID,
	KindActiveFlagMismatch,
	KindRead,
}

// kinded is implemented by every error type in this package.
type kinded interface {
	error
	Kind() Kind
}

// KindOf returns the Kind of the first validator error in err's chain.
// Any other non-nil error is reported as KindRead; nil yields "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindRead
}

// EmptyFileError is returned when the record file has zero bytes.
type EmptyFileError struct {
	Path string
}

func (e *EmptyFileError) Error() string {
	return fmt.Sprintf("file %q is empty", e.Path)
}

func (e *EmptyFileError) Kind() Kind { return KindEmptyFile }

// NoDataRowsError is returned when the file holds a header and nothing else,
// or nothing at all.
type NoDataRowsError struct {
	Path    string
	Records int
}

func (e *NoDataRowsError) Error() string {
	return fmt.Sprintf("file %q contains no data rows (%d record(s))", e.Path, e.Records)
}

func (e *NoDataRowsError) Kind() Kind { return KindNoDataRows }

// HeaderMismatchError carries both ordered header sequences.
type HeaderMismatchError struct {
	Expected []string
	Actual   []string
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("header mismatch: expected %s, found %s",
		formatSequence(e.Expected), formatSequence(e.Actual))
}

func (e *HeaderMismatchError) Kind() Kind { return KindHeaderMismatch }

// AgeParseError is returned for an age value that is not an integer.
// Row is the 1-based data row number.
type AgeParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *AgeParseError) Error() string {
	return fmt.Sprintf("row %d: age %q is not an integer", e.Row, e.Value)
}

func (e *AgeParseError) Unwrap() error { return e.Err }

func (e *AgeParseError) Kind() Kind { return KindAgeParse }

// AgeRangeError is returned for an integer age outside [Min, Max].
type AgeRangeError struct {
	Row int
	Age int
	Min int
	Max int
}

func (e *AgeRangeError) Error() string {
	return fmt.Sprintf("row %d: age %d is out of range [%d, %d]", e.Row, e.Age, e.Min, e.Max)
}

func (e *AgeRangeError) Kind() Kind { return KindAgeRange }

// MissingColumnError is returned when a required column is not in the header.
type MissingColumnError struct {
	Column string
	Header []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in header %s", e.Column, formatSequence(e.Header))
}

func (e *MissingColumnError) Kind() Kind { return KindMissingColumn }

// EmailFormatError names the first row whose trimmed email fails the shape check.
type EmailFormatError struct {
	Row   int
	Value string
}

func (e *EmailFormatError) Error() string {
	return fmt.Sprintf("row %d: invalid email %q", e.Row, e.Value)
}

func (e *EmailFormatError) Kind() Kind { return KindEmailFormat }

// DuplicateRowsError lists every normalized row that repeats an earlier one,
// in the order the repeats were met.
type DuplicateRowsError struct {
	Rows [][]string
}

func (e *DuplicateRowsError) Error() string {
	parts := make([]string, len(e.Rows))
	for i, row := range e.Rows {
		parts[i] = formatSequence(row)
	}
	return fmt.Sprintf("%d duplicate row(s) found: %s", len(e.Rows), strings.Join(parts, ", "))
}

func (e *DuplicateRowsError) Kind() Kind { return KindDuplicateRows }

// IDParseError is returned for an id value that is not an integer.
type IDParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *IDParseError) Error() string {
	return fmt.Sprintf("row %d: id %q is not an integer", e.Row, e.Value)
}

func (e *IDParseError) Unwrap() error { return e.Err }

func (e *IDParseError) Kind() Kind { return KindIDParse }

// DuplicateIDError is returned under RejectDuplicates when an id repeats.
type DuplicateIDError struct {
	ID       int
	FirstRow int
	Row      int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("row %d: id %d already defined at row %d", e.Row, e.ID, e.FirstRow)
}

func (e *DuplicateIDError) Kind() Kind { return KindDuplicateID }

// UnknownIDError is returned when the requested id is not in the file.
type UnknownIDError struct {
	ID int
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("id %d not found", e.ID)
}

func (e *UnknownIDError) Kind() Kind { return KindUnknownID }

// ActiveFlagMismatchError carries the expected and actual active flag for an id.
type ActiveFlagMismatchError struct {
	ID       int
	Expected bool
	Actual   bool
}

func (e *ActiveFlagMismatchError) Error() string {
	return fmt.Sprintf("is_active for id %d: expected %t, found %t", e.ID, e.Expected, e.Actual)
}

func (e *ActiveFlagMismatchError) Kind() Kind { return KindActiveFlagMismatch }

// formatSequence renders a string slice as ["a", "b"].
func formatSequence(seq []string) string {
	quoted := make([]string, len(seq))
	for i, s := range seq {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
