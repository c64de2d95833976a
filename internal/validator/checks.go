package validator

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/csvcheck/internal/records"
)

// emailPattern is a shape check only: local part, "@", domain, a dot and a
// top-level label of two or more ASCII letters. Word characters include
// Unicode letters and digits. It does not implement RFC 5322.
var emailPattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s has the shape of an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// CheckNonEmpty fails with EmptyFileError when the file has zero bytes.
func (v *Validator) CheckNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat record file: %w", err)
	}
	if info.Size() == 0 {
		return &EmptyFileError{Path: path}
	}
	return nil
}

// CheckHasDataRows fails with NoDataRowsError when the file holds fewer than
// two records.
func (v *Validator) CheckHasDataRows(path string) error {
	rs, err := records.Read(path)
	if err != nil {
		return err
	}
	if rs.Len() < 2 {
		return &NoDataRowsError{Path: path, Records: rs.Len()}
	}
	return nil
}

// CheckHeaderShape fails with HeaderMismatchError unless the header equals the
// expected header element by element, in order.
func (v *Validator) CheckHeaderShape(path string) error {
	rs, err := records.Read(path)
	if err != nil {
		return err
	}
	if !slices.Equal(rs.Header(), v.header) {
		return &HeaderMismatchError{
			Expected: slices.Clone(v.header),
			Actual:   slices.Clone(rs.Header()),
		}
	}
	return nil
}

// RowResult is the outcome of a per-row check.
// Row is the 1-based data row number; it is 0 when Err concerns the whole file.
type RowResult struct {
	Row   int
	Value string
	Err   error
}

// Pass reports whether the row passed.
func (r RowResult) Pass() bool {
	return r.Err == nil
}

// CheckAgeInRange yields one RowResult per data row, in file order. The file
// is read when iteration starts.
//
// A file with no data rows yields nothing. A read failure, or data rows
// without an age column, yields a single result carrying that error.
func (v *Validator) CheckAgeInRange(path string) iter.Seq[RowResult] {
	return func(yield func(RowResult) bool) {
		rs, err := records.Read(path)
		if err != nil {
			yield(RowResult{Err: err})
			return
		}
		if rs.NumRows() == 0 {
			return
		}
		if !rs.HasColumn(ColumnAge) {
			yield(RowResult{Err: &MissingColumnError{Column: ColumnAge, Header: rs.Header()}})
			return
		}

		for i, row := range rs.Rows() {
			raw, _ := row.Get(ColumnAge)
			if !yield(RowResult{Row: i + 1, Value: raw, Err: v.checkAge(i+1, raw)}) {
				return
			}
		}
	}
}

func (v *Validator) checkAge(row int, raw string) error {
	age, err := parseAge(raw)
	if err != nil {
		return &AgeParseError{Row: row, Value: raw, Err: err}
	}
	if age < v.minAge || age > v.maxAge {
		return &AgeRangeError{Row: row, Age: age, Min: v.minAge, Max: v.maxAge}
	}
	return nil
}

// errFractionalAge marks an age written as a number with a non-zero fraction.
var errFractionalAge = errors.New("age has a fractional part")

// parseAge accepts decimal integer text and integral float text such as
// "30.0", which spreadsheet exports produce for numeric columns.
func parseAge(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	age, err := strconv.Atoi(s)
	if err == nil {
		return age, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errFractionalAge
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, strconv.ErrRange
	}
	return int(f), nil
}

// CheckEmailColumnValid fails with MissingColumnError when the header has no
// email column, otherwise with EmailFormatError for the first row whose
// trimmed email does not match the shape check.
func (v *Validator) CheckEmailColumnValid(path string) error {
	rs, err := records.Read(path)
	if err != nil {
		return err
	}
	if !rs.HasColumn(ColumnEmail) {
		return &MissingColumnError{Column: ColumnEmail, Header: rs.Header()}
	}

	for i, row := range rs.Rows() {
		raw, _ := row.Get(ColumnEmail)
		email := strings.TrimSpace(raw)
		if !ValidEmail(email) {
			return &EmailFormatError{Row: i + 1, Value: email}
		}
	}
	return nil
}

// CheckNoDuplicateRows fails with DuplicateRowsError when any data row, with
// every field trimmed, equals an earlier one.
func (v *Validator) CheckNoDuplicateRows(path string) error {
	rs, err := records.Read(path)
	if err != nil {
		return err
	}

	dups := FindDuplicateRows(rs.Rows())
	if len(dups) > 0 {
		return &DuplicateRowsError{Rows: dups}
	}
	return nil
}

// FindDuplicateRows returns the normalized rows that repeat an earlier row,
// in the order they are met. A row seen three times is reported twice.
func FindDuplicateRows(rows []records.Row) [][]string {
	seen := make(map[string]struct{}, len(rows))
	var dups [][]string
	for _, row := range rows {
		normalized := NormalizeRow(row.Fields())
		key := rowKey(normalized)
		if _, ok := seen[key]; ok {
			dups = append(dups, normalized)
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// NormalizeRow trims surrounding whitespace from every field.
func NormalizeRow(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// rowKey is an unambiguous encoding of a row for set membership.
func rowKey(fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Quote(f))
		b.WriteByte(',')
	}
	return b.String()
}

// LoadActiveFlags maps every id in the file to its active flag.
//
// The id is trimmed and parsed as an integer; a failure is an IDParseError.
// The flag is true only when the trimmed is_active value equals "true" in any
// case. Repeated ids follow the validator's DuplicateIDPolicy.
//
// The mapping is rebuilt from disk on every call.
func (v *Validator) LoadActiveFlags(path string) (map[int]bool, error) {
	rs, err := records.Read(path)
	if err != nil {
		return nil, err
	}
	if rs.NumRows() > 0 && !rs.HasColumn(ColumnID) {
		return nil, &MissingColumnError{Column: ColumnID, Header: rs.Header()}
	}

	flags := make(map[int]bool, rs.NumRows())
	firstRow := make(map[int]int, rs.NumRows())
	for i, row := range rs.Rows() {
		n := i + 1
		rawID, _ := row.Get(ColumnID)
		id, err := strconv.Atoi(strings.TrimSpace(rawID))
		if err != nil {
			return nil, &IDParseError{Row: n, Value: rawID, Err: err}
		}
		rawActive, _ := row.Get(ColumnIsActive)
		active := ParseActive(rawActive)

		if first, dup := firstRow[id]; dup {
			switch v.dupIDs {
			case RejectDuplicates:
				return nil, &DuplicateIDError{ID: id, FirstRow: first, Row: n}
			case FirstWriteWins:
				v.logger.Warn("duplicate id ignored", "id", id, "row", n, "first_row", first)
				continue
			default:
				v.logger.Warn("duplicate id overwrites earlier row", "id", id, "row", n, "first_row", first)
			}
		} else {
			firstRow[id] = n
		}
		flags[id] = active
	}

	v.logger.Debug("active flags loaded", "path", path, "ids", len(flags))
	return flags, nil
}

// ParseActive reports whether raw, trimmed, is "true" in any letter case.
func ParseActive(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

// CheckActiveFlag fails with UnknownIDError when id is not in the file, or
// with ActiveFlagMismatchError when its flag differs from expected.
func (v *Validator) CheckActiveFlag(path string, id int, expected bool) error {
	flags, err := v.LoadActiveFlags(path)
	if err != nil {
		return err
	}
	actual, ok := flags[id]
	if !ok {
		return &UnknownIDError{ID: id}
	}
	if actual != expected {
		return &ActiveFlagMismatchError{ID: id, Expected: expected, Actual: actual}
	}
	return nil
}
