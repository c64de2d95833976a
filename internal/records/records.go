// Package records reads comma-delimited record files into transient,
// read-only views.
//
// A file is opened, parsed in full and closed by every call to Read. Nothing
// is cached between calls: two reads of the same path are independent and
// observe whatever is on disk at that moment.
//
// The first record is the header. Every later record is a data row and must
// have the same number of fields as the header; a ragged row fails the read.
// Quotes are lenient: a bare quote inside an unquoted field is part of the value.
package records

import (
	"encoding/csv"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// RecordSet is the parsed content of a record file.
type RecordSet struct {
	header []string
	rows   [][]string
	index  map[string]int
}

// Read opens path, parses every record and closes the file before returning.
//
// A leading UTF-8 byte-order mark is dropped so that the first column name
// compares equal to its plain spelling. An empty file yields a RecordSet with
// no header and no rows.
func Read(path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	// FieldsPerRecord = 0 pins every record to the arity of the first one.
	r.FieldsPerRecord = 0
	// A stray quote inside an unquoted field, as in O"Brien, is kept as text.
	r.LazyQuotes = true

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return newRecordSet(all), nil
}

func newRecordSet(all [][]string) *RecordSet {
	rs := &RecordSet{index: make(map[string]int)}
	if len(all) == 0 {
		return rs
	}
	rs.header = all[0]
	rs.rows = all[1:]
	for i, name := range rs.header {
		// First occurrence wins for repeated column names.
		if _, ok := rs.index[name]; !ok {
			rs.index[name] = i
		}
	}
	return rs
}

// Header returns the column names in file order. It is nil for an empty file.
func (rs *RecordSet) Header() []string {
	return rs.header
}

// Len returns the number of records, header included.
func (rs *RecordSet) Len() int {
	if rs.header == nil {
		return 0
	}
	return len(rs.rows) + 1
}

// NumRows returns the number of data rows.
func (rs *RecordSet) NumRows() int {
	return len(rs.rows)
}

// HasColumn reports whether the header names column.
func (rs *RecordSet) HasColumn(column string) bool {
	_, ok := rs.index[column]
	return ok
}

// Row returns the i-th data row (0-based).
func (rs *RecordSet) Row(i int) Row {
	return Row{fields: rs.rows[i], index: rs.index}
}

// Rows returns every data row in file order.
func (rs *RecordSet) Rows() []Row {
	out := make([]Row, len(rs.rows))
	for i := range rs.rows {
		out[i] = rs.Row(i)
	}
	return out
}

// Row is a single data row addressed by column name.
type Row struct {
	fields []string
	index  map[string]int
}

// Get returns the raw value of column and whether the column exists.
func (r Row) Get(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	return r.fields[i], true
}

// Fields returns the raw values in header order.
func (r Row) Fields() []string {
	return r.fields
}
