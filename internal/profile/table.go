// Package profile implements the data-quality profiling engine.
// It turns a raw delimited table into a structured report covering
// missingness, format violations, logical inconsistencies, duplicates,
// statistical outliers and price anomalies. The package has no transport
// or storage dependencies and can be used by any frontend.
package profile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ColumnKind is the inferred type of a column, used only to select
// columns for type-specific analyses. Individual checks still coerce
// values locally and treat coercion failures as missing.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
	KindDate
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Value is a single cell. Missing is set for empty cells and common
// null sentinels; Raw holds the cleaned cell text otherwise.
type Value struct {
	Raw     string
	Missing bool
}

// Table is an immutable in-memory rectangular dataset. Every column
// holds exactly RowCount values, aligned by row index. Analyses only
// read from it.
type Table struct {
	Columns  []string
	RowCount int

	cols  map[string][]Value
	kinds map[string]ColumnKind
}

// ParseError is returned by LoadTable when the input cannot be turned
// into a table. It is the only fatal error in the engine; all other
// failures are handled locally per value.
type ParseError struct {
	Cause string
}

func (e *ParseError) Error() string {
	return "parse table: " + e.Cause
}

// missingSentinels are cell values treated as missing after cleanup,
// matching the usual CSV null spellings.
var missingSentinels = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"nan":  {},
	"none": {},
}

// LoadTable parses raw delimited text into a Table.
// The first record is the header; column names must be non-empty and
// unique. Rows with an inconsistent field count, invalid encoding or
// an empty input fail with *ParseError.
func LoadTable(data []byte) (*Table, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Cause: err.Error()}
	}
	if len(records) == 0 {
		return nil, &ParseError{Cause: "empty input"}
	}

	header := records[0]
	names := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := CleanCell(h)
		if name == "" {
			return nil, &ParseError{Cause: fmt.Sprintf("empty column name at position %d", i+1)}
		}
		if _, dup := seen[name]; dup {
			return nil, &ParseError{Cause: fmt.Sprintf("duplicate column name %q", name)}
		}
		seen[name] = struct{}{}
		names[i] = name
	}

	rows := records[1:]
	t := &Table{
		Columns:  names,
		RowCount: len(rows),
		cols:     make(map[string][]Value, len(names)),
	}

	for i, name := range names {
		col := make([]Value, len(rows))
		for j, row := range rows {
			raw := CleanCell(row[i])
			col[j] = Value{Raw: raw, Missing: isMissing(raw)}
		}
		t.cols[name] = col
	}

	t.kinds = inferKinds(t)
	return t, nil
}

// Column returns the values of a named column, or nil if absent.
func (t *Table) Column(name string) []Value {
	return t.cols[name]
}

// HasColumns reports whether all named columns exist.
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if _, ok := t.cols[n]; !ok {
			return false
		}
	}
	return true
}

// Kind returns the inferred kind of a column (KindText if absent).
func (t *Table) Kind(name string) ColumnKind {
	return t.kinds[name]
}

// FirstColumnContaining returns the first column (in header order) whose
// name contains the given substring, case-insensitively.
func (t *Table) FirstColumnContaining(substr string) (string, bool) {
	substr = strings.ToLower(substr)
	for _, name := range t.Columns {
		if strings.Contains(strings.ToLower(name), substr) {
			return name, true
		}
	}
	return "", false
}

// inferKinds classifies each column over its non-missing values:
// numeric if every value coerces to a number, date if every value
// parses as a timestamp, text otherwise. Columns with no non-missing
// values stay text.
func inferKinds(t *Table) map[string]ColumnKind {
	kinds := make(map[string]ColumnKind, len(t.Columns))
	for _, name := range t.Columns {
		kinds[name] = inferKind(t.cols[name])
	}
	return kinds
}

func inferKind(col []Value) ColumnKind {
	numeric, date := true, true
	present := 0
	for _, v := range col {
		if v.Missing {
			continue
		}
		present++
		if numeric {
			if _, ok := parseNumeric(v.Raw); !ok {
				numeric = false
			}
		}
		if date {
			if _, ok := parseInstant(v.Raw); !ok {
				date = false
			}
		}
		if !numeric && !date {
			return KindText
		}
	}
	if present == 0 {
		return KindText
	}
	if numeric {
		return KindNumeric
	}
	if date {
		return KindDate
	}
	return KindText
}

func isMissing(raw string) bool {
	_, ok := missingSentinels[strings.ToLower(raw)]
	return ok
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="..."), and
// stray surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode
// replacement character so the CSV reader never sees broken encoding.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
