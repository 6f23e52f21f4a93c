package profile

import "strings"

// DuplicateReport counts rows considered duplicates: extra occurrences
// of a key value and full-row repeats, with percentages over total rows.
type DuplicateReport struct {
	ByKey      int     `json:"by_key"`
	ByKeyPct   float64 `json:"by_key_pct"`
	FullRow    int     `json:"full_row"`
	FullRowPct float64 `json:"full_row_pct"`
}

// rowSep and missingMark build full-row identity strings. The separator
// cannot appear in cleaned cell text; missing cells participate in row
// identity with their own marker.
const (
	rowSep      = "\x1f"
	missingMark = "\x00"
)

// DetectDuplicates counts duplicates by key column and by full row.
// Any value repeated k times contributes k-1 to the count (extra
// occurrences, not distinct groups). Missing values never key a
// by-key duplicate; the key check is skipped when the column is absent.
func DetectDuplicates(t *Table, keyColumn string) DuplicateReport {
	rep := DuplicateReport{}

	if keyColumn != "" && t.HasColumns(keyColumn) {
		seen := make(map[string]struct{}, t.RowCount)
		for _, v := range t.Column(keyColumn) {
			if v.Missing {
				continue
			}
			if _, dup := seen[v.Raw]; dup {
				rep.ByKey++
			} else {
				seen[v.Raw] = struct{}{}
			}
		}
	}

	seenRows := make(map[string]struct{}, t.RowCount)
	var b strings.Builder
	for i := 0; i < t.RowCount; i++ {
		b.Reset()
		for j, name := range t.Columns {
			if j > 0 {
				b.WriteString(rowSep)
			}
			v := t.Column(name)[i]
			if v.Missing {
				b.WriteString(missingMark)
			} else {
				b.WriteString(v.Raw)
			}
		}
		key := b.String()
		if _, dup := seenRows[key]; dup {
			rep.FullRow++
		} else {
			seenRows[key] = struct{}{}
		}
	}

	rep.ByKeyPct = pct3(rep.ByKey, t.RowCount)
	rep.FullRowPct = pct3(rep.FullRow, t.RowCount)
	return rep
}

// Total is the sum of the integer-valued duplicate counts.
func (d DuplicateReport) Total() int {
	return d.ByKey + d.FullRow
}
