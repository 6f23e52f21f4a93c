package profile

import "sort"

// NullCount is the missing-value tally for one column.
type NullCount struct {
	Column     string  `json:"column"`
	Missing    int     `json:"missing"`
	MissingPct float64 `json:"missing_pct"`
}

// NullProfile lists per-column missing counts, sorted by count
// descending with ties broken by column name ascending.
type NullProfile []NullCount

// ProfileNulls counts missing values in every column.
func ProfileNulls(t *Table) NullProfile {
	out := make(NullProfile, 0, len(t.Columns))

	for _, name := range t.Columns {
		missing := 0
		for _, v := range t.Column(name) {
			if v.Missing {
				missing++
			}
		}
		out = append(out, NullCount{
			Column:     name,
			Missing:    missing,
			MissingPct: pct2(missing, t.RowCount),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Missing != out[j].Missing {
			return out[i].Missing > out[j].Missing
		}
		return out[i].Column < out[j].Column
	})

	return out
}

// MissingColumns returns how many columns have at least one missing value.
func (p NullProfile) MissingColumns() int {
	n := 0
	for _, c := range p {
		if c.Missing > 0 {
			n++
		}
	}
	return n
}
