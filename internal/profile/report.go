package profile

// SchemaVersion identifies the report field set. Bump when keys are
// added or change meaning so stored reports stay interpretable.
const SchemaVersion = 1

// CheckResult is a violation count with its percentage of total rows.
type CheckResult struct {
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// Warning is a field-level parse diagnostic. Warnings never fail an
// analysis; they surface values a check had to exclude.
type Warning struct {
	Check  string `json:"check"`
	Column string `json:"column"`
	Row    int    `json:"row"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// warningSink collects warnings up to a cap. It is owned by a single
// analysis goroutine and needs no locking.
type warningSink struct {
	max     int
	dropped int
	items   []Warning
}

func newWarningSink(max int) *warningSink {
	return &warningSink{max: max}
}

func (w *warningSink) add(warning Warning) {
	if w.max > 0 && len(w.items) >= w.max {
		w.dropped++
		return
	}
	w.items = append(w.items, warning)
}

// Summary is a scalar rollup of the sub-reports. It carries no state of
// its own; every field is derived by summing sub-report counts, with
// absent sections contributing zero.
type Summary struct {
	MissingCols      int `json:"missing_cols"`
	FormatsTotal     int `json:"formats_total"`
	LogicalTotal     int `json:"logical_total"`
	Duplicates       int `json:"duplicates"`
	Outliers         int `json:"outliers"`
	PricingAnomalies int `json:"pricing_anomalies"`
}

// Report is the immutable top-level profiling result. It owns copies of
// all sub-reports; nothing in it is shared with mutable state. The JSON
// shape is the engine's external contract.
type Report struct {
	SchemaVersion int            `json:"schema_version"`
	RowCount      int            `json:"row_count"`
	ColumnCount   int            `json:"column_count"`
	Columns       []string       `json:"columns"`
	Nulls         NullProfile    `json:"nulls"`
	Formats       FormatReport   `json:"formats"`
	Logical       LogicalReport  `json:"logical_inconsistencies"`
	Duplicates    DuplicateReport `json:"duplicates"`
	Outliers      OutlierReport  `json:"outliers"`
	Pricing       *CheckResult   `json:"pricing_anomalies,omitempty"`
	Summary       Summary        `json:"summary"`
	Warnings      []Warning      `json:"warnings,omitempty"`
}

// summarize merges the sub-reports into the rollup. The format total
// sums only the configured selection of format checks; checks that did
// not run (absent columns) contribute zero.
func summarize(r *Report, cfg Config) Summary {
	s := Summary{
		MissingCols: r.Nulls.MissingColumns(),
		Duplicates:  r.Duplicates.Total(),
		Outliers:    r.Outliers.Total(),
	}

	for _, name := range cfg.SummaryFormatChecks {
		if cr, ok := r.Formats[name]; ok {
			s.FormatsTotal += cr.Count
		}
	}

	for _, cr := range r.Logical {
		s.LogicalTotal += cr.Count
	}

	if r.Pricing != nil {
		s.PricingAnomalies = r.Pricing.Count
	}

	return s
}
