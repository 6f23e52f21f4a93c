package profile

import (
	"regexp"
	"strings"
)

// FormatReport maps check names to their results. A check appears only
// when its triggering columns exist in the table; absence is silent.
type FormatReport map[string]CheckResult

// emailPattern is a restricted email grammar: dot-separated local-part
// segments of a limited character set, lowercase alphanumeric/hyphen
// domain labels, at least one dot. Lowercase-only; see
// Config.EmailNormalizeCase.
var emailPattern = regexp.MustCompile("^[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$")

// formatCheck is a capability-gated validation strategy. A check runs
// only when active reports its required columns are present; each check
// writes its own named entries into the report and never fails the run.
type formatCheck struct {
	name   string
	active func(t *Table, cfg Config) bool
	run    func(t *Table, cfg Config, res FormatReport, warn *warningSink)
}

var formatChecks = []formatCheck{
	{
		name: "email_invalid",
		active: func(t *Table, cfg Config) bool {
			return cfg.EmailColumn != "" && t.HasColumns(cfg.EmailColumn)
		},
		run: checkEmailShape,
	},
	{
		name: "future_dates",
		active: func(t *Table, cfg Config) bool {
			_, ok := t.FirstColumnContaining("date")
			return ok
		},
		run: checkFutureDates,
	},
	{
		name: "unrealistic_ages",
		active: func(t *Table, cfg Config) bool {
			return cfg.AgeColumn != "" && t.HasColumns(cfg.AgeColumn)
		},
		run: checkAgeRange,
	},
	{
		name: "invalid_statuses",
		active: func(t *Table, cfg Config) bool {
			return cfg.StatusColumn != "" && t.HasColumns(cfg.StatusColumn)
		},
		run: checkStatusSentinel,
	},
	{
		name: "invalid_payment_methods",
		active: func(t *Table, cfg Config) bool {
			return cfg.PaymentMethodColumn != "" && t.HasColumns(cfg.PaymentMethodColumn)
		},
		run: checkPaymentSentinel,
	},
	{
		name: "total_amounts",
		active: func(t *Table, cfg Config) bool {
			return cfg.TotalAmountColumn != "" && t.HasColumns(cfg.TotalAmountColumn)
		},
		run: checkTotalAmounts,
	},
}

// ValidateFormats runs every active format check against the table.
// cfg.AsOf must be resolved to a concrete instant by the caller.
func ValidateFormats(t *Table, cfg Config, warn *warningSink) FormatReport {
	res := make(FormatReport)
	for _, c := range formatChecks {
		if !c.active(t, cfg) {
			continue
		}
		c.run(t, cfg, res, warn)
	}
	return res
}

// checkEmailShape counts non-missing values that do not fully match the
// email grammar.
func checkEmailShape(t *Table, cfg Config, res FormatReport, warn *warningSink) {
	invalid := 0
	for _, v := range t.Column(cfg.EmailColumn) {
		if v.Missing {
			continue
		}
		s := v.Raw
		if cfg.EmailNormalizeCase {
			s = strings.ToLower(s)
		}
		if !emailPattern.MatchString(s) {
			invalid++
		}
	}
	res["email_invalid"] = CheckResult{Count: invalid, Pct: pct3(invalid, t.RowCount)}
}

// checkFutureDates parses the first date-named column permissively and
// counts parsed instants strictly after cfg.AsOf. Unparseable values
// are excluded from the future count and reported as a separate
// date_parse_errors entry plus a field-level warning.
func checkFutureDates(t *Table, cfg Config, res FormatReport, warn *warningSink) {
	col, _ := t.FirstColumnContaining("date")

	future, unparsed := 0, 0
	for i, v := range t.Column(col) {
		if v.Missing {
			continue
		}
		ts, ok := parseInstant(v.Raw)
		if !ok {
			unparsed++
			warn.add(Warning{
				Check:  "future_dates",
				Column: col,
				Row:    i,
				Value:  v.Raw,
				Reason: "unparseable date",
			})
			continue
		}
		if ts.After(cfg.AsOf) {
			future++
		}
	}

	res["future_dates"] = CheckResult{Count: future, Pct: pct3(future, t.RowCount)}
	res["date_parse_errors"] = CheckResult{Count: unparsed, Pct: pct3(unparsed, t.RowCount)}
}

// checkAgeRange counts numeric ages outside [AgeMin, AgeMax]. Values
// that fail numeric coercion are excluded and surfaced as warnings.
func checkAgeRange(t *Table, cfg Config, res FormatReport, warn *warningSink) {
	out := 0
	for i, v := range t.Column(cfg.AgeColumn) {
		if v.Missing {
			continue
		}
		age, ok := parseNumeric(v.Raw)
		if !ok {
			warn.add(Warning{
				Check:  "unrealistic_ages",
				Column: cfg.AgeColumn,
				Row:    i,
				Value:  v.Raw,
				Reason: "not numeric",
			})
			continue
		}
		if age < cfg.AgeMin || age > cfg.AgeMax {
			out++
		}
	}
	res["unrealistic_ages"] = CheckResult{Count: out, Pct: pct3(out, t.RowCount)}
}

func checkStatusSentinel(t *Table, cfg Config, res FormatReport, warn *warningSink) {
	n := countSentinel(t.Column(cfg.StatusColumn), cfg.StatusSentinel)
	res["invalid_statuses"] = CheckResult{Count: n, Pct: pct3(n, t.RowCount)}
}

func checkPaymentSentinel(t *Table, cfg Config, res FormatReport, warn *warningSink) {
	n := countSentinel(t.Column(cfg.PaymentMethodColumn), cfg.PaymentSentinel)
	res["invalid_payment_methods"] = CheckResult{Count: n, Pct: pct3(n, t.RowCount)}
}

// checkTotalAmounts counts negative amounts and values that fail
// numeric coercion in the total-amount column.
func checkTotalAmounts(t *Table, cfg Config, res FormatReport, warn *warningSink) {
	negative, bad := 0, 0
	for _, v := range t.Column(cfg.TotalAmountColumn) {
		if v.Missing {
			continue
		}
		f, ok := parseNumeric(v.Raw)
		if !ok {
			bad++
			continue
		}
		if f < 0 {
			negative++
		}
	}
	res["negative_total_amounts"] = CheckResult{Count: negative, Pct: pct3(negative, t.RowCount)}
	res["total_amount_errors"] = CheckResult{Count: bad, Pct: pct3(bad, t.RowCount)}
}

func countSentinel(col []Value, sentinel string) int {
	n := 0
	for _, v := range col {
		if !v.Missing && v.Raw == sentinel {
			n++
		}
	}
	return n
}
