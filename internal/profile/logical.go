package profile

// LogicalReport maps rule names to violation counts. A rule appears
// only when both of its columns exist.
type LogicalReport map[string]CheckResult

// LogicalRule is a cross-column numeric invariant: a row violates the
// rule when the value in Lesser is strictly below the value in Greater.
// Rows where either side fails numeric coercion are excluded from the
// count; the percentage denominator is always the total row count.
type LogicalRule struct {
	Name    string
	Lesser  string
	Greater string
}

// DefaultLogicalRules are the built-in domain invariants.
func DefaultLogicalRules() []LogicalRule {
	return []LogicalRule{
		{Name: "sell_less_cost", Lesser: "selling_price", Greater: "cost_price"},
		{Name: "stock_less_reorder", Lesser: "current_stock", Greater: "reorder_level"},
	}
}

// CheckLogical evaluates each rule whose columns are present. Rules are
// independent; adding one never affects another.
func CheckLogical(t *Table, rules []LogicalRule) LogicalReport {
	res := make(LogicalReport)
	for _, r := range rules {
		if !t.HasColumns(r.Lesser, r.Greater) {
			continue
		}
		res[r.Name] = checkRule(t, r)
	}
	return res
}

func checkRule(t *Table, r LogicalRule) CheckResult {
	lesser := t.Column(r.Lesser)
	greater := t.Column(r.Greater)

	violations := 0
	for i := 0; i < t.RowCount; i++ {
		if lesser[i].Missing || greater[i].Missing {
			continue
		}
		a, ok := parseNumeric(lesser[i].Raw)
		if !ok {
			continue
		}
		b, ok := parseNumeric(greater[i].Raw)
		if !ok {
			continue
		}
		if a < b {
			violations++
		}
	}

	return CheckResult{Count: violations, Pct: pct3(violations, t.RowCount)}
}
