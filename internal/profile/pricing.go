package profile

import (
	"github.com/shopspring/decimal"
)

// DetectPricingAnomalies finds rows whose unit price diverges from the
// canonical price of their product group. Prices are rounded to 2
// decimal places before grouping; rows are grouped by the
// (product id, product name) pair, with missing key values forming
// their own group. The canonical value per group is the mode of the
// rounded prices among non-missing values, ties broken by the smallest
// value. Groups with no usable price contribute no anomalies.
//
// Returns ok=false when any of the three required columns is absent.
func DetectPricingAnomalies(t *Table, cfg Config) (CheckResult, bool) {
	if !t.HasColumns(cfg.ProductIDColumn, cfg.ProductNameColumn, cfg.UnitPriceColumn) {
		return CheckResult{}, false
	}

	ids := t.Column(cfg.ProductIDColumn)
	names := t.Column(cfg.ProductNameColumn)
	prices := t.Column(cfg.UnitPriceColumn)

	// Rounded price per row; empty string marks an unusable price
	// (missing or not numeric-coercible).
	rowPrice := make([]string, t.RowCount)
	rowGroup := make([]string, t.RowCount)
	freq := make(map[string]map[string]int)

	for i := 0; i < t.RowCount; i++ {
		rowGroup[i] = groupKey(ids[i], names[i])

		if prices[i].Missing {
			continue
		}
		f, ok := parseNumeric(prices[i].Raw)
		if !ok {
			continue
		}
		p := decimal.NewFromFloat(f).Round(2).StringFixed(2)
		rowPrice[i] = p

		counts := freq[rowGroup[i]]
		if counts == nil {
			counts = make(map[string]int)
			freq[rowGroup[i]] = counts
		}
		counts[p]++
	}

	canonical := make(map[string]string, len(freq))
	for group, counts := range freq {
		canonical[group] = modePrice(counts)
	}

	anomalies := 0
	for i := 0; i < t.RowCount; i++ {
		if rowPrice[i] == "" {
			continue
		}
		canon, ok := canonical[rowGroup[i]]
		if !ok {
			continue
		}
		if rowPrice[i] != canon {
			anomalies++
		}
	}

	return CheckResult{Count: anomalies, Pct: pct3(anomalies, t.RowCount)}, true
}

func groupKey(id, name Value) string {
	a, b := id.Raw, name.Raw
	if id.Missing {
		a = missingMark
	}
	if name.Missing {
		b = missingMark
	}
	return a + rowSep + b
}

// modePrice picks the most frequent price; among tied frequencies the
// numerically smallest price wins, so the result is deterministic.
func modePrice(counts map[string]int) string {
	best := ""
	bestCount := 0
	var bestVal decimal.Decimal

	for p, c := range counts {
		v, err := decimal.NewFromString(p)
		if err != nil {
			continue
		}
		if c > bestCount || (c == bestCount && v.LessThan(bestVal)) {
			best = p
			bestCount = c
			bestVal = v
		}
	}

	return best
}
