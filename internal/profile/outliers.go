package profile

import "sort"

// OutlierReport maps numeric column names to IQR outlier counts.
// Columns with no non-missing values or zero interquartile range have
// no entry: a column with no spread is defined to have no outliers.
type OutlierReport map[string]int

// DetectOutliers counts statistical outliers in every numeric column
// using the 1.5x interquartile range fences. Values strictly outside
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR] count as outliers.
func DetectOutliers(t *Table) OutlierReport {
	res := make(OutlierReport)

	for _, name := range t.Columns {
		if t.Kind(name) != KindNumeric {
			continue
		}

		values := make([]float64, 0, t.RowCount)
		for _, v := range t.Column(name) {
			if v.Missing {
				continue
			}
			if f, ok := parseNumeric(v.Raw); ok {
				values = append(values, f)
			}
		}
		if len(values) < 1 {
			continue
		}

		sort.Float64s(values)
		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		if iqr == 0 {
			continue
		}

		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr

		count := 0
		for _, f := range values {
			if f < lower || f > upper {
				count++
			}
		}
		res[name] = count
	}

	return res
}

// Total is the sum of all per-column outlier counts.
func (o OutlierReport) Total() int {
	n := 0
	for _, c := range o {
		n += c
	}
	return n
}

// quantile estimates the q-th quantile of sorted values using linear
// interpolation between closest ranks (the R-7 estimator).
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	pos := q * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
