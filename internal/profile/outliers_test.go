package profile

import "testing"

func TestDetectOutliers(t *testing.T) {
	// 1..9 plus 100: Q1=3.25, Q3=7.75 (linear interpolation), IQR=4.5,
	// fences at -3.5 and 14.5; only 100 falls outside.
	tbl := mustLoad(t, "v\n1\n2\n3\n4\n5\n6\n7\n8\n9\n100\n")

	res := DetectOutliers(tbl)
	if got := res["v"]; got != 1 {
		t.Errorf("outliers[v] = %d, want 1", got)
	}
}

func TestDetectOutliers_ZeroIQRSkipped(t *testing.T) {
	// A column with a single distinct value has zero spread: no entry,
	// not a zero entry.
	tbl := mustLoad(t, "v\n5\n5\n5\n5\n")

	res := DetectOutliers(tbl)
	if _, ok := res["v"]; ok {
		t.Error("column with zero IQR should have no entry")
	}
}

func TestDetectOutliers_AllMissingSkipped(t *testing.T) {
	tbl := mustLoad(t, "v\n\"\"\n\"\"\n")

	res := DetectOutliers(tbl)
	if len(res) != 0 {
		t.Errorf("report = %v, want empty", res)
	}
}

func TestDetectOutliers_NonNumericColumnsIgnored(t *testing.T) {
	tbl := mustLoad(t, "name,v\nalice,1\nbob,2\ncarol,300\n")

	res := DetectOutliers(tbl)
	if _, ok := res["name"]; ok {
		t.Error("text column should not be analyzed")
	}
}

func TestDetectOutliers_MissingValuesDropped(t *testing.T) {
	tbl := mustLoad(t, "v\n1\n\"\"\n2\n3\n1000\n")

	res := DetectOutliers(tbl)
	if got := res["v"]; got != 1 {
		t.Errorf("outliers[v] = %d, want 1", got)
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{name: "median even", sorted: []float64{1, 2, 3, 4}, q: 0.5, want: 2.5},
		{name: "median odd", sorted: []float64{1, 2, 3}, q: 0.5, want: 2},
		{name: "q1 interpolated", sorted: []float64{1, 2, 3, 4}, q: 0.25, want: 1.75},
		{name: "q3 interpolated", sorted: []float64{1, 2, 3, 4}, q: 0.75, want: 3.25},
		{name: "single value", sorted: []float64{7}, q: 0.25, want: 7},
		{name: "min", sorted: []float64{1, 2, 3}, q: 0, want: 1},
		{name: "max", sorted: []float64{1, 2, 3}, q: 1, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantile(tt.sorted, tt.q); got != tt.want {
				t.Errorf("quantile(%v, %v) = %v, want %v", tt.sorted, tt.q, got, tt.want)
			}
		})
	}
}
