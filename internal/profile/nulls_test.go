package profile

import "testing"

func TestProfileNulls(t *testing.T) {
	tbl := mustLoad(t, "a,b,c\n1,\"\",\"\"\n2,\"\",x\n3,\"\",y\n")

	p := ProfileNulls(tbl)
	if len(p) != 3 {
		t.Fatalf("len = %d, want 3", len(p))
	}

	// Sorted by missing desc, then column asc.
	if p[0].Column != "b" || p[0].Missing != 3 || p[0].MissingPct != 100.0 {
		t.Errorf("p[0] = %+v, want b/3/100.0", p[0])
	}
	if p[1].Column != "c" || p[1].Missing != 1 {
		t.Errorf("p[1] = %+v, want c/1", p[1])
	}
	if p[2].Column != "a" || p[2].Missing != 0 || p[2].MissingPct != 0.0 {
		t.Errorf("p[2] = %+v, want a/0/0.0", p[2])
	}
}

func TestProfileNulls_TieBreakByName(t *testing.T) {
	tbl := mustLoad(t, "z,m,a\n1,2,3\n4,5,6\n")

	p := ProfileNulls(tbl)
	want := []string{"a", "m", "z"}
	for i, w := range want {
		if p[i].Column != w {
			t.Errorf("p[%d].Column = %q, want %q", i, p[i].Column, w)
		}
	}
}

// The sum of per-column missing counts must equal the total number of
// missing cells in the table.
func TestProfileNulls_TotalMatchesCells(t *testing.T) {
	tbl := mustLoad(t, "a,b\n1,\"\"\n\"\",\"\"\n3,x\n")

	total := 0
	for _, c := range ProfileNulls(tbl) {
		total += c.Missing
	}

	cells := 0
	for _, name := range tbl.Columns {
		for _, v := range tbl.Column(name) {
			if v.Missing {
				cells++
			}
		}
	}

	if total != cells {
		t.Errorf("sum of missing counts = %d, want %d", total, cells)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestNullProfile_MissingColumns(t *testing.T) {
	tbl := mustLoad(t, "a,b,c\n1,\"\",2\n")
	p := ProfileNulls(tbl)

	if got := p.MissingColumns(); got != 1 {
		t.Errorf("MissingColumns() = %d, want 1", got)
	}
}

func TestProfileNulls_Rounding(t *testing.T) {
	// 1 of 3 missing: 33.333...% rounds to 33.33 at 2 decimals.
	tbl := mustLoad(t, "a\n\"\"\n1\n2\n")
	p := ProfileNulls(tbl)
	if p[0].MissingPct != 33.33 {
		t.Errorf("MissingPct = %v, want 33.33", p[0].MissingPct)
	}
}
