package profile

// coerce.go provides best-effort value coercion for individual checks.
//
// Coercion is local by design: a value that fails to parse for one
// analysis is treated as missing for that analysis only, never for the
// table as a whole. The cleanup rules handle the usual CSV artifacts:
// currency symbols, thousands separators, accounting-style negatives
// and mixed date formats.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// numericPattern validates a numeric string after cleanup.
// Matches integers, decimals and scientific notation.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// parseNumeric coerces a raw cell to a float64.
// Handles currency symbols, thousands separators and accounting
// format (parentheses for negative).
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericPattern.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// parseInstant coerces a raw cell to a UTC timestamp. Mixed date
// formats are accepted; bare-date values parse to midnight UTC.
func parseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// round2 rounds to 2 decimal places, round3 to 3. Percentages in the
// report use these so repeated runs produce identical output.
func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

// pct2 and pct3 compute count/total as a rounded percentage,
// returning 0.0 for an empty table.
func pct2(count, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return round2(float64(count) / float64(total) * 100)
}

func pct3(count, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return round3(float64(count) / float64(total) * 100)
}
