package profile

import "time"

// Config holds all engine thresholds and column bindings.
// Every value the analyses compare against lives here rather than as
// an inline literal, so callers and tests can vary thresholds without
// touching engine internals. YAML tags allow loading overrides from a
// rules file in the CLI.
type Config struct {
	// AsOf is the evaluation instant for the future-date check.
	// It is an explicit input so repeated runs on the same table are
	// reproducible; the zero value means "capture time.Now in UTC once
	// per Profile call".
	AsOf time.Time `yaml:"as_of"`

	// EmailColumn is the column checked for email shape and used as the
	// duplicate detection key (default: email).
	EmailColumn string `yaml:"email_column"`

	// EmailNormalizeCase lower-cases values before matching the email
	// grammar. The grammar itself is lowercase-only; without
	// normalization any uppercase character is rejected (default: true).
	EmailNormalizeCase bool `yaml:"email_normalize_case"`

	// AgeColumn and its inclusive plausible range (defaults: age, 18, 100).
	AgeColumn string  `yaml:"age_column"`
	AgeMin    float64 `yaml:"age_min"`
	AgeMax    float64 `yaml:"age_max"`

	// StatusColumn and the sentinel counted as invalid
	// (defaults: status, UNKNOWN).
	StatusColumn   string `yaml:"status_column"`
	StatusSentinel string `yaml:"status_sentinel"`

	// PaymentMethodColumn and its invalid sentinel
	// (defaults: payment_method, INVALID_METHOD).
	PaymentMethodColumn string `yaml:"payment_method_column"`
	PaymentSentinel     string `yaml:"payment_sentinel"`

	// TotalAmountColumn is checked for negative and non-numeric values
	// (default: total_amount).
	TotalAmountColumn string `yaml:"total_amount_column"`

	// Price canonicalization column bindings
	// (defaults: product_id, product_name, unit_price).
	ProductIDColumn   string `yaml:"product_id_column"`
	ProductNameColumn string `yaml:"product_name_column"`
	UnitPriceColumn   string `yaml:"unit_price_column"`

	// SummaryFormatChecks selects which format check counts roll up
	// into Summary.FormatsTotal (default: email_invalid, future_dates,
	// unrealistic_ages).
	SummaryFormatChecks []string `yaml:"summary_format_checks"`

	// MaxWarnings caps the per-report list of field-level parse
	// warnings (default: 50).
	MaxWarnings int `yaml:"max_warnings"`
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		EmailColumn:         "email",
		EmailNormalizeCase:  true,
		AgeColumn:           "age",
		AgeMin:              18,
		AgeMax:              100,
		StatusColumn:        "status",
		StatusSentinel:      "UNKNOWN",
		PaymentMethodColumn: "payment_method",
		PaymentSentinel:     "INVALID_METHOD",
		TotalAmountColumn:   "total_amount",
		ProductIDColumn:     "product_id",
		ProductNameColumn:   "product_name",
		UnitPriceColumn:     "unit_price",
		SummaryFormatChecks: []string{"email_invalid", "future_dates", "unrealistic_ages"},
		MaxWarnings:         50,
	}
}
