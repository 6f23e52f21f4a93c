package profile

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Engine runs the six analyses against a table and merges their
// results into a Report. Analyses are independent reads of the same
// immutable table, so they run concurrently; each writes only its own
// slot of the report and the merge happens on the calling goroutine.
type Engine struct {
	cfg   Config
	rules []LogicalRule
}

// New creates an Engine with the given configuration. Zero-valued
// column bindings disable their checks.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, rules: DefaultLogicalRules()}
}

// WithLogicalRules replaces the built-in cross-column rules.
func (e *Engine) WithLogicalRules(rules []LogicalRule) *Engine {
	e.rules = rules
	return e
}

// Profile analyzes the table and returns the report. It never fails:
// all value-level problems are handled inside the individual analyses.
// The evaluation instant for the future-date check is cfg.AsOf, or the
// current UTC time captured once here when unset.
func (e *Engine) Profile(ctx context.Context, t *Table) *Report {
	cfg := e.cfg
	if cfg.AsOf.IsZero() {
		cfg.AsOf = time.Now().UTC()
	}

	r := &Report{
		SchemaVersion: SchemaVersion,
		RowCount:      t.RowCount,
		ColumnCount:   len(t.Columns),
		Columns:       append([]string(nil), t.Columns...),
	}

	warn := newWarningSink(cfg.MaxWarnings)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Nulls = ProfileNulls(t)
		return nil
	})
	g.Go(func() error {
		r.Formats = ValidateFormats(t, cfg, warn)
		return nil
	})
	g.Go(func() error {
		r.Logical = CheckLogical(t, e.rules)
		return nil
	})
	g.Go(func() error {
		r.Duplicates = DetectDuplicates(t, cfg.EmailColumn)
		return nil
	})
	g.Go(func() error {
		r.Outliers = DetectOutliers(t)
		return nil
	})
	g.Go(func() error {
		if cr, ok := DetectPricingAnomalies(t, cfg); ok {
			r.Pricing = &cr
		}
		return nil
	})
	_ = g.Wait()

	r.Warnings = warn.items
	r.Summary = summarize(r, cfg)
	return r
}
