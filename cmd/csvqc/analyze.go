package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/csvqc/csvqc/internal/profile"
)

// CLI flags
var (
	rulesPath string
	asOfFlag  string
	pretty    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Profile a CSV file and print the report",
	Long: `Profile a CSV file and print the quality report as JSON.

Thresholds, column bindings and cross-column rules can be overridden
with a YAML rules file:

  email_column: contact_email
  age_min: 0
  age_max: 120
  logical_rules:
    - name: sell_less_cost
      lesser: selling_price
      greater: cost_price

Examples:
  csvqc analyze orders.csv
  csvqc analyze orders.csv --pretty
  csvqc analyze orders.csv --rules rules.yaml --as-of 2024-06-01`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rules file with threshold and rule overrides")
	analyzeCmd.Flags().StringVar(&asOfFlag, "as-of", "", "Evaluation instant for the future-date check (default: now)")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")

	rootCmd.AddCommand(analyzeCmd)
}

// rulesFile is the YAML override format. Engine settings inline at the
// top level; cross-column rules under logical_rules.
type rulesFile struct {
	profile.Config `yaml:",inline"`
	LogicalRules   []profile.LogicalRule `yaml:"logical_rules"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, rules, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	if asOfFlag != "" {
		asOf, err := dateparse.ParseIn(asOfFlag, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --as-of value %q: %w", asOfFlag, err)
		}
		cfg.AsOf = asOf
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	table, err := profile.LoadTable(data)
	if err != nil {
		return fmt.Errorf("read CSV: %w", err)
	}

	engine := profile.New(cfg)
	if rules != nil {
		engine = engine.WithLogicalRules(rules)
	}

	report := engine.Profile(cmd.Context(), table)

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(report, "", "  ")
	} else {
		out, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// loadRules returns the engine configuration and optional logical rule
// overrides. Absent fields in the rules file keep their defaults.
func loadRules(path string) (profile.Config, []profile.LogicalRule, error) {
	rf := rulesFile{Config: profile.DefaultConfig()}
	if path == "" {
		return rf.Config, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Config{}, nil, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return profile.Config{}, nil, fmt.Errorf("parse rules file: %w", err)
	}

	return rf.Config, rf.LogicalRules, nil
}
