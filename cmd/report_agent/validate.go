package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/strategy-report/internal/schemas"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/spf13/cobra"
)

var (
	validateInput     string
	validateFramework string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate framework JSON against the embedded schemas",
	Long: `With --framework, validate a single fragment file against that framework's schema.
Without it, run a whole analysis payload through the normalization boundary and
report every fragment that would be dropped.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runValidate(os.Stdout, validateInput, validateFramework)
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to JSON file (required)")
	validateCmd.Flags().StringVarP(&validateFramework, "framework", "f", "", "Framework key of a single fragment")

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, path, framework string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", path)
	}

	if framework != "" {
		key, ok := types.ParseFrameworkKey(framework)
		if !ok {
			return fmt.Errorf("unknown framework %q", framework)
		}
		if err := schemas.ValidateJSONFile(string(key), path); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				return fmt.Errorf("validation failed: %w", err)
			}
			return err
		}
		_, _ = fmt.Fprintf(out, "Validation passed: %s\n", key)
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	res, err := types.DecodeAnalysisData(raw)
	if err != nil {
		return err
	}
	for _, k := range res.Data.Present() {
		_, _ = fmt.Fprintf(out, "ok       %s\n", k)
	}
	for _, d := range res.Dropped {
		_, _ = fmt.Fprintf(out, "dropped  %s: %s\n", d.Key, d.Reason)
	}
	if len(res.Dropped) > 0 {
		return fmt.Errorf("validation found %d invalid framework(s)", len(res.Dropped))
	}
	_, _ = fmt.Fprintf(out, "Validation passed: %d framework(s)\n", len(res.Data.Present()))
	return nil
}
