package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/spf13/cobra"
)

var pagesFramework string

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Print the report page table",
	Long:  "Prints the 24 physical pages of the report with their templates and source frameworks.",
	RunE: func(_ *cobra.Command, _ []string) error {
		return printPageTable(os.Stdout, pagesFramework)
	},
}

func init() {
	pagesCmd.Flags().StringVarP(&pagesFramework, "framework", "f", "", "Only list pages fed by this framework")
	rootCmd.AddCommand(pagesCmd)
}

func printPageTable(out io.Writer, framework string) error {
	if err := report.ValidateMappings(report.PageMappings); err != nil {
		return err
	}
	if framework != "" {
		key, ok := types.ParseFrameworkKey(framework)
		if !ok {
			return fmt.Errorf("unknown framework %q", framework)
		}
		_, _ = fmt.Fprintf(out, "%s: pages %v\n", key.Info().Name, report.GetFrameworkPages(key))
		return nil
	}
	for _, m := range report.PageMappings {
		source := string(m.Framework)
		if m.IsDivider {
			source = "(divider)"
		}
		_, _ = fmt.Fprintf(out, "%2d  %-28s %-16s %s\n", m.PageNumber, m.TemplateFile, source, m.Title)
	}
	return nil
}
