package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/strategy-report/internal/observability"
	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/spf13/cobra"
)

var (
	renderSubmission string
	renderSeed       string
	renderInput      string
	renderCompany    string
	renderOutput     string
	renderBlurred    bool
	renderVerbose    bool
)

var renderReportCmd = &cobra.Command{
	Use:   "render-report",
	Short: "Render the 24-page report to HTML",
	Long: `Render the report for a submission from the configured backend, or for a
local analysis JSON file (--in). Invalid framework fragments are dropped and
their pages render as placeholders.`,
	RunE: runRenderReport,
}

func init() {
	renderReportCmd.Flags().StringVarP(&renderSubmission, "submission", "s", "", "Submission id to load from the backend")
	renderReportCmd.Flags().StringVar(&renderSeed, "seed", "", "Use an in-memory backend loaded from this seed JSON file")
	renderReportCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to an analysis JSON file")
	renderReportCmd.Flags().StringVarP(&renderCompany, "company", "c", "", "Company name for --in")
	renderReportCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to output HTML file (required)")
	renderReportCmd.Flags().BoolVar(&renderBlurred, "blurred", false, "Blur premium pages")
	renderReportCmd.Flags().BoolVarP(&renderVerbose, "verbose", "v", false, "Print the page list")

	if err := renderReportCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}
	renderReportCmd.MarkFlagsMutuallyExclusive("submission", "in")
	renderReportCmd.MarkFlagsOneRequired("submission", "in")

	rootCmd.AddCommand(renderReportCmd)
}

func runRenderReport(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	var (
		analysis *types.Analysis
		company  string
	)
	if renderInput != "" {
		a, err := loadAnalysisFile(renderInput)
		if err != nil {
			return err
		}
		analysis, company = a, renderCompany
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		be, err := openBackend(ctx, cfg, renderSeed)
		if err != nil {
			return err
		}
		defer be.close()

		sub, err := be.store.GetSubmission(ctx, renderSubmission)
		if err != nil {
			return err
		}
		analysis, err = be.store.GetSubmissionAnalysis(ctx, renderSubmission)
		if err != nil {
			return err
		}
		if analysis == nil {
			analysis = &types.Analysis{SubmissionID: sub.ID}
		}
		company = sub.CompanyName
	}

	rep, err := report.RenderReport(ctx, report.PageContext{
		Data:        &analysis.Analysis,
		CompanyName: company,
		Date:        time.Now(),
		Blurred:     renderBlurred,
	})
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := writeOutput(renderOutput, []byte(rep.HTML)); err != nil {
		return err
	}
	if renderVerbose {
		observability.NewPrinter(os.Stdout).PrintPages(rep.Pages)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Rendered %d pages to %s\n", len(rep.Pages), renderOutput)
	return nil
}

// loadAnalysisFile reads an analysis record or a bare framework map.
func loadAnalysisFile(path string) (*types.Analysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis file: %w", err)
	}
	a, dropped, err := types.DecodeAnalysis(raw)
	if err != nil {
		return nil, err
	}
	if len(a.Analysis.Present()) == 0 && len(dropped) == 0 {
		res, err := types.DecodeAnalysisData(raw)
		if err != nil {
			return nil, err
		}
		a.Analysis, dropped = res.Data, res.Dropped
	}
	for _, d := range dropped {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: dropped %s: %s\n", d.Key, d.Reason)
	}
	return a, nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
