package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/strategy-report/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportInput   string
	exportURL     string
	exportOutput  string
	exportTimeout time.Duration
	exportVerbose bool
)

var exportPDFCmd = &cobra.Command{
	Use:   "export-pdf",
	Short: "Print a rendered report to PDF with headless Chromium",
	RunE:  runExportPDF,
}

func init() {
	exportPDFCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to a rendered report HTML file")
	exportPDFCmd.Flags().StringVar(&exportURL, "url", "", "URL of a report page (http, https or file)")
	exportPDFCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Path to output PDF file (required)")
	exportPDFCmd.Flags().DurationVar(&exportTimeout, "timeout", export.DefaultTimeout, "Export timeout")
	exportPDFCmd.Flags().BoolVarP(&exportVerbose, "verbose", "v", false, "Log Chromium activity")

	if err := exportPDFCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}
	exportPDFCmd.MarkFlagsMutuallyExclusive("in", "url")
	exportPDFCmd.MarkFlagsOneRequired("in", "url")

	rootCmd.AddCommand(exportPDFCmd)
}

func runExportPDF(_ *cobra.Command, _ []string) error {
	src := export.Source{URL: exportURL}
	if exportInput != "" {
		html, err := os.ReadFile(exportInput)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		src.HTML = string(html)
	}
	if !export.ChromeAvailable() {
		return fmt.Errorf("chromium not found: install it or set CHROME_PATH")
	}

	pdf, err := export.NewChromiumExporter(exportTimeout, exportVerbose).Export(context.Background(), src)
	if err != nil {
		return err
	}
	if err := writeOutput(exportOutput, pdf); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Wrote %d bytes to %s\n", len(pdf), exportOutput)
	return nil
}
