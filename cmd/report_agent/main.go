// Package main provides the report_agent CLI: the HTTP API server plus
// operator commands for stages, report rendering and PDF export.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "report_agent",
	Short: "Strategic report workflow server",
	Long: "report_agent serves the admin workflow for strategic reports: stage changes, " +
		"the War Room editor, the framework wizard and the 24-page report.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file (environment wins)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
