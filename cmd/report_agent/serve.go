package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/jonathan/strategy-report/internal/config"
	"github.com/jonathan/strategy-report/internal/export"
	"github.com/jonathan/strategy-report/internal/server"
	"github.com/jonathan/strategy-report/internal/wizard"
	"github.com/spf13/cobra"
)

var (
	servePort  int
	serveSeed  string
	serveNoPDF bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the report workflow.

The backend is a seed file (--seed), PostgreSQL (DATABASE_URL) or the REST
backend (BACKEND_URL). The wizard is enabled when GENERATION_URL or an LLM
API key is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "Serve an in-memory backend loaded from this seed JSON file")
	serveCmd.Flags().BoolVar(&serveNoPDF, "no-pdf", false, "Disable PDF export even when Chromium is available")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", cfg.Port, err)
	}
	if servePort != 0 {
		port = servePort
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, serveSeed)
	if err != nil {
		return err
	}

	gen, closeGen, err := newGenerator(ctx, cfg, be.store)
	if err != nil {
		be.close()
		return err
	}

	deps := server.Deps{
		Backend: be.store,
		JWT:     server.NewJWTService(jwtConfig),
		OnShutdown: func() {
			closeGen()
			be.close()
		},
	}
	if gen != nil {
		deps.Wizard = wizard.NewManager(gen, be.history)
	} else {
		log.Printf("[serve] wizard disabled: set GENERATION_URL or an LLM API key")
	}
	if !serveNoPDF && export.ChromeAvailable() {
		deps.Exporter = export.NewChromiumExporter(export.DefaultTimeout, cfg.Verbose)
	} else {
		log.Printf("[serve] PDF export disabled")
	}

	srv, err := server.New(server.Config{
		Port:               port,
		PublicOrigin:       cfg.PublicOrigin,
		StageChangeTimeout: cfg.StageChangeTimeout(),
	}, deps)
	if err != nil {
		deps.OnShutdown()
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Printf("[serve] backend=%s wizard=%t pdf=%t", be.kind, deps.Wizard != nil, deps.Exporter != nil)
	return srv.Start()
}
