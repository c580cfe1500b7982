package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/config"
	"github.com/jonathan/strategy-report/internal/db"
	"github.com/jonathan/strategy-report/internal/llm"
	"github.com/jonathan/strategy-report/internal/wizard"
)

// store is a backend that the LLM generator can also read and write.
type store interface {
	backend.Backend
	wizard.Store
}

// openedBackend is the backend picked from flags and config, plus whatever it
// needs released on exit.
type openedBackend struct {
	store   store
	history wizard.HistoryStore
	kind    string
	close   func()
}

// openBackend picks a seed file first, then Postgres, then the REST backend.
func openBackend(ctx context.Context, cfg *config.Config, seedPath string) (*openedBackend, error) {
	switch {
	case seedPath != "":
		m, err := backend.LoadSeed(seedPath)
		if err != nil {
			return nil, err
		}
		return &openedBackend{store: m, kind: "memory", close: func() {}}, nil
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &openedBackend{store: database, history: database, kind: "postgres", close: database.Close}, nil
	case cfg.BackendURL != "":
		client, err := backend.NewHTTPClient(cfg.BackendURL, cfg.BackendToken)
		if err != nil {
			return nil, err
		}
		return &openedBackend{store: client, kind: "http", close: func() {}}, nil
	default:
		return nil, fmt.Errorf("no backend configured: pass --seed or set DATABASE_URL or BACKEND_URL")
	}
}

// newGenerator returns the wizard generator, or nil when neither a generation
// service nor an LLM key is configured.
func newGenerator(ctx context.Context, cfg *config.Config, st wizard.Store) (wizard.Generator, func(), error) {
	if cfg.GenerationURL != "" {
		gen, err := wizard.NewHTTPGenerator(cfg.GenerationURL, cfg.GenerationToken, cfg.GenerationTimeout())
		if err != nil {
			return nil, nil, err
		}
		return gen, func() {}, nil
	}
	apiKey := cfg.LLMAPIKey()
	if apiKey == "" {
		return nil, func() {}, nil
	}
	client, err := llm.NewClient(ctx, llm.ConfigFor(cfg.Provider()), apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Printf("[llm] close failed: %v", err)
		}
	}
	return wizard.NewLLMGenerator(client, st), closeFn, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
