package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/scriptseq/scriptseq/internal/config"
	"github.com/scriptseq/scriptseq/internal/core/counter"
	"github.com/scriptseq/scriptseq/internal/core/engine"
	"github.com/scriptseq/scriptseq/internal/core/store"
)

func openStateStore(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	backend, err := store.Open(ctx, cfg.State, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open sequence state: %w", err)
	}
	return backend, nil
}

func newCounterClient(cfg *config.Config) *counter.Client {
	return &counter.Client{
		HTTPClient: &http.Client{Timeout: cfg.Counter.Timeout},
		BaseURL:    cfg.Counter.BaseURL,
		Path:       cfg.Counter.Path,
		Timeout:    cfg.Counter.Timeout,
		UserAgent:  fmt.Sprintf("%s/%s", config.AppName, versionInfo.Version),
	}
}

func buildOrchestrator(cfg *config.Config, state engine.StateStore, fetcher engine.Fetcher) *engine.Orchestrator {
	return &engine.Orchestrator{
		Store:       state,
		Fetcher:     fetcher,
		Limiter:     &engine.RateLimiter{Cooldown: cfg.Cooldown},
		FallbackURL: cfg.Counter.BaseURL,
	}
}
