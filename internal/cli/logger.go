package cli

import (
	"log/slog"

	"github.com/aretw0/tracery"
	"github.com/aretw0/tracery/internal/config"
	"github.com/aretw0/tracery/internal/logging"
	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/observability"
)

// createLogger configures the application logger.
// It writes to Stderr to keep generated text on Stdout clean.
func createLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Level())
}

// engineOptions maps process config onto engine options. Debug logging adds
// per-symbol hooks after any hooks passed in.
func engineOptions(cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) []tracery.Option {
	var merged domain.LifecycleHooks
	for _, h := range hooks {
		merged = merged.Merge(h)
	}
	if cfg.Level() <= slog.LevelDebug {
		merged = merged.Merge(observability.LoggingHooks(logger))
	}
	return []tracery.Option{
		tracery.WithLogger(logger),
		tracery.WithMaxDepth(cfg.MaxDepth),
		tracery.WithLifecycleHooks(merged),
	}
}
