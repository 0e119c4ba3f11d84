package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tracery/pkg/domain"
)

// LoggingHooks logs every Flatten at info level (warn on failure) and symbol
// and action events at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFlattenEnd: func(ctx context.Context, e *domain.FlattenEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "Flatten failed", "template", e.Template, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "Flatten",
				"template", e.Template,
				"nodes", e.Nodes,
				"duration", e.Duration,
			)
		},
		OnSymbol: func(ctx context.Context, e *domain.SymbolEvent) {
			logger.DebugContext(ctx, "Symbol",
				"key", e.Key,
				"source", e.Source,
				"depth", e.Depth,
				"modifiers", e.Modifiers,
			)
		},
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "Action", "name", e.Name, "op", e.Op)
		},
	}
}
