package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/tracery/internal/logging"
	"github.com/aretw0/tracery/internal/parser"
	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/modifiers"
)

// Source is the uniform random index primitive: Intn returns a value in [0, n).
// *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Engine expands templates against one grammar.
//
// Thread-safety model: an Engine is NOT safe for overlapping Flatten calls.
// Bindings are instance state reset by every call. Use one Engine per
// concurrent session; the grammar itself is shared read-only.
type Engine struct {
	grammar   grammar.Grammar
	modifiers *modifiers.Registry
	source    Source
	bindings  Bindings
	maxDepth  int
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// EngineOption configures the runtime engine.
type EngineOption func(*Engine)

// WithModifiers replaces the modifier registry.
func WithModifiers(r *modifiers.Registry) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.modifiers = r
		}
	}
}

// WithMaxDepth sets the recursion bound. Values <= 0 keep the default.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithBindings swaps the temporary rule environment (see NewStackedBindings).
func WithBindings(b Bindings) EngineOption {
	return func(e *Engine) {
		if b != nil {
			e.bindings = b
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine. The grammar is copied.
func NewEngine(g grammar.Grammar, source Source, opts ...EngineOption) *Engine {
	e := &Engine{
		grammar:   g.Clone(),
		modifiers: modifiers.Default(),
		source:    source,
		bindings:  NewFlatBindings(),
		maxDepth:  domain.DefaultMaxDepth,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Grammar returns the engine's grammar. Callers must not modify it.
func (e *Engine) Grammar() grammar.Grammar {
	return e.grammar
}

// MaxDepth returns the recursion bound.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Flatten expands template. It clears the temporary bindings, builds a fresh
// node arena and evaluates it depth-first.
// ctx only reaches lifecycle hooks; evaluation is synchronous and not cancellable.
func (e *Engine) Flatten(ctx context.Context, template string) (string, error) {
	start := time.Now()
	e.bindings.Reset()

	if e.hooks.OnFlattenStart != nil {
		e.hooks.OnFlattenStart(ctx, &domain.FlattenEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventFlattenStart},
			Template:  template,
		})
	}

	ev := &evaluation{
		Engine: e,
		ctx:    ctx,
		tree:   parser.NewTree(),
	}
	root := ev.tree.NewRaw(parser.NoParent, template)
	out, err := ev.evalRaw(root, 0)

	if err != nil {
		e.logger.Warn("Flatten aborted", "err", err, "nodes", ev.tree.Len())
		out = ""
	} else if e.logger.Enabled(ctx, slog.LevelDebug) {
		e.logger.Debug("Flatten complete", "nodes", ev.tree.Len(), "tree", parser.Dump(ev.tree))
	}

	if e.hooks.OnFlattenEnd != nil {
		e.hooks.OnFlattenEnd(ctx, &domain.FlattenEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFlattenEnd},
			Template:  template,
			Output:    out,
			Nodes:     ev.tree.Len(),
			Duration:  time.Since(start),
			Err:       err,
		})
	}

	return out, err
}
