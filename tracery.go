package tracery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tracery/internal/logging"
	"github.com/aretw0/tracery/internal/random"
	"github.com/aretw0/tracery/internal/runtime"
	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/modifiers"
	"github.com/aretw0/tracery/pkg/ports"
)

// Version is the library version reported by the CLI and the HTTP /info endpoint.
var Version = "0.1.0-dev"

// Source is the uniform random index primitive consumed by the engine.
// Intn must return a value in [0, n). *math/rand.Rand satisfies it.
type Source = runtime.Source

// ErrRecursionLimit is returned by Flatten when a grammar expands into itself
// deeper than the configured limit.
var ErrRecursionLimit = domain.ErrRecursionLimit

// Engine is the high-level entry point for the tracery library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine

	source    Source
	seed      *int64
	maxDepth  int
	modifiers *modifiers.Registry
	stacked   bool
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource sets the random index source. It takes precedence over WithSeed.
func WithSource(src Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithSeed makes variant selection reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = &seed
	}
}

// WithMaxDepth bounds symbol nesting. Values <= 0 keep domain.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithModifiers replaces the default modifier registry.
func WithModifiers(r *modifiers.Registry) Option {
	return func(e *Engine) {
		e.modifiers = r
	}
}

// WithStackedBindings makes [name:POP] restore the value bound before the
// latest push instead of deleting the binding.
func WithStackedBindings() Option {
	return func(e *Engine) {
		e.stacked = true
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithName labels the engine; the name is attached to log records.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes an Engine over a copy of g.
// Without WithSource or WithSeed the engine seeds itself from crypto/rand.
func New(g grammar.Grammar, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if err := g.Check(); err != nil {
		return nil, err
	}

	if eng.source == nil {
		if eng.seed != nil {
			eng.source = random.NewSource(*eng.seed)
		} else {
			src, err := random.NewRandomSource()
			if err != nil {
				return nil, fmt.Errorf("failed to seed engine: %w", err)
			}
			eng.source = src
		}
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("grammar", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithMaxDepth(eng.maxDepth),
		runtime.WithModifiers(eng.modifiers),
	}
	if eng.stacked {
		runtimeOpts = append(runtimeOpts, runtime.WithBindings(runtime.NewStackedBindings()))
	}

	eng.runtime = runtime.NewEngine(g, eng.source, runtimeOpts...)
	return eng, nil
}

// Load builds an Engine from the grammar registered under name in loader.
func Load(ctx context.Context, loader ports.GrammarLoader, name string, opts ...Option) (*Engine, error) {
	g, err := loader.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar %q: %w", name, err)
	}
	return New(g, append([]Option{WithName(name)}, opts...)...)
}

// LoadFile builds an Engine from a YAML, JSON or HCL grammar file.
func LoadFile(path string, opts ...Option) (*Engine, error) {
	g, err := grammar.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(g, append([]Option{WithName(path)}, opts...)...)
}

// Flatten expands template into text.
// The temporary bindings are cleared first, so calls are independent.
func (e *Engine) Flatten(template string) (string, error) {
	return e.runtime.Flatten(context.Background(), template)
}

// FlattenContext is Flatten with a context for lifecycle hooks and tracing.
// Evaluation itself is synchronous and does not observe cancellation.
func (e *Engine) FlattenContext(ctx context.Context, template string) (string, error) {
	return e.runtime.Flatten(ctx, template)
}

// Grammar returns the engine's copy of the grammar. Callers must not modify it.
func (e *Engine) Grammar() grammar.Grammar {
	return e.runtime.Grammar()
}

// MaxDepth returns the effective recursion bound.
func (e *Engine) MaxDepth() int {
	return e.runtime.MaxDepth()
}
