package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/tracery/internal/logging"
)

// ErrInvalidCount is returned when a batch size below one is requested.
var ErrInvalidCount = errors.New("count must be at least 1")

// Flattener is the engine surface the runner needs. *tracery.Engine satisfies it.
type Flattener interface {
	FlattenContext(ctx context.Context, template string) (string, error)
}

// Runner handles the generation loop using the provided Handler.
type Runner struct {
	// Handler is the strategy for output. If nil, a TextHandler on stdout is used.
	Handler Handler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// MaxInputSize overrides the sanitizer limit when > 0.
	MaxInputSize int

	// KeepGoing reports failed expansions through the handler instead of
	// stopping at the first error.
	KeepGoing bool
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures a custom Handler.
func WithHandler(handler Handler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithMaxInputSize bounds template size in bytes.
func WithMaxInputSize(n int) Option {
	return func(r *Runner) {
		r.MaxInputSize = n
	}
}

// WithKeepGoing makes the runner continue after failed expansions.
func WithKeepGoing(keep bool) Option {
	return func(r *Runner) {
		r.KeepGoing = keep
	}
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run expands template count times.
// It stops early when ctx is cancelled and returns ctx.Err().
func (r *Runner) Run(ctx context.Context, engine Flattener, template string, count int) error {
	if count < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	clean, err := r.sanitize(template)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.generate(ctx, engine, i, clean); err != nil {
			return err
		}
	}
	r.Logger.Debug("batch complete", "count", count)
	return nil
}

// RunLines treats every line of in as a template and expands it count times.
// Only the line ending is removed, so surrounding spaces reach the output.
// Blank lines are skipped; lines failing sanitization are reported and skipped.
func (r *Runner) RunLines(ctx context.Context, engine Flattener, in io.Reader, count int) error {
	if count < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	scanner := bufio.NewScanner(in)
	index := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		clean, err := r.sanitize(line)
		if err != nil {
			r.Logger.Warn("template rejected", "err", err)
			if herr := r.Handler.Output(ctx, Result{Index: index, Template: line, Error: err.Error()}); herr != nil {
				return fmt.Errorf("output error: %w", herr)
			}
			index++
			continue
		}

		for i := 0; i < count; i++ {
			if err := r.generate(ctx, engine, index, clean); err != nil {
				return err
			}
			index++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

func (r *Runner) generate(ctx context.Context, engine Flattener, index int, template string) error {
	text, err := engine.FlattenContext(ctx, template)
	res := Result{Index: index, Template: template, Text: text}
	if err != nil {
		if !r.KeepGoing {
			return fmt.Errorf("expansion %d failed: %w", index, err)
		}
		r.Logger.Debug("expansion failed", "index", index, "err", err)
		res.Error = err.Error()
	}

	if err := r.Handler.Output(ctx, res); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

func (r *Runner) sanitize(template string) (string, error) {
	if r.MaxInputSize > 0 {
		return SanitizeInputLimit(template, r.MaxInputSize)
	}
	return SanitizeInput(template)
}
