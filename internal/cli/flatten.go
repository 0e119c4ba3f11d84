package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/tracery"
	"github.com/aretw0/tracery/internal/config"
	"github.com/aretw0/tracery/internal/presentation/tui"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/runner"
)

// FlattenOptions configures a flatten invocation.
type FlattenOptions struct {
	// File loads the grammar from a file; otherwise Grammar is looked up in the store.
	File    string
	Grammar string
	// Template is expanded Count times. When empty, templates are read one per line from In.
	Template string
	// Count defaults to 1.
	Count    int
	Seed     int64
	HasSeed  bool
	Stacked  bool
	JSON     bool
	Markdown bool
	// KeepGoing reports failed expansions and continues instead of stopping.
	KeepGoing bool

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RunFlatten expands templates against a grammar and writes the results.
func RunFlatten(ctx context.Context, cfg *config.Config, opts FlattenOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Count == 0 {
		opts.Count = 1
	}
	logger := createLogger(cfg)

	g, err := loadGrammar(ctx, cfg, opts.File, opts.Grammar)
	if err != nil {
		return err
	}

	engineOpts := engineOptions(cfg, logger)
	if opts.HasSeed {
		engineOpts = append(engineOpts, tracery.WithSeed(opts.Seed))
	}
	if opts.Stacked {
		engineOpts = append(engineOpts, tracery.WithStackedBindings())
	}
	engine, err := tracery.New(g, engineOpts...)
	if err != nil {
		return err
	}

	var handler runner.Handler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.Out)
	} else {
		textOpts := []runner.TextHandlerOption{runner.WithTextHandlerErrWriter(opts.Err)}
		if opts.Markdown {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
		}
		handler = runner.NewTextHandler(opts.Out, textOpts...)
	}

	r := runner.NewRunner(
		runner.WithHandler(handler),
		runner.WithLogger(logger),
		runner.WithMaxInputSize(cfg.MaxInputSize),
		runner.WithKeepGoing(opts.KeepGoing),
	)

	if opts.Template != "" {
		return r.Run(ctx, engine, opts.Template, opts.Count)
	}

	if !opts.JSON && tui.IsInteractive(opts.In, opts.Out) {
		tui.PrintBanner(opts.Out)
		fmt.Fprintln(opts.Out, "Type a template per line (e.g. #origin#). Ctrl+D to quit.")
	}
	return r.RunLines(ctx, engine, opts.In, opts.Count)
}

// loadGrammar reads a grammar from path when given, otherwise from the configured backend.
func loadGrammar(ctx context.Context, cfg *config.Config, path, name string) (grammar.Grammar, error) {
	if path != "" {
		return grammar.LoadFile(path)
	}
	if name == "" {
		return nil, fmt.Errorf("no grammar given: pass a file or a grammar name")
	}
	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}
	defer backend.Close()
	return backend.Loader.Load(ctx, name)
}
