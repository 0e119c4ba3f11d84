package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tracery/internal/cli"
	"github.com/aretw0/tracery/pkg/runner"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten [template]",
	Short: "Expand a template against a grammar",
	Long: `Expands the template against the grammar given by --file or --grammar.
Without a template argument, templates are read from stdin, one per line.`,
	Example: `  tracery flatten --file story.yaml "#origin#"
  tracery flatten --grammar story --count 5 --json
  echo "#hero.capitalize#" | tracery --file story.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := cli.FlattenOptions{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		}
		opts.File, _ = flags.GetString("file")
		opts.Grammar, _ = flags.GetString("grammar")
		opts.Count, _ = flags.GetInt("count")
		opts.Seed, _ = flags.GetInt64("seed")
		opts.HasSeed = flags.Changed("seed")
		opts.Stacked, _ = flags.GetBool("stacked")
		opts.JSON, _ = flags.GetBool("json")
		opts.Markdown, _ = flags.GetBool("markdown")
		opts.KeepGoing, _ = flags.GetBool("keep-going")
		if len(args) > 0 {
			opts.Template = args[0]
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()
		return cli.RunFlatten(signals.Context(), cfg, opts)
	},
}

func addFlattenFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("file", "f", "", "Grammar file (.yaml, .json or .hcl)")
	f.StringP("grammar", "g", "", "Grammar name in the store")
	f.IntP("count", "n", 1, "Expansions per template")
	f.Int64("seed", 0, "Random seed for reproducible output")
	f.Bool("stacked", false, "Keep earlier bindings on a stack instead of replacing them")
	f.Bool("json", false, "Write NDJSON results")
	f.Bool("markdown", false, "Render output as markdown")
	f.Bool("keep-going", false, "Report failed expansions and continue")
}

func init() {
	rootCmd.AddCommand(flattenCmd)
	addFlattenFlags(flattenCmd)

	// flatten is the default command.
	addFlattenFlags(rootCmd)
	rootCmd.Args = flattenCmd.Args
	rootCmd.RunE = flattenCmd.RunE
}
