package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tracery/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a grammar for undefined symbols and unreachable rules",
	Long: `Scans every rule of the grammar. Symbols that are neither rules nor bound
by an action are reported, as are rules the start symbol never reaches.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		name, _ := cmd.Flags().GetString("grammar")
		start, _ := cmd.Flags().GetString("start")
		return cli.ValidateGrammar(cmd.Context(), cfg, file, name, start, cmd.OutOrStdout())
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the grammar as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) showing which rules reference which.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		name, _ := cmd.Flags().GetString("grammar")
		start, _ := cmd.Flags().GetString("start")
		return cli.GraphGrammar(cmd.Context(), cfg, file, name, start, cmd.OutOrStdout())
	},
}

func init() {
	for _, c := range []*cobra.Command{validateCmd, graphCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringP("file", "f", "", "Grammar file (.yaml, .json or .hcl)")
		c.Flags().StringP("grammar", "g", "", "Grammar name in the store")
	}
	validateCmd.Flags().String("start", "origin", "Start symbol for the reachability check (empty to skip)")
	graphCmd.Flags().String("start", "origin", "Symbol drawn as the entry point")
}
