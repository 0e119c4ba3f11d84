package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracery/internal/cli"
	"github.com/aretw0/tracery/pkg/grammar"
)

var grammarsCmd = &cobra.Command{
	Use:     "grammars",
	Aliases: []string{"grammar"},
	Short:   "Manage grammars in the configured store",
}

var grammarsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored grammars",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListGrammars(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

var grammarsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored grammar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return cli.ShowGrammar(cmd.Context(), cfg, args[0], grammar.Format(format), cmd.OutOrStdout())
	},
}

var grammarsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Save a grammar file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		saved, err := cli.ImportGrammar(cmd.Context(), cfg, args[0], name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", saved)
		return nil
	},
}

var grammarsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a grammar from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.DeleteGrammar(cmd.Context(), cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(grammarsCmd)
	grammarsCmd.AddCommand(grammarsListCmd, grammarsShowCmd, grammarsImportCmd, grammarsDeleteCmd)

	grammarsShowCmd.Flags().String("format", string(grammar.FormatYAML), "Output format: yaml or json")
	grammarsImportCmd.Flags().String("name", "", "Name to store under (default: file name)")
}
