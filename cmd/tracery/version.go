package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracery"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tracery",
	// The version needs no config.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tracery version %s\n", strings.TrimSpace(tracery.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
