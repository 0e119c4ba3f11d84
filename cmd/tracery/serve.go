package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tracery/internal/cli"
	"github.com/aretw0/tracery/pkg/runner"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the grammar store and flatten sessions as a JSON API over HTTP.
The OpenAPI document is available at /openapi.yaml and metrics at /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()
		return cli.RunServe(signals.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
