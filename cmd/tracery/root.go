package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracery/internal/config"
)

// cfg is loaded from the environment before every command, then flags override it.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tracery",
	Short: "Tracery expands text-generation grammars",
	Long: `Tracery expands templates like "#origin#" against a grammar of rules,
picking variants at random and applying modifiers such as .capitalize or .s.

Without a subcommand it behaves like "tracery flatten".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("store", config.StoreFile, "Grammar store: file, loam, memory, redis or sqlite")
	pf.String("dir", "grammars", "Directory holding grammars (file and loam stores)")
	pf.String("sqlite-path", "tracery.db", "Database file (sqlite store)")
	pf.String("redis-addr", "localhost:6379", "Redis address (redis store)")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.Int("max-depth", 256, "Maximum expansion depth")
	pf.Int("max-input-size", 4096, "Maximum template size in bytes")
}

// applyFlags copies explicitly set persistent flags over the environment config.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("store") {
		c.Store, _ = flags.GetString("store")
	}
	if flags.Changed("dir") {
		c.GrammarDir, _ = flags.GetString("dir")
	}
	if flags.Changed("sqlite-path") {
		c.SQLitePath, _ = flags.GetString("sqlite-path")
	}
	if flags.Changed("redis-addr") {
		c.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("max-depth") {
		c.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("max-input-size") {
		c.MaxInputSize, _ = flags.GetInt("max-input-size")
	}
}
