package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/log"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(
		newVersionCmd(),
		newWindowCmd(),
		newTerminalCmd(),
		newHeadlessCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "boids",
		Short: "Boids flocking simulation",
		Long: `boids simulates a flock of birds on a wrapping 2D plane using
Craig Reynolds' alignment, cohesion and separation rules.

Without a subcommand it opens the simulation in a window.`,
		SilenceUsage: true,
		RunE:         runWindow,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "JSON configuration file (defaults are used when empty)")
	flags.String("schema", "", "JSON schema for the configuration file (embedded schema when empty)")
	flags.Uint64("seed", 0, "Random seed, 0 picks one")
	flags.Int("boids", 0, "Number of boids, overrides the configuration")
	flags.String("mode", "", "Update mode: interleaved or phased")
	flags.Int("workers", 0, "Steering goroutines in phased mode, overrides the configuration")
	flags.Bool("debug", false, "Enable debug logging")

	return rootCmd
}

// loadConfig reads the configuration file, if any, then applies the flags the
// user explicitly set.
func loadConfig(cmd *cobra.Command) (*simulation.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	schemaFile, _ := cmd.Flags().GetString("schema")

	cfg := simulation.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = simulation.LoadConfig(configFile, schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", configFile, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("boids") {
		cfg.NumBoids, _ = flags.GetInt("boids")
	}
	if flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		cfg.UpdateMode = simulation.UpdateMode(mode)
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr so headless output can be piped.
func newLogger(cmd *cobra.Command) log.Logger {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return log.New(log.DebugLevel, os.Stderr)
	}
	return log.New(log.InfoLevel, os.Stderr)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
