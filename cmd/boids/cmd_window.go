package main

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/window"
	"github.com/spf13/cobra"
)

func newWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Run the simulation in a window (default)",
		Long: `Opens the flock in a window.

Keys: [space] pause, [right] step one frame while paused,
[tab] toggle the panel, [esc] or [q] quit.`,
		RunE: runWindow,
	}
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	engine, err := simulation.NewEngine(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start the engine: %w", err)
	}
	defer func() {
		if err := engine.Stop(cmd.Context()); err != nil {
			logger.Errorf("failed to stop the engine: %v", err)
		}
	}()

	return window.Run(ctx, engine, cfg, logger)
}
