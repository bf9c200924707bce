package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/terminal"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/log"
)

func newTerminalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terminal",
		Short: "Run the simulation in the terminal",
		Long: `Draws one arrow per boid in the terminal.

Keys: [space] pause, [s] step one frame while paused, [q] or [esc] quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			// log lines would tear the screen
			engine, err := simulation.NewEngine(ctx, cfg, log.DiscardLogger)
			if err != nil {
				return fmt.Errorf("failed to start the engine: %w", err)
			}
			defer func() { _ = engine.Stop(cmd.Context()) }()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to create terminal screen: %w", err)
			}

			if err := terminal.New(screen, engine, log.DiscardLogger).Run(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed %d\n", engine.Seed())
			return nil
		},
	}
}
