package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/spf13/cobra"
)

// frameStats is one line of headless output.
type frameStats struct {
	Frame        uint64  `json:"frame"`
	Boids        int     `json:"boids"`
	MeanSpeed    float64 `json:"meanSpeed"`
	Polarization float64 `json:"polarization"`
}

func newHeadlessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run the simulation without rendering and print flock statistics",
		Long: `Steps the flock as fast as possible and prints its mean speed and
polarization every --every frames. With --frames 0 it runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			frames, _ := cmd.Flags().GetUint64("frames")
			every, _ := cmd.Flags().GetUint64("every")
			jsonOut, _ := cmd.Flags().GetBool("json")
			if every == 0 {
				return fmt.Errorf("--every must be at least 1")
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			seed := simulation.ResolveSeed(cfg.Seed)
			logger := newLogger(cmd)
			logger.Infof("Running %d boids headless (%s mode, seed %d)", cfg.NumBoids, cfg.UpdateMode, seed)

			flock := simulation.NewFlock(cfg, simulation.NewRandom(seed))
			return runHeadless(ctx, flock, frames, every, newStatsPrinter(cmd.OutOrStdout(), jsonOut))
		},
	}

	cmd.Flags().Uint64("frames", 1000, "Frames to simulate, 0 runs until interrupted")
	cmd.Flags().Uint64("every", 100, "Print statistics every N frames")
	cmd.Flags().Bool("json", false, "Print one JSON object per line")

	return cmd
}

// runHeadless steps the flock until frames are done or ctx is cancelled; an
// interrupt is a normal way to end an unbounded run.
func runHeadless(ctx context.Context, flock *simulation.Flock, frames, every uint64, print func(frameStats) error) error {
	for frames == 0 || flock.Frame() < frames {
		if err := flock.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		if flock.Frame()%every == 0 {
			if err := print(statsOf(flock.Snapshot())); err != nil {
				return err
			}
		}
	}
	if flock.Frame()%every != 0 {
		return print(statsOf(flock.Snapshot()))
	}
	return nil
}

func statsOf(snap *simulation.Snapshot) frameStats {
	return frameStats{
		Frame:        snap.Frame,
		Boids:        len(snap.Boids),
		MeanSpeed:    snap.MeanSpeed(),
		Polarization: snap.Polarization(),
	}
}

func newStatsPrinter(w io.Writer, jsonOut bool) func(frameStats) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		return func(s frameStats) error { return enc.Encode(s) }
	}
	return func(s frameStats) error {
		_, err := fmt.Fprintf(w, "frame %6d | boids %d | speed %.3f | polarization %.3f\n",
			s.Frame, s.Boids, s.MeanSpeed, s.Polarization)
		return err
	}
}
