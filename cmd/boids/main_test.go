package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/spf13/cobra"
)

func TestLoadConfig_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boids.json")
	if err := os.WriteFile(path, []byte(`{"numBoids": 40, "seed": 3}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	tests := []struct {
		name      string
		args      []string
		wantBoids int
		wantSeed  uint64
		wantMode  simulation.UpdateMode
	}{
		{"defaults", nil, 100, 0, simulation.Interleaved},
		{"file", []string{"--config", path}, 40, 3, simulation.Interleaved},
		{"flags win over file", []string{"--config", path, "--boids", "7", "--seed", "9", "--mode", "phased"}, 7, 9, simulation.Phased},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg *simulation.Config
			rootCmd := newRootCmd()
			rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
				var err error
				cfg, err = loadConfig(cmd)
				return err
			}
			rootCmd.SetArgs(append([]string{}, tt.args...))
			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if cfg.NumBoids != tt.wantBoids || cfg.Seed != tt.wantSeed || cfg.UpdateMode != tt.wantMode {
				t.Errorf("got boids %d seed %d mode %q; want %d %d %q",
					cfg.NumBoids, cfg.Seed, cfg.UpdateMode, tt.wantBoids, tt.wantSeed, tt.wantMode)
			}
		})
	}
}

func TestLoadConfig_RejectsBadMode(t *testing.T) {
	rootCmd := newRootCmd()
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		_, err := loadConfig(cmd)
		return err
	}
	rootCmd.SetArgs([]string{"--mode", "sideways"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown update mode")
	}
}

func TestHeadlessCmd(t *testing.T) {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(newHeadlessCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"headless", "--boids", "20", "--seed", "1", "--frames", "25", "--every", "10", "--json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	wantFrames := []uint64{10, 20, 25}
	if len(lines) != len(wantFrames) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(wantFrames), out.String())
	}
	for i, line := range lines {
		var s frameStats
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			t.Fatalf("line %d is not JSON: %v", i, err)
		}
		if s.Frame != wantFrames[i] || s.Boids != 20 {
			t.Errorf("line %d = %+v; want frame %d with 20 boids", i, s, wantFrames[i])
		}
		if s.MeanSpeed <= 0 || s.MeanSpeed > 1+1e-9 {
			t.Errorf("line %d mean speed %v out of (0, 1]", i, s.MeanSpeed)
		}
	}
}

func TestRunHeadless_StopsOnCancel(t *testing.T) {
	cfg := simulation.DefaultConfig()
	cfg.NumBoids = 5
	flock := simulation.NewFlock(cfg, simulation.NewRandom(1))

	ctx, cancel := context.WithCancel(context.Background())
	var printed []frameStats
	err := runHeadless(ctx, flock, 0, 1, func(s frameStats) error {
		printed = append(printed, s)
		if s.Frame == 3 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if flock.Frame() != 3 {
		t.Errorf("Frame = %d; want 3", flock.Frame())
	}
	if len(printed) != 3 {
		t.Errorf("printed %d lines; want 3", len(printed))
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "boids version "+version) {
		t.Errorf("unexpected output %q", out.String())
	}
}
