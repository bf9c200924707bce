package simulation

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.UpdateMode != Interleaved {
		t.Errorf("UpdateMode = %q; want %q", cfg.UpdateMode, Interleaved)
	}
	if got := cfg.NeighborRadius(); math.Abs(got-40) > 1e-9 {
		t.Errorf("NeighborRadius = %v; want 40", got)
	}
}

func TestConfig_Settings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldWidth = 1000
	cfg.WorldHeight = 500
	cfg.AlignWeight = 0.5

	s := cfg.Settings()
	if math.Abs(s.NeighborRadius-25) > 1e-9 {
		t.Errorf("NeighborRadius = %v; want 25 (5%% of the shorter side)", s.NeighborRadius)
	}
	if s.AlignWeight != 0.5 || s.CohesionWeight != 0.3 || s.SeparationWeight != 0.3 {
		t.Errorf("weights = %v/%v/%v", s.AlignWeight, s.CohesionWeight, s.SeparationWeight)
	}
	if s.Width != 1000 || s.Height != 500 {
		t.Errorf("plane = %vx%v; want 1000x500", s.Width, s.Height)
	}
}

func TestConfig_ValidateAcceptsMaxBoids(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = MaxBoids
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v for %d boids", err, MaxBoids)
	}
	// three vertices per boid must fit a uint16 index
	if last := 3*MaxBoids - 1; last > math.MaxUint16 {
		t.Errorf("last vertex index %d overflows uint16", last)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.WorldWidth = 0 }},
		{"negative boids", func(c *Config) { c.NumBoids = -1 }},
		{"too many boids", func(c *Config) { c.NumBoids = MaxBoids + 1 }},
		{"more boids than vertex indices", func(c *Config) { c.NumBoids = 30000 }},
		{"zero max speed", func(c *Config) { c.MaxSpeed = 0 }},
		{"zero separation floor", func(c *Config) { c.SeparationFloor = 0 }},
		{"no placement steps", func(c *Config) { c.PlacementSteps = 0 }},
		{"zero tps", func(c *Config) { c.TicksPerSecond = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"unknown mode", func(c *Config) { c.UpdateMode = "sideways" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v; want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeFile(t, "boids.json", `{"numBoids": 250, "updateMode": "phased", "seed": 42}`)
		cfg, err := LoadConfig(path, "")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.NumBoids != 250 || cfg.UpdateMode != Phased || cfg.Seed != 42 {
			t.Errorf("loaded %d boids, mode %q, seed %d", cfg.NumBoids, cfg.UpdateMode, cfg.Seed)
		}
		if cfg.WorldWidth != 800 || cfg.Smoothing != 0.1 {
			t.Errorf("defaults lost: width %v smoothing %v", cfg.WorldWidth, cfg.Smoothing)
		}
	})

	t.Run("explicit schema file", func(t *testing.T) {
		schema := writeFile(t, "schema.json", string(embeddedSchema))
		path := writeFile(t, "boids.json", `{"worldWidth": 640, "worldHeight": 480}`)
		cfg, err := LoadConfig(path, schema)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.WorldWidth != 640 || cfg.WorldHeight != 480 {
			t.Errorf("plane = %vx%v; want 640x480", cfg.WorldWidth, cfg.WorldHeight)
		}
	})

	failures := []struct {
		name    string
		content string
	}{
		{"unknown key", `{"numBoids": 10, "gravity": 9.81}`},
		{"bad update mode", `{"updateMode": "sideways"}`},
		{"wrong type", `{"numBoids": "many"}`},
		{"out of range", `{"ticksPerSecond": 0}`},
		{"not json", `numBoids = 10`},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "boids.json", tt.content)
			if _, err := LoadConfig(path, ""); err == nil {
				t.Errorf("LoadConfig accepted %s", tt.content)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"), ""); err == nil {
			t.Error("LoadConfig accepted a missing file")
		}
	})
}

func TestLoadConfig_SampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "boids.json"), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.NumBoids != 150 || cfg.UpdateMode != Interleaved {
		t.Errorf("sample config loaded %d boids in %q mode", cfg.NumBoids, cfg.UpdateMode)
	}
}
