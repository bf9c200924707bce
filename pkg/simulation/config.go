package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/behavior"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// UpdateMode selects how a frame orders the behaviour and integration passes.
type UpdateMode string

const (
	// Interleaved computes then integrates each boid in turn, so later boids see
	// the already moved earlier ones.
	Interleaved UpdateMode = "interleaved"
	// Phased steers every boid against the same snapshot before integrating any of them.
	Phased UpdateMode = "phased"
)

// MaxBoids is the largest flock the window renderer can index with 16 bit vertex indices.
const MaxBoids = 20000

// ErrInvalidConfig is returned for configurations the schema cannot rule out.
var ErrInvalidConfig = errors.New("invalid configuration")

//go:embed config.schema.json
var embeddedSchema []byte

const embeddedSchemaURL = "https://github.com/lao-tseu-is-alive/go-boids-flocking/config.schema.json"

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Population
	NumBoids int `json:"numBoids"`

	// Per boid limits
	MaxSpeed float64 `json:"maxSpeed"`
	MaxForce float64 `json:"maxForce"`
	BoidSize float64 `json:"boidSize"`

	// Flocking rules
	NeighborRadiusFactor float64 `json:"neighborRadiusFactor"` // radius = factor * min(width, height)
	AlignWeight          float64 `json:"alignWeight"`
	CohesionWeight       float64 `json:"cohesionWeight"`
	SeparationWeight     float64 `json:"separationWeight"`
	SeparationFloor      float64 `json:"separationFloor"`
	Smoothing            float64 `json:"smoothing"`
	Jitter               float64 `json:"jitter"`

	// Initial placement grid resolution per axis
	PlacementSteps int `json:"placementSteps"`

	// Loop
	UpdateMode     UpdateMode `json:"updateMode"`
	Workers        int        `json:"workers"` // phased mode only, 0 means GOMAXPROCS
	TicksPerSecond int        `json:"ticksPerSecond"`
	Seed           uint64     `json:"seed"` // 0 picks a random seed
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:           800,
		WorldHeight:          800,
		NumBoids:             100,
		MaxSpeed:             behavior.DefaultMaxSpeed,
		MaxForce:             behavior.DefaultMaxForce,
		BoidSize:             behavior.DefaultSize,
		NeighborRadiusFactor: 0.05,
		AlignWeight:          0.3,
		CohesionWeight:       0.3,
		SeparationWeight:     0.3,
		SeparationFloor:      10,
		Smoothing:            0.1,
		Jitter:               0.1,
		PlacementSteps:       100,
		UpdateMode:           Interleaved,
		Workers:              0,
		TicksPerSecond:       60,
		Seed:                 0,
	}
}

// NeighborRadius is the distance under which two boids are flockmates.
func (c *Config) NeighborRadius() float64 {
	return c.NeighborRadiusFactor * min(c.WorldWidth, c.WorldHeight)
}

// Settings derives the immutable rule constants handed to every boid.
func (c *Config) Settings() behavior.Settings {
	return behavior.Settings{
		NeighborRadius:   c.NeighborRadius(),
		AlignWeight:      c.AlignWeight,
		CohesionWeight:   c.CohesionWeight,
		SeparationWeight: c.SeparationWeight,
		SeparationFloor:  c.SeparationFloor,
		Smoothing:        c.Smoothing,
		Jitter:           c.Jitter,
		Width:            c.WorldWidth,
		Height:           c.WorldHeight,
	}
}

// Validate checks the rules a config built in code must also obey.
func (c *Config) Validate() error {
	switch {
	case c.WorldWidth <= 0 || c.WorldHeight <= 0:
		return fmt.Errorf("%w: world must have a positive size, got %vx%v", ErrInvalidConfig, c.WorldWidth, c.WorldHeight)
	case c.NumBoids < 0 || c.NumBoids > MaxBoids:
		return fmt.Errorf("%w: numBoids must be in [0, %d], got %d", ErrInvalidConfig, MaxBoids, c.NumBoids)
	case c.MaxSpeed <= 0 || c.MaxForce <= 0:
		return fmt.Errorf("%w: maxSpeed and maxForce must be positive", ErrInvalidConfig)
	case c.SeparationFloor <= 0:
		return fmt.Errorf("%w: separationFloor must be positive, got %v", ErrInvalidConfig, c.SeparationFloor)
	case c.PlacementSteps < 1:
		return fmt.Errorf("%w: placementSteps must be at least 1, got %d", ErrInvalidConfig, c.PlacementSteps)
	case c.TicksPerSecond < 1:
		return fmt.Errorf("%w: ticksPerSecond must be at least 1, got %d", ErrInvalidConfig, c.TicksPerSecond)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	switch c.UpdateMode {
	case Interleaved, Phased:
	default:
		return fmt.Errorf("%w: unknown updateMode %q", ErrInvalidConfig, c.UpdateMode)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
// An empty schemaFile selects the schema embedded in this package.
// Keys absent from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile != "" {
		return jsonschema.Compile(schemaFile)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(embeddedSchemaURL, bytes.NewReader(embeddedSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(embeddedSchemaURL)
}
