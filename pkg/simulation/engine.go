package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
)

const snapshotBuffer = 10

// Engine runs the world actor inside its own actor system and exposes the
// tick / snapshot pair the renderers need.
type Engine struct {
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *Snapshot
	cfg        *Config
	seed       uint64
}

// NewEngine starts the actor system and spawns the world.
func NewEngine(ctx context.Context, cfg *Config, logger log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := ResolveSeed(cfg.Seed)

	system, err := actor.NewActorSystem("BoidsWorld", actor.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	// Buffer to avoid blocking
	snapshotCh := make(chan *Snapshot, snapshotBuffer)
	world := NewWorldActor(snapshotCh, cfg, NewRandom(seed))
	worldPID, err := system.Spawn(ctx, "world", world)
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	logger.Infof("Engine started with seed %d", seed)

	return &Engine{
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		cfg:        cfg,
		seed:       seed,
	}, nil
}

// ResolveSeed replaces the zero seed with a random one.
func ResolveSeed(seed uint64) uint64 {
	if seed == 0 {
		return rand.Uint64()
	}
	return seed
}

// NewRandom returns the seeded generator used for placement and jitter.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Seed returns the seed actually used, useful to replay a run.
func (e *Engine) Seed() uint64 { return e.seed }

// FrameDuration is the wall time one tick stands for.
func (e *Engine) FrameDuration() time.Duration {
	return time.Second / time.Duration(e.cfg.TicksPerSecond)
}

// Tick asks the world to advance one frame. Nothing is sent once ctx is done,
// the world runs on its own context and would not notice.
func (e *Engine) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return actor.Tell(ctx, e.worldPID, durationpb.New(e.FrameDuration()))
}

// Snapshots delivers the frames produced by the world, frames are dropped when
// the reader falls behind.
func (e *Engine) Snapshots() <-chan *Snapshot {
	return e.snapshotCh
}

// Latest drains the pending snapshots and returns the newest one, or nil.
func (e *Engine) Latest() *Snapshot {
	var latest *Snapshot
	for {
		select {
		case snap := <-e.snapshotCh:
			latest = snap
		default:
			return latest
		}
	}
}

// Stop shuts the actor system down.
func (e *Engine) Stop(ctx context.Context) error {
	return e.System.Stop(ctx)
}
