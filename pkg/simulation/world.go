package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/behavior"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
)

// WorldActor owns the flock. The actor mailbox delivers one tick at a time, so every
// mutation of the flock happens on a single goroutine and a frame is never interrupted.
type WorldActor struct {
	cfg   *Config
	rng   behavior.Random
	flock *Flock

	// Communication with UI
	snapshotCh chan<- *Snapshot

	// simulated time, summed from the tick deltas
	elapsed time.Duration

	// --- Benchmark Stats ---
	framesSinceLog int
	droppedFrames  int
	lastLogTime    time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. snapshotCh may be nil when nobody renders.
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config, rng behavior.Random) *WorldActor {
	return &WorldActor{
		cfg:        cfg,
		rng:        rng,
		snapshotCh: snapshotCh,
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	// The World is responsible for creating its inhabitants
	w.flock = NewFlock(w.cfg, w.rng)
	w.lastLogTime = time.Now()
	ctx.ActorSystem().Logger().Infof("World is seeding %d boids in a %.0fx%.0f plane (%s mode, radius %.1f)",
		w.flock.Len(), w.cfg.WorldWidth, w.cfg.WorldHeight, w.cfg.UpdateMode, w.cfg.NeighborRadius())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")
		w.pushSnapshot()

	// The Main Simulation Step (Driven by the renderer loop)
	case *durationpb.Duration:
		if err := w.flock.Step(ctx.Context()); err != nil {
			ctx.Err(err)
			return
		}
		w.elapsed += msg.AsDuration()
		w.framesSinceLog++

		snap := w.pushSnapshot()
		w.logBenchmarks(ctx, snap)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d frames (%s simulated)", w.flock.Frame(), w.elapsed)
	return nil
}

// pushSnapshot hands the current frame to the renderer without ever blocking the world.
func (w *WorldActor) pushSnapshot() *Snapshot {
	snap := w.flock.Snapshot()
	if w.snapshotCh == nil {
		return snap
	}
	select {
	case w.snapshotCh <- snap:
	default:
		// UI busy, skip frame
		w.droppedFrames++
	}
	return snap
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext, snap *Snapshot) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	ctx.Logger().Infof("📊 FRAME RATE: %d/sec (dropped: %d) | Boids: %d | Speed: %.3f | Polarization: %.3f",
		w.framesSinceLog, w.droppedFrames, len(snap.Boids), snap.MeanSpeed(), snap.Polarization())
	w.framesSinceLog = 0
	w.droppedFrames = 0
	w.lastLogTime = time.Now()
}
