package simulation

import (
	"context"
	"runtime"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	"golang.org/x/sync/errgroup"
)

// Flock owns every boid of a run, stored by value and addressed by index.
// Boids are neither added nor removed once the flock is built.
type Flock struct {
	boids    []behavior.Boid
	settings behavior.Settings
	mode     UpdateMode
	workers  int
	rng      behavior.Random
	frame    uint64

	// phased mode scratch space, reused across frames
	steers []geometry.Vector2D
}

// NewFlock places cfg.NumBoids boids on a PlacementSteps x PlacementSteps grid
// covering [0, width) x [0, height), all heading right at unit speed.
func NewFlock(cfg *Config, rng behavior.Random) *Flock {
	steps := cfg.PlacementSteps
	cell := 1 / float64(steps)

	boids := make([]behavior.Boid, cfg.NumBoids)
	for i := range boids {
		x := float64(rng.IntN(steps)) * cell * cfg.WorldWidth
		y := float64(rng.IntN(steps)) * cell * cfg.WorldHeight
		b := behavior.New(x, y)
		b.MaxSpeed = cfg.MaxSpeed
		b.MaxForce = cfg.MaxForce
		b.Size = cfg.BoidSize
		boids[i] = b
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Flock{
		boids:    boids,
		settings: cfg.Settings(),
		mode:     cfg.UpdateMode,
		workers:  workers,
		rng:      rng,
	}
}

// Len returns the number of boids.
func (f *Flock) Len() int { return len(f.boids) }

// Frame returns the number of completed frames.
func (f *Flock) Frame() uint64 { return f.frame }

// Settings returns the rule constants of the flock.
func (f *Flock) Settings() behavior.Settings { return f.settings }

// Boids returns a copy of the current boid states.
func (f *Flock) Boids() []behavior.Boid {
	return append([]behavior.Boid(nil), f.boids...)
}

// Step advances the flock by one frame.
// Cancellation is only observed before the frame starts, a started frame always completes.
func (f *Flock) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch f.mode {
	case Phased:
		f.stepPhased()
	default:
		f.stepInterleaved()
	}
	f.frame++
	return nil
}

func (f *Flock) stepInterleaved() {
	for i := range f.boids {
		behavior.ApplyBehavior(i, f.boids, f.settings, f.rng)
		f.boids[i].Integrate(f.settings.Width, f.settings.Height)
	}
}

// stepPhased steers every boid against the same frame state. Steering is read only and
// runs on up to f.workers goroutines; jitter is drawn afterwards in index order so a
// seeded run gives the same result whatever the worker count.
func (f *Flock) stepPhased() {
	if cap(f.steers) < len(f.boids) {
		f.steers = make([]geometry.Vector2D, len(f.boids))
	}
	steers := f.steers[:len(f.boids)]

	var g errgroup.Group
	g.SetLimit(f.workers)
	for _, chunk := range chunks(len(f.boids), f.workers) {
		g.Go(func() error {
			for i := chunk.from; i < chunk.to; i++ {
				steers[i] = behavior.Steer(i, f.boids, f.settings)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range f.boids {
		f.boids[i].Accelerate(steers[i], f.settings, f.rng)
	}
	for i := range f.boids {
		f.boids[i].Integrate(f.settings.Width, f.settings.Height)
	}
}

type span struct{ from, to int }

// chunks splits [0, n) into at most parts contiguous spans.
func chunks(n, parts int) []span {
	if n == 0 {
		return nil
	}
	parts = max(1, min(parts, n))
	size := (n + parts - 1) / parts
	out := make([]span, 0, parts)
	for from := 0; from < n; from += size {
		out = append(out, span{from: from, to: min(from+size, n)})
	}
	return out
}

// Snapshot captures what a renderer needs to draw the current frame.
func (f *Flock) Snapshot() *Snapshot {
	snap := &Snapshot{
		Frame:  f.frame,
		Width:  f.settings.Width,
		Height: f.settings.Height,
		Radius: f.settings.NeighborRadius,
		Boids:  make([]BoidView, len(f.boids)),
	}
	for i := range f.boids {
		b := &f.boids[i]
		snap.Boids[i] = BoidView{
			Position: b.Position,
			Velocity: b.Velocity,
			Heading:  b.Heading(),
			Size:     b.Size,
			MaxSpeed: b.MaxSpeed,
		}
	}
	return snap
}
