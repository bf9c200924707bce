package behavior

import (
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// Default per-boid limits.
const (
	DefaultMaxSpeed = 1.0
	DefaultMaxForce = 0.1
	DefaultSize     = 8.0
)

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// https://en.wikipedia.org/wiki/Boids
//
// Boids are stored by value in a flock slice and identified by their index in it.
type Boid struct {
	Position     geometry.Vector2D
	Velocity     geometry.Vector2D
	Acceleration geometry.Vector2D

	MaxSpeed float64
	MaxForce float64
	Size     float64 // triangle half-extent, rendering only

	heading geometry.Vector2D
}

// Settings controls the rule constants shared by every boid of a flock.
// It is built once from the configuration and never mutated during a run.
type Settings struct {
	NeighborRadius float64 // neighbours are strictly closer than this

	AlignWeight      float64
	CohesionWeight   float64
	SeparationWeight float64

	SeparationFloor float64 // lower bound of the separation divisor
	Smoothing       float64 // acceleration moving average factor
	Jitter          float64 // per-axis noise amplitude

	Width  float64
	Height float64
}

// DefaultSettings returns the classic rule constants for a width x height plane.
func DefaultSettings(width, height float64) Settings {
	return Settings{
		NeighborRadius:   0.05 * min(width, height),
		AlignWeight:      0.3,
		CohesionWeight:   0.3,
		SeparationWeight: 0.3,
		SeparationFloor:  10,
		Smoothing:        0.1,
		Jitter:           0.1,
		Width:            width,
		Height:           height,
	}
}

// Random is the source of uniform values in [0,1) used for jitter and placement.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Uniform returns a value drawn uniformly from [a, b].
func Uniform(rng Random, a, b float64) float64 {
	return a + (b-a)*rng.Float64()
}

// New creates a boid at (x, y) heading right at unit speed.
func New(x, y float64) Boid {
	return Boid{
		Position: geometry.Vector2D{X: x, Y: y},
		Velocity: geometry.Vector2D{X: 1, Y: 0},
		MaxSpeed: DefaultMaxSpeed,
		MaxForce: DefaultMaxForce,
		Size:     DefaultSize,
		heading:  geometry.Vector2D{X: 1, Y: 0},
	}
}

// Steer computes the force-capped steering vector of flock[self] from every other
// boid closer than s.NeighborRadius. It only reads the flock.
func Steer(self int, flock []Boid, s Settings) geometry.Vector2D {
	me := flock[self]
	radiusSq := s.NeighborRadius * s.NeighborRadius

	alignment := geometry.Zero
	cohesion := geometry.Zero
	separation := geometry.Zero
	neighbors := 0

	for i := range flock {
		if i == self {
			continue
		}
		other := &flock[i]

		distSq := me.Position.DistanceSquaredTo(other.Position)
		if distSq >= radiusSq {
			continue
		}

		alignment = alignment.Add(other.Velocity)
		cohesion = cohesion.Add(other.Position)
		if distSq > 0 {
			distance := me.Position.DistanceTo(other.Position)
			away := me.Position.Sub(other.Position)
			separation = separation.Add(away.Mul(1 / max(distance, s.SeparationFloor)))
		}
		neighbors++
	}

	// isolated boids do not steer
	if neighbors > 0 {
		n := float64(neighbors)
		alignment = alignment.Mul(1 / n).Sub(me.Velocity)
		cohesion = cohesion.Mul(1 / n).Sub(me.Position)
	}

	steer := alignment.Mul(s.AlignWeight).
		Add(cohesion.Mul(s.CohesionWeight)).
		Add(separation.Mul(s.SeparationWeight))

	return steer.Limit(me.MaxForce)
}

// Accelerate blends steer into the current acceleration with the smoothing factor,
// then adds one independent jitter draw per axis.
func (b *Boid) Accelerate(steer geometry.Vector2D, s Settings, rng Random) {
	b.Acceleration = b.Acceleration.Lerp(steer, s.Smoothing)
	noise := geometry.Vector2D{
		X: Uniform(rng, -s.Jitter, s.Jitter),
		Y: Uniform(rng, -s.Jitter, s.Jitter),
	}
	b.Acceleration = b.Acceleration.Add(noise)
}

// ApplyBehavior updates the acceleration of flock[self] from its neighbourhood.
// Only flock[self].Acceleration is written.
func ApplyBehavior(self int, flock []Boid, s Settings, rng Random) {
	steer := Steer(self, flock, s)
	flock[self].Accelerate(steer, s, rng)
}

// Integrate applies the acceleration, moves the boid, clears the acceleration and
// wraps the position around the plane edges.
func (b *Boid) Integrate(width, height float64) {
	b.Velocity = b.Velocity.Add(b.Acceleration).Limit(b.MaxSpeed)
	b.Position = b.Position.Add(b.Velocity)
	b.Acceleration = geometry.Zero

	b.Position.X = Wrap(b.Position.X, width)
	b.Position.Y = Wrap(b.Position.Y, height)

	if h := b.Velocity.Normalize(); !h.IsZero() {
		b.heading = h
	}
}

// Wrap maps a coordinate that left [0, limit] to the opposite edge.
// Landing exactly on limit is not a crossing and is kept as is.
func Wrap(v, limit float64) float64 {
	switch {
	case v < 0:
		return limit
	case v > limit:
		return 0
	default:
		return v
	}
}

// Heading returns the unit direction of travel.
// A boid that stopped keeps the heading it had before; a fresh boid faces right.
func (b *Boid) Heading() geometry.Vector2D {
	if h := b.Velocity.Normalize(); !h.IsZero() {
		return h
	}
	if b.heading.IsZero() {
		return geometry.Vector2D{X: 1, Y: 0}
	}
	return b.heading
}
