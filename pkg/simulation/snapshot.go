package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// BoidView is the renderer facing state of one boid.
type BoidView struct {
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	Heading  geometry.Vector2D // unit vector
	Size     float64
	MaxSpeed float64
}

// Triangle returns the tip and the two back corners of the boid glyph:
// (size, 0), (-size/2, -size/2) and (-size/2, size/2) rotated by the heading.
func (v BoidView) Triangle() [3]geometry.Vector2D {
	angle := v.Heading.Angle()
	half := v.Size * 0.5
	forward := geometry.Vector2D{X: v.Size, Y: 0}.Rotate(angle)
	left := geometry.Vector2D{X: -half, Y: -half}.Rotate(angle)
	right := geometry.Vector2D{X: -half, Y: half}.Rotate(angle)
	return [3]geometry.Vector2D{
		v.Position.Add(forward),
		v.Position.Add(left),
		v.Position.Add(right),
	}
}

// Snapshot is an immutable copy of one frame handed to the renderers.
type Snapshot struct {
	Frame  uint64
	Width  float64
	Height float64
	Radius float64 // neighbour radius, for overlays
	Boids  []BoidView
}

// MeanSpeed is the average velocity magnitude.
func (s *Snapshot) MeanSpeed() float64 {
	if len(s.Boids) == 0 {
		return 0
	}
	total := 0.0
	for _, b := range s.Boids {
		total += b.Velocity.Len()
	}
	return total / float64(len(s.Boids))
}

// Polarization is the length of the mean heading: 1 when every boid flies the
// same way, close to 0 for a disordered flock.
func (s *Snapshot) Polarization() float64 {
	if len(s.Boids) == 0 {
		return 0
	}
	sum := geometry.Zero
	for _, b := range s.Boids {
		sum = sum.Add(b.Heading)
	}
	return sum.Mul(1 / float64(len(s.Boids))).Len()
}
