package window

import (
	"context"
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
)

func TestGame_UpdateTerminatesOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &Game{ctx: ctx, cfg: simulation.DefaultConfig(), lastState: &simulation.Snapshot{}}
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Update() = %v; want ebiten.Termination", err)
	}
}
