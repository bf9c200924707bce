package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tochemey/goakt/v3/log"
)

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UpdateMode = "sideways"
	if _, err := NewEngine(context.Background(), cfg, log.DiscardLogger); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewEngine error = %v; want ErrInvalidConfig", err)
	}
}

func TestEngine_TickProducesSnapshots(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.NumBoids = 20
	cfg.Seed = 7

	engine, err := NewEngine(ctx, cfg, log.DiscardLogger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer func() {
		if err := engine.Stop(ctx); err != nil {
			t.Errorf("Stop: %v", err)
		}
	}()

	if engine.Seed() != 7 {
		t.Errorf("Seed = %d; want 7", engine.Seed())
	}
	if got := engine.FrameDuration(); got != time.Second/60 {
		t.Errorf("FrameDuration = %v; want %v", got, time.Second/60)
	}

	const frames = 5
	for i := 0; i < frames; i++ {
		if err := engine.Tick(ctx); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-engine.Snapshots():
			if len(snap.Boids) != 20 {
				t.Fatalf("snapshot has %d boids; want 20", len(snap.Boids))
			}
			if snap.Frame == frames {
				return
			}
		case <-deadline:
			t.Fatalf("no snapshot for frame %d after 5s", frames)
		}
	}
}

func TestEngine_SameSeedSameFlock(t *testing.T) {
	ctx := context.Background()
	run := func() *Snapshot {
		cfg := DefaultConfig()
		cfg.NumBoids = 30
		cfg.Seed = 11
		engine, err := NewEngine(ctx, cfg, log.DiscardLogger)
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		defer func() { _ = engine.Stop(ctx) }()

		for i := 0; i < 3; i++ {
			if err := engine.Tick(ctx); err != nil {
				t.Fatalf("Tick: %v", err)
			}
		}
		deadline := time.After(5 * time.Second)
		for {
			select {
			case snap := <-engine.Snapshots():
				if snap.Frame == 3 {
					return snap
				}
			case <-deadline:
				t.Fatal("no snapshot for frame 3 after 5s")
			}
		}
	}

	a, b := run(), run()
	for i := range a.Boids {
		if a.Boids[i].Position != b.Boids[i].Position {
			t.Fatalf("boid %d at %v and %v with the same seed", i, a.Boids[i].Position, b.Boids[i].Position)
		}
	}
}

func TestEngine_LatestDrains(t *testing.T) {
	e := &Engine{snapshotCh: make(chan *Snapshot, 3)}
	if e.Latest() != nil {
		t.Fatal("Latest on an empty channel should be nil")
	}
	for i := 1; i <= 3; i++ {
		e.snapshotCh <- &Snapshot{Frame: uint64(i)}
	}
	if got := e.Latest(); got == nil || got.Frame != 3 {
		t.Fatalf("Latest = %v; want frame 3", got)
	}
	if e.Latest() != nil {
		t.Error("Latest did not drain the channel")
	}
}

func TestEngine_TickAfterCancelIsRefused(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 5
	cfg.Seed = 3

	engine, err := NewEngine(context.Background(), cfg, log.DiscardLogger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer func() { _ = engine.Stop(context.Background()) }()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 2; i++ {
		if err := engine.Tick(cancelled); !errors.Is(err, context.Canceled) {
			t.Fatalf("Tick with a cancelled context = %v; want context.Canceled", err)
		}
	}

	if err := engine.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-engine.Snapshots():
			if snap.Frame > 1 {
				t.Fatalf("frame %d reached, cancelled ticks advanced the world", snap.Frame)
			}
			if snap.Frame == 1 {
				return
			}
		case <-deadline:
			t.Fatal("no snapshot for frame 1 after 5s")
		}
	}
}
