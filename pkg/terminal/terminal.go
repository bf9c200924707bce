// Package terminal draws the flock in a text terminal, one arrow per boid.
package terminal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/tochemey/goakt/v3/log"
)

// Driver advances the world and publishes its frames.
// *simulation.Engine implements it.
type Driver interface {
	Tick(ctx context.Context) error
	Snapshots() <-chan *simulation.Snapshot
	FrameDuration() time.Duration
}

// arrows are indexed by heading octant, clockwise from east since screen y grows downwards.
var arrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

var statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)

type Renderer struct {
	screen tcell.Screen
	driver Driver
	logger log.Logger

	paused bool
	last   *simulation.Snapshot
}

func New(screen tcell.Screen, driver Driver, logger log.Logger) *Renderer {
	return &Renderer{
		screen: screen,
		driver: driver,
		logger: logger,
	}
}

// Run initialises the screen and loops until ctx is done or the user quits.
func (r *Renderer) Run(ctx context.Context) error {
	if err := r.screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal screen: %w", err)
	}
	defer r.screen.Fini()
	r.screen.HideCursor()
	r.screen.Clear()

	ticker := time.NewTicker(r.driver.FrameDuration())
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				// screen finalized
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !r.handleEvent(ctx, ev) {
				return nil
			}

		case <-ticker.C:
			if r.paused {
				continue
			}
			if err := r.driver.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to tick the world: %w", err)
			}

		case snap := <-r.driver.Snapshots():
			r.last = snap
			r.draw()
		}
	}
}

// handleEvent returns false when the user asked to quit.
func (r *Renderer) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				r.paused = !r.paused
				r.draw()
			case 's':
				if r.paused {
					if err := r.driver.Tick(ctx); err != nil {
						r.logger.Errorf("failed to step the world: %v", err)
					}
				}
			}
		}

	case *tcell.EventResize:
		r.screen.Sync()
		r.draw()
	}
	return true
}

func (r *Renderer) draw() {
	r.screen.Clear()
	cols, rows := r.screen.Size()
	if r.last == nil || cols == 0 || rows < 2 {
		r.screen.Show()
		return
	}

	// last row is the status bar
	fieldRows := rows - 1
	for _, b := range r.last.Boids {
		x, y := cellFor(b.Position, r.last.Width, r.last.Height, cols, fieldRows)
		r.screen.SetContent(x, y, glyphFor(b.Heading), nil, boidStyle(b.Velocity.Len(), b.MaxSpeed))
	}

	state := "running"
	if r.paused {
		state = "paused, [s] step"
	}
	status := fmt.Sprintf(" frame %d | boids %d | speed %.2f | polarization %.2f | %s | [space] pause [q] quit ",
		r.last.Frame, len(r.last.Boids), r.last.MeanSpeed(), r.last.Polarization(), state)
	drawText(r.screen, 0, rows-1, cols, status, statusStyle)

	r.screen.Show()
}

// cellFor maps a world position to a terminal cell of a cols x rows field.
func cellFor(p geometry.Vector2D, width, height float64, cols, rows int) (int, int) {
	x := int(p.X / width * float64(cols))
	y := int(p.Y / height * float64(rows))
	// positions may sit exactly on the far edge
	return clamp(x, 0, cols-1), clamp(y, 0, rows-1)
}

// glyphFor picks the arrow closest to the heading.
func glyphFor(heading geometry.Vector2D) rune {
	octant := int(math.Round(heading.Angle() / (math.Pi / 4)))
	return arrows[((octant%8)+8)%8]
}

// boidStyle shades faster boids brighter.
func boidStyle(speed, maxSpeed float64) tcell.Style {
	intensity := brightness(speed, maxSpeed)
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(intensity, intensity, intensity))
}

// brightness maps a speed in [0, maxSpeed] to a grey level in [110, 255].
func brightness(speed, maxSpeed float64) int32 {
	ratio := 1.0
	if maxSpeed > 0 {
		ratio = math.Min(speed/maxSpeed, 1)
	}
	return int32(110 + 145*ratio)
}

func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		if col >= maxWidth {
			return
		}
		s.SetContent(col, y, ch, nil, style)
		col++
	}
	for ; col < maxWidth; col++ {
		s.SetContent(col, y, ' ', nil, style)
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
