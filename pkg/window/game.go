package window

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/ui"
	"github.com/tochemey/goakt/v3/log"
)

var (
	background  = color.RGBA{A: 255}
	radiusColor = color.RGBA{R: 50, G: 100, B: 255, A: 60}
)

// Game renders the flock snapshots in an ebiten window and drives the world with one
// tick per ebiten update.
type Game struct {
	ctx       context.Context
	engine    *simulation.Engine
	logger    log.Logger
	cfg       *simulation.Config
	lastState *simulation.Snapshot

	// UI Controls
	panel            *ui.UIPanel
	widgetPause      *ui.Checkbox
	widgetShowRadius *ui.Checkbox
	widgetShowPanel  *ui.Checkbox
	widgetStep       *ui.Button
	stepRequested    bool

	// Batched triangle buffers, reused across frames
	whiteImage *ebiten.Image
	vertices   []ebiten.Vertex
	indices    []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

func NewGame(ctx context.Context, engine *simulation.Engine, cfg *simulation.Config, logger log.Logger) *Game {
	g := &Game{
		ctx:       ctx,
		engine:    engine,
		logger:    logger,
		cfg:       cfg,
		lastState: &simulation.Snapshot{}, // Avoid nil pointer
	}

	g.whiteImage = ebiten.NewImage(3, 3)
	g.whiteImage.Fill(color.White)

	g.panel = ui.NewUIPanel("Flock", 10, 10, 200, 170)
	g.widgetPause = g.panel.AddCheckbox("Pause [space]", false)
	g.widgetStep = g.panel.AddButton("Step one frame", func() { g.stepRequested = true })
	g.widgetShowRadius = g.panel.AddCheckbox("Neighbour radius", false)
	g.widgetShowPanel = g.panel.AddCheckbox("Keep panel [tab]", true)

	return g
}

// Run opens the window and blocks until it is closed.
func Run(ctx context.Context, engine *simulation.Engine, cfg *simulation.Config, logger log.Logger) error {
	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boid Flocking Simulation")
	ebiten.SetTPS(cfg.TicksPerSecond)

	if err := ebiten.RunGame(NewGame(ctx, engine, cfg, logger)); err != nil {
		return fmt.Errorf("window closed with error: %w", err)
	}
	logger.Info("Window closed")
	return nil
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// SIGINT or SIGTERM from the launching shell
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.widgetPause.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.widgetShowPanel.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) && g.widgetPause.Value {
		g.stepRequested = true
	}

	// 1. Update UI Panel
	g.widgetStep.Disabled = !g.widgetPause.Value
	g.panel.Update()

	// 2. Retrieve Latest State (Non-blocking)
	if snap := g.engine.Latest(); snap != nil {
		g.lastState = snap
	}

	// 3. Trigger Simulation Step
	if !g.widgetPause.Value || g.stepRequested {
		g.stepRequested = false
		if err := g.engine.Tick(g.ctx); err != nil {
			if g.ctx.Err() != nil {
				return ebiten.Termination
			}
			g.logger.Errorf("failed to tick the world: %v", err)
			return err
		}
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)

	if g.widgetShowRadius.Value {
		r := float32(g.lastState.Radius)
		for _, b := range g.lastState.Boids {
			vector.StrokeCircle(screen, float32(b.Position.X), float32(b.Position.Y), r, 1, radiusColor, true)
		}
	}

	g.drawBoids(screen)

	if g.widgetShowPanel.Value || g.widgetPause.Value {
		g.panel.Lines = []string{
			fmt.Sprintf("Frame: %d", g.lastState.Frame),
			fmt.Sprintf("Speed: %.3f", g.lastState.MeanSpeed()),
			fmt.Sprintf("Polarization: %.3f", g.lastState.Polarization()),
		}
		g.panel.Draw(screen)
	}

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)-120, 10)
}

// drawBoids draws every boid as a white triangle in a single batched call.
func (g *Game) drawBoids(screen *ebiten.Image) {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]

	for _, b := range g.lastState.Boids {
		base := uint16(len(g.vertices))
		for _, p := range b.Triangle() {
			g.vertices = append(g.vertices, ebiten.Vertex{
				DstX: float32(p.X),
				DstY: float32(p.Y),
				SrcX: 1, SrcY: 1,
				ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
			})
		}
		g.indices = append(g.indices, base, base+1, base+2)
	}

	if len(g.indices) == 0 {
		return
	}
	screen.DrawTriangles(g.vertices, g.indices, g.whiteImage, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }
