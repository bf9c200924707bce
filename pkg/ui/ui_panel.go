package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
	SetY(y float64)
}

// UIPanel stacks widgets vertically inside a titled box.
type UIPanel struct {
	Title         string
	X, Y          float64 // Panel position
	Width, Height float64 // Panel dimensions
	Widgets       []UIWidget
	Labels        []string
	Lines         []string // free text shown under the widgets

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewUIPanel creates a new UI panel
func NewUIPanel(title string, x, y, width, height float64) *UIPanel {
	return &UIPanel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 200},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	checkbox := NewCheckbox(p.X+10, p.Y+p.nextYOffset(), label, value)
	p.add(checkbox, label)
	return checkbox
}

// AddButton adds a button spanning the panel width
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	button := NewButton(p.X+10, p.Y+p.nextYOffset(), p.Width-20, 20, label, onClick)
	p.add(button, "")
	return button
}

func (p *UIPanel) add(w UIWidget, label string) {
	p.Widgets = append(p.Widgets, w)
	p.Labels = append(p.Labels, label)
}

// nextYOffset is the offset below the title and the widgets already added
func (p *UIPanel) nextYOffset() float64 {
	offset := 25.0
	for _, widget := range p.Widgets {
		offset += widget.GetHeight()
	}
	return offset
}

// Update handles input for all widgets
func (p *UIPanel) Update() {
	for _, widget := range p.Widgets {
		widget.Update()
	}
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)

	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	currentY := p.Y + 25
	for i, widget := range p.Widgets {
		widget.SetY(currentY)
		widget.Draw(screen)
		if label := p.Labels[i]; label != "" {
			// label sits right of the checkbox square
			ebitenutil.DebugPrintAt(screen, label, int(p.X+34), int(currentY))
		}
		currentY += widget.GetHeight()
	}

	for _, line := range p.Lines {
		ebitenutil.DebugPrintAt(screen, line, int(p.X+10), int(currentY))
		currentY += 16
	}
}
