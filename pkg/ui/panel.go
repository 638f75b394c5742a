package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30
	sectionHeight = 25
	margin        = 10
)

// Panel stacks widgets in titled sections and scrolls with the mouse wheel.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	Hidden        bool
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []section
}

type section struct {
	title   string
	widgets []Widget
}

func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section; widgets added afterwards belong to it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, section{title: title})
}

func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(0, 0, p.Width-2*margin, label, min, max, value)
	p.add(s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.add(c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.Width-2*margin, 22, label, onClick)
	p.add(b)
	return b
}

func (p *Panel) add(w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	last := &p.sections[len(p.sections)-1]
	last.widgets = append(last.widgets, w)
	p.layout()
}

// layout positions every widget for the current scroll offset.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		y += sectionHeight
		for _, w := range s.widgets {
			w.MoveTo(p.X+margin, y)
			y += w.Height()
		}
	}
}

func (p *Panel) contentHeight() float64 {
	h := float64(titleHeight)
	for _, s := range p.sections {
		h += sectionHeight
		for _, w := range s.widgets {
			h += w.Height()
		}
	}
	return h
}

func (p *Panel) Update() {
	if p.Hidden {
		return
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		maxScroll := max(p.contentHeight()-p.Height+margin, 0)
		p.ScrollOffset = clamp(p.ScrollOffset-dy*20, 0, maxScroll)
		p.layout()
	}
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		y += sectionHeight
		for _, w := range s.widgets {
			if p.visible(y, w.Height()) {
				w.Update()
			}
			y += w.Height()
		}
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if p.visible(y, sectionHeight) {
			vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, s.title, int(p.X+margin), int(y+3))
		}
		y += sectionHeight
		for _, w := range s.widgets {
			if p.visible(y, w.Height()) {
				w.Draw(screen)
			}
			y += w.Height()
		}
	}
}

// visible reports whether a row starting at y fits between the title and the bottom edge.
func (p *Panel) visible(y, h float64) bool {
	return y >= p.Y+titleHeight && y+h <= p.Y+p.Height
}
