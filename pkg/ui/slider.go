package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// labelSpace is the room kept above the bar for the label.
const labelSpace = 16

// Slider is a horizontal bar selecting a value between Min and Max.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
}

// NewSlider widens [min, max] when needed so value is never clamped on creation.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{Label: label, Min: math.Min(min, value), Max: math.Max(max, value), W: w, H: 10}
	s.MoveTo(x, y)
	s.Set(value)
	return s
}

// Set stores v clamped to [Min, Max].
func (s *Slider) Set(v float64) {
	s.Value = clamp(v, s.Min, s.Max)
}

// Ratio is the position of Value along the bar, from 0 to 1.
func (s *Slider) Ratio() float64 {
	if s.Max <= s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

// Update moves the value under the cursor while the left button is held.
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if float64(mx) >= s.X && float64(mx) <= s.X+s.W &&
		float64(my) >= s.Y && float64(my) <= s.Y+s.H {
		s.Set(s.Min + (float64(mx)-s.X)/s.W*(s.Max-s.Min))
	}
}

func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %.3g", s.Label, s.Value), int(s.X), int(s.Y-labelSpace))
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

func (s *Slider) Height() float64 { return s.H + labelSpace + 8 }

// MoveTo places the label at (x, y) and the bar below it.
func (s *Slider) MoveTo(x, y float64) { s.X, s.Y = x, y+labelSpace }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
