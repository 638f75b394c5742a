package ui

import "github.com/hajimehoshi/ebiten/v2"

// Widget is anything the panel can lay out.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	MoveTo(x, y float64)
}

func cursorIn(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	return float64(mx) >= x && float64(mx) <= x+w &&
		float64(my) >= y && float64(my) <= y+h
}

// press turns a held mouse button into a single click.
type press struct {
	down bool
}

// clicked reports true once per press that starts inside the area.
func (p *press) clicked(over bool) bool {
	if over && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if p.down {
			return false
		}
		p.down = true
		return true
	}
	p.down = false
	return false
}
