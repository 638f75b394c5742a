package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/simulation"
)

// glyphs are ordered by heading in steps of 45 degrees starting east.
// Screen rows grow downwards, so a positive angle points down.
var glyphs = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

var (
	birdStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	hudStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray)
)

// Glyph returns the arrow closest to heading.
func Glyph(heading float64) rune {
	sector := int(math.Round(heading/(math.Pi/4))) % len(glyphs)
	if sector < 0 {
		sector += len(glyphs)
	}
	return glyphs[sector]
}

// Cell maps a world position onto a cols x rows grid. Positions on the far
// edge of the world land in the last column or row.
func Cell(pos geometry.Vector2D, bounds flock.Bounds, cols, rows int) (int, int, bool) {
	if cols <= 0 || rows <= 0 || bounds.Width <= 0 || bounds.Height <= 0 {
		return 0, 0, false
	}
	x := int(pos.X / bounds.Width * float64(cols))
	y := int(pos.Y / bounds.Height * float64(rows))
	x = min(max(x, 0), cols-1)
	y = min(max(y, 0), rows-1)
	return x, y, true
}

// Renderer draws snapshots onto a tcell screen. The bottom row is kept for
// a status line.
type Renderer struct {
	screen tcell.Screen
	bounds flock.Bounds
}

func NewRenderer(screen tcell.Screen, bounds flock.Bounds) *Renderer {
	return &Renderer{screen: screen, bounds: bounds}
}

// Draw clears the screen, plots one arrow per bird and shows the result.
func (r *Renderer) Draw(snap *simulation.Snapshot) {
	r.screen.Clear()
	cols, rows := r.screen.Size()
	if snap == nil || rows < 2 {
		r.screen.Show()
		return
	}
	field := rows - 1
	for _, b := range snap.Birds {
		x, y, ok := Cell(b.Position, r.bounds, cols, field)
		if !ok {
			continue
		}
		r.screen.SetContent(x, y, Glyph(b.Heading), nil, birdStyle)
	}
	r.drawStatus(snap, cols, rows-1)
	r.screen.Show()
}

func (r *Renderer) drawStatus(snap *simulation.Snapshot, cols, row int) {
	status := fmt.Sprintf(" tick %d | %d birds | %s | v %.2f | pol %.2f | nbr %.1f ",
		snap.Tick, len(snap.Birds), snap.Mode, snap.MeanSpeed, snap.Polarization, snap.MeanNeighbors)
	if snap.Paused {
		status += "| PAUSED "
	}
	x := 0
	for _, c := range status {
		if x >= cols {
			break
		}
		r.screen.SetContent(x, row, c, nil, hudStyle)
		x++
	}
	for ; x < cols; x++ {
		r.screen.SetContent(x, row, ' ', nil, hudStyle)
	}
}
