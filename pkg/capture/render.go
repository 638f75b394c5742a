package capture

import (
	"image"
	"image/color"
	"math"

	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/simulation"
)

// BirdSize matches the triangle size drawn by the window harness.
const BirdSize = 5.0

var (
	Background = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	Foreground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Render rasterizes snap into a two colour frame of the given size, one
// filled triangle per bird.
func Render(snap *simulation.Snapshot, width, height int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{Background, Foreground})
	if snap == nil {
		return img
	}
	for _, b := range snap.Birds {
		fillTriangle(img, geometry.Triangle(b.Position, b.Heading, BirdSize))
	}
	return img
}

// fillTriangle sets every pixel whose centre lies inside t.
func fillTriangle(img *image.Paletted, t [3]geometry.Vector2D) {
	bounds := img.Bounds()
	minX := int(math.Floor(math.Min(t[0].X, math.Min(t[1].X, t[2].X))))
	maxX := int(math.Ceil(math.Max(t[0].X, math.Max(t[1].X, t[2].X))))
	minY := int(math.Floor(math.Min(t[0].Y, math.Min(t[1].Y, t[2].Y))))
	maxY := int(math.Ceil(math.Max(t[0].Y, math.Max(t[1].Y, t[2].Y))))
	r := image.Rect(minX, minY, maxX+1, maxY+1).Intersect(bounds)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := geometry.NewVector(float64(x)+0.5, float64(y)+0.5)
			if inside(p, t) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
}

func inside(p geometry.Vector2D, t [3]geometry.Vector2D) bool {
	d1 := edge(p, t[0], t[1])
	d2 := edge(p, t[1], t[2])
	d3 := edge(p, t[2], t[0])
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edge(p, a, b geometry.Vector2D) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}
