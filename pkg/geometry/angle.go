package geometry

import "math"

// CanonicalAngle maps any angle to the half-open range [-Pi, Pi).
func CanonicalAngle(theta float64) float64 {
	a := math.Mod(theta+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// math.Mod can round a tiny negative input up to exactly 2π
	if a >= 2*math.Pi {
		a = 0
	}
	return a - math.Pi
}

// Triangle returns the three vertices of an isoceles triangle of the given
// size centered on pos, apex first, pointing along heading.
// The wings sit size behind the center and size/2 to either side.
func Triangle(pos Vector2D, heading, size float64) [3]Vector2D {
	// local frame: apex on -Y, rotated so -Y lines up with heading
	turn := heading + math.Pi/2
	return [3]Vector2D{
		pos.Add(Vector2D{X: 0, Y: -size}.Rotate(turn)),
		pos.Add(Vector2D{X: size / 2, Y: size}.Rotate(turn)),
		pos.Add(Vector2D{X: -size / 2, Y: size}.Rotate(turn)),
	}
}
