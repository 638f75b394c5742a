package flock

import "github.com/lao-tseu-is-alive/go-flocking-birds/pkg/geometry"

// Steering holds the weighted output of each flocking rule for one bird.
type Steering struct {
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
	Separation geometry.Vector2D
	Neighbors  int // birds inside the perception radius
}

// Total is the sum of the three rule outputs.
func (s Steering) Total() geometry.Vector2D {
	return s.Alignment.Add(s.Cohesion).Add(s.Separation)
}

// Steering computes the weighted alignment, cohesion and separation forces
// acting on b, scanning every bird of population except the one at index self.
// Nothing is mutated.
//
//   - Alignment steers toward the average velocity of the neighbors.
//   - Cohesion steers toward their center of mass.
//   - Separation steers away from the ones closer than SeparationRadius.
func (b *Bird) Steering(population []*Bird, self int) Steering {
	var (
		sumVelocity   geometry.Vector2D
		sumPosition   geometry.Vector2D
		sumSeparation geometry.Vector2D
		neighbors     int
	)

	for i, other := range population {
		if i == self || other == nil {
			continue
		}
		away := b.position.Sub(other.position)
		dist := away.Len()
		if dist >= b.params.PerceptionRadius {
			continue
		}

		sumVelocity = sumVelocity.Add(other.velocity)
		sumPosition = sumPosition.Add(other.position)
		neighbors++

		// two distinct birds on the same spot give no direction to flee
		if dist < b.params.SeparationRadius && dist > 0 {
			sumSeparation = sumSeparation.Add(away.Mul(1 / dist))
		}
	}

	if neighbors == 0 {
		return Steering{}
	}

	n := float64(neighbors)
	return Steering{
		Alignment:  b.steerTowards(sumVelocity.Mul(1 / n)).Mul(b.params.AlignmentWeight),
		Cohesion:   b.steerTowards(sumPosition.Mul(1 / n).Sub(b.position)).Mul(b.params.CohesionWeight),
		Separation: b.steerTowards(sumSeparation).Mul(b.params.SeparationWeight),
		Neighbors:  neighbors,
	}
}

// Flock applies the three flocking rules to b as three separate forces.
// population is the whole flock including b itself, found at index self.
// It returns the number of neighbors that were seen.
func (b *Bird) Flock(population []*Bird, self int) int {
	s := b.Steering(population, self)
	b.apply(s)
	return s.Neighbors
}

func (b *Bird) apply(s Steering) {
	b.ApplyForce(s.Alignment)
	b.ApplyForce(s.Cohesion)
	b.ApplyForce(s.Separation)
}

// steerTowards returns the force that turns the current velocity toward
// target at full speed, capped at MaxSteeringForce.
func (b *Bird) steerTowards(target geometry.Vector2D) geometry.Vector2D {
	if target.Len() == 0 {
		return geometry.Zero
	}
	desired := target.WithLen(b.params.MaxSpeed)
	return desired.Sub(b.velocity).Limit(b.params.MaxSteeringForce)
}
