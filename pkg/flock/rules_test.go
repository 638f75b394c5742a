package flock

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/geometry"
)

func TestSteerTowards_ZeroTarget(t *testing.T) {
	b := NewBird(0, 0, WithHeading(0))
	if got := b.steerTowards(geometry.Zero); !got.IsZero() {
		t.Errorf("steerTowards(0) = %v; want zero", got)
	}
}

func TestSteerTowards_Clamped(t *testing.T) {
	b := NewBird(0, 0, WithHeading(0)) // velocity (2, 0)

	// desired (0, 5) minus velocity (2, 0) is (-2, 5), clamped to 0.1
	got := b.steerTowards(geometry.Vector2D{X: 0, Y: 1})
	want := geometry.Vector2D{X: -2, Y: 5}.Normalize().Mul(0.1)
	if !got.Eq(want) {
		t.Errorf("steerTowards((0,1)) = %v; want %v", got, want)
	}
}

func TestSteerTowards_BelowCapIsExact(t *testing.T) {
	p := DefaultParams()
	p.MaxSteeringForce = 10
	b := NewBird(0, 0, WithHeading(0), WithParams(p))

	got := b.steerTowards(geometry.Vector2D{X: 0, Y: 3})
	want := geometry.Vector2D{X: -2, Y: 5}
	if !got.Eq(want) {
		t.Errorf("steerTowards((0,3)) = %v; want %v", got, want)
	}
}

func TestSteerTowards_NeverExceedsCap(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		b := NewBird(0, 0, WithRand(rng), WithSpeed(rng.Float64()*5))
		target := geometry.Vector2D{X: rng.NormFloat64() * 100, Y: rng.NormFloat64() * 100}
		got := b.steerTowards(target)
		if got.Len() > b.Params().MaxSteeringForce+tolerance {
			t.Fatalf("steerTowards(%v) magnitude %v exceeds cap", target, got.Len())
		}
	}
}

func TestFlock_NoNeighbors(t *testing.T) {
	preset := geometry.Vector2D{X: 0.3, Y: -0.2}

	t.Run("population of one", func(t *testing.T) {
		b := NewBird(100, 100, WithHeading(0))
		b.ApplyForce(preset)
		if n := b.Flock([]*Bird{b}, 0); n != 0 {
			t.Errorf("Flock neighbors = %d; want 0", n)
		}
		if got := b.Force(); !got.Eq(preset) {
			t.Errorf("Force = %v; want unchanged %v", got, preset)
		}
	})

	t.Run("empty population", func(t *testing.T) {
		b := NewBird(100, 100, WithHeading(0))
		b.ApplyForce(preset)
		b.Flock(nil, -1)
		if got := b.Force(); !got.Eq(preset) {
			t.Errorf("Force = %v; want unchanged %v", got, preset)
		}
	})

	t.Run("others out of range", func(t *testing.T) {
		b := NewBird(100, 100, WithHeading(0))
		far := NewBird(160, 100, WithHeading(math.Pi))
		edge := NewBird(100, 150, WithHeading(math.Pi)) // exactly on the perception radius
		b.ApplyForce(preset)
		if n := b.Flock([]*Bird{b, far, edge}, 0); n != 0 {
			t.Errorf("Flock neighbors = %d; want 0", n)
		}
		if got := b.Force(); !got.Eq(preset) {
			t.Errorf("Force = %v; want unchanged %v", got, preset)
		}
	})
}

func TestFlock_LoneBirdTranslates(t *testing.T) {
	b := NewBird(10, 10, WithHeading(0), WithSpeed(3))
	for i := 0; i < 5; i++ {
		b.Flock([]*Bird{b}, 0)
		b.Integrate()
	}
	if got := b.Position(); !got.Eq(geometry.Vector2D{X: 25, Y: 10}) {
		t.Errorf("Position = %v; want (25, 10)", got)
	}
	if !floatEquals(b.Heading(), 0) {
		t.Errorf("Heading = %v; want 0", b.Heading())
	}
}

func TestSteering_BetweenRadii(t *testing.T) {
	// 30 is inside perception (50) but outside separation (25)
	a := NewBird(0, 0, WithHeading(0))
	b := NewBird(30, 0, WithHeading(math.Pi/2))
	population := []*Bird{a, b}

	for self, bird := range population {
		s := bird.Steering(population, self)
		if s.Neighbors != 1 {
			t.Errorf("bird %d: Neighbors = %d; want 1", self, s.Neighbors)
		}
		if s.Alignment.IsZero() {
			t.Errorf("bird %d: Alignment is zero", self)
		}
		if s.Cohesion.IsZero() {
			t.Errorf("bird %d: Cohesion is zero", self)
		}
		if !s.Separation.IsZero() {
			t.Errorf("bird %d: Separation = %v; want zero", self, s.Separation)
		}
	}
}

func TestSteering_TwoBirdScenario(t *testing.T) {
	a := NewBird(0, 0, WithHeading(0))
	b := NewBird(10, 0, WithHeading(math.Pi/2))
	population := []*Bird{a, b}

	s := a.Steering(population, 0)

	// a single neighbor: the alignment average is its velocity
	wantAlignment := a.steerTowards(b.Velocity()).Mul(a.Params().AlignmentWeight)
	if !s.Alignment.Eq(wantAlignment) {
		t.Errorf("Alignment = %v; want %v", s.Alignment, wantAlignment)
	}

	// separation sum is the unit vector (-1, 0)
	sep := a.steerTowards(geometry.Vector2D{X: -1, Y: 0})
	if sep.X >= 0 {
		t.Errorf("separation rule x = %v; want negative", sep.X)
	}
	if sep.Len() > a.Params().MaxSteeringForce+tolerance {
		t.Errorf("separation rule magnitude = %v; want <= %v", sep.Len(), a.Params().MaxSteeringForce)
	}
	if !s.Separation.Eq(sep.Mul(a.Params().SeparationWeight)) {
		t.Errorf("Separation = %v; want %v", s.Separation, sep.Mul(1.5))
	}
	// desired (-5, 0) minus velocity (2, 0) clamps to (-0.1, 0), weighted 1.5
	if !s.Separation.Eq(geometry.Vector2D{X: -0.15, Y: 0}) {
		t.Errorf("Separation = %v; want (-0.15, 0)", s.Separation)
	}

	// cohesion pulls toward (10, 0)
	if s.Cohesion.X <= 0 {
		t.Errorf("Cohesion = %v; want positive x", s.Cohesion)
	}
}

func TestFlock_AppliesWeightedRules(t *testing.T) {
	a := NewBird(0, 0, WithHeading(0))
	b := NewBird(10, 5, WithHeading(2))
	c := NewBird(-20, 12, WithHeading(-1))
	population := []*Bird{a, b, c}

	want := a.Steering(population, 0).Total()
	if n := a.Flock(population, 0); n != 2 {
		t.Errorf("Flock neighbors = %d; want 2", n)
	}
	if got := a.Force(); !got.Eq(want) {
		t.Errorf("Force = %v; want %v", got, want)
	}
}

func TestFlock_ZeroWeightsApplyNothing(t *testing.T) {
	p := DefaultParams()
	p.AlignmentWeight, p.CohesionWeight, p.SeparationWeight = 0, 0, 0
	a := NewBird(0, 0, WithHeading(0), WithParams(p))
	b := NewBird(5, 5, WithHeading(1))

	a.Flock([]*Bird{a, b}, 0)
	if !a.Force().IsZero() {
		t.Errorf("Force = %v; want zero", a.Force())
	}
}

func TestSteering_ZeroDistanceNeighbor(t *testing.T) {
	a := NewBird(40, 40, WithHeading(0))
	twin := NewBird(40, 40, WithHeading(math.Pi/2))
	population := []*Bird{a, twin}

	s := a.Steering(population, 0)

	if s.Neighbors != 1 {
		t.Errorf("Neighbors = %d; want 1 (the twin still counts)", s.Neighbors)
	}
	if !s.Separation.IsZero() {
		t.Errorf("Separation = %v; want zero", s.Separation)
	}
	if !s.Cohesion.IsZero() {
		t.Errorf("Cohesion = %v; want zero (center of mass is here)", s.Cohesion)
	}
	for _, v := range []geometry.Vector2D{s.Alignment, s.Cohesion, s.Separation} {
		if !v.IsFinite() {
			t.Fatalf("non-finite steering %+v", s)
		}
	}

	a.Flock(population, 0)
	a.Integrate()
	if !a.Position().IsFinite() || !a.Velocity().IsFinite() {
		t.Errorf("state went non-finite: pos %v vel %v", a.Position(), a.Velocity())
	}
}

func TestSteering_SelfExcludedByIndex(t *testing.T) {
	a := NewBird(0, 0, WithHeading(0))

	// the same pointer at another index is a neighbor at distance zero
	s := a.Steering([]*Bird{a, a}, 0)
	if s.Neighbors != 1 {
		t.Errorf("Neighbors = %d; want 1", s.Neighbors)
	}

	s = a.Steering([]*Bird{a}, 0)
	if s.Neighbors != 0 {
		t.Errorf("Neighbors = %d; want 0", s.Neighbors)
	}
}

func TestSteering_SeparationSumsUnitVectors(t *testing.T) {
	p := DefaultParams()
	p.MaxSteeringForce = 100
	p.AlignmentWeight, p.CohesionWeight = 0, 0
	p.SeparationWeight = 1
	a := NewBird(0, 0, WithHeading(0), WithSpeed(0), WithParams(p))

	// two neighbors at different distances on the same side push equally
	near := NewBird(1, 0, WithHeading(0))
	farther := NewBird(20, 0, WithHeading(0))
	s := a.Steering([]*Bird{a, near, farther}, 0)

	// sum is (-2, 0), scaled to max speed, velocity is zero
	want := geometry.Vector2D{X: -p.MaxSpeed, Y: 0}
	if !s.Separation.Eq(want) {
		t.Errorf("Separation = %v; want %v", s.Separation, want)
	}
}
