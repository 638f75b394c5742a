package flock

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/geometry"
)

// DefaultSpeed is the initial speed of a bird when none is given.
const DefaultSpeed = 2.0

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid bird parameters")

// Params holds the limits and flocking weights of one bird.
// Units are pixels and ticks: a speed of 5 moves a bird 5 pixels per tick.
type Params struct {
	MaxSpeed         float64 `json:"maxSpeed" toml:"maxSpeed"`
	MaxSteeringForce float64 `json:"maxSteeringForce" toml:"maxSteeringForce"`

	PerceptionRadius float64 `json:"perceptionRadius" toml:"perceptionRadius"` // neighbors closer than this are seen
	SeparationRadius float64 `json:"separationRadius" toml:"separationRadius"` // neighbors closer than this are avoided

	AlignmentWeight  float64 `json:"alignmentWeight" toml:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight" toml:"cohesionWeight"`
	SeparationWeight float64 `json:"separationWeight" toml:"separationWeight"`
}

// DefaultParams returns the reference limits and weights.
func DefaultParams() Params {
	return Params{
		MaxSpeed:         5.0,
		MaxSteeringForce: 0.1,
		PerceptionRadius: 50,
		SeparationRadius: 25,
		AlignmentWeight:  1.0,
		CohesionWeight:   1.0,
		SeparationWeight: 1.5,
	}
}

// Validate checks that limits are positive, weights nonnegative and that
// the separation radius fits inside the perception radius.
func (p Params) Validate() error {
	switch {
	case p.MaxSpeed <= 0:
		return fmt.Errorf("%w: maxSpeed must be positive, got %v", ErrInvalidParams, p.MaxSpeed)
	case p.MaxSteeringForce <= 0:
		return fmt.Errorf("%w: maxSteeringForce must be positive, got %v", ErrInvalidParams, p.MaxSteeringForce)
	case p.PerceptionRadius < 0 || p.SeparationRadius < 0:
		return fmt.Errorf("%w: radii must not be negative", ErrInvalidParams)
	case p.SeparationRadius > p.PerceptionRadius:
		return fmt.Errorf("%w: separationRadius %v exceeds perceptionRadius %v",
			ErrInvalidParams, p.SeparationRadius, p.PerceptionRadius)
	case p.AlignmentWeight < 0 || p.CohesionWeight < 0 || p.SeparationWeight < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidParams)
	}
	return nil
}

// Bird is one agent of the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds. https://en.wikipedia.org/wiki/Boids
//
// A Bird is not safe for concurrent use. Renderers should read Snapshot copies.
type Bird struct {
	position geometry.Vector2D
	velocity geometry.Vector2D
	force    geometry.Vector2D // accumulated since the last Integrate
	heading  float64
	params   Params
}

// Option configures a Bird at construction time.
type Option func(*birdOptions)

type birdOptions struct {
	heading    float64
	hasHeading bool
	speed      float64
	params     Params
	rng        *rand.Rand
}

// WithHeading seeds the initial heading in radians instead of a random one.
func WithHeading(theta float64) Option {
	return func(o *birdOptions) {
		o.heading = theta
		o.hasHeading = true
	}
}

// WithSpeed sets the initial speed along the heading.
func WithSpeed(speed float64) Option {
	return func(o *birdOptions) { o.speed = speed }
}

// WithParams replaces the default limits and weights.
func WithParams(p Params) Option {
	return func(o *birdOptions) { o.params = p }
}

// WithRand sets the source used to draw a random heading.
// Without it the global math/rand/v2 source is used.
func WithRand(r *rand.Rand) Option {
	return func(o *birdOptions) { o.rng = r }
}

// NewBird creates a bird at (x, y). When no heading is given it is drawn
// uniformly from [0, 2π). The heading is canonicalized to [-π, π).
func NewBird(x, y float64, opts ...Option) *Bird {
	o := birdOptions{speed: DefaultSpeed, params: DefaultParams()}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasHeading {
		if o.rng != nil {
			o.heading = o.rng.Float64() * 2 * math.Pi
		} else {
			o.heading = rand.Float64() * 2 * math.Pi
		}
	}
	heading := geometry.CanonicalAngle(o.heading)
	return &Bird{
		position: geometry.Vector2D{X: x, Y: y},
		velocity: geometry.NewVectorPolar(o.speed, heading),
		heading:  heading,
		params:   o.params,
	}
}

// Position returns the current position in world coordinates.
func (b *Bird) Position() geometry.Vector2D { return b.position }

// Velocity returns the current velocity in pixels per tick.
func (b *Bird) Velocity() geometry.Vector2D { return b.velocity }

// Heading returns the direction of travel in radians.
func (b *Bird) Heading() float64 { return b.heading }

// Force returns the force accumulated since the last Integrate.
func (b *Bird) Force() geometry.Vector2D { return b.force }

// Params returns the bird's limits and weights.
func (b *Bird) Params() Params { return b.params }

// SetParams replaces the bird's limits and weights.
// The current velocity is left alone; the new speed cap applies at the next Integrate.
func (b *Bird) SetParams(p Params) { b.params = p }

// ApplyForce adds f to the force accumulated for this tick. Mass is one,
// so force and acceleration are the same thing.
func (b *Bird) ApplyForce(f geometry.Vector2D) {
	b.force = b.force.Add(f)
}

// Integrate advances the bird by one tick: the accumulated force changes the
// velocity, the velocity is capped at MaxSpeed and moves the position.
// The heading follows the velocity and the force accumulator is cleared.
func (b *Bird) Integrate() {
	b.velocity = b.velocity.Add(b.force).Limit(b.params.MaxSpeed)
	b.position = b.position.Add(b.velocity)

	// a stopped bird keeps facing where it was going
	if !b.velocity.IsZero() {
		b.heading = b.velocity.Angle()
	}

	b.force = geometry.Zero
}

// WrapPosition teleports a bird that left the world to the opposite edge.
// A coordinate above its bound resets to 0 and a negative one to the bound.
// The overshoot is dropped on purpose: this is not a modulo.
func (b *Bird) WrapPosition(width, height float64) {
	if b.position.X > width {
		b.position.X = 0
	} else if b.position.X < 0 {
		b.position.X = width
	}
	if b.position.Y > height {
		b.position.Y = 0
	} else if b.position.Y < 0 {
		b.position.Y = height
	}
}
