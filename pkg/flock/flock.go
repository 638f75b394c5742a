package flock

import (
	"fmt"
	"strings"
)

// UpdateMode selects how a tick reads the population.
type UpdateMode int

const (
	// Sequential updates birds one after the other in index order. A bird
	// sees the already-moved state of every bird before it in the slice.
	Sequential UpdateMode = iota
	// Snapshot computes every bird's steering from the start-of-tick state
	// first, then moves them all.
	Snapshot
)

func (m UpdateMode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Snapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("UpdateMode(%d)", int(m))
	}
}

// ParseUpdateMode converts "sequential" or "snapshot" to an UpdateMode.
// An empty string means Sequential.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential":
		return Sequential, nil
	case "snapshot":
		return Snapshot, nil
	}
	return Sequential, fmt.Errorf("unknown update mode %q (want sequential or snapshot)", s)
}

// Bounds is the size of the world birds wrap around in.
type Bounds struct {
	Width  float64
	Height float64
}

// StepStats summarizes one tick.
type StepStats struct {
	Neighbors int // sum over all birds of the neighbors each one saw
}

// Flock is a fixed population of birds advanced tick by tick.
// Birds are identified by their index in Birds, which must not be reordered.
type Flock struct {
	Birds []*Bird
	Mode  UpdateMode

	steering []Steering // reused by Snapshot mode
}

// New returns a Flock over birds using the given update mode.
func New(birds []*Bird, mode UpdateMode) *Flock {
	return &Flock{Birds: birds, Mode: mode}
}

// Step runs one tick: flocking forces, integration and wrap for every bird.
func (f *Flock) Step(bounds Bounds) StepStats {
	if f.Mode == Snapshot {
		return f.stepSnapshot(bounds)
	}
	return f.stepSequential(bounds)
}

func (f *Flock) stepSequential(bounds Bounds) StepStats {
	var stats StepStats
	for i, b := range f.Birds {
		stats.Neighbors += b.Flock(f.Birds, i)
		b.Integrate()
		b.WrapPosition(bounds.Width, bounds.Height)
	}
	return stats
}

func (f *Flock) stepSnapshot(bounds Bounds) StepStats {
	if cap(f.steering) < len(f.Birds) {
		f.steering = make([]Steering, len(f.Birds))
	}
	f.steering = f.steering[:len(f.Birds)]

	// read phase: nobody moves
	for i, b := range f.Birds {
		f.steering[i] = b.Steering(f.Birds, i)
	}

	var stats StepStats
	for i, b := range f.Birds {
		b.apply(f.steering[i])
		b.Integrate()
		b.WrapPosition(bounds.Width, bounds.Height)
		stats.Neighbors += f.steering[i].Neighbors
	}
	return stats
}
