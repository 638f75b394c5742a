package simulation

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/geometry"
	golog "github.com/tochemey/goakt/v3/log"
)

// BirdState is the read-only view of one bird handed to renderers.
type BirdState struct {
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	Heading  float64
}

// Snapshot is a copy of the world after a tick. Renderers may keep it
// for as long as they like; it never aliases simulation state.
type Snapshot struct {
	Tick  uint64
	Birds []BirdState
	Mode  flock.UpdateMode

	Paused  bool
	Elapsed time.Duration // sum of the frame durations that produced this state

	MeanSpeed     float64
	Polarization  float64 // |Σ v̂| / n, 1 when every bird flies the same way
	MeanNeighbors float64
}

// World owns the flock and everything needed to advance it deterministically.
type World struct {
	cfg    *Config
	bounds flock.Bounds
	flock  *flock.Flock
	params flock.Params
	seed   int64
	tick   uint64
	last   flock.StepStats
	logger golog.Logger
}

// NewWorld validates cfg and spawns cfg.NumBirds birds at uniformly random
// positions with random headings, all moving at cfg.InitialSpeed.
func NewWorld(cfg *Config, logger golog.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = golog.DiscardLogger
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0))

	birds := make([]*flock.Bird, cfg.NumBirds)
	for i := range birds {
		x := rng.Float64() * cfg.WorldWidth
		y := rng.Float64() * cfg.WorldHeight
		birds[i] = flock.NewBird(x, y,
			flock.WithRand(rng),
			flock.WithSpeed(cfg.InitialSpeed),
			flock.WithParams(cfg.Bird))
	}

	w := &World{
		cfg:    cfg,
		bounds: cfg.Bounds(),
		flock:  flock.New(birds, cfg.Mode()),
		params: cfg.Bird,
		seed:   seed,
		logger: logger,
	}
	logger.Infof("World is spawning %d birds in %.0fx%.0f (seed %d, %s updates)",
		len(birds), cfg.WorldWidth, cfg.WorldHeight, seed, w.flock.Mode)
	return w, nil
}

// Tick advances every bird by one step and returns the step statistics.
func (w *World) Tick() flock.StepStats {
	w.last = w.flock.Step(w.bounds)
	w.tick++
	return w.last
}

// TickCount returns the number of ticks run so far.
func (w *World) TickCount() uint64 { return w.tick }

// Seed returns the seed the population was drawn from.
func (w *World) Seed() int64 { return w.seed }

// Bounds returns the world size.
func (w *World) Bounds() flock.Bounds { return w.bounds }

// Len returns the number of birds.
func (w *World) Len() int { return len(w.flock.Birds) }

// Params returns the limits and weights currently applied to every bird.
func (w *World) Params() flock.Params { return w.params }

// Mode returns the current update mode.
func (w *World) Mode() flock.UpdateMode { return w.flock.Mode }

// Tune applies new limits and weights to every bird and switches the update mode.
// Invalid parameters are rejected and leave the world unchanged.
func (w *World) Tune(p flock.Params, mode flock.UpdateMode) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("tuning rejected: %w", err)
	}
	if mode != flock.Sequential && mode != flock.Snapshot {
		return fmt.Errorf("tuning rejected: unknown update mode %v", mode)
	}
	for _, b := range w.flock.Birds {
		b.SetParams(p)
	}
	w.params = p
	w.flock.Mode = mode
	return nil
}

// Snapshot copies the state of every bird together with flock statistics.
func (w *World) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick:  w.tick,
		Birds: make([]BirdState, len(w.flock.Birds)),
		Mode:  w.flock.Mode,
	}

	var sumSpeed float64
	var heading geometry.Vector2D
	for i, b := range w.flock.Birds {
		v := b.Velocity()
		snap.Birds[i] = BirdState{Position: b.Position(), Velocity: v, Heading: b.Heading()}
		sumSpeed += v.Len()
		heading = heading.Add(geometry.NewVectorPolar(1, b.Heading()))
	}

	if n := float64(len(w.flock.Birds)); n > 0 {
		snap.MeanSpeed = sumSpeed / n
		snap.Polarization = heading.Len() / n
		snap.MeanNeighbors = float64(w.last.Neighbors) / n
	}
	return snap
}
