package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
)

// ErrEngineStopped is returned when a stopped engine is asked to do something.
var ErrEngineStopped = errors.New("engine stopped")

// Engine runs a World inside a goakt actor system. Harnesses call Tick once
// per frame and read the resulting snapshots from Snapshots.
type Engine struct {
	system    actor.ActorSystem
	worldPID  *actor.PID
	snapshots chan *Snapshot
	frame     time.Duration
	stopped   atomic.Bool
}

// NewEngine creates the world described by cfg, starts the actor system and spawns the world actor.
func NewEngine(ctx context.Context, cfg *Config, logger golog.Logger) (*Engine, error) {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	world, err := NewWorld(cfg, logger)
	if err != nil {
		return nil, err
	}

	system, err := actor.NewActorSystem("FlockingBirds",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	// Buffer to avoid blocking the actor when the renderer lags
	snapshots := make(chan *Snapshot, 10)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(world, snapshots))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	return &Engine{
		system:    system,
		worldPID:  pid,
		snapshots: snapshots,
		frame:     time.Second / time.Duration(cfg.FrameRate),
	}, nil
}

// Tick asks the world to advance by one step.
func (e *Engine) Tick(ctx context.Context) error {
	if e.stopped.Load() {
		return ErrEngineStopped
	}
	return actor.Tell(ctx, e.worldPID, durationpb.New(e.frame))
}

// Tune sends new flocking parameters to the world.
func (e *Engine) Tune(ctx context.Context, t Tuning) error {
	if e.stopped.Load() {
		return ErrEngineStopped
	}
	msg, err := t.ToProto()
	if err != nil {
		return fmt.Errorf("failed to encode tuning: %w", err)
	}
	return actor.Tell(ctx, e.worldPID, msg)
}

// Snapshots returns the channel the world publishes to after every tick.
func (e *Engine) Snapshots() <-chan *Snapshot {
	return e.snapshots
}

// Latest drains the snapshot channel without blocking and returns the newest
// snapshot, or nil when none arrived since the last call.
func (e *Engine) Latest() *Snapshot {
	var latest *Snapshot
	for {
		select {
		case snap := <-e.snapshots:
			latest = snap
		default:
			return latest
		}
	}
}

// Stop shuts the actor system down. It is safe to call more than once.
func (e *Engine) Stop(ctx context.Context) error {
	if e.stopped.Swap(true) {
		return nil
	}
	return e.system.Stop(ctx)
}
