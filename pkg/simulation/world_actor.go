package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorldActor owns a World. Its mailbox is the only way to reach the world,
// so ticks, tuning and snapshots never overlap.
//
// Messages:
//   - *durationpb.Duration: run one tick lasting that long in wall time, then publish a snapshot
//   - *structpb.Struct: apply a Tuning (see TuningFromProto)
type WorldActor struct {
	world      *World
	snapshotCh chan *Snapshot
	paused     bool
	elapsed    time.Duration

	// --- Stats ---
	ticksSinceLog int
	lastLogTime   time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor wraps world. Snapshots are pushed to snapshotCh; when the
// channel is full the oldest queued snapshot is discarded.
func NewWorldActor(world *World, snapshotCh chan *Snapshot) *WorldActor {
	return &WorldActor{
		world:       world,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World actor starting with %d birds", w.world.Len())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World started, publishing first snapshot")
		w.pushSnapshot()

	case *durationpb.Duration:
		if !w.paused {
			w.world.Tick()
			w.elapsed += msg.AsDuration()
			w.ticksSinceLog++
		}
		w.logStats(ctx)
		w.pushSnapshot()

	case *structpb.Struct:
		w.tune(ctx, msg)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World stopped after %d ticks", w.world.TickCount())
	return nil
}

func (w *WorldActor) tune(ctx *actor.ReceiveContext, msg *structpb.Struct) {
	current := Tuning{Params: w.world.Params(), Mode: w.world.Mode(), Paused: w.paused}
	next, err := TuningFromProto(msg, current)
	if err != nil {
		ctx.Logger().Warnf("Ignoring tuning message: %v", err)
		return
	}
	if next.Params != current.Params || next.Mode != current.Mode {
		if err := w.world.Tune(next.Params, next.Mode); err != nil {
			ctx.Logger().Warnf("Ignoring tuning message: %v", err)
			return
		}
		ctx.Logger().Debugf("Tuned flock: %+v (%s updates)", next.Params, next.Mode)
	}
	if next.Paused != w.paused {
		w.paused = next.Paused
		ctx.Logger().Infof("Simulation paused: %t", w.paused)
	}
}

func (w *WorldActor) logStats(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	snap := w.world.Snapshot()
	ctx.Logger().Debugf("📊 TICK %d: %d ticks/sec | speed %.2f | polarization %.2f | neighbors %.1f",
		snap.Tick, w.ticksSinceLog, snap.MeanSpeed, snap.Polarization, snap.MeanNeighbors)
	w.ticksSinceLog = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	snap := w.world.Snapshot()
	snap.Paused = w.paused
	snap.Elapsed = w.elapsed
	for {
		select {
		case w.snapshotCh <- snap:
			return
		default:
			// renderer lagging, drop its oldest frame
			select {
			case <-w.snapshotCh:
			default:
			}
		}
	}
}
