package driver

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TickActor serializes every access to a Simulation. It understands:
//
//   - *durationpb.Duration: run one step; the duration is the frame budget
//   - *emptypb.Empty: reply with the tick count as *wrapperspb.UInt64Value
//   - *structpb.Struct: live parameter update, see Simulation.ApplyParams
type TickActor struct {
	sim        *Simulation
	metrics    *Metrics
	snapshotCh chan<- *Snapshot
}

var _ actor.Actor = (*TickActor)(nil)

// NewTickActor creates the actor. metrics and snapshotCh may be nil.
func NewTickActor(sim *Simulation, metrics *Metrics, snapshotCh chan<- *Snapshot) *TickActor {
	return &TickActor{
		sim:        sim,
		metrics:    metrics,
		snapshotCh: snapshotCh,
	}
}

func (a *TickActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("tick actor owns %d flocks", len(a.sim.Flocks()))
	return nil
}

func (a *TickActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("tick actor started")

	case *durationpb.Duration:
		a.step(msg.AsDuration())

	case *emptypb.Empty:
		ctx.Response(wrapperspb.UInt64(a.sim.Ticks()))

	case *structpb.Struct:
		if err := a.sim.ApplyParams(msg); err != nil {
			ctx.Logger().Warnf("rejected parameter update: %v", err)
		}

	default:
		ctx.Unhandled()
	}
}

func (a *TickActor) PostStop(ctx *actor.Context) error {
	a.sim.Close()
	ctx.ActorSystem().Logger().Infof("tick actor stopped after %d ticks", a.sim.Ticks())
	return nil
}

// step advances the simulation once and publishes a snapshot without
// blocking when the consumer is behind.
func (a *TickActor) step(budget time.Duration) *Snapshot {
	start := time.Now()
	stats := a.sim.Step(a.metrics)
	elapsed := time.Since(start)

	if a.metrics != nil {
		a.metrics.TickDuration.Observe(elapsed.Seconds())
		if budget > 0 && elapsed > budget {
			a.metrics.OverrunsTotal.Inc()
		}
	}

	snap := a.sim.Snapshot()
	snap.Stats = stats
	snap.Duration = elapsed
	if a.snapshotCh != nil {
		select {
		case a.snapshotCh <- snap:
		default:
			// consumer busy, skip frame
		}
	}
	return snap
}
