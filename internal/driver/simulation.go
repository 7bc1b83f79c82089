// Package driver runs the flocks of a scene tick after tick inside a goakt
// actor and publishes snapshots for the viewer.
package driver

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/lao-tseu-is-alive/go-flock/internal/config"
	"github.com/lao-tseu-is-alive/go-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock/pkg/scene"
	"github.com/lao-tseu-is-alive/go-flock/pkg/steering"
	"google.golang.org/protobuf/types/known/structpb"
)

// Parameter keys accepted by ApplyParams.
const (
	ParamVisualRange    = "visualRange"
	ParamProtectedRange = "protectedRange"
	ParamTurnFactor     = "turnFactor"
	ParamMinSpeed       = "minSpeed"
)

var ErrUnknownParam = errors.New("unknown parameter")

// BoidView is the read-only state of one boid in a Snapshot.
type BoidView struct {
	ID       int64
	Flock    int // index of the flock in spawn order
	Position geometry.Vector2D
	Velocity geometry.Vector2D
}

// Snapshot is a copy of the simulation state after a tick.
type Snapshot struct {
	Tick     uint64
	Boids    []BoidView
	Members  []int // per flock
	Stats    flock.TickStats
	Duration time.Duration
}

// Simulation owns a scene tree with one flock node per flock and the boids
// spawned beneath them. It is not safe for concurrent use; the TickActor
// serializes every access.
type Simulation struct {
	tree   *scene.Tree
	flocks []*flock.Flock2D
	nodes  []*scene.Node
	policy *steering.Reynolds
	ticks  uint64
}

// NewSimulation builds the scene described by cfg. Boids start in a disc
// around the home point of their flock with a random heading.
func NewSimulation(cfg *config.Config, rng *rand.Rand, logger flock.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tree := scene.NewTree(scene.WithLogger(logger))
	s := &Simulation{
		tree:   tree,
		policy: steering.NewReynolds(cfg.SteeringSettings()),
	}

	props := cfg.BoidProperties()
	spread := math.Min(cfg.WorldWidth, cfg.WorldHeight) / 6
	for i := 0; i < cfg.NumFlocks; i++ {
		fNode := tree.NewNode(fmt.Sprintf("Flock-%02d", i))
		f := flock.NewFlock2D(fNode, cfg.FlockProperties())
		if err := tree.Root().AddChild(fNode); err != nil {
			return nil, fmt.Errorf("adding flock %d: %w", i, err)
		}
		s.flocks = append(s.flocks, f)
		s.nodes = append(s.nodes, fNode)

		home := geometry.Vector2D{
			X: cfg.WorldWidth * float64(i+1) / float64(cfg.NumFlocks+1),
			Y: cfg.WorldHeight / 2,
		}
		for j := 0; j < cfg.BoidsPerFlock; j++ {
			bNode := tree.NewNode(fmt.Sprintf("Boid-%02d-%03d", i, j))
			offset := geometry.NewVectorPolar(spread*math.Sqrt(rng.Float64()), rng.Float64()*2*math.Pi)
			bNode.SetPosition(home.Add(offset))
			b := flock.NewBoid2D(bNode, props)
			speed := cfg.MinSpeed + rng.Float64()*(props.MaxSpeed()-cfg.MinSpeed)
			b.SetVelocity(geometry.NewVectorPolar(speed, rng.Float64()*2*math.Pi))
			if err := fNode.AddChild(bNode); err != nil {
				return nil, fmt.Errorf("adding boid %d to flock %d: %w", j, i, err)
			}
		}
	}
	return s, nil
}

func (s *Simulation) Tree() *scene.Tree          { return s.tree }
func (s *Simulation) Flocks() []*flock.Flock2D   { return s.flocks }
func (s *Simulation) Policy() *steering.Reynolds { return s.policy }
func (s *Simulation) Ticks() uint64              { return s.ticks }

// Step ticks every flock once, in spawn order, and returns the summed stats.
func (s *Simulation) Step(metrics *Metrics) flock.TickStats {
	var total flock.TickStats
	for i, f := range s.flocks {
		stats := f.Tick(s.policy)
		metrics.observeFlock(i, f.Len(), stats)
		total.Visited += stats.Visited
		total.Applied += stats.Applied
		total.Stale += stats.Stale
		total.Failed += stats.Failed
	}
	s.ticks++
	return total
}

// Snapshot copies the current boid states.
func (s *Simulation) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick:    s.ticks,
		Members: make([]int, len(s.flocks)),
	}
	for i, f := range s.flocks {
		snap.Members[i] = f.Len()
		for id := range f.IterMembers() {
			obj, ok := s.tree.Lookup(id)
			if !ok {
				continue
			}
			b, ok := obj.(*flock.Boid2D)
			if !ok {
				continue
			}
			snap.Boids = append(snap.Boids, BoidView{
				ID:       id,
				Flock:    i,
				Position: b.BoidPosition().XY(),
				Velocity: b.Velocity(),
			})
		}
	}
	return snap
}

// ApplyParams updates the live tuning from a struct of numbers keyed by the
// Param constants. Nothing changes unless every key is known and the
// resulting flock properties are valid.
func (s *Simulation) ApplyParams(params *structpb.Struct) error {
	fp := flock.DefaultFlockProperties()
	if len(s.flocks) > 0 {
		fp = s.flocks[0].Properties()
	}
	visual, protected := fp.VisualRange(), fp.ProtectedRange()
	settings := s.policy.Settings

	for key, v := range params.GetFields() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return fmt.Errorf("parameter %q: want a number, got %T", key, v.GetKind())
		}
		if n.NumberValue < 0 || math.IsInf(n.NumberValue, 0) || math.IsNaN(n.NumberValue) {
			return fmt.Errorf("parameter %q: %v is not a non-negative number", key, n.NumberValue)
		}
		switch key {
		case ParamVisualRange:
			visual = n.NumberValue
		case ParamProtectedRange:
			protected = n.NumberValue
		case ParamTurnFactor:
			settings.TurnFactor = n.NumberValue
		case ParamMinSpeed:
			settings.MinSpeed = n.NumberValue
		default:
			return fmt.Errorf("%w: %q", ErrUnknownParam, key)
		}
	}

	if protected > visual {
		return fmt.Errorf("protected range %v exceeds visual range %v", protected, visual)
	}
	next := flock.NewFlockProperties(visual, protected)
	if err := next.Validate(); err != nil {
		return err
	}
	for _, f := range s.flocks {
		if err := f.SetProperties(next); err != nil {
			return err
		}
	}
	s.policy.Settings = settings
	return nil
}

// Close frees the flock nodes, which detaches every boid.
func (s *Simulation) Close() {
	for _, n := range s.nodes {
		if !n.IsFreed() {
			n.Free()
		}
	}
	s.flocks = nil
	s.nodes = nil
}
