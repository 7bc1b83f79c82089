// Package steering provides the reference steering policy for package flock:
// Craig Reynolds' boids (separation, alignment, cohesion) plus soft world
// edges and a minimum cruise speed. https://en.wikipedia.org/wiki/Boids
package steering

import (
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock/pkg/geometry"
)

var ErrNonFinitePosition = errors.New("member position is not finite")

// Settings are the policy-wide parameters. The per-agent weights live in
// flock.BoidProperties and the perception radii in flock.FlockProperties.
type Settings struct {
	// World bounds; a zero Width or Height disables edge turning.
	Width, Height float64
	Margin        float64 // distance from an edge where turning starts
	TurnFactor    float64 // edge turning strength
	MinSpeed      float64

	Mode flock.UpdateMode
}

// DefaultSettings returns the tuning used by the demo for a world of the given size.
func DefaultSettings(width, height float64) Settings {
	return Settings{
		Width:      width,
		Height:     height,
		Margin:     100,
		TurnFactor: 0.2,
		MinSpeed:   2,
		Mode:       flock.Jacobi,
	}
}

// Reynolds is a flock.Policy. In Jacobi mode it indexes each neighborhood in
// a Grid once per tick; in Gauss-Seidel mode positions move during the tick,
// so it scans every member instead.
type Reynolds struct {
	Settings

	grid    *Grid
	indexed *flock.Neighborhood
	scratch []int
}

var (
	_ flock.Policy       = (*Reynolds)(nil)
	_ flock.Preparer     = (*Reynolds)(nil)
	_ flock.ModeSelector = (*Reynolds)(nil)
)

func NewReynolds(s Settings) *Reynolds {
	return &Reynolds{
		Settings: s,
		grid:     NewGrid(),
	}
}

func (r *Reynolds) UpdateMode() flock.UpdateMode {
	return r.Mode
}

// Prepare indexes the neighborhood for the tick about to run.
func (r *Reynolds) Prepare(nb *flock.Neighborhood) {
	r.indexed = nil
	if r.Mode != flock.Jacobi {
		return
	}
	r.grid.Rebuild(nb.Members, CellSizeFor(nb.Properties))
	r.indexed = nb
}

// Steer returns the force steering nb.Members[i] with its flockmates.
func (r *Reynolds) Steer(nb *flock.Neighborhood, i int) (geometry.Vector3D, error) {
	if i < 0 || i >= len(nb.Members) {
		return geometry.Vector3D{}, fmt.Errorf("member index %d out of range [0, %d)", i, len(nb.Members))
	}
	me := nb.Members[i]
	pos := me.Position.XY()
	vel := me.Velocity.XY()
	if !pos.IsFinite() {
		return geometry.Vector3D{}, fmt.Errorf("boid %d: %w", me.ID, ErrNonFinitePosition)
	}

	visualSq := nb.Properties.VisualRange() * nb.Properties.VisualRange()
	protectedSq := nb.Properties.ProtectedRange() * nb.Properties.ProtectedRange()

	var closeD, velSum, posSum geometry.Vector2D
	neighbors := 0.0

	for _, j := range r.candidates(nb, pos) {
		if j == i {
			continue
		}
		other := nb.Members[j]
		otherPos := other.Position.XY()
		d := pos.Sub(otherPos)
		distSq := d.LenSqr()

		// 1. Separation
		if distSq < protectedSq {
			closeD = closeD.Add(d)
		}
		// 2. Alignment and cohesion share the visual range
		if distSq < visualSq {
			velSum = velSum.Add(other.Velocity.XY())
			posSum = posSum.Add(otherPos)
			neighbors++
		}
	}

	props := me.Properties
	force := closeD.Mul(props.Separation())
	if neighbors > 0 {
		avgVel := velSum.Mul(1 / neighbors)
		avgPos := posSum.Mul(1 / neighbors)
		force = force.Add(avgVel.Sub(vel).Mul(props.Alignment()))
		force = force.Add(avgPos.Sub(pos).Mul(props.Cohesion()))
	}
	force = force.Add(r.edgeForce(pos))
	force = r.keepMinSpeed(vel, force)

	return force.Extend(), nil
}

func (r *Reynolds) candidates(nb *flock.Neighborhood, pos geometry.Vector2D) []int {
	r.scratch = r.scratch[:0]
	if r.indexed == nb && r.Mode == flock.Jacobi {
		r.scratch = r.grid.Nearby(pos, r.scratch)
		return r.scratch
	}
	for j := range nb.Members {
		r.scratch = append(r.scratch, j)
	}
	return r.scratch
}

// edgeForce nudges members back once they get within Margin of a world edge.
func (r *Reynolds) edgeForce(pos geometry.Vector2D) geometry.Vector2D {
	var f geometry.Vector2D
	if r.Width <= 0 || r.Height <= 0 {
		return f
	}
	if pos.X < r.Margin {
		f.X += r.TurnFactor
	}
	if pos.X > r.Width-r.Margin {
		f.X -= r.TurnFactor
	}
	if pos.Y < r.Margin {
		f.Y += r.TurnFactor
	}
	if pos.Y > r.Height-r.Margin {
		f.Y -= r.TurnFactor
	}
	return f
}

// keepMinSpeed stretches force so the resulting velocity is at least MinSpeed.
// The max speed clamp is the agent's job, not the policy's.
func (r *Reynolds) keepMinSpeed(vel, force geometry.Vector2D) geometry.Vector2D {
	if r.MinSpeed <= 0 {
		return force
	}
	next := vel.Add(force)
	speed := next.Len()
	if speed >= r.MinSpeed || speed < geometry.Epsilon {
		return force
	}
	return next.Mul(r.MinSpeed / speed).Sub(vel)
}
