package flock

import "github.com/lao-tseu-is-alive/go-flock/pkg/geometry"

// Boid is the capability set a steering policy works with. Planar agents lift
// their values to z = 0 and drop z from the forces they receive.
type Boid interface {
	ID() int64
	FlockID() int64
	BoidPosition() geometry.Vector3D
	BoidVelocity() geometry.Vector3D
	BoidProperties() BoidProperties
	// ApplyForce integrates the force and enforces the speed limit.
	ApplyForce(force geometry.Vector3D)
}

// BoidState is the read-only view of one member handed to a policy.
type BoidState struct {
	ID         int64
	Position   geometry.Vector3D
	Velocity   geometry.Vector3D
	Properties BoidProperties
}

func stateOf(b Boid) BoidState {
	return BoidState{
		ID:         b.ID(),
		Position:   b.BoidPosition(),
		Velocity:   b.BoidVelocity(),
		Properties: b.BoidProperties(),
	}
}

// Neighborhood is the per-tick input of a policy: every live member of one
// flock, in the iteration order of the tick.
type Neighborhood struct {
	FlockID    int64
	Properties FlockProperties
	Members    []BoidState
}

// Policy computes the force for Members[i].
type Policy interface {
	Steer(nb *Neighborhood, i int) (geometry.Vector3D, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(nb *Neighborhood, i int) (geometry.Vector3D, error)

func (f PolicyFunc) Steer(nb *Neighborhood, i int) (geometry.Vector3D, error) {
	return f(nb, i)
}

// Preparer is implemented by policies that index the neighborhood once per
// tick before the first Steer call (spatial grids and the like).
type Preparer interface {
	Prepare(nb *Neighborhood)
}

// UpdateMode selects when forces are applied relative to their computation.
type UpdateMode int

const (
	// Jacobi computes every force from the pre-tick state, then applies them.
	Jacobi UpdateMode = iota
	// GaussSeidel applies each force right away; later members see earlier updates.
	GaussSeidel
)

func (m UpdateMode) String() string {
	switch m {
	case Jacobi:
		return "jacobi"
	case GaussSeidel:
		return "gauss-seidel"
	default:
		return "unknown"
	}
}

// ModeSelector is implemented by policies that want something else than Jacobi.
type ModeSelector interface {
	UpdateMode() UpdateMode
}

func modeOf(p Policy) UpdateMode {
	if s, ok := p.(ModeSelector); ok {
		return s.UpdateMode()
	}
	return Jacobi
}

// TickStats summarizes one Flock2D.Tick.
type TickStats struct {
	Visited int // members that resolved to a live agent
	Applied int // forces handed to ApplyForce
	Stale   int // ids dropped because they no longer resolve
	Failed  int // members skipped because the policy returned an error
}
