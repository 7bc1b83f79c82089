package flock

import (
	"iter"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/lao-tseu-is-alive/go-flock/pkg/geometry"
)

// Flock2D is a named group of planar agents. Its member set holds exactly the
// instance ids of the agents currently attached to it.
type Flock2D struct {
	node       Node
	properties FlockProperties
	members    mapset.Set[int64]
}

// NewFlock2D binds a new, empty flock to node.
func NewFlock2D(node Node, properties FlockProperties) *Flock2D {
	f := &Flock2D{
		node:       node,
		properties: properties,
		// all access happens on the tick thread
		members: mapset.NewThreadUnsafeSet[int64](),
	}
	node.Bind(f)
	return f
}

// ID is the host instance id of the flock's node.
func (f *Flock2D) ID() int64 {
	return f.node.InstanceID()
}

func (f *Flock2D) Properties() FlockProperties {
	return f.properties
}

// SetProperties replaces the flock parameters; the next tick uses them.
func (f *Flock2D) SetProperties(p FlockProperties) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.properties = p
	return nil
}

// RegisterBoid adds id to the members. Registering twice is a no-op.
func (f *Flock2D) RegisterBoid(id int64) {
	if f.members.Add(id) {
		f.logger().Debugf("[Flock2D:%d] registered boid %d", f.ID(), id)
	}
}

// UnregisterBoid removes id from the members, warning when it was not there.
func (f *Flock2D) UnregisterBoid(id int64) {
	if !f.members.Contains(id) {
		f.logger().Warnf("[Flock2D:%d] cannot unregister boid %d: not a member", f.ID(), id)
		return
	}
	f.members.Remove(id)
	f.logger().Debugf("[Flock2D:%d] unregistered boid %d", f.ID(), id)
}

// Contains reports whether id is a member.
func (f *Flock2D) Contains(id int64) bool {
	return f.members.Contains(id)
}

// Len returns the number of members.
func (f *Flock2D) Len() int {
	return f.members.Cardinality()
}

// Members returns a sorted copy of the member ids.
func (f *Flock2D) Members() []int64 {
	ids := f.members.ToSlice()
	slices.Sort(ids)
	return ids
}

// IterMembers iterates over a snapshot of the member ids taken at call time,
// so registering or unregistering during the loop is safe.
func (f *Flock2D) IterMembers() iter.Seq[int64] {
	return slices.Values(f.Members())
}

// Ready reports the population once the children of the flock node are wired.
func (f *Flock2D) Ready() {
	f.logger().Debugf("[Flock2D:%d] ready with %d boids", f.ID(), f.Len())
}

// Tick runs one simulation step of the flock: it resolves every member,
// builds the neighborhood, asks policy for one force per member and hands it
// to the member's ApplyForce. Ids that no longer resolve to a live agent of
// this flock are dropped. Policy errors are logged and the member is skipped.
func (f *Flock2D) Tick(policy Policy) TickStats {
	var stats TickStats

	ids := f.Members()
	boids := make([]Boid, 0, len(ids))
	nb := &Neighborhood{
		FlockID:    f.ID(),
		Properties: f.properties,
		Members:    make([]BoidState, 0, len(ids)),
	}
	for _, id := range ids {
		b, ok := f.resolve(id)
		if !ok {
			f.members.Remove(id)
			stats.Stale++
			continue
		}
		boids = append(boids, b)
		nb.Members = append(nb.Members, stateOf(b))
	}
	stats.Visited = len(boids)

	if p, ok := policy.(Preparer); ok {
		p.Prepare(nb)
	}

	switch modeOf(policy) {
	case GaussSeidel:
		for i, b := range boids {
			force, ok := f.steer(policy, nb, i)
			if !ok {
				stats.Failed++
				continue
			}
			b.ApplyForce(force)
			nb.Members[i] = stateOf(b)
			stats.Applied++
		}
	default:
		forces := make([]geometry.Vector3D, len(boids))
		skip := make([]bool, len(boids))
		for i := range boids {
			force, ok := f.steer(policy, nb, i)
			if !ok {
				skip[i] = true
				stats.Failed++
				continue
			}
			forces[i] = force
		}
		for i, b := range boids {
			if skip[i] {
				continue
			}
			b.ApplyForce(forces[i])
			stats.Applied++
		}
	}
	return stats
}

func (f *Flock2D) steer(policy Policy, nb *Neighborhood, i int) (geometry.Vector3D, bool) {
	force, err := policy.Steer(nb, i)
	if err != nil {
		f.logger().Warnf("[Flock2D:%d] steering boid %d failed: %v", f.ID(), nb.Members[i].ID, err)
		return geometry.Vector3D{}, false
	}
	return force, true
}

func (f *Flock2D) resolve(id int64) (Boid, bool) {
	obj, ok := f.node.Host().Lookup(id)
	if !ok {
		return nil, false
	}
	b, ok := obj.(Boid)
	if !ok || b.FlockID() != f.ID() {
		return nil, false
	}
	return b, true
}

func (f *Flock2D) logger() Logger {
	return f.node.Host().Logger()
}
