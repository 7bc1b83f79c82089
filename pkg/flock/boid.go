package flock

import "github.com/lao-tseu-is-alive/go-flock/pkg/geometry"

// State is the lifecycle stage of a Boid2D.
type State int

const (
	StateUnattached State = iota
	StateAttached
	StateDead
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateAttached:
		return "attached"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Boid2D is a planar agent. It does nothing on its own: it must be the child
// of a node bound to a Flock2D, which registers it on tree entry.
type Boid2D struct {
	node Node

	// properties is the editable source, props the snapshot used while attached.
	properties BoidProperties
	props      BoidProperties

	vel     geometry.Vector2D
	flockID int64
	state   State
}

var _ Boid = (*Boid2D)(nil)

// NewBoid2D binds a new agent to node. The properties are snapshotted now and
// again every time the agent attaches to a flock.
func NewBoid2D(node Node, properties BoidProperties) *Boid2D {
	b := &Boid2D{node: node}
	b.SetProperties(properties)
	node.Bind(b)
	return b
}

// ID is the host instance id of the agent's node.
func (b *Boid2D) ID() int64 {
	return b.node.InstanceID()
}

// FlockID is the id of the owning flock, or NoID when not attached.
func (b *Boid2D) FlockID() int64 {
	return b.flockID
}

func (b *Boid2D) State() State {
	return b.state
}

// Velocity returns the current velocity of the agent.
func (b *Boid2D) Velocity() geometry.Vector2D {
	return b.vel
}

// SetVelocity replaces the velocity. It is not clamped: the speed limit is
// enforced by the next ApplyForce.
func (b *Boid2D) SetVelocity(v geometry.Vector2D) {
	b.vel = v
}

// Properties returns the editable source value, which may differ from the
// snapshot in effect while attached.
func (b *Boid2D) Properties() BoidProperties {
	return b.properties
}

// SetProperties replaces the source value. While the agent is attached the
// change only takes effect after it leaves and re-enters a flock.
func (b *Boid2D) SetProperties(p BoidProperties) {
	b.properties = p
	if b.state != StateAttached {
		if p.Validate() != nil {
			p = BoidProperties{}
		}
		b.props = p
	}
}

// BoidProperties returns the snapshot the agent currently runs with.
func (b *Boid2D) BoidProperties() BoidProperties {
	return b.props
}

func (b *Boid2D) BoidPosition() geometry.Vector3D {
	return b.node.Position().Extend()
}

func (b *Boid2D) BoidVelocity() geometry.Vector3D {
	return b.vel.Extend()
}

// ApplyForce accumulates the planar part of force into the velocity, clamps
// the result to the max speed and moves the node by the new velocity.
// The z component is ignored, whatever its value.
func (b *Boid2D) ApplyForce(force geometry.Vector3D) {
	planar := force.XY()
	if !planar.IsFinite() {
		b.logger().Warnf("[Boid2D:%d] ignoring non-finite force %s", b.ID(), force)
		return
	}
	if !b.vel.IsFinite() {
		b.logger().Warnf("[Boid2D:%d] resetting non-finite velocity %s", b.ID(), b.vel)
		b.vel = geometry.Vector2D{}
	}
	sum := b.vel.Add(planar)
	if !sum.IsFinite() {
		// both operands are finite, so their halves cannot overflow
		sum = b.vel.Mul(0.5).Add(planar.Mul(0.5))
	}
	b.vel = sum.ClampLength(b.props.maxSpeed)
	b.node.Translate(b.vel)
}

// EnterTree registers the agent with its parent flock.
func (b *Boid2D) EnterTree() {
	if b.state == StateAttached {
		b.detach()
	}

	parent, _ := b.node.ParentScript()
	flock, ok := parent.(*Flock2D)
	if !ok {
		b.logger().Errorf("[Boid2D:%d] boid's parent isn't a Flock2D, or has no parent", b.ID())
		b.state = StateUnattached
		return
	}

	// Snapshot before registering: a tick may run before the host's ready signal.
	b.snapshot()
	flock.RegisterBoid(b.ID())
	b.flockID = flock.ID()
	b.state = StateAttached
}

// Ready runs once the children of the node are wired. The snapshot is
// already taken, so it only reports an attached agent its flock lost.
func (b *Boid2D) Ready() {
	if b.state != StateAttached {
		return
	}
	obj, _ := b.node.Host().Lookup(b.flockID)
	if flock, ok := obj.(*Flock2D); !ok || !flock.Contains(b.ID()) {
		b.logger().Warnf("[Boid2D:%d] attached but not a member of flock %d", b.ID(), b.flockID)
	}
}

// ExitTree unregisters the agent from its flock, if that flock is still alive.
func (b *Boid2D) ExitTree() {
	if b.state != StateAttached {
		return
	}
	b.detach()
}

func (b *Boid2D) detach() {
	obj, ok := b.node.Host().Lookup(b.flockID)
	if flock, isFlock := obj.(*Flock2D); ok && isFlock {
		flock.UnregisterBoid(b.ID())
	} else {
		b.logger().Debugf("[Boid2D:%d] flock %d is already gone", b.ID(), b.flockID)
	}
	b.flockID = NoID
	b.state = StateDead
}

func (b *Boid2D) snapshot() {
	if err := b.properties.Validate(); err != nil {
		b.logger().Errorf("[Boid2D:%d] invalid properties, boid stays inert: %v", b.ID(), err)
		b.props = BoidProperties{}
		b.vel = geometry.Vector2D{}
		return
	}
	b.props = b.properties
}

func (b *Boid2D) logger() Logger {
	return b.node.Host().Logger()
}
