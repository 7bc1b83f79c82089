package flock

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidMaxSpeed = errors.New("max speed must be positive and finite")
	ErrInvalidProperty = errors.New("property must be finite and non-negative")
)

// BoidProperties holds the physical limit of an agent and the per-agent
// steering weights. It is a comparable value: copies are snapshots and
// equality is by field.
type BoidProperties struct {
	maxSpeed   float64
	alignment  float64
	cohesion   float64
	separation float64
}

// BoidOption tunes a steering weight of NewBoidProperties.
type BoidOption func(*BoidProperties)

// WithAlignment sets how strongly an agent matches its neighbors' velocity.
func WithAlignment(w float64) BoidOption {
	return func(p *BoidProperties) { p.alignment = w }
}

// WithCohesion sets how strongly an agent steers toward its neighbors' center.
func WithCohesion(w float64) BoidOption {
	return func(p *BoidProperties) { p.cohesion = w }
}

// WithSeparation sets how strongly an agent moves away from crowding neighbors.
func WithSeparation(w float64) BoidOption {
	return func(p *BoidProperties) { p.separation = w }
}

// NewBoidProperties builds a property value. Nothing is checked here; an
// invalid value is reported when an agent snapshots it.
func NewBoidProperties(maxSpeed float64, opts ...BoidOption) BoidProperties {
	p := BoidProperties{maxSpeed: maxSpeed}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// DefaultBoidProperties returns the tuning used by the demo.
func DefaultBoidProperties() BoidProperties {
	return NewBoidProperties(4.0,
		WithAlignment(0.05),
		WithCohesion(0.0005),
		WithSeparation(0.05),
	)
}

func (p BoidProperties) MaxSpeed() float64   { return p.maxSpeed }
func (p BoidProperties) Alignment() float64  { return p.alignment }
func (p BoidProperties) Cohesion() float64   { return p.cohesion }
func (p BoidProperties) Separation() float64 { return p.separation }

// Validate reports the first field that would break the agent contract.
func (p BoidProperties) Validate() error {
	if !(p.maxSpeed > 0) || math.IsInf(p.maxSpeed, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidMaxSpeed, p.maxSpeed)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"alignment", p.alignment},
		{"cohesion", p.cohesion},
		{"separation", p.separation},
	} {
		if !validWeight(f.value) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidProperty, f.name, f.value)
		}
	}
	return nil
}

func (p BoidProperties) String() string {
	return fmt.Sprintf("maxSpeed=%.2f alignment=%.4f cohesion=%.4f separation=%.4f",
		p.maxSpeed, p.alignment, p.cohesion, p.separation)
}

// FlockProperties are the flock-wide parameters read by steering policies.
// The core carries them but does not interpret them.
type FlockProperties struct {
	visualRange    float64
	protectedRange float64
}

// NewFlockProperties builds the flock parameters from the two perception radii.
func NewFlockProperties(visualRange, protectedRange float64) FlockProperties {
	return FlockProperties{visualRange: visualRange, protectedRange: protectedRange}
}

// DefaultFlockProperties returns the radii used by the demo.
func DefaultFlockProperties() FlockProperties {
	return NewFlockProperties(70, 20)
}

// VisualRange is how far an agent sees the peers it aligns and coheres with.
func (p FlockProperties) VisualRange() float64 { return p.visualRange }

// ProtectedRange is the personal space radius used for separation.
func (p FlockProperties) ProtectedRange() float64 { return p.protectedRange }

func (p FlockProperties) Validate() error {
	if !validWeight(p.visualRange) {
		return fmt.Errorf("%w: visual range = %v", ErrInvalidProperty, p.visualRange)
	}
	if !validWeight(p.protectedRange) {
		return fmt.Errorf("%w: protected range = %v", ErrInvalidProperty, p.protectedRange)
	}
	return nil
}

func validWeight(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
