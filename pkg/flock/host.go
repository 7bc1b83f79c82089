package flock

import "github.com/lao-tseu-is-alive/go-flock/pkg/geometry"

// NoID is the unset instance id. Hosts never hand it out.
const NoID int64 = 0

// Logger is the diagnostic sink. The goakt log.Logger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Host is the identity service of the scene runtime.
type Host interface {
	// Lookup returns the script bound to the live object with the given id.
	// It reports false once the object is gone.
	Lookup(id int64) (any, bool)
	Logger() Logger
}

// Node is the host object a script is bound to.
type Node interface {
	InstanceID() int64
	Host() Host
	// Bind attaches the script so it receives the tree signals of the node
	// and is what Host.Lookup returns for InstanceID.
	Bind(script any)
	// ParentScript returns the script bound to the immediate parent.
	ParentScript() (any, bool)
	Position() geometry.Vector2D
	Translate(delta geometry.Vector2D)
}
