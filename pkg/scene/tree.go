// Package scene is an in-memory scene graph that hosts flock scripts: it hands
// out instance ids, keeps the node hierarchy and placement, and fires the
// enter-tree, ready and exit-tree signals to the scripts bound to its nodes.
//
// A Tree is not safe for concurrent use; drive it from a single goroutine.
package scene

import (
	"errors"

	"github.com/lao-tseu-is-alive/go-flock/pkg/flock"
	"github.com/tochemey/goakt/v3/log"
)

var (
	ErrHasParent   = errors.New("node already has a parent")
	ErrNotChild    = errors.New("node is not a child of this parent")
	ErrFreed       = errors.New("node has been freed")
	ErrCycle       = errors.New("node cannot be added below itself")
	ErrForeignNode = errors.New("node belongs to another tree")
)

// EnterTreeHandler is implemented by scripts that react to their node entering the tree.
// Parents are notified before their children.
type EnterTreeHandler interface {
	EnterTree()
}

// ReadyHandler is implemented by scripts that react once their node and all
// its children are in the tree. Children are notified before their parent,
// and each node only once in its lifetime.
type ReadyHandler interface {
	Ready()
}

// ExitTreeHandler is implemented by scripts that react to their node leaving
// the tree. Children are notified before their parent.
type ExitTreeHandler interface {
	ExitTree()
}

// Tree owns the identity registry and the root node.
type Tree struct {
	nextID  int64
	objects map[int64]*Node
	root    *Node
	logger  flock.Logger
}

var _ flock.Host = (*Tree)(nil)

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the diagnostic sink. The default is the goakt default logger.
func WithLogger(logger flock.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// NewTree creates a tree whose root node is already inside the tree.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		objects: make(map[int64]*Node),
		logger:  log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.root = t.NewNode("root")
	t.root.inside = true
	t.root.readied = true
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// NewNode creates a detached node with a fresh instance id.
func (t *Tree) NewNode(name string) *Node {
	t.nextID++
	n := &Node{
		id:   t.nextID,
		name: name,
		tree: t,
	}
	t.objects[n.id] = n
	return n
}

// Node returns the live node with the given instance id.
func (t *Tree) Node(id int64) (*Node, bool) {
	n, ok := t.objects[id]
	return n, ok
}

// Lookup returns the script bound to the live node with the given id, or the
// node itself when no script is bound.
func (t *Tree) Lookup(id int64) (any, bool) {
	n, ok := t.objects[id]
	if !ok {
		return nil, false
	}
	if n.script != nil {
		return n.script, true
	}
	return n, true
}

// Release drops an instance from the registry without any tree signal, the
// way an object destroyed behind the tree's back disappears. Lookups of id
// fail afterwards. It reports whether id was live.
func (t *Tree) Release(id int64) bool {
	n, ok := t.objects[id]
	if !ok {
		return false
	}
	n.freed = true
	delete(t.objects, id)
	return true
}

// Len returns the number of live instances, root included.
func (t *Tree) Len() int {
	return len(t.objects)
}

// Logger returns the diagnostic sink.
func (t *Tree) Logger() flock.Logger {
	return t.logger
}

// Walk visits the nodes of the tree depth-first, parents before children.
func (t *Tree) Walk(visit func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		visit(n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(t.root)
}
