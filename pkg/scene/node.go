package scene

import (
	"fmt"
	"slices"

	"github.com/lao-tseu-is-alive/go-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock/pkg/geometry"
)

// Node is a positioned object of a Tree that can carry a script.
type Node struct {
	id       int64
	name     string
	tree     *Tree
	parent   *Node
	children []*Node
	position geometry.Vector2D
	script   any

	inside  bool
	readied bool
	freed   bool
}

var _ flock.Node = (*Node)(nil)

func (n *Node) InstanceID() int64 { return n.id }
func (n *Node) Name() string      { return n.name }
func (n *Node) Host() flock.Host  { return n.tree }
func (n *Node) Tree() *Tree       { return n.tree }
func (n *Node) Script() any       { return n.script }
func (n *Node) Parent() *Node     { return n.parent }

// IsInsideTree reports whether the node is connected to the root.
func (n *Node) IsInsideTree() bool { return n.inside }

// IsFreed reports whether the node was freed or released.
func (n *Node) IsFreed() bool { return n.freed }

// Bind attaches script to the node, replacing any previous one.
func (n *Node) Bind(script any) {
	n.script = script
}

// ParentScript returns what Lookup would return for the parent node.
func (n *Node) ParentScript() (any, bool) {
	if n.parent == nil || n.parent.freed {
		return nil, false
	}
	if n.parent.script != nil {
		return n.parent.script, true
	}
	return n.parent, true
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

func (n *Node) Position() geometry.Vector2D {
	return n.position
}

func (n *Node) SetPosition(p geometry.Vector2D) {
	n.position = p
}

// Translate moves the node by delta.
func (n *Node) Translate(delta geometry.Vector2D) {
	n.position = n.position.Add(delta)
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.name, n.id)
}

// AddChild appends child to n. When n is inside the tree the subtree of child
// receives the enter-tree signals, then the ready signals.
func (n *Node) AddChild(child *Node) error {
	switch {
	case n.freed || child.freed:
		return ErrFreed
	case child.tree != n.tree:
		return ErrForeignNode
	case child.parent != nil:
		return fmt.Errorf("add %s under %s: %w", child, n, ErrHasParent)
	case n.isDescendantOf(child):
		return fmt.Errorf("add %s under %s: %w", child, n, ErrCycle)
	}

	n.children = append(n.children, child)
	child.parent = n
	if n.inside {
		child.propagateEnter()
		child.propagateReady()
	}
	return nil
}

// RemoveChild detaches child from n. When n is inside the tree the subtree of
// child receives the exit-tree signals first.
func (n *Node) RemoveChild(child *Node) error {
	idx := slices.Index(n.children, child)
	if idx < 0 {
		return fmt.Errorf("remove %s from %s: %w", child, n, ErrNotChild)
	}
	if child.inside {
		child.propagateExit()
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	child.parent = nil
	return nil
}

// Free removes the node from its parent and destroys it with its subtree.
// Lookups of the destroyed ids fail afterwards.
func (n *Node) Free() {
	if n.freed {
		return
	}
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	} else if n.inside {
		n.propagateExit()
	}
	n.destroy()
}

func (n *Node) destroy() {
	for _, c := range n.children {
		c.destroy()
	}
	n.children = nil
	n.freed = true
	delete(n.tree.objects, n.id)
}

func (n *Node) isDescendantOf(ancestor *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func (n *Node) propagateEnter() {
	n.inside = true
	if h, ok := n.script.(EnterTreeHandler); ok {
		h.EnterTree()
	}
	for _, c := range n.Children() {
		c.propagateEnter()
	}
}

func (n *Node) propagateReady() {
	for _, c := range n.Children() {
		c.propagateReady()
	}
	if n.readied {
		return
	}
	n.readied = true
	if h, ok := n.script.(ReadyHandler); ok {
		h.Ready()
	}
}

func (n *Node) propagateExit() {
	children := n.Children()
	for i := len(children) - 1; i >= 0; i-- {
		children[i].propagateExit()
	}
	if h, ok := n.script.(ExitTreeHandler); ok {
		h.ExitTree()
	}
	n.inside = false
}
