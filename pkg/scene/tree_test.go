package scene

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-flock/internal/logtest"
	"github.com/lao-tseu-is-alive/go-flock/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signalScript records the tree signals it receives into a shared journal.
type signalScript struct {
	name    string
	journal *[]string
}

func (s *signalScript) EnterTree() { *s.journal = append(*s.journal, "enter:"+s.name) }
func (s *signalScript) Ready()     { *s.journal = append(*s.journal, "ready:"+s.name) }
func (s *signalScript) ExitTree()  { *s.journal = append(*s.journal, "exit:"+s.name) }

func newScripted(t *Tree, name string, journal *[]string) *Node {
	n := t.NewNode(name)
	n.Bind(&signalScript{name: name, journal: journal})
	return n
}

func TestTree_IdsAreUniqueAndResolvable(t *testing.T) {
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	a := tree.NewNode("a")
	b := tree.NewNode("b")

	assert.NotEqual(t, a.InstanceID(), b.InstanceID())
	assert.NotZero(t, a.InstanceID())
	assert.NotEqual(t, tree.Root().InstanceID(), a.InstanceID())

	obj, ok := tree.Lookup(a.InstanceID())
	require.True(t, ok)
	assert.Same(t, a, obj, "a node without script resolves to itself")

	script := &signalScript{name: "b", journal: new([]string)}
	b.Bind(script)
	obj, ok = tree.Lookup(b.InstanceID())
	require.True(t, ok)
	assert.Same(t, script, obj)
	assert.Same(t, script, b.Script())
	assert.Nil(t, a.Script())
	assert.Equal(t, 3, tree.Len())

	n, ok := tree.Node(b.InstanceID())
	require.True(t, ok)
	assert.Same(t, b, n, "Node returns the node even when a script is bound")

	require.True(t, tree.Release(b.InstanceID()))
	_, ok = tree.Node(b.InstanceID())
	assert.False(t, ok)
}

func TestTree_SignalOrder(t *testing.T) {
	var journal []string
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	parent := newScripted(tree, "parent", &journal)
	c1 := newScripted(tree, "c1", &journal)
	c2 := newScripted(tree, "c2", &journal)

	// building a detached subtree fires nothing
	require.NoError(t, parent.AddChild(c1))
	require.NoError(t, parent.AddChild(c2))
	assert.Empty(t, journal)

	require.NoError(t, tree.Root().AddChild(parent))
	assert.Equal(t, []string{
		"enter:parent", "enter:c1", "enter:c2",
		"ready:c1", "ready:c2", "ready:parent",
	}, journal)
	assert.True(t, c2.IsInsideTree())

	journal = nil
	require.NoError(t, tree.Root().RemoveChild(parent))
	assert.Equal(t, []string{"exit:c2", "exit:c1", "exit:parent"}, journal)
	assert.False(t, parent.IsInsideTree())
	assert.False(t, c1.IsInsideTree())

	// ready only fires once per node
	journal = nil
	require.NoError(t, tree.Root().AddChild(parent))
	assert.Equal(t, []string{"enter:parent", "enter:c1", "enter:c2"}, journal)
}

func TestTree_AddChildErrors(t *testing.T) {
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	other := NewTree(WithLogger(&logtest.Recorder{}))
	a := tree.NewNode("a")
	b := tree.NewNode("b")

	require.NoError(t, a.AddChild(b))
	assert.ErrorIs(t, tree.Root().AddChild(b), ErrHasParent)
	assert.ErrorIs(t, b.AddChild(a), ErrCycle)
	assert.ErrorIs(t, a.AddChild(a), ErrCycle)
	assert.ErrorIs(t, a.AddChild(other.NewNode("x")), ErrForeignNode)
	assert.ErrorIs(t, tree.Root().RemoveChild(a), ErrNotChild)

	c := tree.NewNode("c")
	c.Free()
	assert.ErrorIs(t, a.AddChild(c), ErrFreed)
}

func TestTree_FreeSubtree(t *testing.T) {
	var journal []string
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	parent := newScripted(tree, "parent", &journal)
	child := newScripted(tree, "child", &journal)
	require.NoError(t, parent.AddChild(child))
	require.NoError(t, tree.Root().AddChild(parent))
	journal = nil

	parent.Free()

	assert.Equal(t, []string{"exit:child", "exit:parent"}, journal)
	assert.Empty(t, tree.Root().Children())
	_, ok := tree.Lookup(parent.InstanceID())
	assert.False(t, ok)
	_, ok = tree.Lookup(child.InstanceID())
	assert.False(t, ok)
	assert.True(t, child.IsFreed())

	// freeing twice is harmless
	parent.Free()
	assert.Equal(t, 1, tree.Len())
}

func TestTree_ReleaseIsSilent(t *testing.T) {
	var journal []string
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	n := newScripted(tree, "n", &journal)
	require.NoError(t, tree.Root().AddChild(n))
	journal = nil

	assert.True(t, tree.Release(n.InstanceID()))
	assert.False(t, tree.Release(n.InstanceID()))
	assert.Empty(t, journal)
	_, ok := tree.Lookup(n.InstanceID())
	assert.False(t, ok)
}

func TestNode_Placement(t *testing.T) {
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	n := tree.NewNode("n")
	n.SetPosition(geometry.Vector2D{X: 10, Y: 20})
	n.Translate(geometry.Vector2D{X: -3, Y: 4})
	assert.True(t, n.Position().Eq(geometry.Vector2D{X: 7, Y: 24}))
}

func TestNode_ParentScript(t *testing.T) {
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	orphan := tree.NewNode("orphan")
	_, ok := orphan.ParentScript()
	assert.False(t, ok)

	parent := tree.NewNode("parent")
	child := tree.NewNode("child")
	require.NoError(t, parent.AddChild(child))
	got, ok := child.ParentScript()
	require.True(t, ok)
	assert.Same(t, parent, got)

	script := &signalScript{name: "p", journal: new([]string)}
	parent.Bind(script)
	got, ok = child.ParentScript()
	require.True(t, ok)
	assert.Same(t, script, got)
}

func TestTree_Walk(t *testing.T) {
	tree := NewTree(WithLogger(&logtest.Recorder{}))
	a := tree.NewNode("a")
	b := tree.NewNode("b")
	require.NoError(t, tree.Root().AddChild(a))
	require.NoError(t, a.AddChild(b))

	var names []string
	tree.Walk(func(n *Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"root", "a", "b"}, names)
}
