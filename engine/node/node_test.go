package node

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldTransformComposesRootToNode(t *testing.T) {
	rootLocal := common.Translation(1, 0, 0)
	g := NewGraph(WithRootTransform(rootLocal))

	aLocal := common.RotationY(90)
	bLocal := common.Translation(0, 0, 5)
	cLocal := common.Multiply(common.RotationX(30), common.Translation(2, 3, 4))

	a, err := g.AddChild(g.Root(), WithLocalTransform(aLocal))
	require.NoError(t, err)
	b, err := g.AddChild(a, WithLocalTransform(bLocal))
	require.NoError(t, err)
	c, err := g.AddChild(b, WithLocalTransform(cLocal))
	require.NoError(t, err)

	expected := common.Multiply(rootLocal, common.Multiply(aLocal, common.Multiply(bLocal, cLocal)))
	world, err := g.WorldTransform(c)
	require.NoError(t, err)
	assert.True(t, common.ApproxEqual(expected, world, 1e-4))

	rootWorld, err := g.WorldTransform(g.Root())
	require.NoError(t, err)
	assert.Equal(t, rootLocal, rootWorld)
}

func TestWorldTransformIsNotCached(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddChild(g.Root())
	b, _ := g.AddChild(a, WithLocalTransform(common.Translation(0, 1, 0)))

	require.NoError(t, g.Translate(a, 5, 0, 0))
	world, err := g.WorldTransform(b)
	require.NoError(t, err)
	assert.Equal(t, float32(5), world[12])
	assert.Equal(t, float32(1), world[13])
}

func TestTranslateAndRotateApplyInLocalFrame(t *testing.T) {
	g := NewGraph()
	n, _ := g.AddChild(g.Root())
	require.NoError(t, g.RotateY(n, 90))
	require.NoError(t, g.Translate(n, 0, 0, 10))

	world, err := g.WorldTransform(n)
	require.NoError(t, err)
	// local +Z after a 90 degree yaw points along world +X
	assert.InDelta(t, 10, world[12], 1e-4)
	assert.InDelta(t, 0, world[14], 1e-4)
}

func TestReparentRejectsCycles(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddChild(g.Root())
	b, _ := g.AddChild(a)
	c, _ := g.AddChild(b)

	tests := []struct {
		name          string
		child, parent Handle
	}{
		{"self", a, a},
		{"child", a, b},
		{"grandchild", a, c},
		{"root under descendant", g.Root(), c},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, g.Reparent(tt.child, tt.parent), ErrCycle)
		})
	}

	parent, err := g.Parent(c)
	require.NoError(t, err)
	assert.Equal(t, b, parent)
	children, err := g.Children(g.Root())
	require.NoError(t, err)
	assert.Equal(t, []Handle{a}, children)
}

func TestReparentMovesSubtree(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddChild(g.Root(), WithLocalTransform(common.Translation(10, 0, 0)))
	b, _ := g.AddChild(g.Root(), WithLocalTransform(common.Translation(0, 10, 0)))
	leaf, _ := g.AddChild(a)

	require.NoError(t, g.Reparent(leaf, b))

	aChildren, _ := g.Children(a)
	bChildren, _ := g.Children(b)
	assert.Empty(t, aChildren)
	assert.Equal(t, []Handle{leaf}, bChildren)

	world, err := g.WorldTransform(leaf)
	require.NoError(t, err)
	assert.Equal(t, float32(0), world[12])
	assert.Equal(t, float32(10), world[13])
}

func TestRemoveCascades(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddChild(g.Root())
	b, _ := g.AddChild(a)
	c, _ := g.AddChild(b)
	sibling, _ := g.AddChild(g.Root())
	require.Equal(t, 5, g.Len())

	require.NoError(t, g.Remove(a))

	assert.Equal(t, 2, g.Len())
	for _, h := range []Handle{a, b, c} {
		assert.False(t, g.Contains(h))
		_, err := g.WorldTransform(h)
		assert.ErrorIs(t, err, ErrInvalidHandle)
	}
	assert.True(t, g.Contains(sibling))

	children, _ := g.Children(g.Root())
	assert.Equal(t, []Handle{sibling}, children)
}

func TestRemovedSlotReuseKeepsOldHandlesStale(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddChild(g.Root())
	require.NoError(t, g.Remove(a))

	reused, err := g.AddChild(g.Root())
	require.NoError(t, err)
	assert.NotEqual(t, a, reused)
	assert.False(t, g.Contains(a))
	assert.True(t, g.Contains(reused))
	assert.ErrorIs(t, g.SetLocalTransform(a, common.IdentityMatrix()), ErrInvalidHandle)
}

func TestRemoveRoot(t *testing.T) {
	g := NewGraph()
	assert.ErrorIs(t, g.Remove(g.Root()), ErrRootRemoval)
	assert.ErrorIs(t, g.Remove(Nil), ErrInvalidHandle)
}

func TestWalkOrderAndFind(t *testing.T) {
	g := NewGraph(WithCapacity(8))
	a, _ := g.AddChild(g.Root(), WithName("a"))
	_, _ = g.AddChild(a, WithName("a1"))
	b, _ := g.AddChild(g.Root(), WithName("b"))
	_, _ = g.AddChild(b, WithName("target"))

	var names []string
	var depths []int
	g.Walk(func(h Handle, depth int) bool {
		name, err := g.Name(h)
		require.NoError(t, err)
		names = append(names, name)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "b", "target"}, names)
	assert.Equal(t, []int{0, 1, 2, 1, 2}, depths)

	h, ok := g.Find("target")
	require.True(t, ok)
	parent, _ := g.Parent(h)
	assert.Equal(t, b, parent)

	_, ok = g.Find("missing")
	assert.False(t, ok)

	require.NoError(t, g.SetName(b, "renamed"))
	_, ok = g.Find("b")
	assert.False(t, ok)
}

func TestAddChildToStaleParent(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddChild(g.Root())
	require.NoError(t, g.Remove(a))
	_, err := g.AddChild(a)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestRootParentIsNil(t *testing.T) {
	g := NewGraph()
	p, err := g.Parent(g.Root())
	require.NoError(t, err)
	assert.True(t, p.IsNil())
}
