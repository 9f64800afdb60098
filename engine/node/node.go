package node

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

var (
	// ErrInvalidHandle is returned when a handle does not refer to a live node in the graph.
	ErrInvalidHandle = errors.New("node: invalid handle")

	// ErrCycle is returned when an operation would make a node its own ancestor.
	ErrCycle = errors.New("node: operation would create a cycle")

	// ErrRootRemoval is returned when attempting to remove the root node.
	ErrRootRemoval = errors.New("node: the root node cannot be removed")
)

// Handle is a stable, non-owning reference to a node stored in a Graph.
// Handles stay comparable and cheap to copy; a handle whose node was removed is
// detected through its generation and rejected with ErrInvalidHandle.
type Handle struct {
	index      uint32
	generation uint32
}

// Nil is the zero Handle. It never refers to a live node.
var Nil Handle

// IsNil reports whether the handle is the zero Handle.
func (h Handle) IsNil() bool {
	return h.generation == 0
}

// String formats the handle for logs and dumps.
func (h Handle) String() string {
	return fmt.Sprintf("node#%d.%d", h.index, h.generation)
}

const noParent = -1

// slot is a single arena entry.
type slot struct {
	generation uint32
	alive      bool
	parent     int32
	children   []uint32
	local      [16]float32
	name       string
}

type graphImpl struct {
	mu    *sync.RWMutex
	slots []slot
	free  []uint32
	root  Handle
	live  int
}

// Graph is the transform hierarchy of a scene. Nodes are stored in an arena owned by
// the graph; every node except the root has exactly one parent, and removing a node
// destroys its whole subtree. World transforms are derived on demand by composing
// local-to-parent transforms from the root down to the node.
type Graph interface {
	// Root returns the handle of the root node created with the graph.
	//
	// Returns:
	//   - Handle: the root node
	Root() Handle

	// AddChild creates a new node owned by parent.
	//
	// Parameters:
	//   - parent: the node that will own the new child
	//   - options: functional options for the new node (local transform, name)
	//
	// Returns:
	//   - Handle: the new node
	//   - error: ErrInvalidHandle if parent is not live
	AddChild(parent Handle, options ...NodeBuilderOption) (Handle, error)

	// Reparent transfers ownership of child to newParent, appending it to the new parent's children.
	// Moving a node beneath itself or one of its descendants is rejected.
	//
	// Parameters:
	//   - child: the node to move
	//   - newParent: the node that will own child
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles, ErrCycle if the move would create a cycle
	Reparent(child, newParent Handle) error

	// Remove destroys the node and all of its descendants. Their handles become invalid.
	//
	// Parameters:
	//   - h: the node to remove
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles, ErrRootRemoval for the root
	Remove(h Handle) error

	// Contains reports whether h refers to a live node.
	//
	// Parameters:
	//   - h: the handle to check
	//
	// Returns:
	//   - bool: true if the node is live
	Contains(h Handle) bool

	// Len returns the number of live nodes including the root.
	//
	// Returns:
	//   - int: the live node count
	Len() int

	// Parent returns the parent of h. The root has no parent.
	//
	// Parameters:
	//   - h: the node to query
	//
	// Returns:
	//   - Handle: the parent handle, or Nil for the root
	//   - error: ErrInvalidHandle for stale handles
	Parent(h Handle) (Handle, error)

	// Children returns a copy of the ordered child list of h.
	//
	// Parameters:
	//   - h: the node to query
	//
	// Returns:
	//   - []Handle: the children in insertion order
	//   - error: ErrInvalidHandle for stale handles
	Children(h Handle) ([]Handle, error)

	// Name returns the optional name of h.
	//
	// Parameters:
	//   - h: the node to query
	//
	// Returns:
	//   - string: the node name, empty when unnamed
	//   - error: ErrInvalidHandle for stale handles
	Name(h Handle) (string, error)

	// SetName sets the name of h. Names are not required to be unique.
	//
	// Parameters:
	//   - h: the node to rename
	//   - name: the new name
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles
	SetName(h Handle, name string) error

	// Find returns the first live node with the given name in depth-first order from the root.
	//
	// Parameters:
	//   - name: the name to look up
	//
	// Returns:
	//   - Handle: the matching node
	//   - bool: false if no node carries the name
	Find(name string) (Handle, bool)

	// LocalTransform returns the local-to-parent transform of h.
	//
	// Parameters:
	//   - h: the node to query
	//
	// Returns:
	//   - [16]float32: the local-to-parent matrix (column-major)
	//   - error: ErrInvalidHandle for stale handles
	LocalTransform(h Handle) ([16]float32, error)

	// SetLocalTransform replaces the local-to-parent transform of h.
	//
	// Parameters:
	//   - h: the node to update
	//   - m: the new local-to-parent matrix (column-major)
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles
	SetLocalTransform(h Handle, m [16]float32) error

	// Translate moves h by (x, y, z) expressed in its own local frame.
	//
	// Parameters:
	//   - h: the node to move
	//   - x, y, z: translation components
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles
	Translate(h Handle, x, y, z float32) error

	// RotateX rotates h about its local X axis.
	//
	// Parameters:
	//   - h: the node to rotate
	//   - deg: rotation angle in degrees
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles
	RotateX(h Handle, deg float32) error

	// RotateY rotates h about its local Y axis.
	//
	// Parameters:
	//   - h: the node to rotate
	//   - deg: rotation angle in degrees
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles
	RotateY(h Handle, deg float32) error

	// RotateZ rotates h about its local Z axis.
	//
	// Parameters:
	//   - h: the node to rotate
	//   - deg: rotation angle in degrees
	//
	// Returns:
	//   - error: ErrInvalidHandle for stale handles
	RotateZ(h Handle, deg float32) error

	// WorldTransform composes the local-to-parent transforms from the root down to h.
	// The result maps node-local coordinates to world coordinates. Nothing is cached.
	//
	// Parameters:
	//   - h: the node to resolve
	//
	// Returns:
	//   - [16]float32: the local-to-world matrix (column-major)
	//   - error: ErrInvalidHandle for stale handles
	WorldTransform(h Handle) ([16]float32, error)

	// Walk visits every live node depth-first, parents before children, children in order.
	// Returning false from fn stops the walk.
	//
	// Parameters:
	//   - fn: callback receiving the node and its depth (root = 0)
	Walk(fn func(h Handle, depth int) bool)
}

var _ Graph = &graphImpl{}

// NewGraph creates a Graph holding a single root node with an identity transform.
//
// Parameters:
//   - options: functional options to configure the graph
//
// Returns:
//   - Graph: the newly created graph
func NewGraph(options ...GraphBuilderOption) Graph {
	g := &graphImpl{
		mu: &sync.RWMutex{},
	}
	g.root = g.alloc(noParent, common.IdentityMatrix(), "root")
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *graphImpl) Root() Handle {
	return g.root
}

func (g *graphImpl) AddChild(parent Handle, options ...NodeBuilderOption) (Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(parent) {
		return Nil, fmt.Errorf("add child to %s: %w", parent, ErrInvalidHandle)
	}
	cfg := nodeConfig{local: common.IdentityMatrix()}
	for _, opt := range options {
		opt(&cfg)
	}
	h := g.alloc(int32(parent.index), cfg.local, cfg.name)
	p := &g.slots[parent.index]
	p.children = append(p.children, h.index)
	return h, nil
}

func (g *graphImpl) Reparent(child, newParent Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(child) {
		return fmt.Errorf("reparent %s: %w", child, ErrInvalidHandle)
	}
	if !g.valid(newParent) {
		return fmt.Errorf("reparent to %s: %w", newParent, ErrInvalidHandle)
	}
	for i := int32(newParent.index); i != noParent; i = g.slots[i].parent {
		if uint32(i) == child.index {
			return fmt.Errorf("reparent %s under %s: %w", child, newParent, ErrCycle)
		}
	}

	s := &g.slots[child.index]
	g.detach(child.index, s.parent)
	s.parent = int32(newParent.index)
	p := &g.slots[newParent.index]
	p.children = append(p.children, child.index)
	return nil
}

func (g *graphImpl) Remove(h Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(h) {
		return fmt.Errorf("remove %s: %w", h, ErrInvalidHandle)
	}
	if h == g.root {
		return ErrRootRemoval
	}
	g.detach(h.index, g.slots[h.index].parent)

	stack := []uint32{h.index}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := &g.slots[i]
		stack = append(stack, s.children...)
		*s = slot{generation: s.generation, parent: noParent}
		g.free = append(g.free, i)
		g.live--
	}
	return nil
}

func (g *graphImpl) Contains(h Handle) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.valid(h)
}

func (g *graphImpl) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.live
}

func (g *graphImpl) Parent(h Handle) (Handle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(h) {
		return Nil, fmt.Errorf("parent of %s: %w", h, ErrInvalidHandle)
	}
	p := g.slots[h.index].parent
	if p == noParent {
		return Nil, nil
	}
	return g.handle(uint32(p)), nil
}

func (g *graphImpl) Children(h Handle) ([]Handle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(h) {
		return nil, fmt.Errorf("children of %s: %w", h, ErrInvalidHandle)
	}
	children := g.slots[h.index].children
	out := make([]Handle, len(children))
	for i, c := range children {
		out[i] = g.handle(c)
	}
	return out, nil
}

func (g *graphImpl) Name(h Handle) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(h) {
		return "", fmt.Errorf("name of %s: %w", h, ErrInvalidHandle)
	}
	return g.slots[h.index].name, nil
}

func (g *graphImpl) SetName(h Handle, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(h) {
		return fmt.Errorf("set name of %s: %w", h, ErrInvalidHandle)
	}
	g.slots[h.index].name = name
	return nil
}

func (g *graphImpl) Find(name string) (Handle, bool) {
	found := Nil
	g.Walk(func(h Handle, _ int) bool {
		g.mu.RLock()
		match := g.slots[h.index].name == name
		g.mu.RUnlock()
		if match {
			found = h
			return false
		}
		return true
	})
	return found, !found.IsNil()
}

func (g *graphImpl) LocalTransform(h Handle) ([16]float32, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(h) {
		return [16]float32{}, fmt.Errorf("local transform of %s: %w", h, ErrInvalidHandle)
	}
	return g.slots[h.index].local, nil
}

func (g *graphImpl) SetLocalTransform(h Handle, m [16]float32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(h) {
		return fmt.Errorf("set local transform of %s: %w", h, ErrInvalidHandle)
	}
	g.slots[h.index].local = m
	return nil
}

func (g *graphImpl) Translate(h Handle, x, y, z float32) error {
	return g.postMultiply(h, common.Translation(x, y, z))
}

func (g *graphImpl) RotateX(h Handle, deg float32) error {
	return g.postMultiply(h, common.RotationX(deg))
}

func (g *graphImpl) RotateY(h Handle, deg float32) error {
	return g.postMultiply(h, common.RotationY(deg))
}

func (g *graphImpl) RotateZ(h Handle, deg float32) error {
	return g.postMultiply(h, common.RotationZ(deg))
}

func (g *graphImpl) WorldTransform(h Handle) ([16]float32, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(h) {
		return [16]float32{}, fmt.Errorf("world transform of %s: %w", h, ErrInvalidHandle)
	}
	world := g.slots[h.index].local
	for p := g.slots[h.index].parent; p != noParent; p = g.slots[p].parent {
		common.Mul4(world[:], g.slots[p].local[:], world[:])
	}
	return world, nil
}

func (g *graphImpl) Walk(fn func(h Handle, depth int) bool) {
	type entry struct {
		index uint32
		depth int
	}

	g.mu.RLock()
	stack := []entry{{index: g.root.index}}
	g.mu.RUnlock()

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		g.mu.RLock()
		if !g.slots[e.index].alive {
			g.mu.RUnlock()
			continue
		}
		h := g.handle(e.index)
		children := g.slots[e.index].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, entry{index: children[i], depth: e.depth + 1})
		}
		g.mu.RUnlock()

		if !fn(h, e.depth) {
			return
		}
	}
}

// alloc places a new live node in a free slot or at the end of the arena.
// Caller must hold the write lock (or own g exclusively).
func (g *graphImpl) alloc(parent int32, local [16]float32, name string) Handle {
	var index uint32
	if n := len(g.free); n > 0 {
		index = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		index = uint32(len(g.slots))
		g.slots = append(g.slots, slot{})
	}
	s := &g.slots[index]
	s.generation++
	s.alive = true
	s.parent = parent
	s.children = nil
	s.local = local
	s.name = name
	g.live++
	return Handle{index: index, generation: s.generation}
}

// detach removes index from the child list of parent, keeping sibling order.
func (g *graphImpl) detach(index uint32, parent int32) {
	if parent == noParent {
		return
	}
	p := &g.slots[parent]
	for i, c := range p.children {
		if c == index {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

func (g *graphImpl) postMultiply(h Handle, m [16]float32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(h) {
		return fmt.Errorf("transform %s: %w", h, ErrInvalidHandle)
	}
	s := &g.slots[h.index]
	common.Mul4(s.local[:], s.local[:], m[:])
	return nil
}

func (g *graphImpl) valid(h Handle) bool {
	if h.IsNil() || int(h.index) >= len(g.slots) {
		return false
	}
	s := &g.slots[h.index]
	return s.alive && s.generation == h.generation
}

func (g *graphImpl) handle(index uint32) Handle {
	return Handle{index: index, generation: g.slots[index].generation}
}
