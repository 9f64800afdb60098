package animation

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/node"
)

type nodeTargetImpl struct {
	mu       *sync.Mutex
	graph    node.Graph
	bindings map[string]node.Handle
	resolve  bool
}

// NodeTarget drives the local transforms of scene graph nodes. Channels map to nodes
// through explicit bindings and, when enabled, by looking up nodes with the channel's name.
type NodeTarget interface {
	Target

	// Bind maps a channel to a node, replacing any previous binding.
	//
	// Parameters:
	//   - channel: the channel name
	//   - h: the node driven by the channel
	Bind(channel string, h node.Handle)

	// Binding returns the node bound to channel, resolving it by name if allowed.
	//
	// Parameters:
	//   - channel: the channel name
	//
	// Returns:
	//   - node.Handle: the bound node
	//   - bool: false if the channel has no binding
	Binding(channel string) (node.Handle, bool)
}

var _ NodeTarget = &nodeTargetImpl{}

// NewNodeTarget creates a target writing channel transforms into graph.
// Without explicit bindings channels are resolved by node name on first use.
//
// Parameters:
//   - graph: the graph whose nodes are animated
//   - options: functional options (explicit bindings, name resolution)
//
// Returns:
//   - NodeTarget: the new target
func NewNodeTarget(graph node.Graph, options ...NodeTargetBuilderOption) NodeTarget {
	if graph == nil {
		panic("animation: NewNodeTarget requires a non-nil Graph")
	}
	t := &nodeTargetImpl{
		mu:       &sync.Mutex{},
		graph:    graph,
		bindings: make(map[string]node.Handle),
		resolve:  true,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *nodeTargetImpl) Bind(channel string, h node.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindings[channel] = h
}

func (t *nodeTargetImpl) Binding(channel string) (node.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.bindings[channel]; ok {
		return h, true
	}
	if !t.resolve {
		return node.Nil, false
	}
	h, ok := t.graph.Find(channel)
	if ok {
		t.bindings[channel] = h
	}
	return h, ok
}

func (t *nodeTargetImpl) SetChannelTransform(channel string, local [16]float32) error {
	h, ok := t.Binding(channel)
	if !ok {
		return fmt.Errorf("channel %q: %w", channel, ErrUnknownChannel)
	}
	return t.graph.SetLocalTransform(h, local)
}

// NodeTargetBuilderOption is a functional option for configuring a NodeTarget.
type NodeTargetBuilderOption func(*nodeTargetImpl)

// WithBinding maps channel to a node at construction.
//
// Parameters:
//   - channel: the channel name
//   - h: the node driven by the channel
//
// Returns:
//   - NodeTargetBuilderOption: option function to apply
func WithBinding(channel string, h node.Handle) NodeTargetBuilderOption {
	return func(t *nodeTargetImpl) {
		t.bindings[channel] = h
	}
}

// WithNameResolution enables or disables resolving unbound channels by node name.
// Enabled by default.
//
// Parameters:
//   - enabled: true to look up nodes by channel name
//
// Returns:
//   - NodeTargetBuilderOption: option function to apply
func WithNameResolution(enabled bool) NodeTargetBuilderOption {
	return func(t *nodeTargetImpl) {
		t.resolve = enabled
	}
}
