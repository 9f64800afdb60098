package node

// GraphBuilderOption is a functional option for configuring a Graph.
type GraphBuilderOption func(*graphImpl)

// WithCapacity preallocates arena storage for n nodes.
//
// Parameters:
//   - n: the expected node count
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithCapacity(n int) GraphBuilderOption {
	return func(g *graphImpl) {
		if n <= len(g.slots) {
			return
		}
		slots := make([]slot, len(g.slots), n)
		copy(slots, g.slots)
		g.slots = slots
	}
}

// WithRootTransform sets the local transform of the root node. The root's world
// transform equals this matrix.
//
// Parameters:
//   - m: the root transform (column-major)
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithRootTransform(m [16]float32) GraphBuilderOption {
	return func(g *graphImpl) {
		g.slots[g.root.index].local = m
	}
}

// nodeConfig collects the options for a node created with AddChild.
type nodeConfig struct {
	local [16]float32
	name  string
}

// NodeBuilderOption is a functional option for a node created with Graph.AddChild.
type NodeBuilderOption func(*nodeConfig)

// WithLocalTransform sets the initial local-to-parent transform of the new node.
//
// Parameters:
//   - m: the local-to-parent matrix (column-major)
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithLocalTransform(m [16]float32) NodeBuilderOption {
	return func(c *nodeConfig) {
		c.local = m
	}
}

// WithName sets the name of the new node.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithName(name string) NodeBuilderOption {
	return func(c *nodeConfig) {
		c.name = name
	}
}
