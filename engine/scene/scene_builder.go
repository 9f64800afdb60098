package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the engine loop drives the scene. Scenes start active.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithGraph makes the scene own an existing graph instead of a new one.
//
// Parameters:
//   - g: the node graph
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGraph(g node.Graph) SceneBuilderOption {
	return func(s *scene) {
		s.graph = g
	}
}

// WithDispatcher replaces the render dispatcher.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDispatcher(d renderer.Dispatcher) SceneBuilderOption {
	return func(s *scene) {
		s.dispatcher = d
	}
}

// WithDefaults sets the camera and light synthesized by CreateDefaultCameraAndLights.
// The name is applied too unless empty.
//
// Parameters:
//   - defaults: the scene configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDefaults(defaults config.Scene) SceneBuilderOption {
	return func(s *scene) {
		s.defaults = defaults
		if defaults.Name != "" {
			s.name = defaults.Name
		}
	}
}
