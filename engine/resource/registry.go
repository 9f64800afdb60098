// Package resource keeps the named assets a scene draws from: animations, meshes,
// materials and skeletons. Scenes query it by kind, for example to start every
// registered animation.
package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
)

// ErrDuplicate is returned when a name is registered twice for the same kind.
var ErrDuplicate = errors.New("resource: duplicate name")

// Kind tags a registered resource.
type Kind int

const (
	KindAnimation Kind = iota
	KindMesh
	KindMaterial
	KindSkeleton
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAnimation:
		return "animation"
	case KindMesh:
		return "mesh"
	case KindMaterial:
		return "material"
	case KindSkeleton:
		return "skeleton"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type entry struct {
	name  string
	value any
}

type registryImpl struct {
	mu      *sync.RWMutex
	entries map[Kind][]entry
	index   map[Kind]map[string]int
}

// Registry stores resources by kind and name, preserving registration order.
type Registry interface {
	// Add registers value under name.
	//
	// Parameters:
	//   - kind: the resource kind
	//   - name: the name, unique per kind
	//   - value: the resource
	//
	// Returns:
	//   - error: an error wrapping ErrDuplicate if name is taken
	Add(kind Kind, name string, value any) error

	// Get looks up a resource.
	//
	// Parameters:
	//   - kind: the resource kind
	//   - name: the name
	//
	// Returns:
	//   - any: the resource
	//   - bool: false if nothing is registered under name
	Get(kind Kind, name string) (any, bool)

	// Names returns the names registered for kind in registration order.
	//
	// Parameters:
	//   - kind: the resource kind
	//
	// Returns:
	//   - []string: the names
	Names(kind Kind) []string

	// FindAll returns every resource of kind in registration order.
	//
	// Parameters:
	//   - kind: the resource kind
	//
	// Returns:
	//   - []any: the resources
	FindAll(kind Kind) []any

	// Animations returns every registered animation in registration order.
	//
	// Returns:
	//   - []animation.Animation: the animations
	Animations() []animation.Animation

	// Len returns the number of resources of kind.
	//
	// Parameters:
	//   - kind: the resource kind
	//
	// Returns:
	//   - int: the count
	Len(kind Kind) int
}

var _ Registry = &registryImpl{}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - Registry: the registry
func NewRegistry() Registry {
	return &registryImpl{
		mu:      &sync.RWMutex{},
		entries: make(map[Kind][]entry),
		index:   make(map[Kind]map[string]int),
	}
}

func (r *registryImpl) Add(kind Kind, name string, value any) error {
	if value == nil {
		panic("resource: Add requires a non-nil value")
	}
	if kind == KindAnimation {
		if _, ok := value.(animation.Animation); !ok {
			panic(fmt.Sprintf("resource: animation %q is a %T", name, value))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.index[kind]
	if !ok {
		idx = make(map[string]int)
		r.index[kind] = idx
	}
	if _, taken := idx[name]; taken {
		return fmt.Errorf("%s %q: %w", kind, name, ErrDuplicate)
	}
	idx[name] = len(r.entries[kind])
	r.entries[kind] = append(r.entries[kind], entry{name: name, value: value})
	return nil
}

func (r *registryImpl) Get(kind Kind, name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[kind][name]
	if !ok {
		return nil, false
	}
	return r.entries[kind][i].value, true
}

func (r *registryImpl) Names(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries[kind]))
	for i, e := range r.entries[kind] {
		out[i] = e.name
	}
	return out
}

func (r *registryImpl) FindAll(kind Kind) []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, len(r.entries[kind]))
	for i, e := range r.entries[kind] {
		out[i] = e.value
	}
	return out
}

func (r *registryImpl) Animations() []animation.Animation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]animation.Animation, len(r.entries[KindAnimation]))
	for i, e := range r.entries[KindAnimation] {
		out[i] = e.value.(animation.Animation)
	}
	return out
}

func (r *registryImpl) Len(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[kind])
}
