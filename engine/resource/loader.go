package resource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"gopkg.in/yaml.v3"
)

type loaderImpl struct {
	mu      *sync.Mutex
	workers int
	pool    worker.DynamicWorkerPool
	nextID  int
}

// Loader decodes resource files in parallel on a worker pool and registers the results.
type Loader interface {
	// LoadClips decodes YAML clip files concurrently and registers them as animations in
	// path order, whatever order the workers finish in. A clip without a name is named
	// after its file. Nothing is registered when any file fails.
	//
	// Parameters:
	//   - ctx: cancels loading between files
	//   - registry: the registry receiving the clips
	//   - target: the default target of every clip, or nil
	//   - paths: the clip files
	//
	// Returns:
	//   - []animation.Clip: the clips in path order
	//   - error: the joined decode errors, a registry error, or ctx.Err()
	LoadClips(ctx context.Context, registry Registry, target animation.Target, paths ...string) ([]animation.Clip, error)
}

var _ Loader = &loaderImpl{}

// NewLoader creates a Loader backed by a dynamic worker pool.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loaderImpl{
		mu:      &sync.Mutex{},
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(l)
	}
	// Idle workers exit after a second; loading happens in bursts before the first frame.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

// LoadClips decodes clip files with a Loader of default settings.
//
// Parameters:
//   - ctx: cancels loading between files
//   - registry: the registry receiving the clips
//   - target: the default target of every clip, or nil
//   - paths: the clip files
//
// Returns:
//   - []animation.Clip: the clips in path order
//   - error: the joined decode errors, a registry error, or ctx.Err()
func LoadClips(ctx context.Context, registry Registry, target animation.Target, paths ...string) ([]animation.Clip, error) {
	return NewLoader().LoadClips(ctx, registry, target, paths...)
}

func (l *loaderImpl) LoadClips(ctx context.Context, registry Registry, target animation.Target, paths ...string) ([]animation.Clip, error) {
	if registry == nil {
		panic("resource: LoadClips requires a non-nil Registry")
	}

	clips := make([]animation.Clip, len(paths))
	errs := make([]error, len(paths))

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: l.taskID(),
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					errs[i] = err
					return nil, err
				}
				clip, err := decodeClip(path, target)
				if err != nil {
					errs[i] = fmt.Errorf("clip %s: %w", path, err)
					return nil, errs[i]
				}
				clips[i] = clip
				return clip, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for _, clip := range clips {
		if err := registry.Add(KindAnimation, clip.Name(), clip); err != nil {
			return nil, err
		}
	}
	return clips, nil
}

func (l *loaderImpl) taskID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	return l.nextID
}

func decodeClip(path string, target animation.Target) (animation.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def animation.ClipDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	var opts []animation.ClipBuilderOption
	if target != nil {
		opts = append(opts, animation.WithDefaultTarget(target))
	}
	return animation.NewClip(def, opts...)
}

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loaderImpl)

// WithWorkers sets the number of decoding workers. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.workers = max(n, 1)
	}
}
