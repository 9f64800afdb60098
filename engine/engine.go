package engine

import (
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// FrameTarget brackets the draw calls of one frame, for example a GPU render pass.
type FrameTarget interface {
	BeginFrame() error
	EndFrame() error
	Present()
}

// engine implements the Engine interface.
// Runs the frame loop on one goroutine while the window pumps events on the main thread.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration

	quitChannel chan struct{}
	quitOnce    sync.Once

	window       window.Window
	windowClosed bool
	target       FrameTarget
	onResize     func(width, height int)

	objectPipeline  mesh.Pipeline
	skinnedPipeline mesh.Pipeline
	aspect          float32

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	fixedDelta     float32
	maxFrames      uint64
	tickCallback   func(deltaTime float32)

	scenes map[int]scene.Scene
	frames uint64
	err    error
}

// Engine is the main entry point for the engine.
// It owns the scenes and drives them one frame at a time: every active scene is updated,
// then every active scene is rendered, in ascending z-index order.
type Engine interface {
	// Window returns the window the engine pumps, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the frame rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called at the start of each frame, before
	// any scene updates. Use this for input processing and game logic.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index determining frame order (lower goes first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step runs one frame synchronously: the tick callback, Update on every active
	// scene, then Render on every active scene through its first camera.
	//
	// Parameters:
	//   - deltaTime: the frame time in seconds
	//
	// Returns:
	//   - error: the first scene or frame target error; the frame is abandoned
	Step(deltaTime float32) error

	// Run starts the frame loop and blocks until the window closes, Quit is called,
	// the frame limit is reached, or a frame fails.
	//
	// Returns:
	//   - error: the error that stopped the loop, or nil
	Run() error

	// Frames returns the number of frames completed by Step.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Quit signals the frame loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.onResize != nil {
				e.onResize(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	// Replace any pending update so the loop only sees the latest rate.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	if s == nil {
		panic("engine: AddScene requires a non-nil scene.Scene")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (e *engine) Step(deltaTime float32) error {
	e.mu.Lock()
	tick := e.tickCallback
	e.mu.Unlock()
	if tick != nil {
		tick(deltaTime)
	}

	scenes := e.activeScenes()
	for _, s := range scenes {
		if err := s.Update(deltaTime); err != nil {
			return fmt.Errorf("scene %q update: %w", s.Name(), err)
		}
	}

	aspect := e.aspect
	if e.window != nil {
		aspect = e.window.Aspect()
	}

	if e.target != nil {
		if err := e.target.BeginFrame(); err != nil {
			return fmt.Errorf("begin frame: %w", err)
		}
	}
	stats := profiler.Frame{}
	for _, s := range scenes {
		if err := e.renderScene(s, aspect); err != nil {
			if e.target != nil {
				// End the pass so the encoder is released; the frame is not presented.
				_ = e.target.EndFrame()
			}
			return err
		}
		ds := s.DispatchStats()
		stats.Rigid += ds.Rigid
		stats.Skeletal += ds.Skeletal
		u := s.LightUniforms()
		stats.Lights += u.ActiveLights()
	}
	if e.target != nil {
		if err := e.target.EndFrame(); err != nil {
			return fmt.Errorf("end frame: %w", err)
		}
		e.target.Present()
	}

	e.mu.Lock()
	e.frames++
	profiling := e.profilingEnabled
	e.mu.Unlock()
	if profiling {
		e.profiler.Tick(stats)
	}
	return nil
}

func (e *engine) renderScene(s scene.Scene, aspect float32) error {
	cameras := s.CameraInstances()
	if len(cameras) == 0 {
		return fmt.Errorf("scene %q render: %w", s.Name(), scene.ErrNoCamera)
	}
	if err := s.Render(e.objectPipeline, e.skinnedPipeline, cameras[0], aspect); err != nil {
		return fmt.Errorf("scene %q render: %w", s.Name(), err)
	}
	return nil
}

func (e *engine) Run() error {
	if e.window == nil {
		e.loop()
		return e.err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.loop()
	}()

	// GLFW must be pumped from the main thread; closing the window from the update
	// callback keeps it there too.
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.closeWindow()
		default:
		}
	})
	e.window.ProcessMessages()
	e.Quit()
	<-done
	e.closeWindow()
	return e.err
}

func (e *engine) closeWindow() {
	if e.windowClosed {
		return
	}
	e.windowClosed = true
	if err := e.window.Close(); err != nil {
		log.Printf("[Engine] closing window: %v", err)
	}
}

// loop runs frames until quit. A failed frame or a panic stops the engine.
func (e *engine) loop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame loop recovered from panic: %v", r)
			e.err = fmt.Errorf("engine: panic in frame loop: %v", r)
			e.Quit()
		}
	}()

	var ticker *time.Ticker
	var tickC <-chan time.Time
	if e.fixedDelta <= 0 {
		ticker = time.NewTicker(e.engineTickRate)
		defer ticker.Stop()
		tickC = ticker.C
	}
	lastTick := time.Now()

	for {
		if e.maxFrames > 0 && e.Frames() >= e.maxFrames {
			e.Quit()
			return
		}

		dt := e.fixedDelta
		if ticker != nil {
			select {
			case <-e.quitChannel:
				return
			case newRate := <-e.tickRateChannel:
				ticker.Reset(newRate)
				e.engineTickRate = newRate
				continue
			case now := <-tickC:
				dt = float32(now.Sub(lastTick).Seconds())
				lastTick = now
			}
		} else {
			select {
			case <-e.quitChannel:
				return
			default:
			}
		}

		if err := e.Step(dt); err != nil {
			log.Printf("[Engine] frame %d aborted: %v", e.Frames(), err)
			e.err = err
			e.Quit()
			return
		}
	}
}
