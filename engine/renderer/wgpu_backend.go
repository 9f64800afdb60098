package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ErrFrameInProgress is returned by BeginFrame while a previous frame has not been presented.
var ErrFrameInProgress = errors.New("renderer: previous frame surface not yet presented")

type wgpuBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor
	presentMode          wgpu.PresentMode
	clearColor           wgpu.Color
	forceFallback        bool

	target *PassTarget

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// WGPUBackend owns the WebGPU device and window surface. Each frame it opens a single
// render pass and publishes it on its PassTarget, where WGPUMaterial and WGPUMesh
// record their commands while the scene dispatches meshes.
type WGPUBackend interface {
	// Device returns the GPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the device queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// SurfaceFormat returns the color format chosen by ConfigureSurface.
	//
	// Returns:
	//   - wgpu.TextureFormat: the swapchain format
	SurfaceFormat() wgpu.TextureFormat

	// PassTarget returns the holder of the active render pass.
	//
	// Returns:
	//   - *PassTarget: the pass target shared with materials and meshes
	PassTarget() *PassTarget

	// ConfigureSurface (re)creates the swapchain and depth buffer for a surface size.
	// Call it once before the first frame and again on every resize.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode selects vsync or uncapped presentation. Takes effect on the next
	// ConfigureSurface.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	//
	// Returns:
	//   - error: ErrFrameInProgress, or an error acquiring the surface or encoder
	BeginFrame() error

	// EndFrame closes the render pass and submits the recorded commands.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present shows the frame's surface texture and releases it.
	Present()

	// CreatePipeline compiles WGSL source into a render pipeline using the Vertex buffer
	// layout. Group 0 holds the uniform buffer at BindingUniform, the five surface
	// textures at BindingDiffuse through BindingBump and a filtering sampler at
	// BindingSampler.
	//
	// Parameters:
	//   - name: the pipeline label
	//   - source: WGSL with vs_main and fs_main entry points
	//   - uniformSize: the uniform buffer size in bytes
	//
	// Returns:
	//   - *WGPUPipeline: the compiled pipeline
	//   - error: an error if compilation fails
	CreatePipeline(name, source string, uniformSize int) (*WGPUPipeline, error)
}

var _ WGPUBackend = &wgpuBackendImpl{}

// NewWGPUBackend creates the WebGPU instance, surface, adapter and device. The calling
// goroutine is locked to its OS thread, as the window system requires.
//
// Parameters:
//   - surfaceDescriptor: the window surface descriptor
//   - options: functional options to configure the backend
//
// Returns:
//   - WGPUBackend: the backend
//   - error: an error if no adapter or device could be obtained
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUBackendBuilderOption) (WGPUBackend, error) {
	if surfaceDescriptor == nil {
		panic("renderer: NewWGPUBackend requires a non-nil SurfaceDescriptor")
	}
	runtime.LockOSThread()

	b := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		target:      &PassTarget{mu: &sync.Mutex{}},
	}
	for _, opt := range options {
		opt(b)
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallback,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuBackendImpl) Device() *wgpu.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device
}

func (b *wgpuBackendImpl) Queue() *wgpu.Queue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue
}

func (b *wgpuBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuBackendImpl) PassTarget() *PassTarget {
	return b.target
}

func (b *wgpuBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// The color view is filled in per frame with the swapchain view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return ErrFrameInProgress
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.target.Set(pass)

	return nil
}

func (b *wgpuBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil
	}
	b.target.Set(nil)
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return fmt.Errorf("finish frame: %w", err)
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
	return nil
}

func (b *wgpuBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackendImpl) CreatePipeline(name, source string, uniformSize int) (*WGPUPipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: name + " Bind Group Layout",
		Entries: append([]wgpu.BindGroupLayoutEntry{
			{
				Binding:    BindingUniform,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(uniformSize),
				},
			},
		}, surfaceLayoutEntries()...),
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name,
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  name + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: VertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s: %w", name, err)
	}

	return &WGPUPipeline{
		name:        name,
		pipeline:    created,
		layout:      layout,
		uniformSize: uniformSize,
	}, nil
}

// WGPUBackendBuilderOption is a functional option for configuring a WGPUBackend.
type WGPUBackendBuilderOption func(*wgpuBackendImpl)

// WithPresentMode sets the initial present mode. Defaults to PresentModeVSync.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - WGPUBackendBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		if mode == PresentModeUncapped {
			b.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - WGPUBackendBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.forceFallback = force
	}
}

// WithClearColor sets the color the frame's render pass clears to.
//
// Parameters:
//   - c: the RGBA clear color
//
// Returns:
//   - WGPUBackendBuilderOption: option function to apply
func WithClearColor(c [4]float32) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.clearColor = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
	}
}
