package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoPass is returned when a WebGPU material or mesh is used outside an open render pass.
	ErrNoPass = errors.New("renderer: no active render pass")

	// ErrPipelineType is returned when a WebGPU material receives a pipeline it cannot bind.
	ErrPipelineType = errors.New("renderer: pipeline is not a *WGPUPipeline")

	// ErrTextureData is returned when a surface texture's pixels do not match its size.
	ErrTextureData = errors.New("renderer: texture pixels do not match width*height*4")
)

// Bindings of the lit pipelines' bind group. Binding 0 is the uniform buffer.
const (
	BindingUniform uint32 = iota
	BindingDiffuse
	BindingAmbient
	BindingEmission
	BindingSpecular
	BindingBump
	BindingSampler
)

// surfaceTexture is one texture slot of a material.Surface awaiting upload.
type surfaceTexture struct {
	binding uint32
	slot    string
	format  wgpu.TextureFormat
	data    *common.TextureStagingData
}

// surfaceTextures lists the slots of s in binding order. Color slots are sRGB; the
// specular and bump slots hold linear data.
func surfaceTextures(s material.Surface) []surfaceTexture {
	return []surfaceTexture{
		{BindingDiffuse, "Diffuse", wgpu.TextureFormatRGBA8UnormSrgb, s.Diffuse()},
		{BindingAmbient, "Ambient", wgpu.TextureFormatRGBA8UnormSrgb, s.Ambient()},
		{BindingEmission, "Emission", wgpu.TextureFormatRGBA8UnormSrgb, s.Emission()},
		{BindingSpecular, "Specular", wgpu.TextureFormatRGBA8Unorm, s.Specular()},
		{BindingBump, "Bump", wgpu.TextureFormatRGBA8Unorm, s.Bump()},
	}
}

// validateTexture checks that t carries exactly one RGBA texel per pixel.
func validateTexture(t surfaceTexture) error {
	if t.data == nil || t.data.Width == 0 || t.data.Height == 0 {
		return fmt.Errorf("%s texture is empty: %w", t.slot, ErrTextureData)
	}
	if want := int(t.data.Width * t.data.Height * 4); len(t.data.Pixels) != want {
		return fmt.Errorf("%s texture has %d bytes, want %d: %w", t.slot, len(t.data.Pixels), want, ErrTextureData)
	}
	return nil
}

// surfaceLayoutEntries returns the fragment-stage texture and sampler entries shared by
// every lit pipeline, following the uniform buffer at BindingUniform.
func surfaceLayoutEntries() []wgpu.BindGroupLayoutEntry {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, 6)
	for b := BindingDiffuse; b <= BindingBump; b++ {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    b,
			Visibility: wgpu.ShaderStageFragment,
		}
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entries = append(entries, entry)
	}
	sampler := wgpu.BindGroupLayoutEntry{
		Binding:    BindingSampler,
		Visibility: wgpu.ShaderStageFragment,
	}
	sampler.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	return append(entries, sampler)
}

// PassTarget holds the render pass encoder of the frame being recorded. The backend
// sets it in BeginFrame and clears it in EndFrame.
type PassTarget struct {
	mu   *sync.Mutex
	pass *wgpu.RenderPassEncoder
}

// NewPassTarget creates an empty PassTarget.
//
// Returns:
//   - *PassTarget: the pass target
func NewPassTarget() *PassTarget {
	return &PassTarget{mu: &sync.Mutex{}}
}

// Set replaces the active pass; nil closes it.
//
// Parameters:
//   - pass: the open render pass encoder or nil
func (t *PassTarget) Set(pass *wgpu.RenderPassEncoder) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pass = pass
}

// Pass returns the active pass encoder.
//
// Returns:
//   - *wgpu.RenderPassEncoder: the open pass
//   - error: ErrNoPass when no frame is being recorded
func (t *PassTarget) Pass() (*wgpu.RenderPassEncoder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pass == nil {
		return nil, ErrNoPass
	}
	return t.pass, nil
}

// WGPUPipeline is a compiled render pipeline usable as a mesh.Pipeline.
type WGPUPipeline struct {
	name        string
	pipeline    *wgpu.RenderPipeline
	layout      *wgpu.BindGroupLayout
	uniformSize int
}

var _ mesh.Pipeline = &WGPUPipeline{}

// Name returns the pipeline label.
func (p *WGPUPipeline) Name() string {
	return p.name
}

// Pipeline returns the underlying render pipeline.
func (p *WGPUPipeline) Pipeline() *wgpu.RenderPipeline {
	return p.pipeline
}

// UniformSize returns the byte size of the pipeline's uniform binding.
func (p *WGPUPipeline) UniformSize() int {
	return p.uniformSize
}

type uniformBinding struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

type wgpuMaterialImpl struct {
	mu *sync.Mutex

	device  *wgpu.Device
	queue   *wgpu.Queue
	target  *PassTarget
	color   [4]float32
	label   string
	surface material.Surface

	textures []*wgpu.Texture
	views    map[uint32]*wgpu.TextureView
	sampler  *wgpu.Sampler

	bindings map[*WGPUPipeline]*uniformBinding
}

var _ mesh.Material = &wgpuMaterialImpl{}

// NewWGPUMaterial creates a mesh.Material that uploads its uniforms with queue.WriteBuffer
// and binds them on the active pass. Uniform writes land before the pass executes, so
// every mesh instance needs its own material.
//
// The surface's five texture slots are uploaded on the first bind and sampled by the
// lit shaders; the base color tints the diffuse slot. Without WithSurface the material
// shades as a plain white MakeColor surface.
//
// Parameters:
//   - device: the device creating the per-pipeline uniform buffers
//   - queue: the queue receiving uniform writes
//   - target: the pass target to record into
//   - options: functional options to configure the material
//
// Returns:
//   - mesh.Material: the material
func NewWGPUMaterial(device *wgpu.Device, queue *wgpu.Queue, target *PassTarget, options ...WGPUMaterialBuilderOption) mesh.Material {
	if target == nil {
		panic("renderer: NewWGPUMaterial requires a non-nil PassTarget")
	}
	m := &wgpuMaterialImpl{
		mu:       &sync.Mutex{},
		device:   device,
		queue:    queue,
		target:   target,
		color:    [4]float32{1, 1, 1, 1},
		label:    "Material",
		bindings: make(map[*WGPUPipeline]*uniformBinding),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.surface == nil {
		m.surface = material.MakeColor([4]float32{1, 1, 1, 1}, false, false)
	}
	return m
}

func (m *wgpuMaterialImpl) Render(pipeline mesh.Pipeline, modelToProjection, modelToCamera [16]float32, lights *light.Uniforms) error {
	u := GPUObjectUniform{
		ModelToProjection: modelToProjection,
		ModelToCamera:     modelToCamera,
		Color:             m.color,
		Shininess:         m.surface.Shininess(),
		Lights:            lights,
	}
	return m.bind(pipeline, u.Marshal())
}

func (m *wgpuMaterialImpl) RenderSkinned(pipeline mesh.Pipeline, cameraToProjection [16]float32, bones [][16]float32, lights *light.Uniforms) error {
	u := GPUSkinnedUniform{
		CameraToProjection: cameraToProjection,
		Color:              m.color,
		Shininess:          m.surface.Shininess(),
		Bones:              bones,
		Lights:             lights,
	}
	return m.bind(pipeline, u.Marshal())
}

func (m *wgpuMaterialImpl) bind(pipeline mesh.Pipeline, data []byte) error {
	p, ok := pipeline.(*WGPUPipeline)
	if !ok {
		return fmt.Errorf("%s: %w", m.label, ErrPipelineType)
	}
	pass, err := m.target.Pass()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	binding, err := m.bindingFor(p, len(data))
	if err != nil {
		return err
	}
	if err := m.queue.WriteBuffer(binding.buffer, 0, data); err != nil {
		return fmt.Errorf("%s: write uniforms: %w", m.label, err)
	}

	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, binding.bindGroup, nil)
	return nil
}

// uploadTextures creates the surface textures and the shared sampler once.
// Caller must hold the mutex.
func (m *wgpuMaterialImpl) uploadTextures() error {
	if m.sampler != nil {
		return nil
	}
	slots := surfaceTextures(m.surface)
	for _, t := range slots {
		if err := validateTexture(t); err != nil {
			return fmt.Errorf("%s: %w", m.label, err)
		}
	}

	views := make(map[uint32]*wgpu.TextureView, len(slots))
	var textures []*wgpu.Texture
	release := func() {
		for _, v := range views {
			v.Release()
		}
		for _, t := range textures {
			t.Release()
		}
	}

	for _, t := range slots {
		size := wgpu.Extent3D{
			Width:              t.data.Width,
			Height:             t.data.Height,
			DepthOrArrayLayers: 1,
		}
		tex, err := m.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         m.label + " " + t.slot + " Texture",
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension:     wgpu.TextureDimension2D,
			Size:          size,
			Format:        t.format,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			release()
			return fmt.Errorf("%s: create %s texture: %w", m.label, t.slot, err)
		}
		textures = append(textures, tex)

		err = m.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			t.data.Pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  t.data.Width * 4,
				RowsPerImage: t.data.Height,
			},
			&size,
		)
		if err != nil {
			release()
			return fmt.Errorf("%s: write %s texture: %w", m.label, t.slot, err)
		}

		view, err := tex.CreateView(nil)
		if err != nil {
			release()
			return fmt.Errorf("%s: %s texture view: %w", m.label, t.slot, err)
		}
		views[t.binding] = view
	}

	sampler, err := m.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         m.label + " Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		release()
		return fmt.Errorf("%s: create sampler: %w", m.label, err)
	}

	m.textures = textures
	m.views = views
	m.sampler = sampler
	return nil
}

// bindingFor returns the uniform buffer and bind group for p, creating them on first use.
// Caller must hold the mutex.
func (m *wgpuMaterialImpl) bindingFor(p *WGPUPipeline, size int) (*uniformBinding, error) {
	if b, ok := m.bindings[p]; ok {
		return b, nil
	}
	if err := m.uploadTextures(); err != nil {
		return nil, err
	}

	bufSize := uint64(max(size, p.uniformSize))
	buf, err := m.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.label + " " + p.name + " Uniform Buffer",
		Size:  bufSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create uniform buffer: %w", m.label, err)
	}

	entries := []wgpu.BindGroupEntry{
		{
			Binding: BindingUniform,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		},
	}
	for b := BindingDiffuse; b <= BindingBump; b++ {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     b,
			TextureView: m.views[b],
		})
	}
	entries = append(entries, wgpu.BindGroupEntry{
		Binding: BindingSampler,
		Sampler: m.sampler,
	})

	bindGroup, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   m.label + " " + p.name + " Bind Group",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("%s: create bind group: %w", m.label, err)
	}

	b := &uniformBinding{buffer: buf, bindGroup: bindGroup}
	m.bindings[p] = b
	return b, nil
}

// WGPUMaterialBuilderOption is a functional option for configuring a WebGPU material.
type WGPUMaterialBuilderOption func(*wgpuMaterialImpl)

// WithBaseColor sets the tint multiplied into the diffuse texture. Defaults to opaque white.
//
// Parameters:
//   - c: the RGBA base color
//
// Returns:
//   - WGPUMaterialBuilderOption: option function to apply
func WithBaseColor(c [4]float32) WGPUMaterialBuilderOption {
	return func(m *wgpuMaterialImpl) {
		m.color = c
	}
}

// WithMaterialLabel sets the label used for GPU resources and errors.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - WGPUMaterialBuilderOption: option function to apply
func WithMaterialLabel(label string) WGPUMaterialBuilderOption {
	return func(m *wgpuMaterialImpl) {
		m.label = label
	}
}

// WithSurface sets the surface whose textures and shininess the material binds.
//
// Parameters:
//   - s: the surface, for example from material.MakeColor
//
// Returns:
//   - WGPUMaterialBuilderOption: option function to apply
func WithSurface(s material.Surface) WGPUMaterialBuilderOption {
	return func(m *wgpuMaterialImpl) {
		m.surface = s
	}
}
