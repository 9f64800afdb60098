package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuMeshImpl struct {
	target       *PassTarget
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
	skin         mesh.Skin
}

var _ mesh.Mesh = &wgpuMeshImpl{}

// NewWGPUMesh creates a mesh.Mesh drawing already uploaded buffers on the active pass.
//
// Parameters:
//   - target: the pass target to record into
//   - vertexBuffer: the interleaved Vertex buffer
//   - indexBuffer: the uint32 index buffer
//   - indexCount: the number of indices to draw
//   - skin: the skin binding, or nil for rigid geometry
//
// Returns:
//   - mesh.Mesh: the mesh
func NewWGPUMesh(target *PassTarget, vertexBuffer, indexBuffer *wgpu.Buffer, indexCount int, skin mesh.Skin) mesh.Mesh {
	if target == nil {
		panic("renderer: NewWGPUMesh requires a non-nil PassTarget")
	}
	return &wgpuMeshImpl{
		target:       target,
		vertexBuffer: vertexBuffer,
		indexBuffer:  indexBuffer,
		indexCount:   uint32(indexCount),
		skin:         skin,
	}
}

func (m *wgpuMeshImpl) Skin() mesh.Skin {
	return m.skin
}

func (m *wgpuMeshImpl) Draw() error {
	pass, err := m.target.Pass()
	if err != nil {
		return err
	}
	pass.SetVertexBuffer(0, m.vertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(m.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
	return nil
}

// UploadMesh creates vertex and index buffers for the geometry and wraps them in a mesh.Mesh.
//
// Parameters:
//   - device: the device creating the buffers
//   - queue: the queue receiving the data
//   - target: the pass target the mesh draws into
//   - label: the label prefix for the buffers
//   - vertices: the vertices
//   - indices: the triangle list indices
//   - skin: the skin binding, or nil for a rigid mesh
//
// Returns:
//   - mesh.Mesh: the uploaded mesh
//   - error: an error if a buffer could not be created or written
func UploadMesh(device *wgpu.Device, queue *wgpu.Queue, target *PassTarget, label string, vertices []Vertex, indices []uint32, skin mesh.Skin) (mesh.Mesh, error) {
	vertexData := MarshalVertices(vertices)
	indexData := common.SliceToBytes(indices)

	vb, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%s vertex buffer: %w", label, err)
	}
	if err := queue.WriteBuffer(vb, 0, vertexData); err != nil {
		releaseAll(vb)
		return nil, fmt.Errorf("%s vertex upload: %w", label, err)
	}

	ib, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		releaseAll(vb)
		return nil, fmt.Errorf("%s index buffer: %w", label, err)
	}
	if err := queue.WriteBuffer(ib, 0, indexData); err != nil {
		releaseAll(vb, ib)
		return nil, fmt.Errorf("%s index upload: %w", label, err)
	}

	return NewWGPUMesh(target, vb, ib, len(indices), skin), nil
}

type releaser interface {
	Release()
}

// releaseAll frees the buffers a failed upload already created.
func releaseAll(resources ...releaser) {
	for _, r := range resources {
		r.Release()
	}
}

// Cube returns a unit cube centered on the origin with per-face normals.
//
// Returns:
//   - []Vertex: 24 vertices
//   - []uint32: 36 indices, counter-clockwise
func Cube() ([]Vertex, []uint32) {
	faces := []struct {
		normal, u, v [3]float32
	}{
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for i := range p {
				p[i] = 0.5 * (f.normal[i] + c[0]*f.u[i] + c[1]*f.v[i])
			}
			vertices = append(vertices, Vertex{Position: p, Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
