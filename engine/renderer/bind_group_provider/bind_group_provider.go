package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	label string

	// GPU objects below are created by the renderer backend, never by callers.

	bindGroup    *wgpu.BindGroup
	buffers      map[int]*wgpu.Buffer
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	vertexBuffer   *wgpu.Buffer
	indexBuffer    *wgpu.Buffer
	indexCount     int
	edgeBuffer     *wgpu.Buffer
	edgeIndexCount int

	// version of the CPU data last uploaded, compared against geometry and background versions
	version  uint64
	uploaded bool
}

// BindGroupProvider holds the GPU resources behind one bind group or one mesh: uniform buffers
// keyed by binding, the texture views and samplers bound next to them, and for meshes the
// vertex, triangle index and edge index buffers.
//
// Buffers and the bind group are owned by the provider and freed by Release. Texture views and
// samplers are borrowed from the backend, which releases them itself.
type BindGroupProvider interface {
	// Label returns the debug label.
	Label() string

	// BindGroup returns the bind group, or nil before it is created.
	BindGroup() *wgpu.BindGroup

	// SetBindGroup replaces the bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the new bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// Buffer returns the uniform buffer at binding, or nil.
	Buffer(binding int) *wgpu.Buffer

	// SetBuffer stores the uniform buffer at binding, releasing any buffer it replaces.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// TextureView returns the texture view at binding, or nil.
	TextureView(binding int) *wgpu.TextureView

	// SetTextureView stores a borrowed texture view at binding.
	SetTextureView(binding int, tv *wgpu.TextureView)

	// Sampler returns the sampler at binding, or nil.
	Sampler(binding int) *wgpu.Sampler

	// SetSampler stores a borrowed sampler at binding.
	SetSampler(binding int, s *wgpu.Sampler)

	// VertexBuffer returns the interleaved vertex buffer of a mesh provider.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the triangle or line index buffer of a mesh provider.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices in IndexBuffer.
	IndexCount() int

	// EdgeBuffer returns the wireframe edge index buffer, or nil for meshes never drawn as wireframe.
	EdgeBuffer() *wgpu.Buffer

	// EdgeIndexCount returns the number of indices in EdgeBuffer.
	EdgeIndexCount() int

	// SetMesh replaces the mesh buffers, releasing the previous ones.
	//
	// Parameters:
	//   - vertices: the interleaved vertex buffer
	//   - indices: the index buffer
	//   - indexCount: the number of indices
	SetMesh(vertices, indices *wgpu.Buffer, indexCount int)

	// SetEdges replaces the edge index buffer, releasing the previous one.
	//
	// Parameters:
	//   - edges: the edge index buffer
	//   - count: the number of indices
	SetEdges(edges *wgpu.Buffer, count int)

	// Stale reports whether data at version still needs uploading.
	//
	// Parameters:
	//   - version: the current version of the CPU-side data
	//
	// Returns:
	//   - bool: true when nothing has been uploaded yet or the uploaded version differs
	Stale(version uint64) bool

	// MarkUploaded records version as the uploaded version.
	MarkUploaded(version uint64)

	// Release frees the buffers and the bind group.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: a debug label
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) EdgeBuffer() *wgpu.Buffer {
	return p.edgeBuffer
}

func (p *bindGroupProvider) EdgeIndexCount() int {
	return p.edgeIndexCount
}

func (p *bindGroupProvider) SetMesh(vertices, indices *wgpu.Buffer, indexCount int) {
	releaseBuffer(p.vertexBuffer, vertices)
	releaseBuffer(p.indexBuffer, indices)
	p.vertexBuffer = vertices
	p.indexBuffer = indices
	p.indexCount = indexCount
}

func (p *bindGroupProvider) SetEdges(edges *wgpu.Buffer, count int) {
	releaseBuffer(p.edgeBuffer, edges)
	p.edgeBuffer = edges
	p.edgeIndexCount = count
}

func (p *bindGroupProvider) Stale(version uint64) bool {
	return !p.uploaded || p.version != version
}

func (p *bindGroupProvider) MarkUploaded(version uint64) {
	p.version = version
	p.uploaded = true
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.textureViews)
	clear(p.samplers)

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	p.SetMesh(nil, nil, 0)
	p.SetEdges(nil, 0)
	p.uploaded = false
}

func releaseBuffer(old, replacement *wgpu.Buffer) {
	if old != nil && old != replacement {
		old.Release()
	}
}
