package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Bind group slots shared by the mesh, skybox and shadow shaders.
const (
	groupFrame  = 0
	groupObject = 1

	bindingFrame         = 0
	bindingLights        = 1
	bindingShadowData    = 2
	bindingShadowMap     = 3
	bindingShadowSampler = 4

	bindingSkyUniform = 0
	bindingSkyTexture = 1
	bindingSkySampler = 2
)

var errSurfaceNotConfigured = errors.New("surface not configured")

type wgpuRendererBackendImpl struct {
	mu  sync.Mutex
	log *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat        *wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	sampleCount          MSAASampleCount
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	library   map[string]shader.Shader
	modules   map[string]*wgpu.ShaderModule
	layouts   map[string]*wgpu.BindGroupLayout
	pipelines map[string]pipeline.Pipeline

	frameProvider      bind_group_provider.BindGroupProvider
	shadowPassProvider bind_group_provider.BindGroupProvider
	skyboxProvider     bind_group_provider.BindGroupProvider

	shadowTexture     *wgpu.Texture
	shadowView        *wgpu.TextureView
	shadowSize        int
	comparisonSampler *wgpu.Sampler

	skyTexture *wgpu.Texture
	skyView    *wgpu.TextureView
	skySampler *wgpu.Sampler

	meshes  map[model.Geometry]bind_group_provider.BindGroupProvider
	objects map[uint64]bind_group_provider.BindGroupProvider
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter and device. The calling
// goroutine is locked to its OS thread because GLFW and most drivers require surface work on
// the thread that created the window.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, log *zap.Logger) *wgpuRendererBackendImpl {
	runtime.LockOSThread()

	lib, err := shader.LoadLibrary()
	if err != nil {
		panic(fmt.Sprintf("renderer: shader library: %v", err))
	}

	b := &wgpuRendererBackendImpl{
		log:         log,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		library:     lib,
		modules:     make(map[string]*wgpu.ShaderModule),
		layouts:     make(map[string]*wgpu.BindGroupLayout),
		pipelines:   make(map[string]pipeline.Pipeline),
		meshes:      make(map[model.Geometry]bind_group_provider.BindGroupProvider),
		objects:     make(map[uint64]bind_group_provider.BindGroupProvider),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: request adapter: %v", err))
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: request device: %v", err))
	}
	b.device = d
	b.queue = d.GetQueue()
	return b
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if b.surfaceFormat == nil {
		b.surfaceFormat = &capabilities.Formats[0]
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()
	count := uint32(b.sampleCount)
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	if count > 1 {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(fmt.Sprintf("renderer: msaa texture: %v", err))
		}
		b.msaaTexture = tex
		if b.msaaTextureView, err = tex.CreateView(nil); err != nil {
			panic(fmt.Sprintf("renderer: msaa view: %v", err))
		}
	}

	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: depth texture: %v", err))
	}
	b.depthTexture = depth
	if b.depthTextureView, err = depth.CreateView(nil); err != nil {
		panic(fmt.Sprintf("renderer: depth view: %v", err))
	}

	storeOp := wgpu.StoreOpStore
	if count > 1 {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    b.msaaTextureView,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: storeOp,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if len(b.pipelines) == 0 {
		if err := b.initResources(); err != nil {
			panic(fmt.Sprintf("renderer: %v", err))
		}
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

// initResources compiles every pipeline and creates the frame, shadow-pass and skybox bind
// groups. It needs the surface format, so it runs on the first ConfigureSurface.
func (b *wgpuRendererBackendImpl) initResources() error {
	for _, p := range standardPipelines(b.library) {
		if err := b.registerPipeline(p); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.Key(), err)
		}
		b.pipelines[p.Key()] = p
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("comparison sampler: %w", err)
	}
	b.comparisonSampler = samp

	b.frameProvider = bind_group_provider.NewBindGroupProvider("Frame",
		bind_group_provider.WithSampler(bindingShadowSampler, samp))
	b.shadowPassProvider = bind_group_provider.NewBindGroupProvider("Shadow Pass")
	b.skyboxProvider = bind_group_provider.NewBindGroupProvider("Skybox")

	// a 1x1 map keeps the frame group valid while no light casts shadows
	if err := b.ensureShadowMap(1); err != nil {
		return err
	}
	return b.createBindGroup(b.shadowPassProvider, b.library[shader.KeyShadowVertex].BindGroupLayoutDescriptor(groupFrame))
}

func (b *wgpuRendererBackendImpl) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	// stages compiled from one WGSL file share a module
	key := s.Source()
	if m, ok := b.modules[key]; ok {
		return m, nil
	}
	m, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return nil, err
	}
	b.modules[key] = m
	return m, nil
}

// layout returns the cached GPU layout for desc so that pipelines and bind groups built from
// identical reflected descriptors are compatible.
func (b *wgpuRendererBackendImpl) layout(desc wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	key := layoutKey(desc)
	if l, ok := b.layouts[key]; ok {
		return l, nil
	}
	desc.Label = key
	l, err := b.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, err
	}
	b.layouts[key] = l
	return l, nil
}

func (b *wgpuRendererBackendImpl) registerPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	if vertexShader == nil {
		return errors.New("vertex shader must be set")
	}
	vs, err := b.shaderModule(vertexShader)
	if err != nil {
		return err
	}

	descriptors := vertexShader.BindGroupLayoutDescriptors()
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if fragmentShader != nil {
		descriptors = mergeBindGroupLayouts(descriptors, fragmentShader.BindGroupLayoutDescriptors())
	}
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range bindGroupLayouts {
		l, err := b.layout(descriptors[g])
		if err != nil {
			return fmt.Errorf("bind group layout %d: %w", g, err)
		}
		bindGroupLayouts[g] = l
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}
	depthFormat := wgpu.TextureFormatDepth24Plus

	if p.DepthOnly() {
		depthFormat = wgpu.TextureFormatDepth32Float
		desc.Multisample.Count = 1
	} else {
		fs, err := b.shaderModule(fragmentShader)
		if err != nil {
			return err
		}
		target := wgpu.ColorTargetState{
			Format:    *b.surfaceFormat,
			WriteMask: p.WriteMask(),
		}
		if p.BlendEnabled() {
			target.Blend = p.BlendState()
		}
		desc.Fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		}
	}

	desc.DepthStencil = &wgpu.DepthStencilState{
		Format:              depthFormat,
		DepthWriteEnabled:   p.DepthWriteEnabled(),
		DepthCompare:        depthCompare,
		DepthBias:           p.DepthBias(),
		DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
		StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}

	created, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

// createBindGroup builds the bind group of provider for desc, creating any missing uniform
// buffer at the reflected MinBindingSize. Texture and sampler bindings must already be set.
func (b *wgpuRendererBackendImpl) createBindGroup(provider bind_group_provider.BindGroupProvider, desc wgpu.BindGroupLayoutDescriptor) error {
	layout, err := b.layout(desc)
	if err != nil {
		return err
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, entry := range desc.Entries {
		binding := int(entry.Binding)
		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no view", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  entry.Buffer.MinBindingSize,
					Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Buffer: buf, Size: wgpu.WholeSize}
		}
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bg)
	return nil
}

// ensureShadowMap recreates the shadow depth texture when the requested size changes and
// rebuilds the frame bind group that samples it.
func (b *wgpuRendererBackendImpl) ensureShadowMap(size int) error {
	if size == b.shadowSize && b.shadowView != nil {
		return nil
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Shadow Depth Texture",
		Size:          wgpu.Extent3D{Width: uint32(size), Height: uint32(size), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("shadow depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("shadow depth view: %w", err)
	}

	b.frameProvider.SetTextureView(bindingShadowMap, view)
	if err := b.createBindGroup(b.frameProvider, b.library[shader.KeyMeshVertex].BindGroupLayoutDescriptor(groupFrame)); err != nil {
		view.Release()
		tex.Release()
		return err
	}

	b.releaseShadowMap()
	b.shadowTexture, b.shadowView, b.shadowSize = tex, view, size
	return nil
}

func (b *wgpuRendererBackendImpl) syncMesh(g model.Geometry, edges bool) (bind_group_provider.BindGroupProvider, error) {
	p, ok := b.meshes[g]
	if !ok {
		p = bind_group_provider.NewBindGroupProvider(common.Coalesce(g.Name(), "mesh"))
		b.meshes[g] = p
	}

	if p.Stale(g.Version()) {
		vertices, err := b.uploadBuffer(p.Label()+" Vertex Buffer", wgpu.BufferUsageVertex, interleaveVertices(g))
		if err != nil {
			return nil, err
		}
		indices, err := b.uploadBuffer(p.Label()+" Index Buffer", wgpu.BufferUsageIndex, common.SliceToBytes(g.Indices()))
		if err != nil {
			vertices.Release()
			return nil, err
		}
		p.SetMesh(vertices, indices, len(g.Indices()))
		p.SetEdges(nil, 0)
		p.MarkUploaded(g.Version())
		g.SetNeedsUpdate(false)
	}

	if edges && p.EdgeBuffer() == nil {
		edgeIndices := g.EdgeIndices()
		buf, err := b.uploadBuffer(p.Label()+" Edge Buffer", wgpu.BufferUsageIndex, common.SliceToBytes(edgeIndices))
		if err != nil {
			return nil, err
		}
		p.SetEdges(buf, len(edgeIndices))
	}
	return p, nil
}

func (b *wgpuRendererBackendImpl) uploadBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	size := max(uint64(len(data)+3)&^3, 4)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) syncObject(id uint64, uniform []byte) (bind_group_provider.BindGroupProvider, error) {
	p, ok := b.objects[id]
	if !ok {
		p = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Object %d", id))
		if err := b.createBindGroup(p, b.library[shader.KeyMeshVertex].BindGroupLayoutDescriptor(groupObject)); err != nil {
			return nil, err
		}
		b.objects[id] = p
	}
	b.queue.WriteBuffer(p.Buffer(0), 0, uniform)
	return p, nil
}

func (b *wgpuRendererBackendImpl) syncSkybox(pass *SkyboxPass) error {
	if b.skyboxProvider.Stale(pass.Version) {
		if err := b.uploadCube(pass.Cube); err != nil {
			return err
		}
		b.skyboxProvider.SetTextureView(bindingSkyTexture, b.skyView)
		b.skyboxProvider.SetSampler(bindingSkySampler, b.skySampler)
		if err := b.createBindGroup(b.skyboxProvider, b.library[shader.KeySkyboxVertex].BindGroupLayoutDescriptor(groupFrame)); err != nil {
			return err
		}
		b.skyboxProvider.MarkUploaded(pass.Version)
	}
	b.queue.WriteBuffer(b.skyboxProvider.Buffer(bindingSkyUniform), 0, pass.Uniform)
	return nil
}

func (b *wgpuRendererBackendImpl) uploadCube(cube *common.CubeTextureStagingData) error {
	if b.skySampler == nil {
		samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
			Label:         "Skybox Sampler",
			AddressModeU:  wgpu.AddressModeClampToEdge,
			AddressModeV:  wgpu.AddressModeClampToEdge,
			AddressModeW:  wgpu.AddressModeClampToEdge,
			MagFilter:     wgpu.FilterModeLinear,
			MinFilter:     wgpu.FilterModeLinear,
			MipmapFilter:  wgpu.MipmapFilterModeNearest,
			LodMaxClamp:   32,
			MaxAnisotropy: 1,
		})
		if err != nil {
			return fmt.Errorf("skybox sampler: %w", err)
		}
		b.skySampler = samp
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Skybox Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: cube.Size, Height: cube.Size, DepthOrArrayLayers: 6},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("skybox texture: %w", err)
	}

	for i, face := range cube.Faces {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{Z: uint32(i)},
				Aspect:   wgpu.TextureAspectAll,
			},
			face.Pixels,
			&wgpu.TextureDataLayout{
				BytesPerRow:  cube.Size * 4,
				RowsPerImage: cube.Size,
			},
			&wgpu.Extent3D{Width: cube.Size, Height: cube.Size, DepthOrArrayLayers: 1},
		)
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Skybox View",
		Format:          wgpu.TextureFormatRGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return fmt.Errorf("skybox view: %w", err)
	}

	if b.skyView != nil {
		b.skyView.Release()
	}
	if b.skyTexture != nil {
		b.skyTexture.Release()
	}
	b.skyTexture, b.skyView = tex, view
	return nil
}

type preparedDraw struct {
	pipeline *wgpu.RenderPipeline
	object   *wgpu.BindGroup
	vertices *wgpu.Buffer
	indices  *wgpu.Buffer
	count    int
}

// prepare uploads whatever the plan needs and resolves every draw to GPU handles, so the
// passes below only record commands.
func (b *wgpuRendererBackendImpl) prepare(plan *FramePlan) (main, shadow []preparedDraw, err error) {
	b.queue.WriteBuffer(b.frameProvider.Buffer(bindingFrame), 0, plan.Frame)
	b.queue.WriteBuffer(b.frameProvider.Buffer(bindingLights), 0, plan.Lights)
	b.queue.WriteBuffer(b.frameProvider.Buffer(bindingShadowData), 0, plan.ShadowData)

	seenObjects := make(map[uint64]bool, len(plan.Uniforms))
	for id, u := range plan.Uniforms {
		if _, err := b.syncObject(id, u); err != nil {
			return nil, nil, err
		}
		seenObjects[id] = true
	}
	seenMeshes := make(map[model.Geometry]bool)

	for _, item := range plan.Items {
		p, ok := b.pipelines[item.Pipeline]
		if !ok {
			return nil, nil, fmt.Errorf("unknown pipeline %q", item.Pipeline)
		}
		mesh, err := b.syncMesh(item.Geometry, item.Edges)
		if err != nil {
			return nil, nil, err
		}
		seenMeshes[item.Geometry] = true
		d := preparedDraw{
			pipeline: p.RenderPipeline(),
			object:   b.objects[item.ObjectID].BindGroup(),
			vertices: mesh.VertexBuffer(),
			indices:  mesh.IndexBuffer(),
			count:    mesh.IndexCount(),
		}
		if item.Edges {
			d.indices, d.count = mesh.EdgeBuffer(), mesh.EdgeIndexCount()
		}
		main = append(main, d)
	}

	if plan.Shadow != nil {
		if err := b.ensureShadowMap(plan.Shadow.MapSize); err != nil {
			return nil, nil, err
		}
		b.queue.WriteBuffer(b.shadowPassProvider.Buffer(0), 0, plan.Shadow.LightVP)
		for _, item := range plan.Shadow.Items {
			mesh, err := b.syncMesh(item.Geometry, false)
			if err != nil {
				return nil, nil, err
			}
			seenMeshes[item.Geometry] = true
			shadow = append(shadow, preparedDraw{
				pipeline: b.pipelines[item.Pipeline].RenderPipeline(),
				object:   b.objects[item.ObjectID].BindGroup(),
				vertices: mesh.VertexBuffer(),
				indices:  mesh.IndexBuffer(),
				count:    mesh.IndexCount(),
			})
		}
	}

	if plan.Skybox != nil {
		if err := b.syncSkybox(plan.Skybox); err != nil {
			return nil, nil, err
		}
	}

	b.evict(seenObjects, seenMeshes)
	return main, shadow, nil
}

// evict releases per-object and per-mesh resources not referenced this frame.
func (b *wgpuRendererBackendImpl) evict(objects map[uint64]bool, meshes map[model.Geometry]bool) {
	for id, p := range b.objects {
		if !objects[id] {
			p.Release()
			delete(b.objects, id)
		}
	}
	for g, p := range b.meshes {
		if !meshes[g] {
			p.Release()
			delete(b.meshes, g)
		}
	}
}

func (b *wgpuRendererBackendImpl) Execute(plan *FramePlan) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errSurfaceNotConfigured
	}

	mainDraws, shadowDraws, err := b.prepare(plan)
	if err != nil {
		return err
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	if plan.Shadow != nil {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            b.shadowView,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		})
		pass.SetBindGroup(groupFrame, b.shadowPassProvider.BindGroup(), nil)
		for _, d := range shadowDraws {
			drawIndexed(pass, d)
		}
		pass.End()
		pass.Release()
	}

	attachment := &b.renderPassDescriptor.ColorAttachments[0]
	if b.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}
	c := plan.ClearColor
	attachment.ClearValue = wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: 1}

	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	if plan.Skybox != nil {
		pass.SetPipeline(b.pipelines[PipelineSkybox].RenderPipeline())
		pass.SetBindGroup(groupFrame, b.skyboxProvider.BindGroup(), nil)
		pass.Draw(3, 1, 0, 0)
	}
	pass.SetBindGroup(groupFrame, b.frameProvider.BindGroup(), nil)
	for _, d := range mainDraws {
		drawIndexed(pass, d)
	}
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func drawIndexed(pass *wgpu.RenderPassEncoder, d preparedDraw) {
	if d.count == 0 {
		return
	}
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(groupObject, d.object, nil)
	pass.SetVertexBuffer(0, d.vertices, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(d.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(d.count), 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.evict(nil, nil)
	for _, p := range []bind_group_provider.BindGroupProvider{b.frameProvider, b.shadowPassProvider, b.skyboxProvider} {
		if p != nil {
			p.Release()
		}
	}
	b.releaseShadowMap()
	if b.skyView != nil {
		b.skyView.Release()
	}
	if b.skyTexture != nil {
		b.skyTexture.Release()
	}
	if b.skySampler != nil {
		b.skySampler.Release()
	}
	if b.comparisonSampler != nil {
		b.comparisonSampler.Release()
	}
	for _, p := range b.pipelines {
		if rp := p.RenderPipeline(); rp != nil {
			rp.Release()
		}
	}
	for _, l := range b.layouts {
		l.Release()
	}
	for _, m := range b.modules {
		m.Release()
	}
	b.releaseAttachments()
	if b.device != nil {
		b.device.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}

func (b *wgpuRendererBackendImpl) releaseShadowMap() {
	if b.shadowView != nil {
		b.shadowView.Release()
		b.shadowView = nil
	}
	if b.shadowTexture != nil {
		b.shadowTexture.Release()
		b.shadowTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

// mergeBindGroupLayouts unions the vertex and fragment descriptors per group, keeping the
// first entry seen for each binding and OR-ing stage visibility.
func mergeBindGroupLayouts(a, b map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, src := range []map[int]wgpu.BindGroupLayoutDescriptor{a, b} {
		for g, desc := range src {
			if merged[g] == nil {
				merged[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if prev, ok := merged[g][e.Binding]; ok {
					prev.Visibility |= e.Visibility
					merged[g][e.Binding] = prev
					continue
				}
				merged[g][e.Binding] = e
			}
		}
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(merged))
	for g, entries := range merged {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		out[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return out
}

// layoutKey renders the parts of a layout descriptor that affect compatibility.
func layoutKey(desc wgpu.BindGroupLayoutDescriptor) string {
	var sb strings.Builder
	for _, e := range desc.Entries {
		fmt.Fprintf(&sb, "%d:%d:%d/%d:%d:%d/%d/%t;",
			e.Binding, e.Visibility,
			e.Buffer.Type, e.Buffer.MinBindingSize,
			e.Sampler.Type,
			e.Texture.SampleType, e.Texture.ViewDimension, e.Texture.Multisampled)
	}
	return sb.String()
}
