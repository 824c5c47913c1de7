package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/content"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/vkngwrapper/core/v3/core1_0"
)

var clearColor = core1_0.ClearValueFloat{0.1, 0.1, 0.1, 1}

type BackendOptions struct {
	FramesInFlight    int
	PresentMode       string
	PipelineCachePath string
}

// Backend drives the device for the frame renderer. It owns every resource
// that outlives a surface rebuild: geometry, uniforms, texture, descriptor
// sets, pipeline layout and pipeline cache.
type Backend struct {
	ctx  *DeviceContext
	opts BackendOptions

	shaders     Shaders
	geometry    *GeometryBuffer
	uniforms    *UniformBuffers
	texture     *Texture
	descriptors *Descriptors
	layout      core1_0.PipelineLayout
	cache       *PipelineCache

	// imageCount is the swapchain size negotiated by the first surface.
	imageCount int
}

func NewBackend(ctx *DeviceContext, assets *content.Assets, opts BackendOptions) (*Backend, error) {
	if opts.FramesInFlight < 1 {
		opts.FramesInFlight = render.DefaultFramesInFlight
	}

	b := &Backend{
		ctx:  ctx,
		opts: opts,
		shaders: Shaders{
			Vertex:   assets.VertexShader,
			Fragment: assets.FragmentShader,
		},
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"upload geometry", func() (err error) {
			b.geometry, err = ctx.NewGeometryBuffer(assets.Mesh)
			return err
		}},
		{"create uniform buffers", func() (err error) {
			b.uniforms, err = ctx.NewUniformBuffers(opts.FramesInFlight)
			return err
		}},
		{"upload texture", func() (err error) {
			b.texture, err = ctx.NewTexture(assets.Texture)
			return err
		}},
		{"create descriptor sets", func() (err error) {
			b.descriptors, err = ctx.NewDescriptors(b.uniforms, b.texture)
			return err
		}},
		{"create pipeline layout", b.createPipelineLayout},
		{"open pipeline cache", func() (err error) {
			b.cache, err = ctx.OpenPipelineCache(opts.PipelineCachePath)
			return err
		}},
	}

	for _, step := range steps {
		err := step.fn()
		if err != nil {
			b.Destroy()
			return nil, errors.Wrap(err, step.name)
		}
	}

	return b, nil
}

func (b *Backend) createPipelineLayout() error {
	var err error
	b.layout, _, err = b.ctx.deviceDriver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{
			b.descriptors.Layout(),
		},
	})
	return err
}

// Uniforms is where the frame renderer writes each slot's uniforms.
func (b *Backend) Uniforms() render.UniformWriter {
	return b.uniforms
}

func (b *Backend) WaitIdle() error {
	return b.ctx.WaitIdle()
}

func (b *Backend) CreateFrameSlot(index int) (render.FrameSlot, error) {
	return b.ctx.createFrameSlot(index)
}

func (b *Backend) CreateSurface(extent render.Extent) (render.Surface, error) {
	surface, err := b.ctx.createSurface(surfaceOptions{
		extent:      extent,
		imageCount:  b.imageCount,
		presentMode: b.opts.PresentMode,
	})
	if err != nil {
		return nil, err
	}

	if b.imageCount == 0 {
		b.imageCount = surface.ImageCount()
		render.Logger().Debug("swapchain negotiated",
			"images", b.imageCount,
			"format", surface.format.Format,
			"presentMode", surface.presentMode)
	}

	return surface, nil
}

func (b *Backend) CreatePipeline(surface render.Surface) (render.Pipeline, error) {
	return b.ctx.createPipeline(surface.(*Surface), b.layout, b.cache, b.shaders)
}

// Record re-records the slot's command buffer to draw the mesh into image.
func (b *Backend) Record(slot render.FrameSlot, surface render.Surface, image int, pipeline render.Pipeline) error {
	fs := slot.(*FrameSlot)
	s := surface.(*Surface)
	p := pipeline.(*Pipeline)
	driver := b.ctx.deviceDriver
	buffer := fs.commandBuffer

	if image < 0 || image >= len(s.images) {
		return errors.Newf("image index %d out of range for %d images", image, len(s.images))
	}

	_, err := driver.ResetCommandBuffer(buffer, 0)
	if err != nil {
		return errors.Wrap(err, "reset command buffer")
	}

	_, err = driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return errors.Wrap(err, "begin command buffer")
	}

	err = driver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  s.renderPass,
			Framebuffer: s.images[image].Framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: s.extent,
			},
			ClearValues: []core1_0.ClearValue{
				clearColor,
				core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0},
			},
		})
	if err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, p.handle)
	driver.CmdBindVertexBuffers(buffer, 0, []core1_0.Buffer{b.geometry.vertices.Handle}, []int{0})
	driver.CmdBindIndexBuffer(buffer, b.geometry.indices.Handle, 0, b.geometry.IndexType())
	driver.CmdBindDescriptorSets(buffer, core1_0.PipelineBindPointGraphics, b.layout, 0, []core1_0.DescriptorSet{
		b.descriptors.Set(fs.index),
	}, nil)
	driver.CmdDrawIndexed(buffer, b.geometry.IndexCount(), 1, 0, 0, 0)
	driver.CmdEndRenderPass(buffer)

	_, err = driver.EndCommandBuffer(buffer)
	return errors.Wrap(err, "end command buffer")
}

// Submit queues the slot's commands behind its image acquired semaphore and
// signals its render finished semaphore and fence on completion.
func (b *Backend) Submit(slot render.FrameSlot) error {
	fs := slot.(*FrameSlot)

	_, err := b.ctx.deviceDriver.QueueSubmit(b.ctx.graphicsQueue, &fs.inFlight,
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{fs.imageAcquired},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{fs.commandBuffer},
			SignalSemaphores: []core1_0.Semaphore{fs.renderFinished},
		},
	)
	return err
}

// Destroy saves the pipeline cache and releases the backend's resources.
// The device must be idle.
func (b *Backend) Destroy() {
	if b.cache != nil {
		err := b.cache.Save()
		if err != nil {
			render.Logger().Warn("pipeline cache not saved", "error", err)
		}
		b.cache.Destroy()
		b.cache = nil
	}

	if b.layout.Initialized() {
		b.ctx.deviceDriver.DestroyPipelineLayout(b.layout, nil)
		b.layout = core1_0.PipelineLayout{}
	}

	if b.descriptors != nil {
		b.descriptors.Destroy()
		b.descriptors = nil
	}

	if b.texture != nil {
		b.texture.Destroy()
		b.texture = nil
	}

	if b.uniforms != nil {
		b.uniforms.Destroy()
		b.uniforms = nil
	}

	if b.geometry != nil {
		b.geometry.Destroy()
		b.geometry = nil
	}
}

var (
	_ render.Device        = (*Backend)(nil)
	_ render.Surface       = (*Surface)(nil)
	_ render.Pipeline      = (*Pipeline)(nil)
	_ render.FrameSlot     = (*FrameSlot)(nil)
	_ render.UniformWriter = (*UniformBuffers)(nil)
)
