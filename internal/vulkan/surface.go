package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// PresentableImage is one swapchain image with the attachments and
// framebuffer that render into it.
type PresentableImage struct {
	Image       core1_0.Image
	View        core1_0.ImageView
	Depth       *Image
	Framebuffer core1_0.Framebuffer
}

// Surface is the swapchain with its render pass and per-image resources. It
// is rebuilt whole whenever the window changes size.
type Surface struct {
	ctx *DeviceContext

	swapchain   khr_swapchain.Swapchain
	format      khr_surface.SurfaceFormat
	presentMode khr_surface.PresentMode
	extent      core1_0.Extent2D
	renderPass  core1_0.RenderPass
	images      []PresentableImage
}

type surfaceOptions struct {
	extent      render.Extent
	imageCount  int
	presentMode string
}

func (c *DeviceContext) createSurface(opts surfaceOptions) (*Surface, error) {
	support, err := c.querySurfaceSupport(c.physicalDevice)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "query surface support"), render.ErrSurfaceCreation)
	}
	if len(support.formats) == 0 || len(support.presentModes) == 0 {
		return nil, errors.Mark(errors.Newf("surface offers %d formats and %d present modes", len(support.formats), len(support.presentModes)), render.ErrSurfaceCreation)
	}

	s := &Surface{
		ctx:         c,
		format:      chooseSurfaceFormat(support.formats),
		presentMode: choosePresentMode(support.presentModes, opts.presentMode),
		extent:      chooseExtent(support.capabilities, opts.extent),
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"create swapchain", func() error { return s.createSwapchain(support.capabilities, opts.imageCount) }},
		{"create render pass", s.createRenderPass},
		{"create presentable images", s.createPresentableImages},
	}

	for _, step := range steps {
		err = step.fn()
		if err != nil {
			s.Destroy()
			return nil, errors.Mark(errors.Wrap(err, step.name), render.ErrSurfaceCreation)
		}
	}

	return s, nil
}

func (s *Surface) createSwapchain(capabilities *khr_surface.SurfaceCapabilities, negotiated int) error {
	c := s.ctx

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int

	if *c.families.graphics != *c.families.present {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, *c.families.graphics, *c.families.present)
	}

	swapchain, _, err := c.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: c.windowSurface,

		MinImageCount:    chooseImageCount(capabilities, negotiated),
		ImageFormat:      s.format.Format,
		ImageColorSpace:  s.format.ColorSpace,
		ImageExtent:      s.extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    s.presentMode,
		Clipped:        true,
	})
	if err != nil {
		return err
	}

	s.swapchain = swapchain
	return nil
}

func (s *Surface) createRenderPass() error {
	depthFormat, err := s.ctx.FindDepthFormat()
	if err != nil {
		return err
	}

	s.renderPass, _, err = s.ctx.deviceDriver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         s.format.Format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
			{
				Format:         depthFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpDontCare,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    core1_0.ImageLayoutDepthStencilAttachmentOptimal,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
				DepthStencilAttachment: &core1_0.AttachmentReference{
					Attachment: 1,
					Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				DstAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,
			},
		},
	})
	return err
}

func (s *Surface) createPresentableImages() error {
	c := s.ctx

	images, _, err := c.swapchainExtension.GetSwapchainImages(s.swapchain)
	if err != nil {
		return err
	}

	depthFormat, err := c.FindDepthFormat()
	if err != nil {
		return err
	}

	for _, image := range images {
		presentable := PresentableImage{Image: image}

		presentable.View, err = c.createImageView(image, s.format.Format, core1_0.ImageAspectColor)
		if err != nil {
			return err
		}
		s.images = append(s.images, presentable)
		p := &s.images[len(s.images)-1]

		p.Depth, err = c.CreateImage(ImageOptions{
			Width:      s.extent.Width,
			Height:     s.extent.Height,
			Format:     depthFormat,
			Tiling:     core1_0.ImageTilingOptimal,
			Usage:      core1_0.ImageUsageDepthStencilAttachment,
			Properties: core1_0.MemoryPropertyDeviceLocal,
			Aspect:     core1_0.ImageAspectDepth,
		})
		if err != nil {
			return errors.Wrap(err, "create depth attachment")
		}

		p.Framebuffer, _, err = c.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: s.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				p.View,
				p.Depth.View,
			},
			Width:  s.extent.Width,
			Height: s.extent.Height,
		})
		if err != nil {
			return errors.Wrap(err, "create framebuffer")
		}
	}

	return nil
}

func (s *Surface) Extent() render.Extent {
	return render.Extent{Width: s.extent.Width, Height: s.extent.Height}
}

func (s *Surface) ImageCount() int {
	return len(s.images)
}

func (s *Surface) Images() []PresentableImage {
	return s.images
}

func (s *Surface) RenderPass() core1_0.RenderPass {
	return s.renderPass
}

// statusFromResult separates the stale-swapchain results, which call for a
// rebuild, from real failures.
func statusFromResult(res common.VkResult, err error) (render.Status, error) {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return render.StatusOutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return render.StatusSuboptimal, nil
	}

	return render.StatusOK, err
}

// Acquire takes the next image, signaling the slot's image acquired
// semaphore once it is ready.
func (s *Surface) Acquire(slot render.FrameSlot) (int, render.Status, error) {
	fs := slot.(*FrameSlot)

	imageIndex, res, err := s.ctx.swapchainExtension.AcquireNextImage(s.swapchain, common.NoTimeout, &fs.imageAcquired, nil)
	status, err := statusFromResult(res, err)
	return imageIndex, status, err
}

// Present queues image for display once the slot's rendering has finished.
func (s *Surface) Present(slot render.FrameSlot, image int) (render.Status, error) {
	fs := slot.(*FrameSlot)

	res, err := s.ctx.swapchainExtension.QueuePresent(s.ctx.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{fs.renderFinished},
		Swapchains:     []khr_swapchain.Swapchain{s.swapchain},
		ImageIndices:   []int{image},
	})
	return statusFromResult(res, err)
}

func (s *Surface) Destroy() {
	driver := s.ctx.deviceDriver

	for _, image := range s.images {
		if image.Framebuffer.Initialized() {
			driver.DestroyFramebuffer(image.Framebuffer, nil)
		}
		if image.Depth != nil {
			image.Depth.Destroy()
		}
		if image.View.Initialized() {
			driver.DestroyImageView(image.View, nil)
		}
	}
	s.images = nil

	if s.renderPass.Initialized() {
		driver.DestroyRenderPass(s.renderPass, nil)
		s.renderPass = core1_0.RenderPass{}
	}

	if s.swapchain.Initialized() {
		s.ctx.swapchainExtension.DestroySwapchain(s.swapchain, nil)
		s.swapchain = khr_swapchain.Swapchain{}
	}
}
