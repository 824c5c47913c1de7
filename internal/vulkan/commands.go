package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func (c *DeviceContext) BeginTransientCommands() (core1_0.CommandBuffer, error) {
	buffers, _, err := c.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return core1_0.CommandBuffer{}, errors.Wrap(err, "allocate transient command buffer")
	}

	buffer := buffers[0]
	_, err = c.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		c.deviceDriver.FreeCommandBuffers(buffer)
		return core1_0.CommandBuffer{}, errors.Wrap(err, "begin transient command buffer")
	}
	return buffer, nil
}

// EndTransientCommands ends, submits and waits for buffer, then frees it.
// The buffer is freed even when submission fails.
func (c *DeviceContext) EndTransientCommands(buffer core1_0.CommandBuffer) error {
	defer c.deviceDriver.FreeCommandBuffers(buffer)

	_, err := c.deviceDriver.EndCommandBuffer(buffer)
	if err != nil {
		return errors.Wrap(err, "end transient command buffer")
	}

	_, err = c.deviceDriver.QueueSubmit(c.graphicsQueue, nil,
		core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	)
	if err != nil {
		return errors.Wrap(err, "submit transient command buffer")
	}

	_, err = c.deviceDriver.QueueWaitIdle(c.graphicsQueue)
	return errors.Wrap(err, "wait for transient command buffer")
}

// RunTransient records fn into a one-shot command buffer and runs it to
// completion on the graphics queue.
func (c *DeviceContext) RunTransient(fn func(cmd core1_0.CommandBuffer) error) error {
	buffer, err := c.BeginTransientCommands()
	if err != nil {
		return err
	}

	err = fn(buffer)
	if err != nil {
		c.deviceDriver.EndCommandBuffer(buffer)
		c.deviceDriver.FreeCommandBuffers(buffer)
		return err
	}

	return c.EndTransientCommands(buffer)
}

func (c *DeviceContext) CopyBuffer(src, dst *Buffer, size int) error {
	return c.RunTransient(func(cmd core1_0.CommandBuffer) error {
		return c.deviceDriver.CmdCopyBuffer(cmd, src.Handle, dst.Handle,
			core1_0.BufferCopy{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      size,
			},
		)
	})
}

func (c *DeviceContext) CopyBufferToImage(src *Buffer, dst *Image) error {
	return c.RunTransient(func(cmd core1_0.CommandBuffer) error {
		return c.deviceDriver.CmdCopyBufferToImage(cmd, src.Handle, dst.Handle, core1_0.ImageLayoutTransferDstOptimal,
			core1_0.BufferImageCopy{
				BufferOffset:      0,
				BufferRowLength:   0,
				BufferImageHeight: 0,

				ImageSubresource: core1_0.ImageSubresourceLayers{
					AspectMask:     core1_0.ImageAspectColor,
					MipLevel:       0,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
				ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
				ImageExtent: core1_0.Extent3D{Width: dst.Width, Height: dst.Height, Depth: 1},
			},
		)
	})
}

type layoutBarrier struct {
	srcAccess, dstAccess core1_0.AccessFlags
	srcStage, dstStage   core1_0.PipelineStageFlags
}

// transitionBarrier returns the access masks and stages for the layout
// transitions texture uploads need.
func transitionBarrier(oldLayout, newLayout core1_0.ImageLayout) (layoutBarrier, error) {
	switch {
	case oldLayout == core1_0.ImageLayoutUndefined && newLayout == core1_0.ImageLayoutTransferDstOptimal:
		return layoutBarrier{
			srcAccess: 0,
			dstAccess: core1_0.AccessTransferWrite,
			srcStage:  core1_0.PipelineStageTopOfPipe,
			dstStage:  core1_0.PipelineStageTransfer,
		}, nil
	case oldLayout == core1_0.ImageLayoutTransferDstOptimal && newLayout == core1_0.ImageLayoutShaderReadOnlyOptimal:
		return layoutBarrier{
			srcAccess: core1_0.AccessTransferWrite,
			dstAccess: core1_0.AccessShaderRead,
			srcStage:  core1_0.PipelineStageTransfer,
			dstStage:  core1_0.PipelineStageFragmentShader,
		}, nil
	}

	return layoutBarrier{}, errors.Newf("unsupported layout transition: %s -> %s", oldLayout, newLayout)
}

func (c *DeviceContext) TransitionImageLayout(img *Image, oldLayout, newLayout core1_0.ImageLayout) error {
	barrier, err := transitionBarrier(oldLayout, newLayout)
	if err != nil {
		return err
	}

	return c.RunTransient(func(cmd core1_0.CommandBuffer) error {
		return c.deviceDriver.CmdPipelineBarrier(cmd, barrier.srcStage, barrier.dstStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
			{
				OldLayout:           oldLayout,
				NewLayout:           newLayout,
				SrcQueueFamilyIndex: -1,
				DstQueueFamilyIndex: -1,
				Image:               img.Handle,
				SubresourceRange: core1_0.ImageSubresourceRange{
					AspectMask:     core1_0.ImageAspectColor,
					BaseMipLevel:   0,
					LevelCount:     1,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
				SrcAccessMask: barrier.srcAccess,
				DstAccessMask: barrier.dstAccess,
			},
		})
	})
}
