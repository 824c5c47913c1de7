package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// FrameSlot holds the synchronization objects and command buffer of one
// frame in flight.
type FrameSlot struct {
	driver core1_0.CoreDeviceDriver
	index  int

	imageAcquired  core1_0.Semaphore
	renderFinished core1_0.Semaphore
	inFlight       core1_0.Fence
	commandBuffer  core1_0.CommandBuffer
}

func (c *DeviceContext) createFrameSlot(index int) (*FrameSlot, error) {
	s := &FrameSlot{driver: c.deviceDriver, index: index}

	var err error
	s.imageAcquired, _, err = c.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		s.Destroy()
		return nil, errors.Wrap(err, "create image acquired semaphore")
	}

	s.renderFinished, _, err = c.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		s.Destroy()
		return nil, errors.Wrap(err, "create render finished semaphore")
	}

	// Signaled so the first wait on a fresh slot returns immediately.
	s.inFlight, _, err = c.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{
		Flags: core1_0.FenceCreateSignaled,
	})
	if err != nil {
		s.Destroy()
		return nil, errors.Wrap(err, "create in flight fence")
	}

	buffers, _, err := c.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		s.Destroy()
		return nil, errors.Wrap(err, "allocate command buffer")
	}
	s.commandBuffer = buffers[0]

	return s, nil
}

func (s *FrameSlot) Index() int {
	return s.index
}

// Wait blocks until the slot's last submission has completed.
func (s *FrameSlot) Wait() error {
	_, err := s.driver.WaitForFences(true, common.NoTimeout, s.inFlight)
	return err
}

func (s *FrameSlot) Reset() error {
	_, err := s.driver.ResetFences(s.inFlight)
	return err
}

func (s *FrameSlot) Destroy() {
	if s.commandBuffer.Initialized() {
		s.driver.FreeCommandBuffers(s.commandBuffer)
		s.commandBuffer = core1_0.CommandBuffer{}
	}

	if s.inFlight.Initialized() {
		s.driver.DestroyFence(s.inFlight, nil)
		s.inFlight = core1_0.Fence{}
	}

	if s.renderFinished.Initialized() {
		s.driver.DestroySemaphore(s.renderFinished, nil)
		s.renderFinished = core1_0.Semaphore{}
	}

	if s.imageAcquired.Initialized() {
		s.driver.DestroySemaphore(s.imageAcquired, nil)
		s.imageAcquired = core1_0.Semaphore{}
	}
}
