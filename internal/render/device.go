package render

// Window is the part of the windowing system the frame loop drives.
type Window interface {
	Extent() Extent
	ShouldClose() bool
	PollEvents()
	// WaitEvents blocks until at least one window event arrives.
	WaitEvents()
	ResizeSignal() *ResizeSignal
}

// FrameSlot is one in-flight synchronization context: an image-acquired
// signal, a rendering-finished signal, a fence and the command buffer the
// fence guards.
type FrameSlot interface {
	Index() int
	// Wait blocks until the GPU has finished the slot's last submission.
	Wait() error
	// Reset unsignals the slot's fence ahead of a new submission.
	Reset() error
	Destroy()
}

// Surface is the chain of presentable images sized to the window.
type Surface interface {
	Extent() Extent
	ImageCount() int
	// Acquire requests the next image, signaling the slot's image-acquired
	// semaphore when it becomes available.
	Acquire(slot FrameSlot) (int, Status, error)
	// Present queues the image for display once the slot's rendering-finished
	// semaphore is signaled.
	Present(slot FrameSlot, image int) (Status, error)
	Destroy()
}

// Pipeline is a graphics pipeline whose viewport and scissor were baked
// against a surface extent.
type Pipeline interface {
	Extent() Extent
	Destroy()
}

// Device is the GPU side of the frame loop.
type Device interface {
	WaitIdle() error
	CreateFrameSlot(index int) (FrameSlot, error)
	CreateSurface(extent Extent) (Surface, error)
	CreatePipeline(surface Surface) (Pipeline, error)
	// Record re-records the slot's command buffer to draw into the image.
	Record(slot FrameSlot, surface Surface, image int, pipeline Pipeline) error
	// Submit queues the slot's command buffer, waiting on image-acquired and
	// signaling rendering-finished and the slot's fence.
	Submit(slot FrameSlot) error
}

// UniformWriter stores per-frame uniforms in the region owned by a slot.
type UniformWriter interface {
	WriteUniforms(slot int, ubo *UniformBufferObject) error
}
