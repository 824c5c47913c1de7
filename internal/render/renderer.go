package render

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
)

const DefaultFramesInFlight = 2

type Options struct {
	// FramesInFlight bounds how many frames may have GPU work outstanding.
	FramesInFlight int
	// Clock is a monotonic time source; defaults to hrtime.Now.
	Clock func() time.Duration
}

// Renderer runs the acquire, record, submit and present loop and owns the
// presentation surface, rebuilding it whenever it goes stale.
type Renderer struct {
	device   Device
	window   Window
	uniforms UniformWriter

	clock func() time.Duration
	start time.Duration

	slots          []FrameSlot
	imagesInFlight []int
	surface        Surface
	pipeline       Pipeline
	imageCount     int
	built          bool

	frame int
	stats Stats
}

func New(device Device, window Window, uniforms UniformWriter, opts Options) (*Renderer, error) {
	if opts.FramesInFlight < 1 {
		opts.FramesInFlight = DefaultFramesInFlight
	}
	if opts.Clock == nil {
		opts.Clock = hrtime.Now
	}

	r := &Renderer{
		device:   device,
		window:   window,
		uniforms: uniforms,
		clock:    opts.Clock,
	}

	for i := 0; i < opts.FramesInFlight; i++ {
		slot, err := device.CreateFrameSlot(i)
		if err != nil {
			r.Destroy()
			return nil, errors.Wrapf(err, "create frame slot %d", i)
		}
		r.slots = append(r.slots, slot)
	}

	err := r.recreateSurface()
	if err != nil {
		r.Destroy()
		return nil, err
	}

	r.start = r.clock()
	return r, nil
}

func (r *Renderer) Surface() Surface {
	return r.surface
}

func (r *Renderer) Pipeline() Pipeline {
	return r.pipeline
}

func (r *Renderer) Stats() Stats {
	return r.stats
}

// Run pumps window events and draws until the window asks to close, then
// waits for outstanding GPU work.
func (r *Renderer) Run() error {
	for !r.window.ShouldClose() {
		r.window.PollEvents()
		if r.window.ShouldClose() {
			break
		}

		err := r.DrawFrame()
		if err != nil {
			return err
		}
	}

	return errors.Wrap(r.device.WaitIdle(), "drain device")
}

// DrawFrame renders one frame into the next presentable image. A stale
// surface at acquire time drops the frame; a stale surface or a resize at
// present time rebuilds after the frame has been queued.
func (r *Renderer) DrawFrame() error {
	if r.surface == nil {
		return r.recreateSurface()
	}

	slot := r.slots[r.frame%len(r.slots)]

	// The slot's image acquired semaphore may still have a pending wait from
	// its last submission until the fence signals.
	err := slot.Wait()
	if err != nil {
		return errors.Wrapf(err, "wait for frame slot %d", slot.Index())
	}

	image, status, err := r.surface.Acquire(slot)
	if err != nil {
		return presentationError(err, "acquire image for frame slot %d", slot.Index())
	}
	if status == StatusOutOfDate {
		r.stats.DroppedFrames++
		return r.recreateSurface()
	}
	rebuild := status == StatusSuboptimal

	err = r.waitForImage(slot, image)
	if err != nil {
		return err
	}

	ubo := ComputeUniforms(r.clock()-r.start, r.surface.Extent())
	err = r.uniforms.WriteUniforms(slot.Index(), &ubo)
	if err != nil {
		return errors.Wrapf(err, "write uniforms for frame slot %d", slot.Index())
	}

	err = slot.Reset()
	if err != nil {
		return errors.Wrapf(err, "reset frame slot %d", slot.Index())
	}

	err = r.device.Record(slot, r.surface, image, r.pipeline)
	if err != nil {
		return errors.Wrapf(err, "record frame slot %d", slot.Index())
	}

	err = r.device.Submit(slot)
	if err != nil {
		return presentationError(err, "submit frame slot %d", slot.Index())
	}

	status, err = r.surface.Present(slot, image)
	if err != nil {
		return presentationError(err, "present image %d", image)
	}

	r.frame++
	r.stats.Frames++

	if status != StatusOK || r.window.ResizeSignal().Take() || rebuild {
		return r.recreateSurface()
	}
	return nil
}

// waitForImage blocks until whichever other slot last rendered into image
// has finished with it.
func (r *Renderer) waitForImage(slot FrameSlot, image int) error {
	if image < 0 || image >= len(r.imagesInFlight) {
		return presentationError(errors.Newf("image index %d out of range", image), "acquire")
	}

	previous := r.imagesInFlight[image]
	if previous >= 0 && previous != slot.Index() {
		err := r.slots[previous].Wait()
		if err != nil {
			return errors.Wrapf(err, "wait for frame slot %d holding image %d", previous, image)
		}
	}
	r.imagesInFlight[image] = slot.Index()

	return nil
}

// recreateSurface tears down the surface and pipeline and builds them again
// at the window's current extent, waiting out a minimized window.
func (r *Renderer) recreateSurface() error {
	log := Logger()

	err := r.device.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "wait for device idle")
	}

	r.releaseSurface()

	extent := r.window.Extent()
	for extent.Empty() {
		if r.window.ShouldClose() {
			return nil
		}
		r.window.WaitEvents()
		extent = r.window.Extent()
	}

	surface, err := r.device.CreateSurface(extent)
	if err != nil {
		return err
	}
	r.surface = surface

	pipeline, err := r.device.CreatePipeline(surface)
	if err != nil {
		return errors.Wrap(err, "create graphics pipeline")
	}
	r.pipeline = pipeline

	count := surface.ImageCount()
	if r.imageCount == 0 {
		r.imageCount = count
	} else if count != r.imageCount {
		log.Warn("swapchain image count changed", "negotiated", r.imageCount, "got", count)
	}

	r.imagesInFlight = make([]int, count)
	for i := range r.imagesInFlight {
		r.imagesInFlight[i] = -1
	}

	// The new surface already matches the latest size.
	r.window.ResizeSignal().Take()

	if r.built {
		r.stats.Rebuilds++
		log.Info("presentation surface rebuilt", "extent", surface.Extent(), "images", count)
	} else {
		log.Info("presentation surface created", "extent", surface.Extent(), "images", count)
	}
	r.built = true

	return nil
}

func (r *Renderer) releaseSurface() {
	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}

	if r.surface != nil {
		r.surface.Destroy()
		r.surface = nil
	}
}

// Destroy releases the surface and frame slots. The caller must have waited
// for the device to go idle.
func (r *Renderer) Destroy() {
	r.releaseSurface()

	for _, slot := range r.slots {
		slot.Destroy()
	}
	r.slots = nil
}
