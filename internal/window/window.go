package window

import (
	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/veandco/go-sdl2/sdl"
)

// Window is a resizable SDL window with a Vulkan-capable drawable. All
// methods must be called from the thread that created it.
type Window struct {
	window  *sdl.Window
	resize  render.ResizeSignal
	closing bool
}

func New(title string, width, height int) (*Window, error) {
	err := sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return nil, errors.Wrap(err, "init sdl video")
	}

	w, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{window: w}, nil
}

func (w *Window) SDL() *sdl.Window {
	return w.window
}

// Extent is the drawable size in pixels, or zero while minimized.
func (w *Window) Extent() render.Extent {
	if w.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return render.Extent{}
	}

	width, height := w.window.VulkanGetDrawableSize()
	return render.Extent{Width: int(width), Height: int(height)}
}

func (w *Window) ShouldClose() bool {
	return w.closing
}

func (w *Window) ResizeSignal() *render.ResizeSignal {
	return &w.resize
}

func (w *Window) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

// WaitEvents blocks until at least one event arrives, then drains the queue.
func (w *Window) WaitEvents() {
	event := sdl.WaitEvent()
	if event != nil {
		w.handle(event)
	}
	w.PollEvents()
}

func (w *Window) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		w.closing = true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			w.closing = true
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_RESTORED:
			w.resize.Raise()
		}
	}
}

func (w *Window) Destroy() {
	if w.window != nil {
		_ = w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
