package render

import (
	"fmt"
	"sync/atomic"
)

type Extent struct {
	Width, Height int
}

// Empty reports whether the extent has no area. Surfaces cannot be built
// against an empty extent.
func (e Extent) Empty() bool {
	return e.Width <= 0 || e.Height <= 0
}

func (e Extent) Aspect() float32 {
	if e.Height == 0 {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Status is the non-fatal outcome of an acquire or present call.
type Status int

const (
	StatusOK Status = iota
	StatusSuboptimal
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ResizeSignal is raised by the window when its framebuffer size changes and
// consumed by the renderer once per frame.
type ResizeSignal struct {
	raised atomic.Bool
}

func (s *ResizeSignal) Raise() {
	s.raised.Store(true)
}

// Take reports whether the signal was raised and clears it.
func (s *ResizeSignal) Take() bool {
	return s.raised.Swap(false)
}

func (s *ResizeSignal) Pending() bool {
	return s.raised.Load()
}

type Stats struct {
	Frames        int
	Rebuilds      int
	DroppedFrames int
}
