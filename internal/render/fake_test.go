package render

import (
	"github.com/cockroachdb/errors"
)

// fakeGPU executes submissions in queue order. Work is only retired when a
// fence wait asks for it, which is the latest point a real GPU could finish.
type fakeGPU struct {
	imageCount int

	acquireResults []fakeResult
	presentResults []fakeResult
	submitErr      error

	queue     []int
	pending   map[int]int
	nextImage int

	surfaces  []*fakeSurface
	pipelines []*fakePipeline
	uniforms  []UniformBufferObject
	events    []string

	idleWaits         int
	submits           int
	maxPending        int
	recordedWhileBusy []int
	acquiredWhileBusy []int
	destroyedSlots    int
	uniformWhileBusy  []int
}

type fakeResult struct {
	status Status
	err    error
}

func newFakeGPU(imageCount int) *fakeGPU {
	return &fakeGPU{
		imageCount: imageCount,
		pending:    make(map[int]int),
	}
}

func (g *fakeGPU) busy(slot int) bool {
	return g.pending[slot] > 0
}

// retire completes queued work up to and including the slot's last submission.
func (g *fakeGPU) retire(slot int) {
	last := -1
	for i, s := range g.queue {
		if s == slot {
			last = i
		}
	}
	for _, s := range g.queue[:last+1] {
		g.pending[s]--
	}
	g.queue = g.queue[last+1:]
}

func (g *fakeGPU) WaitIdle() error {
	g.idleWaits++
	for _, s := range g.queue {
		g.pending[s]--
	}
	g.queue = nil
	return nil
}

func (g *fakeGPU) CreateFrameSlot(index int) (FrameSlot, error) {
	return &fakeSlot{gpu: g, index: index}, nil
}

func (g *fakeGPU) CreateSurface(extent Extent) (Surface, error) {
	if extent.Empty() {
		return nil, errors.Mark(errors.Newf("empty extent %s", extent), ErrSurfaceCreation)
	}
	s := &fakeSurface{gpu: g, extent: extent, images: g.imageCount}
	g.surfaces = append(g.surfaces, s)
	g.events = append(g.events, "surface")
	return s, nil
}

func (g *fakeGPU) CreatePipeline(surface Surface) (Pipeline, error) {
	p := &fakePipeline{extent: surface.Extent()}
	g.pipelines = append(g.pipelines, p)
	return p, nil
}

func (g *fakeGPU) Record(slot FrameSlot, surface Surface, image int, pipeline Pipeline) error {
	if g.busy(slot.Index()) {
		g.recordedWhileBusy = append(g.recordedWhileBusy, slot.Index())
	}
	g.events = append(g.events, "record")
	return nil
}

func (g *fakeGPU) Submit(slot FrameSlot) error {
	if g.submitErr != nil {
		return g.submitErr
	}
	g.submits++
	g.queue = append(g.queue, slot.Index())
	g.pending[slot.Index()]++
	if len(g.queue) > g.maxPending {
		g.maxPending = len(g.queue)
	}
	g.events = append(g.events, "submit")
	return nil
}

func (g *fakeGPU) WriteUniforms(slot int, ubo *UniformBufferObject) error {
	if g.busy(slot) {
		g.uniformWhileBusy = append(g.uniformWhileBusy, slot)
	}
	g.uniforms = append(g.uniforms, *ubo)
	return nil
}

type fakeSlot struct {
	gpu   *fakeGPU
	index int
}

func (s *fakeSlot) Index() int { return s.index }

func (s *fakeSlot) Wait() error {
	s.gpu.retire(s.index)
	return nil
}

func (s *fakeSlot) Reset() error { return nil }

func (s *fakeSlot) Destroy() { s.gpu.destroyedSlots++ }

type fakeSurface struct {
	gpu       *fakeGPU
	extent    Extent
	images    int
	destroyed bool
}

func (s *fakeSurface) Extent() Extent  { return s.extent }
func (s *fakeSurface) ImageCount() int { return s.images }

func (s *fakeSurface) Acquire(slot FrameSlot) (int, Status, error) {
	g := s.gpu
	if g.busy(slot.Index()) {
		g.acquiredWhileBusy = append(g.acquiredWhileBusy, slot.Index())
	}
	g.events = append(g.events, "acquire")
	if len(g.acquireResults) > 0 {
		res := g.acquireResults[0]
		g.acquireResults = g.acquireResults[1:]
		if res.err != nil || res.status == StatusOutOfDate {
			return 0, res.status, res.err
		}
		image := g.nextImage
		g.nextImage = (g.nextImage + 1) % s.images
		return image, res.status, nil
	}
	image := g.nextImage
	g.nextImage = (g.nextImage + 1) % s.images
	return image, StatusOK, nil
}

func (s *fakeSurface) Present(slot FrameSlot, image int) (Status, error) {
	g := s.gpu
	g.events = append(g.events, "present")
	if len(g.presentResults) > 0 {
		res := g.presentResults[0]
		g.presentResults = g.presentResults[1:]
		return res.status, res.err
	}
	return StatusOK, nil
}

func (s *fakeSurface) Destroy() {
	s.destroyed = true
	s.gpu.nextImage = 0
}

type fakePipeline struct {
	extent    Extent
	destroyed bool
}

func (p *fakePipeline) Extent() Extent { return p.extent }
func (p *fakePipeline) Destroy()       { p.destroyed = true }

type fakeWindow struct {
	extent     Extent
	resize     ResizeSignal
	polls      int
	closeAfter int
	waits      int
	// waitExtents is applied one entry per WaitEvents call.
	waitExtents []Extent
}

func (w *fakeWindow) Extent() Extent { return w.extent }

func (w *fakeWindow) ShouldClose() bool {
	return w.closeAfter > 0 && w.polls >= w.closeAfter
}

func (w *fakeWindow) PollEvents() { w.polls++ }

func (w *fakeWindow) WaitEvents() {
	w.waits++
	if len(w.waitExtents) > 0 {
		w.extent = w.waitExtents[0]
		w.waitExtents = w.waitExtents[1:]
	}
}

func (w *fakeWindow) ResizeSignal() *ResizeSignal { return &w.resize }

func (w *fakeWindow) resizeTo(e Extent) {
	w.extent = e
	w.resize.Raise()
}
