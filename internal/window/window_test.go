package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestHandleWindowEvents(t *testing.T) {
	tests := []struct {
		name       string
		event      sdl.Event
		wantResize bool
		wantClose  bool
	}{
		{name: "quit", event: &sdl.QuitEvent{Type: sdl.QUIT}, wantClose: true},
		{name: "close", event: &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_CLOSE}, wantClose: true},
		{name: "resized", event: &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED}, wantResize: true},
		{name: "size changed", event: &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED}, wantResize: true},
		{name: "minimized", event: &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MINIMIZED}, wantResize: true},
		{name: "moved", event: &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MOVED}},
		{name: "key", event: &sdl.KeyboardEvent{Type: sdl.KEYDOWN}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Window{}
			w.handle(tt.event)

			assert.Equal(t, tt.wantResize, w.ResizeSignal().Take())
			assert.Equal(t, tt.wantClose, w.ShouldClose())
		})
	}
}
