package vulkan

import (
	"testing"

	"github.com/sorpv/sorpcube/internal/config"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

func TestChooseSurfaceFormat(t *testing.T) {
	srgb := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	unorm := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}

	assert.Equal(t, srgb, chooseSurfaceFormat([]khr_surface.SurfaceFormat{unorm, srgb}))
	assert.Equal(t, unorm, chooseSurfaceFormat([]khr_surface.SurfaceFormat{unorm}))
}

func TestChoosePresentMode(t *testing.T) {
	all := []khr_surface.PresentMode{
		khr_surface.PresentModeImmediate,
		khr_surface.PresentModeFIFO,
		khr_surface.PresentModeMailbox,
	}
	fifoOnly := []khr_surface.PresentMode{khr_surface.PresentModeFIFO}

	tests := []struct {
		name      string
		available []khr_surface.PresentMode
		preferred string
		want      khr_surface.PresentMode
	}{
		{"mailbox available", all, config.PresentModeMailbox, khr_surface.PresentModeMailbox},
		{"mailbox missing", fifoOnly, config.PresentModeMailbox, khr_surface.PresentModeFIFO},
		{"immediate available", all, config.PresentModeImmediate, khr_surface.PresentModeImmediate},
		{"immediate missing", fifoOnly, config.PresentModeImmediate, khr_surface.PresentModeFIFO},
		{"fifo", all, config.PresentModeFIFO, khr_surface.PresentModeFIFO},
		{"unset", all, "", khr_surface.PresentModeMailbox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, choosePresentMode(tt.available, tt.preferred))
		})
	}
}

func TestChooseExtent(t *testing.T) {
	caps := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 16, Height: 16},
		MaxImageExtent: core1_0.Extent2D{Width: 1024, Height: 768},
	}

	assert.Equal(t, core1_0.Extent2D{Width: 400, Height: 300}, chooseExtent(caps, render.Extent{Width: 400, Height: 300}))
	assert.Equal(t, core1_0.Extent2D{Width: 1024, Height: 16}, chooseExtent(caps, render.Extent{Width: 4000, Height: 1}))

	caps.CurrentExtent = core1_0.Extent2D{Width: 800, Height: 600}
	assert.Equal(t, core1_0.Extent2D{Width: 800, Height: 600}, chooseExtent(caps, render.Extent{Width: 400, Height: 300}))
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name       string
		min, max   int
		negotiated int
		want       int
	}{
		{"one above minimum", 2, 8, 0, 3},
		{"unbounded maximum", 2, 0, 0, 3},
		{"clamped to maximum", 3, 3, 0, 3},
		{"negotiated kept", 2, 8, 3, 3},
		{"negotiated below new minimum", 4, 8, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := &khr_surface.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			require.Equal(t, tt.want, chooseImageCount(caps, tt.negotiated))
		})
	}
}
