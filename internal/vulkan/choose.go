package vulkan

import (
	"github.com/sorpv/sorpcube/internal/config"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

func chooseSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

// choosePresentMode honors preferred when the surface offers it. FIFO is
// always available and is the fallback.
func choosePresentMode(availablePresentModes []khr_surface.PresentMode, preferred string) khr_surface.PresentMode {
	want := khr_surface.PresentModeMailbox
	switch preferred {
	case config.PresentModeFIFO:
		return khr_surface.PresentModeFIFO
	case config.PresentModeImmediate:
		want = khr_surface.PresentModeImmediate
	}

	for _, presentMode := range availablePresentModes {
		if presentMode == want {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// chooseExtent uses the surface's current extent when the platform fixes
// one, and otherwise clamps the window's drawable size to what the surface
// allows.
func chooseExtent(capabilities *khr_surface.SurfaceCapabilities, window render.Extent) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(window.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(window.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// chooseImageCount requests one image more than the minimum unless a count
// was already negotiated. A zero maximum means the surface has no limit.
func chooseImageCount(capabilities *khr_surface.SurfaceCapabilities, negotiated int) int {
	imageCount := negotiated
	if imageCount == 0 {
		imageCount = capabilities.MinImageCount + 1
	}

	if imageCount < capabilities.MinImageCount {
		imageCount = capabilities.MinImageCount
	}
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}
