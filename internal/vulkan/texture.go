package vulkan

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

const textureFormat = core1_0.FormatR8G8B8A8SRGB

// Texture is a sampled, device-local RGBA image.
type Texture struct {
	image   *Image
	sampler core1_0.Sampler
	driver  core1_0.CoreDeviceDriver
}

func (c *DeviceContext) NewTexture(pixels *image.RGBA) (*Texture, error) {
	size := pixels.Bounds().Size()

	staging, err := c.CreateBuffer(len(pixels.Pix), core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, errors.Wrap(err, "create texture staging buffer")
	}
	defer staging.Destroy()

	err = staging.Write(0, pixels.Pix)
	if err != nil {
		return nil, err
	}

	t := &Texture{driver: c.deviceDriver}
	t.image, err = c.CreateImage(ImageOptions{
		Width:      size.X,
		Height:     size.Y,
		Format:     textureFormat,
		Tiling:     core1_0.ImageTilingOptimal,
		Usage:      core1_0.ImageUsageTransferDst | core1_0.ImageUsageSampled,
		Properties: core1_0.MemoryPropertyDeviceLocal,
		Aspect:     core1_0.ImageAspectColor,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create texture image")
	}

	err = c.TransitionImageLayout(t.image, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	if err == nil {
		err = c.CopyBufferToImage(staging, t.image)
	}
	if err == nil {
		err = c.TransitionImageLayout(t.image, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	}
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "upload texture")
	}

	t.sampler, _, err = c.deviceDriver.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,

		AnisotropyEnable: true,
		MaxAnisotropy:    c.properties.Limits.MaxSamplerAnisotropy,

		BorderColor: core1_0.BorderColorIntOpaqueBlack,

		MipmapMode: core1_0.SamplerMipmapModeLinear,
		MinLod:     0,
		MaxLod:     0,
	})
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "create sampler")
	}

	return t, nil
}

func (t *Texture) Destroy() {
	if t.sampler.Initialized() {
		t.driver.DestroySampler(t.sampler, nil)
		t.sampler = core1_0.Sampler{}
	}
	if t.image != nil {
		t.image.Destroy()
		t.image = nil
	}
}
