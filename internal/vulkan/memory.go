package vulkan

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// findMemoryType returns the first memory type allowed by typeFilter that
// has every requested property.
func findMemoryType(memoryTypes []core1_0.MemoryType, typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range memoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Mark(errors.Newf("no memory type in %#b has properties %s", typeFilter, properties), render.ErrAllocation)
}

func (c *DeviceContext) FindMemoryType(typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	memProperties := c.instanceDriver.GetPhysicalDeviceMemoryProperties(c.physicalDevice)
	return findMemoryType(memProperties.MemoryTypes, typeFilter, properties)
}

type formatFeatures func(format core1_0.Format) (linear, optimal core1_0.FormatFeatureFlags)

func findSupportedFormat(query formatFeatures, candidates []core1_0.Format, tiling core1_0.ImageTiling, features core1_0.FormatFeatureFlags) (core1_0.Format, error) {
	for _, format := range candidates {
		linear, optimal := query(format)

		if tiling == core1_0.ImageTilingLinear && (linear&features) == features {
			return format, nil
		} else if tiling == core1_0.ImageTilingOptimal && (optimal&features) == features {
			return format, nil
		}
	}

	return 0, errors.Newf("no supported format for tiling %s, features %s", tiling, features)
}

func (c *DeviceContext) formatFeatures(format core1_0.Format) (core1_0.FormatFeatureFlags, core1_0.FormatFeatureFlags) {
	props := c.instanceDriver.GetPhysicalDeviceFormatProperties(c.physicalDevice, format)
	return props.LinearTilingFeatures, props.OptimalTilingFeatures
}

func (c *DeviceContext) FindSupportedFormat(candidates []core1_0.Format, tiling core1_0.ImageTiling, features core1_0.FormatFeatureFlags) (core1_0.Format, error) {
	return findSupportedFormat(c.formatFeatures, candidates, tiling, features)
}

var depthFormats = []core1_0.Format{
	core1_0.FormatD32SignedFloat,
	core1_0.FormatD32SignedFloatS8UnsignedInt,
	core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
}

func (c *DeviceContext) FindDepthFormat() (core1_0.Format, error) {
	return c.FindSupportedFormat(depthFormats, core1_0.ImageTilingOptimal, core1_0.FormatFeatureDepthStencilAttachment)
}

// Buffer is a buffer together with the memory bound to it.
type Buffer struct {
	driver core1_0.CoreDeviceDriver
	Handle core1_0.Buffer
	Memory core1_0.DeviceMemory
	Size   int
}

// CreateBuffer allocates and binds memory for a new buffer. Nothing is left
// behind on failure.
func (c *DeviceContext) CreateBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (*Buffer, error) {
	b := &Buffer{driver: c.deviceDriver, Size: size}

	var err error
	b.Handle, _, err = c.deviceDriver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create buffer")
	}

	memRequirements := c.deviceDriver.GetBufferMemoryRequirements(b.Handle)
	memoryTypeIndex, err := c.FindMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		b.Destroy()
		return nil, err
	}

	b.Memory, _, err = c.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		b.Destroy()
		return nil, errors.Mark(errors.Wrapf(err, "allocate %d bytes", memRequirements.Size), render.ErrAllocation)
	}

	_, err = c.deviceDriver.BindBufferMemory(b.Handle, b.Memory, 0)
	if err != nil {
		b.Destroy()
		return nil, errors.Wrap(err, "bind buffer memory")
	}

	return b, nil
}

// Write encodes data into host-visible buffer memory at offset.
func (b *Buffer) Write(offset int, data any) error {
	bufferSize := binary.Size(data)
	if bufferSize < 0 || offset+bufferSize > b.Size {
		return errors.Newf("write of %d bytes at %d overflows %d byte buffer", bufferSize, offset, b.Size)
	}

	memoryPtr, _, err := b.driver.MapMemory(b.Memory, offset, bufferSize, 0)
	if err != nil {
		return errors.Wrap(err, "map buffer memory")
	}
	defer b.driver.UnmapMemory(b.Memory)

	return encodeInto(unsafe.Slice((*byte)(memoryPtr), bufferSize), data)
}

func encodeInto(dst []byte, data any) error {
	buf := bytes.NewBuffer(make([]byte, 0, len(dst)))
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return errors.Wrap(err, "encode buffer data")
	}

	copy(dst, buf.Bytes())
	return nil
}

func (b *Buffer) Destroy() {
	if b.Handle.Initialized() {
		b.driver.DestroyBuffer(b.Handle, nil)
		b.Handle = core1_0.Buffer{}
	}

	if b.Memory.Initialized() {
		b.driver.FreeMemory(b.Memory, nil)
		b.Memory = core1_0.DeviceMemory{}
	}
}

type ImageOptions struct {
	Width, Height int
	Format        core1_0.Format
	Tiling        core1_0.ImageTiling
	Usage         core1_0.ImageUsageFlags
	Properties    core1_0.MemoryPropertyFlags
	Aspect        core1_0.ImageAspectFlags
}

// Image is an image, the memory bound to it and a view over it.
type Image struct {
	driver core1_0.CoreDeviceDriver
	Handle core1_0.Image
	Memory core1_0.DeviceMemory
	View   core1_0.ImageView
	Format core1_0.Format
	Width  int
	Height int
}

// CreateImage builds a single-level 2D image with bound memory and a view.
// Nothing is left behind on failure.
func (c *DeviceContext) CreateImage(opts ImageOptions) (*Image, error) {
	img := &Image{driver: c.deviceDriver, Format: opts.Format, Width: opts.Width, Height: opts.Height}

	var err error
	img.Handle, _, err = c.deviceDriver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  opts.Width,
			Height: opts.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        opts.Format,
		Tiling:        opts.Tiling,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         opts.Usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create image")
	}

	memReqs := c.deviceDriver.GetImageMemoryRequirements(img.Handle)
	memoryIndex, err := c.FindMemoryType(memReqs.MemoryTypeBits, opts.Properties)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	img.Memory, _, err = c.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		img.Destroy()
		return nil, errors.Mark(errors.Wrapf(err, "allocate %d bytes", memReqs.Size), render.ErrAllocation)
	}

	_, err = c.deviceDriver.BindImageMemory(img.Handle, img.Memory, 0)
	if err != nil {
		img.Destroy()
		return nil, errors.Wrap(err, "bind image memory")
	}

	img.View, err = c.createImageView(img.Handle, opts.Format, opts.Aspect)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	return img, nil
}

func (c *DeviceContext) createImageView(image core1_0.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags) (core1_0.ImageView, error) {
	imageView, _, err := c.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, errors.Wrap(err, "create image view")
}

func (img *Image) Destroy() {
	if img.View.Initialized() {
		img.driver.DestroyImageView(img.View, nil)
		img.View = core1_0.ImageView{}
	}

	if img.Handle.Initialized() {
		img.driver.DestroyImage(img.Handle, nil)
		img.Handle = core1_0.Image{}
	}

	if img.Memory.Initialized() {
		img.driver.FreeMemory(img.Memory, nil)
		img.Memory = core1_0.DeviceMemory{}
	}
}
