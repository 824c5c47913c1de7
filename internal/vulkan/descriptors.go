package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Descriptors binds each frame slot's uniform region and the texture for
// the shaders. They do not depend on the surface and survive rebuilds.
type Descriptors struct {
	driver core1_0.CoreDeviceDriver
	layout core1_0.DescriptorSetLayout
	pool   core1_0.DescriptorPool
	sets   []core1_0.DescriptorSet
}

func (c *DeviceContext) NewDescriptors(uniforms *UniformBuffers, texture *Texture) (*Descriptors, error) {
	d := &Descriptors{driver: c.deviceDriver}
	slots := len(uniforms.buffers)

	var err error
	d.layout, _, err = c.deviceDriver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,

				StageFlags: core1_0.StageVertex,
			},
			{
				Binding:         1,
				DescriptorType:  core1_0.DescriptorTypeCombinedImageSampler,
				DescriptorCount: 1,

				StageFlags: core1_0.StageFragment,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create descriptor set layout")
	}

	d.pool, _, err = c.deviceDriver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: slots,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: slots,
			},
			{
				Type:            core1_0.DescriptorTypeCombinedImageSampler,
				DescriptorCount: slots,
			},
		},
	})
	if err != nil {
		d.Destroy()
		return nil, errors.Wrap(err, "create descriptor pool")
	}

	allocLayouts := make([]core1_0.DescriptorSetLayout, slots)
	for i := range allocLayouts {
		allocLayouts[i] = d.layout
	}

	d.sets, _, err = c.deviceDriver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: d.pool,
		SetLayouts:     allocLayouts,
	})
	if err != nil {
		d.Destroy()
		return nil, errors.Wrap(err, "allocate descriptor sets")
	}

	for i, set := range d.sets {
		err = c.deviceDriver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:          set,
				DstBinding:      0,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeUniformBuffer,

				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: uniforms.Buffer(i).Handle,
						Offset: 0,
						Range:  uniformSize,
					},
				},
			},
			{
				DstSet:          set,
				DstBinding:      1,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeCombinedImageSampler,

				ImageInfo: []core1_0.DescriptorImageInfo{
					{
						ImageView:   texture.image.View,
						Sampler:     texture.sampler,
						ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
					},
				},
			},
		}, nil)
		if err != nil {
			d.Destroy()
			return nil, errors.Wrapf(err, "write descriptor set %d", i)
		}
	}

	return d, nil
}

func (d *Descriptors) Layout() core1_0.DescriptorSetLayout {
	return d.layout
}

func (d *Descriptors) Set(slot int) core1_0.DescriptorSet {
	return d.sets[slot]
}

func (d *Descriptors) Destroy() {
	if d.pool.Initialized() {
		d.driver.DestroyDescriptorPool(d.pool, nil)
		d.pool = core1_0.DescriptorPool{}
	}
	d.sets = nil

	if d.layout.Initialized() {
		d.driver.DestroyDescriptorSetLayout(d.layout, nil)
		d.layout = core1_0.DescriptorSetLayout{}
	}
}
