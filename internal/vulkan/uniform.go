package vulkan

import (
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/vkngwrapper/core/v3/core1_0"
)

var uniformSize = binary.Size(render.UniformBufferObject{})

// UniformBuffers holds one host-coherent uniform region per frame slot,
// each mapped for the buffers' whole lifetime.
type UniformBuffers struct {
	buffers []*Buffer
	mapped  [][]byte
}

func (c *DeviceContext) NewUniformBuffers(slots int) (*UniformBuffers, error) {
	u := &UniformBuffers{}

	for i := 0; i < slots; i++ {
		buffer, err := c.CreateBuffer(uniformSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			u.Destroy()
			return nil, errors.Wrapf(err, "create uniform buffer %d", i)
		}
		u.buffers = append(u.buffers, buffer)

		ptr, _, err := c.deviceDriver.MapMemory(buffer.Memory, 0, uniformSize, 0)
		if err != nil {
			u.Destroy()
			return nil, errors.Wrapf(err, "map uniform buffer %d", i)
		}
		u.mapped = append(u.mapped, unsafe.Slice((*byte)(ptr), uniformSize))
	}

	return u, nil
}

// WriteUniforms copies ubo into the region owned by slot. The caller must
// have waited for the slot's previous submission.
func (u *UniformBuffers) WriteUniforms(slot int, ubo *render.UniformBufferObject) error {
	if slot < 0 || slot >= len(u.mapped) {
		return errors.Newf("no uniform region for frame slot %d", slot)
	}
	return encodeInto(u.mapped[slot], ubo)
}

func (u *UniformBuffers) Buffer(slot int) *Buffer {
	return u.buffers[slot]
}

func (u *UniformBuffers) Destroy() {
	for i, buffer := range u.buffers {
		if i < len(u.mapped) {
			buffer.driver.UnmapMemory(buffer.Memory)
		}
		buffer.Destroy()
	}
	u.buffers = nil
	u.mapped = nil
}
