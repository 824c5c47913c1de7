package vulkan

import (
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/sorpv/sorpcube/internal/scene"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Buffers up to this size are written straight into host-visible memory;
// larger ones are staged into device-local memory.
const directUploadLimit = 64 << 10

func vertexBindingDescriptions() []core1_0.VertexInputBindingDescription {
	v := scene.Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func vertexAttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := scene.Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
		{
			Binding:  0,
			Location: 2,
			Format:   core1_0.FormatR32G32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.TexCoord)),
		},
	}
}

// GeometryBuffer is a mesh uploaded to the GPU. It is never written again.
type GeometryBuffer struct {
	vertices   *Buffer
	indices    *Buffer
	indexType  core1_0.IndexType
	indexCount int
}

// checkGeometry rejects meshes that did not come through scene.NewMesh.
func checkGeometry(mesh *scene.Mesh) error {
	if mesh == nil {
		return errors.Mark(errors.New("no mesh"), render.ErrInvalidGeometry)
	}
	if len(mesh.Vertices()) < 3 || mesh.IndexCount() < 3 {
		return errors.Mark(errors.Newf("mesh has %d vertices and %d indices, need at least 3 of each",
			len(mesh.Vertices()), mesh.IndexCount()), render.ErrInvalidGeometry)
	}
	return nil
}

func (c *DeviceContext) NewGeometryBuffer(mesh *scene.Mesh) (*GeometryBuffer, error) {
	err := checkGeometry(mesh)
	if err != nil {
		return nil, err
	}

	g := &GeometryBuffer{indexCount: mesh.IndexCount()}

	g.vertices, err = c.uploadBuffer(mesh.Vertices(), core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return nil, errors.Wrap(err, "upload vertices")
	}

	var indexData any
	switch mesh.IndexWidth() {
	case scene.Index16:
		g.indexType = core1_0.IndexTypeUInt16
		indexData = mesh.Indices16()
	default:
		g.indexType = core1_0.IndexTypeUInt32
		indexData = mesh.Indices()
	}

	g.indices, err = c.uploadBuffer(indexData, core1_0.BufferUsageIndexBuffer)
	if err != nil {
		g.Destroy()
		return nil, errors.Wrap(err, "upload indices")
	}

	return g, nil
}

// uploadBuffer creates a buffer with usage holding data.
func (c *DeviceContext) uploadBuffer(data any, usage core1_0.BufferUsageFlags) (*Buffer, error) {
	bufferSize := binary.Size(data)
	if bufferSize <= 0 {
		return nil, errors.Newf("cannot upload %T", data)
	}

	if bufferSize <= directUploadLimit {
		buffer, err := c.CreateBuffer(bufferSize, usage, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			return nil, err
		}

		err = buffer.Write(0, data)
		if err != nil {
			buffer.Destroy()
			return nil, err
		}
		return buffer, nil
	}

	staging, err := c.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, errors.Wrap(err, "create staging buffer")
	}
	defer staging.Destroy()

	err = staging.Write(0, data)
	if err != nil {
		return nil, err
	}

	buffer, err := c.CreateBuffer(bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	err = c.CopyBuffer(staging, buffer, bufferSize)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	return buffer, nil
}

func (g *GeometryBuffer) IndexCount() int {
	return g.indexCount
}

func (g *GeometryBuffer) IndexType() core1_0.IndexType {
	return g.indexType
}

func (g *GeometryBuffer) Destroy() {
	if g.indices != nil {
		g.indices.Destroy()
		g.indices = nil
	}
	if g.vertices != nil {
		g.vertices.Destroy()
		g.vertices = nil
	}
}
