package scene

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sorpv/sorpcube/internal/render"
)

// Vertex is laid out as the vertex shader reads it: position at location 0,
// color at location 1, texture coordinate at location 2.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

type IndexWidth int

const (
	Index16 IndexWidth = 16
	Index32 IndexWidth = 32
)

// Mesh is validated, immutable indexed geometry.
type Mesh struct {
	vertices []Vertex
	indices  []uint32
}

// NewMesh checks that the geometry describes at least one triangle and that
// every index refers to a vertex. Failures are marked render.ErrInvalidGeometry.
func NewMesh(vertices []Vertex, indices []uint32) (*Mesh, error) {
	if len(vertices) < 3 {
		return nil, errors.Mark(errors.Newf("mesh has %d vertices, need at least 3", len(vertices)), render.ErrInvalidGeometry)
	}
	if len(indices) < 3 {
		return nil, errors.Mark(errors.Newf("mesh has %d indices, need at least 3", len(indices)), render.ErrInvalidGeometry)
	}
	if len(indices)%3 != 0 {
		return nil, errors.Mark(errors.Newf("index count %d is not a whole number of triangles", len(indices)), render.ErrInvalidGeometry)
	}

	for i, index := range indices {
		if int(index) >= len(vertices) {
			return nil, errors.Mark(errors.Newf("index %d at position %d is out of range for %d vertices", index, i, len(vertices)), render.ErrInvalidGeometry)
		}
	}

	return &Mesh{
		vertices: append([]Vertex(nil), vertices...),
		indices:  append([]uint32(nil), indices...),
	}, nil
}

func (m *Mesh) Vertices() []Vertex {
	return m.vertices
}

func (m *Mesh) Indices() []uint32 {
	return m.indices
}

func (m *Mesh) IndexCount() int {
	return len(m.indices)
}

// IndexWidth is 16 bits for up to 65535 vertices and 32 bits above that.
func (m *Mesh) IndexWidth() IndexWidth {
	if len(m.vertices) <= math.MaxUint16 {
		return Index16
	}
	return Index32
}

// Indices16 narrows the indices. It panics if the mesh needs 32-bit indices.
func (m *Mesh) Indices16() []uint16 {
	if m.IndexWidth() != Index16 {
		panic("scene: mesh needs 32-bit indices")
	}

	out := make([]uint16, len(m.indices))
	for i, index := range m.indices {
		out[i] = uint16(index)
	}
	return out
}
