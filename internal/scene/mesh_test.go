package scene

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() []Vertex {
	return []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
}

func TestNewMeshValidation(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Vertex
		indices  []uint32
		wantErr  bool
	}{
		{name: "two vertices", vertices: triangle()[:2], indices: []uint32{0, 1, 0}, wantErr: true},
		{name: "three vertices", vertices: triangle(), indices: []uint32{0, 1, 2}},
		{name: "two indices", vertices: triangle(), indices: []uint32{0, 1}, wantErr: true},
		{name: "partial triangle", vertices: triangle(), indices: []uint32{0, 1, 2, 0}, wantErr: true},
		{name: "index out of range", vertices: triangle(), indices: []uint32{0, 1, 3}, wantErr: true},
		{name: "no geometry", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := NewMesh(tt.vertices, tt.indices)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, render.ErrInvalidGeometry))
				assert.Nil(t, mesh)
				return
			}

			require.NoError(t, err)
			assert.Len(t, mesh.Vertices(), len(tt.vertices))
			assert.Equal(t, tt.indices, mesh.Indices())
		})
	}
}

func TestNewMeshCopiesInput(t *testing.T) {
	vertices := triangle()
	indices := []uint32{0, 1, 2}

	mesh, err := NewMesh(vertices, indices)
	require.NoError(t, err)

	vertices[0].Position = mgl32.Vec3{9, 9, 9}
	indices[0] = 2

	assert.Equal(t, mgl32.Vec3{0, 0, 0}, mesh.Vertices()[0].Position)
	assert.Equal(t, uint32(0), mesh.Indices()[0])
}

func TestCube(t *testing.T) {
	cube := Cube()

	assert.Len(t, cube.Vertices(), 8)
	assert.Equal(t, 36, cube.IndexCount())
	assert.Equal(t, Index16, cube.IndexWidth())
	assert.Equal(t, []uint16{4, 5, 6, 6, 7, 4}, cube.Indices16()[:6])

	for _, v := range cube.Vertices() {
		for _, c := range v.Position {
			assert.InDelta(t, 0.5, c*c*2, 1e-6)
		}
	}
}

func TestIndexWidth(t *testing.T) {
	vertices := make([]Vertex, 1<<16)

	mesh, err := NewMesh(vertices[:1<<16-1], []uint32{0, 1, 1<<16 - 2})
	require.NoError(t, err)
	assert.Equal(t, Index16, mesh.IndexWidth())

	mesh, err = NewMesh(vertices, []uint32{0, 1, 1<<16 - 1})
	require.NoError(t, err)
	assert.Equal(t, Index32, mesh.IndexWidth())
	assert.Panics(t, func() { mesh.Indices16() })
}

const quadOBJ = `o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
`

func TestDecodeOBJ(t *testing.T) {
	mesh, err := DecodeOBJ(strings.NewReader(quadOBJ+"f 1/1 2/2 3/3 4/4\n"), nil)
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices(), 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices())

	v := mesh.Vertices()[2]
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, v.Position)
	assert.Equal(t, mgl32.Vec2{1, 0}, v.TexCoord)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, v.Color)
}

func TestDecodeOBJSplitsTextureSeams(t *testing.T) {
	src := quadOBJ + "f 1/1 2/2 3/3\nf 1/4 3/3 4/4\n"

	mesh, err := DecodeOBJ(strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices(), 5)
	assert.Equal(t, []uint32{0, 1, 2, 3, 2, 4}, mesh.Indices())
}

func TestDecodeOBJRejectsEmptyMesh(t *testing.T) {
	_, err := DecodeOBJ(strings.NewReader(quadOBJ), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, render.ErrInvalidGeometry))
}
