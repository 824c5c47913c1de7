package scene

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

type objKey struct {
	vertex, uv int
}

type objBuilder struct {
	decoder  *obj.Decoder
	unique   map[objKey]uint32
	vertices []Vertex
	indices  []uint32
}

func (b *objBuilder) addVertex(face obj.Face, faceIndex int) {
	key := objKey{vertex: face.Vertices[faceIndex], uv: -1}
	if faceIndex < len(face.Uvs) {
		key.uv = face.Uvs[faceIndex]
	}

	index, exists := b.unique[key]
	if !exists {
		positions := b.decoder.Vertices
		vert := Vertex{
			Position: mgl32.Vec3{
				positions[key.vertex*3],
				positions[key.vertex*3+1],
				positions[key.vertex*3+2],
			},
			Color: mgl32.Vec3{1, 1, 1},
		}

		uvs := b.decoder.Uvs
		if key.uv >= 0 && key.uv*2+1 < len(uvs) {
			vert.TexCoord = mgl32.Vec2{
				uvs[key.uv*2],
				1.0 - uvs[key.uv*2+1],
			}
		}

		index = uint32(len(b.vertices))
		b.vertices = append(b.vertices, vert)
		b.unique[key] = index
	}

	b.indices = append(b.indices, index)
}

// DecodeOBJ reads a Wavefront OBJ mesh, fanning polygons into triangles and
// sharing vertices that repeat the same position and texture coordinate. The
// material reader may be nil.
func DecodeOBJ(mesh, materials io.Reader) (*Mesh, error) {
	if materials == nil {
		materials = bytes.NewReader(nil)
	}

	decoder, err := obj.DecodeReader(mesh, materials)
	if err != nil {
		return nil, errors.Wrap(err, "decode obj")
	}

	b := &objBuilder{
		decoder: decoder,
		unique:  make(map[objKey]uint32),
	}

	positions := len(decoder.Vertices) / 3
	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for _, v := range face.Vertices {
				if v < 0 || v >= positions {
					return nil, errors.Newf("object %q references vertex %d of %d", decodedObj.Name, v, positions)
				}
			}

			for i := 2; i < len(face.Vertices); i++ {
				b.addVertex(face, 0)
				b.addVertex(face, i-1)
				b.addVertex(face, i)
			}
		}
	}

	return NewMesh(b.vertices, b.indices)
}
