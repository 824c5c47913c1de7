package scene

import "github.com/go-gl/mathgl/mgl32"

var cubeVertices = []Vertex{
	{Position: mgl32.Vec3{-0.5, -0.5, -0.5}, Color: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{1, 0}},
	{Position: mgl32.Vec3{0.5, -0.5, -0.5}, Color: mgl32.Vec3{0, 1, 0}, TexCoord: mgl32.Vec2{0, 0}},
	{Position: mgl32.Vec3{0.5, 0.5, -0.5}, Color: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 1}},
	{Position: mgl32.Vec3{-0.5, 0.5, -0.5}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{1, 1}},

	{Position: mgl32.Vec3{-0.5, -0.5, 0.5}, Color: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{1, 0}},
	{Position: mgl32.Vec3{0.5, -0.5, 0.5}, Color: mgl32.Vec3{0, 1, 0}, TexCoord: mgl32.Vec2{0, 0}},
	{Position: mgl32.Vec3{0.5, 0.5, 0.5}, Color: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 1}},
	{Position: mgl32.Vec3{-0.5, 0.5, 0.5}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{1, 1}},
}

var cubeIndices = []uint32{
	4, 5, 6, 6, 7, 4,
	0, 2, 1, 2, 0, 3,
	0, 5, 4, 0, 1, 5,
	2, 5, 1, 2, 6, 5,
	3, 6, 2, 3, 7, 6,
	0, 4, 7, 0, 7, 3,
}

// Cube is the unit cube centered on the origin, one color per corner.
func Cube() *Mesh {
	mesh, err := NewMesh(cubeVertices, cubeIndices)
	if err != nil {
		panic(err)
	}
	return mesh
}
