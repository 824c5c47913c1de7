package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// RotationSpeed is the cube's rotation about +Z in degrees per second.
const RotationSpeed = 90.0

var (
	cameraEye    = mgl32.Vec3{2, 2, 2}
	cameraCenter = mgl32.Vec3{0, 0, 0}
	cameraUp     = mgl32.Vec3{0, 0, 1}
)

// UniformBufferObject matches the std140 block read by the vertex shader.
type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
	Time  float32
	_     [3]float32
}

// RotationDegrees is the model rotation after elapsed time.
func RotationDegrees(elapsed time.Duration) float32 {
	return float32(elapsed.Seconds() * RotationSpeed)
}

// ComputeUniforms builds the transforms for a frame drawn elapsed after the
// renderer started, projected onto extent.
func ComputeUniforms(elapsed time.Duration, extent Extent) UniformBufferObject {
	ubo := UniformBufferObject{
		Model: mgl32.HomogRotate3DZ(mgl32.DegToRad(RotationDegrees(elapsed))),
		View:  mgl32.LookAtV(cameraEye, cameraCenter, cameraUp),
		Proj:  mgl32.Perspective(mgl32.DegToRad(45), extent.Aspect(), 0.1, 10),
		Time:  float32(elapsed.Seconds()),
	}

	// Vulkan clip space has Y pointing down
	ubo.Proj[5] *= -1

	return ubo
}
