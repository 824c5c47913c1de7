package render

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestRotationDegrees(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    float32
	}{
		{0, 0},
		{time.Second, 90},
		{2 * time.Second, 180},
		{500 * time.Millisecond, 45},
		{4 * time.Second, 360},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, RotationDegrees(tt.elapsed), 1e-4, "elapsed %s", tt.elapsed)
	}
}

func TestComputeUniforms(t *testing.T) {
	ubo := ComputeUniforms(time.Second, Extent{800, 600})

	assert.True(t, ubo.Model.ApproxEqualThreshold(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)), 1e-5))
	assert.InDelta(t, 1.0, ubo.Time, 1e-6)

	// The eye sits on the diagonal, so the origin lands straight ahead.
	origin := ubo.View.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin.X(), 1e-5)
	assert.InDelta(t, 0, origin.Y(), 1e-5)
	assert.Less(t, origin.Z(), float32(0))

	want := mgl32.Perspective(mgl32.DegToRad(45), 800.0/600.0, 0.1, 10)
	assert.InDelta(t, -want[5], ubo.Proj[5], 1e-6)
	assert.InDelta(t, want[0], ubo.Proj[0], 1e-6)
}

func TestComputeUniformsAspectFollowsExtent(t *testing.T) {
	wide := ComputeUniforms(0, Extent{1600, 600})
	square := ComputeUniforms(0, Extent{600, 600})

	assert.InDelta(t, square.Proj[0]/2, wide.Proj[0], 1e-6)
	assert.Equal(t, square.Proj[5], wide.Proj[5])
}
