package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecInDelta(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDeltaf(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera()
	assertVecInDelta(t, mgl32.Vec3{0, 0, -1}, c.Forward())
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.Right())
	assertVecInDelta(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, 45*math.Pi/180, c.Fov(), 1e-6)
	assert.Equal(t, float32(1), c.Aspect())
}

func TestCamera_ViewProjectionIsProductOfParts(t *testing.T) {
	c := NewCamera(WithPosition(3, 2, 1), WithOrientation(0.3, -0.2), WithAspect(16.0/9.0))
	want := c.ProjectionMatrix().Mul4(c.ViewMatrix())
	assert.True(t, want.ApproxEqualThreshold(c.ViewProjectionMatrix(), 1e-5))

	id := c.ViewProjectionMatrix().Mul4(c.InverseViewProjectionMatrix())
	for i, d := range id.Sub(mgl32.Ident4()) {
		assert.InDeltaf(t, 0, d, 1e-3, "element %d", i)
	}
}

func TestCamera_LookAt(t *testing.T) {
	c := NewCamera()
	c.LookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{10, 0, 10})
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.Forward())
	assertVecInDelta(t, mgl32.Vec3{0, 0, 10}, c.Position())

	// Target at the eye keeps the orientation.
	c.LookAt(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.Forward())
}

func TestCamera_PitchClamped(t *testing.T) {
	c := NewCamera()
	c.Rotate(0, 10)
	assert.InDelta(t, maxPitch, c.Pitch(), 1e-6)
	c.SetOrientation(0, -10)
	assert.InDelta(t, -maxPitch, c.Pitch(), 1e-6)
}

func TestCamera_SetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
	c.SetAspect(-1)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestCamera_FrustumIsCameraRelative(t *testing.T) {
	c := NewCamera(WithPosition(100, 50, -20), WithClipPlanes(0.5, 100))
	f := c.Frustum()

	// A point 10 units ahead of the camera, expressed relative to the camera position.
	ahead := c.Forward().Mul(10)
	for _, i := range common.CullingPlanes {
		assert.Greaterf(t, f.Planes[i].SignedDistance(ahead), float32(0), "plane %d", i)
	}

	// The near plane sits at the configured distance along the view direction.
	assert.InDelta(t, 0, f.Near().SignedDistance(c.Forward().Mul(0.5)), 1e-3)

	// Behind the camera fails the near plane.
	assert.Less(t, f.Near().SignedDistance(c.Forward().Mul(-10)), float32(0))
}

func TestCamera_FrustumTracksMutation(t *testing.T) {
	c := NewCamera()
	before := c.Frustum()
	c.SetOrientation(math.Pi/2, 0)
	after := c.Frustum()
	require.NotEqual(t, before.Near().Normal, after.Near().Normal)
	assertVecInDelta(t, c.Forward(), after.Near().Normal)
}

func TestFlyController_Movement(t *testing.T) {
	tests := []struct {
		name  string
		input FlyInput
		want  mgl32.Vec3
	}{
		{"forward", FlyInput{Forward: true}, mgl32.Vec3{0, 0, -10}},
		{"backward", FlyInput{Backward: true}, mgl32.Vec3{0, 0, 10}},
		{"strafe right", FlyInput{Right: true}, mgl32.Vec3{10, 0, 0}},
		{"strafe left", FlyInput{Left: true}, mgl32.Vec3{-10, 0, 0}},
		{"boost", FlyInput{Forward: true, Boost: true}, mgl32.Vec3{0, 0, -100}},
		{"opposing keys cancel", FlyInput{Forward: true, Backward: true}, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera()
			NewFlyController().Update(c, tt.input, 1)
			assertVecInDelta(t, tt.want, c.Position())
		})
	}
}

func TestFlyController_DragRotates(t *testing.T) {
	c := NewCamera()
	fc := NewFlyController(WithMouseSensitivity(0.01))
	fc.Update(c, FlyInput{DragX: 10, DragY: -5}, 0.016)

	assert.InDelta(t, 0.1, c.Yaw(), 1e-6)
	assert.InDelta(t, 0.05, c.Pitch(), 1e-6)
	assertVecInDelta(t, mgl32.Vec3{}, c.Position())
}

func TestFlyController_Options(t *testing.T) {
	fc := NewFlyController(WithSpeed(2), WithBoostFactor(3))
	assert.Equal(t, float32(2), fc.Speed())
	assert.Equal(t, float32(3), fc.BoostFactor())
	fc.SetSpeed(5)
	assert.Equal(t, float32(5), fc.Speed())
}
