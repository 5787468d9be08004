package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPURecordSizes(t *testing.T) {
	assert.Equal(t, 96, FrameData{}.Size())
	assert.Equal(t, 32, GPUPointLight{}.Size())
	assert.Equal(t, 16, WindowSize{}.Size())
}

func TestFrameData_Marshal(t *testing.T) {
	f := FrameData{
		ViewProj:        mgl32.Ident4(),
		SunColor:        mgl32.Vec3{0.5, 0.25, 1},
		PointLightCount: 2,
		SunDir:          mgl32.Vec3{0, 1, 0},
	}
	buf := make([]byte, f.Size())
	f.Marshal(buf)

	assert.Equal(t, float32(1), common.Float32At(buf, 0))
	assert.Equal(t, float32(1), common.Float32At(buf, 60))
	assert.Equal(t, float32(0.5), common.Float32At(buf, 64))
	assert.Equal(t, float32(1), common.Float32At(buf, 72))
	assert.Equal(t, uint32(2), common.Uint32At(buf, 76))
	assert.Equal(t, float32(1), common.Float32At(buf, 84))
	assert.Equal(t, float32(0), common.Float32At(buf, 92))
}

func TestGPUPointLight_Marshal(t *testing.T) {
	l := NewPointLight(WithPosition(1, 2, 4), WithColor(0, 50, 0), WithRadius(100))
	g := l.ToGPU()
	buf := make([]byte, g.Size())
	g.Marshal(buf)

	assert.Equal(t, float32(1), common.Float32At(buf, 0))
	assert.Equal(t, float32(4), common.Float32At(buf, 8))
	assert.Equal(t, float32(100), common.Float32At(buf, 12))
	assert.Equal(t, float32(50), common.Float32At(buf, 20))
}

func TestWindowSize_Marshal(t *testing.T) {
	w := NewWindowSize(1920, 1080)
	buf := make([]byte, w.Size())
	w.Marshal(buf)

	assert.Equal(t, uint32(1920), common.Uint32At(buf, 0))
	assert.Equal(t, uint32(1080), common.Uint32At(buf, 4))
	assert.Equal(t, WindowSize{}, NewWindowSize(-5, -1))
}

func TestNewPointLight_Defaults(t *testing.T) {
	l := NewPointLight()
	assert.Equal(t, mgl32.Vec3{}, l.Position())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())
	assert.Equal(t, float32(10), l.Radius())

	l.SetRadius(-3)
	assert.Equal(t, float32(0), l.Radius())
}

func TestPointLight_BallTransform(t *testing.T) {
	l := NewPointLight(WithPosition(1, 2, -4), WithRadius(6.4))
	m := l.BallTransform()

	// A point on the unit ball's surface lands on the light radius.
	p := common.TransformPoint(m, mgl32.Vec3{LightBallBaseRadius, 0, 0})
	require.InDelta(t, 7.4, p.X(), 1e-4)
	assert.InDelta(t, 2, p.Y(), 1e-4)
	assert.InDelta(t, -4, p.Z(), 1e-4)

	l.SetPosition(mgl32.Vec3{0, 0, 0})
	assert.InDelta(t, 0, l.BallTransform().Col(3).X(), 1e-6)
}

func TestNewSun_NormalizesDirection(t *testing.T) {
	s := NewSun(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{1, 1, 1})
	assert.InDelta(t, 1, s.Direction.Y(), 1e-6)
}
