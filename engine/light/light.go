package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBallBaseRadius is the radius of the unit light-ball mesh. A light ball is scaled by
// radius / LightBallBaseRadius so its surface sits on the light's radius of influence.
const LightBallBaseRadius float32 = 3.2

// PointLight is an omnidirectional light with a finite radius of influence.
// All methods are safe for concurrent use.
type PointLight interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the light.
	//
	// Parameters:
	//   - position: the new world-space position
	SetPosition(position mgl32.Vec3)

	// Color returns the linear RGB color of the light. Components may exceed 1 for HDR lights.
	//
	// Returns:
	//   - mgl32.Vec3: the color
	Color() mgl32.Vec3

	// SetColor sets the linear RGB color of the light.
	//
	// Parameters:
	//   - color: the new color
	SetColor(color mgl32.Vec3)

	// Radius returns the distance beyond which the light contributes nothing.
	//
	// Returns:
	//   - float32: the radius in world units
	Radius() float32

	// SetRadius sets the radius of influence. Negative values are clamped to zero.
	//
	// Parameters:
	//   - radius: the new radius
	SetRadius(radius float32)

	// BallTransform returns the model matrix of the sphere drawn to shade this light:
	// a translation to the light position times a uniform scale of Radius / LightBallBaseRadius.
	//
	// Returns:
	//   - mgl32.Mat4: the light-ball model matrix
	BallTransform() mgl32.Mat4

	// ToGPU returns the packed GPU record for the light.
	//
	// Returns:
	//   - GPUPointLight: the record uploaded to the light storage buffers
	ToGPU() GPUPointLight
}

// pointLightImpl is the implementation of the PointLight interface.
type pointLightImpl struct {
	mu       sync.RWMutex
	position mgl32.Vec3
	color    mgl32.Vec3
	radius   float32
}

var _ PointLight = &pointLightImpl{}

// NewPointLight creates a point light. Without options the light sits at the origin,
// is white and has a radius of 10.
//
// Parameters:
//   - options: variadic list of PointLightBuilderOption to configure the light
//
// Returns:
//   - PointLight: the new light
func NewPointLight(options ...PointLightBuilderOption) PointLight {
	l := &pointLightImpl{
		color:  mgl32.Vec3{1, 1, 1},
		radius: 10,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *pointLightImpl) Position() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

func (l *pointLightImpl) SetPosition(position mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = position
}

func (l *pointLightImpl) Color() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *pointLightImpl) SetColor(color mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
}

func (l *pointLightImpl) Radius() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.radius
}

func (l *pointLightImpl) SetRadius(radius float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.radius = max(radius, 0)
}

func (l *pointLightImpl) BallTransform() mgl32.Mat4 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.radius / LightBallBaseRadius
	return mgl32.Translate3D(l.position.X(), l.position.Y(), l.position.Z()).Mul4(mgl32.Scale3D(s, s, s))
}

func (l *pointLightImpl) ToGPU() GPUPointLight {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return GPUPointLight{
		Position: l.position,
		Radius:   l.radius,
		Color:    l.color,
	}
}

// Sun is the single directional light of a scene.
type Sun struct {
	// Direction points from the surface toward the sun. It is normalized by NewSun.
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

// NewSun creates a sun with a normalized direction.
//
// Parameters:
//   - direction: the direction toward the sun, need not be unit length
//   - color: the linear RGB color
//
// Returns:
//   - Sun: the sun
func NewSun(direction, color mgl32.Vec3) Sun {
	return Sun{Direction: common.NormalizeOrZero(direction), Color: color}
}
