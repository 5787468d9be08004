package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyInput is the input state sampled once per frame for a FlyController.
type FlyInput struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Boost    bool

	// DragX and DragY are the mouse movement in pixels while the rotate button is held.
	DragX float64
	DragY float64
}

// FlyController moves a Camera like a free-flying spectator:
// forward/backward along the view direction, strafing along the right vector,
// and yaw/pitch from mouse drag.
type FlyController interface {
	// Update applies one frame of input to the camera.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - input: the input state for this frame
	//   - dt: the frame time in seconds
	Update(cam Camera, input FlyInput, dt float32)

	// Speed returns the base movement speed in world units per second.
	//
	// Returns:
	//   - float32: the base speed
	Speed() float32

	// SetSpeed sets the base movement speed.
	//
	// Parameters:
	//   - speed: world units per second
	SetSpeed(speed float32)

	// BoostFactor returns the multiplier applied to the speed while boost is held.
	BoostFactor() float32

	// MouseSensitivity returns the rotation per dragged pixel in radians.
	MouseSensitivity() float32
}

type flyControllerImpl struct {
	mu *sync.Mutex

	speed       float32
	boost       float32
	sensitivity float32
}

var _ FlyController = &flyControllerImpl{}

// NewFlyController creates a FlyController moving at 10 units per second,
// ten times faster with boost, and rotating 0.01 radians per dragged pixel.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - FlyController: the new controller
func NewFlyController(options ...FlyControllerOption) FlyController {
	fc := &flyControllerImpl{
		mu:          &sync.Mutex{},
		speed:       10,
		boost:       10,
		sensitivity: 0.01,
	}
	for _, opt := range options {
		opt(fc)
	}
	return fc
}

func (fc *flyControllerImpl) Update(cam Camera, input FlyInput, dt float32) {
	fc.mu.Lock()
	speed := fc.speed
	if input.Boost {
		speed *= fc.boost
	}
	sensitivity := fc.sensitivity
	fc.mu.Unlock()

	if input.DragX != 0 || input.DragY != 0 {
		cam.Rotate(float32(input.DragX)*sensitivity, -float32(input.DragY)*sensitivity)
	}

	step := speed * dt
	forward := cam.Forward()
	right := cam.Right()
	var move mgl32.Vec3
	if input.Forward {
		move = move.Add(forward)
	}
	if input.Backward {
		move = move.Sub(forward)
	}
	if input.Right {
		move = move.Add(right)
	}
	if input.Left {
		move = move.Sub(right)
	}
	if move.Len() == 0 {
		return
	}
	cam.SetPosition(cam.Position().Add(move.Mul(step)))
}

func (fc *flyControllerImpl) Speed() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.speed
}

func (fc *flyControllerImpl) SetSpeed(speed float32) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.speed = speed
}

func (fc *flyControllerImpl) BoostFactor() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.boost
}

func (fc *flyControllerImpl) MouseSensitivity() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.sensitivity
}
