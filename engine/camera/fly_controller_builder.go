package camera

// FlyControllerOption is a functional option for configuring a FlyController during construction.
type FlyControllerOption func(*flyControllerImpl)

// WithSpeed sets the base movement speed in world units per second.
//
// Parameters:
//   - speed: the base speed
//
// Returns:
//   - FlyControllerOption: a function that sets the speed
func WithSpeed(speed float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.speed = speed
	}
}

// WithBoostFactor sets the speed multiplier applied while boost is held.
//
// Parameters:
//   - factor: the multiplier
//
// Returns:
//   - FlyControllerOption: a function that sets the boost factor
func WithBoostFactor(factor float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.boost = factor
	}
}

// WithMouseSensitivity sets the rotation per dragged pixel in radians.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - FlyControllerOption: a function that sets the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.sensitivity = sensitivity
	}
}
