package common

// Key codes used by the viewer's bindings.
// Values match GLFW key codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87 // move forward
	KeyA     = 65 // strafe left
	KeyS     = 83 // move back
	KeyD     = 68 // strafe right
	KeyN     = 78 // load next scene file from the data directory
	KeyP     = 80 // toggle profiler output
	KeyR     = 82 // reset exposure
	KeyMinus = 45 // decrease exposure
	KeyEqual = 61 // increase exposure

	Key1 = 49 // lit output
	Key2 = 50 // albedo debug display
	Key3 = 51 // normals debug display
	Key4 = 52 // depth debug display
)

// Non-printable keys (GLFW)
const (
	KeyEsc       = 256
	KeyF5        = 294 // reload the current scene file
	KeyLeftShift = 340
)

// Mouse buttons (GLFW)
const (
	MouseButtonLeft = 0
)
