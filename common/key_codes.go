package common

// Key codes delivered to window key callbacks. Printable keys use their ASCII
// upper-case value, the rest follow GLFW.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32
	KeyA     = 65
	KeyD     = 68
	KeyS     = 83
	KeyW     = 87

	KeyEsc        = 256
	KeyLeftShift  = 340
	KeyRightShift = 344
)
