// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Rect is an integer pixel rectangle with its origin at the bottom-left corner,
// matching the GL window-coordinate convention.
type Rect struct {
	X, Y          int
	Width, Height int
}

// NewRect creates a Rect from an origin and a size.
//
// Parameters:
//   - x, y: the bottom-left corner in pixels
//   - width, height: the extent in pixels
//
// Returns:
//   - Rect: the rectangle
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Max returns the exclusive top-right corner, as used by BlitFramebuffer.
//
// Returns:
//   - int: x + width
//   - int: y + height
func (r Rect) Max() (int, int) {
	return r.X + r.Width, r.Y + r.Height
}

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGBA creates a Color from its four components.
//
// Parameters:
//   - r, g, b, a: the color components
//
// Returns:
//   - Color: the color
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Array returns the color as a four element array, the layout expected by vec4 uniforms.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}
