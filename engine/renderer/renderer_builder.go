package renderer

import "github.com/Carmen-Shannon/oxy-gl/common"

// DeviceBuilderOption is a functional option applied to a device during construction via NewDevice.
type DeviceBuilderOption func(*device)

// WithDrawableSize overrides gl.Context.DrawableSize as the source of the
// back-buffer size in pixels. The back-buffer Target queries it on every With
// to size the viewport, so window resizes need no extra bookkeeping.
//
// Parameters:
//   - fn: returns the current framebuffer width and height, e.g. Window.FramebufferSize
//
// Returns:
//   - DeviceBuilderOption: a function that applies the drawable size option to a device
func WithDrawableSize(fn func() (int, int)) DeviceBuilderOption {
	return func(d *device) {
		if fn != nil {
			d.drawableSize = fn
		}
	}
}

// WithClearColor sets the color the back-buffer Target clears to when Clear
// is called without a ClearColor option. The default is transparent black.
//
// Parameters:
//   - c: the default clear color
//
// Returns:
//   - DeviceBuilderOption: a function that applies the clear color option to a device
func WithClearColor(c common.Color) DeviceBuilderOption {
	return func(d *device) {
		d.clearColor = c
	}
}
