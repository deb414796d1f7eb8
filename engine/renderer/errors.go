package renderer

import "fmt"

// ResourceError reports a GPU resource that cannot be created or used as
// configured, such as an incomplete framebuffer.
type ResourceError struct {
	Op     string
	Reason string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource error: %s: %s", e.Op, e.Reason)
}
