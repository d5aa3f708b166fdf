//go:build (linux && !wayland) || (freebsd && !wayland) || (netbsd && !wayland) || (openbsd && !wayland)

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// NativeHandles returns the X11 Display pointer and Window id.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	return uintptr(unsafe.Pointer(glfw.GetX11Display())), uintptr(w.glw.GetX11Window()), nil
}
