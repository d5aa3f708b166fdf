//go:build !windows && !((linux && !wayland) || (freebsd && !wayland) || (netbsd && !wayland) || (openbsd && !wayland))

package window

// NativeHandles is not available here: macOS needs a CAMetalLayer and
// Wayland needs the wl_display and wl_surface pair, neither of which this
// window wrapper provides yet.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	return 0, 0, ErrUnsupportedPlatform
}
