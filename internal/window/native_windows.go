//go:build windows

package window

import "unsafe"

// NativeHandles returns the Win32 HWND. The display handle is unused on
// Windows and is always zero.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	return 0, uintptr(unsafe.Pointer(w.glw.GetWin32Window())), nil
}
