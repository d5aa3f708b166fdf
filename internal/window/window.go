// Package window wraps a single GLFW window with no client graphics API
// attached, so that a GPU surface can be created on its native handles.
//
// All functions must be called from the main OS thread; callers lock it
// with runtime.LockOSThread before calling New.
package window

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"
)

// ErrUnsupportedPlatform is returned by NativeHandles on platforms where no
// native surface can be created from a GLFW window.
var ErrUnsupportedPlatform = errors.New("window: native surface handles not supported on this platform")

// Config describes the window to create.
type Config struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// Window is a GLFW window without an OpenGL context.
type Window struct {
	glw      *glfw.Window
	onResize func(width, height int)
}

var _ gpucontext.WindowProvider = (*Window)(nil)

// New initializes GLFW and opens a window of cfg.Width x cfg.Height
// screen coordinates.
func New(cfg Config) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("window: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	glw, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	w := &Window{glw: glw}
	glw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	return w, nil
}

// OnFramebufferResize installs the callback invoked from PollEvents when
// the framebuffer size changes. Only one callback is kept.
func (w *Window) OnFramebufferResize(fn func(width, height int)) {
	w.onResize = fn
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.glw.GetFramebufferSize()
}

// Size implements gpucontext.WindowProvider. It reports the framebuffer
// size in pixels.
func (w *Window) Size() (width, height int) {
	return w.glw.GetFramebufferSize()
}

// ScaleFactor implements gpucontext.WindowProvider.
func (w *Window) ScaleFactor() float64 {
	x, _ := w.glw.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

// RequestRedraw implements gpucontext.WindowProvider by waking the event
// loop. The triangle redraws continuously, so this only unblocks waits.
func (w *Window) RequestRedraw() {
	glfw.PostEmptyEvent()
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.glw.ShouldClose()
}

// PollEvents processes pending window events, running the resize
// callback synchronously if the framebuffer changed.
func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	if w.glw != nil {
		w.glw.Destroy()
		w.glw = nil
	}
	glfw.Terminate()
}
