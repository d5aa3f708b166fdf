package triangle

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/internal/gpu"
	"github.com/gogpu/triangle/internal/shader"
	"github.com/gogpu/triangle/internal/window"
)

//go:embed shaders/main.wgsl
var embeddedWGSL string

// statsInterval is the number of frames between frame statistics records.
const statsInterval = 300

// Window is the part of a native window the application drives.
// *window.Window implements it.
type Window interface {
	FramebufferSize() (width, height int)
	ShouldClose() bool
	PollEvents()
	OnFramebufferResize(fn func(width, height int))
	NativeHandles() (display, window uintptr, err error)
	Destroy()
}

// Application owns the window, the GPU device and the renderer.
// It must be used from the main OS thread.
type Application struct {
	title string
	opts  options
	win   Window

	device   *gpu.Device
	renderer *gpu.Renderer

	width, height int
	resizeErr     error

	frames     uint64
	statsEvery uint64
	statsStart time.Time
	statsBase  uint64

	closed bool
}

// New opens a window of width x height and returns an Application ready to
// Run. No GPU object exists until OnInitialize.
func New(title string, width, height int, opts ...Option) (*Application, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	backends, err := gpu.ParseBackend(o.backend)
	if err != nil {
		return nil, err
	}
	o.backends = backends

	win, err := window.New(window.Config{
		Title:     title,
		Width:     width,
		Height:    height,
		Resizable: o.resizable,
	})
	if err != nil {
		return nil, err
	}
	return newApplication(title, win, o), nil
}

// newApplication wires an Application to an already open window.
func newApplication(title string, win Window, o options) *Application {
	a := &Application{
		title:      title,
		opts:       o,
		win:        win,
		statsEvery: statsInterval,
	}
	a.width, a.height = win.FramebufferSize()
	win.OnFramebufferResize(a.onResize)
	return a
}

// onResize runs from PollEvents when the framebuffer changes size.
func (a *Application) onResize(width, height int) {
	a.width, a.height = width, height
	if a.renderer == nil {
		return
	}
	Logger().Debug("triangle: framebuffer resized", "width", width, "height", height)
	if err := a.renderer.Resize(width, height); err != nil && a.resizeErr == nil {
		a.resizeErr = err
	}
}

// Title returns the window title.
func (a *Application) Title() string { return a.title }

// Size returns the last known framebuffer size in pixels.
func (a *Application) Size() (width, height int) { return a.width, a.height }

// FramesRendered returns the number of frames presented so far.
func (a *Application) FramesRendered() uint64 { return a.frames }

// OnInitialize loads the shader, opens the GPU device on the window surface
// and creates the renderer. On failure everything created so far is
// released.
func (a *Application) OnInitialize() error {
	if a.closed {
		return ErrClosed
	}
	if a.renderer != nil {
		return nil
	}

	src, err := a.loadShader()
	if err != nil {
		return err
	}
	vs, err := src.EntryPoint(shader.StageVertex)
	if err != nil {
		return err
	}
	fs, err := src.EntryPoint(shader.StageFragment)
	if err != nil {
		return err
	}

	display, handle, err := a.win.NativeHandles()
	if err != nil {
		return err
	}
	dev, err := gpu.OpenDevice(gpu.DeviceConfig{
		Backends:        a.opts.backends,
		HighPerformance: a.opts.highPerformance,
		Debug:           a.opts.debug,
	}, display, handle)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}

	r, err := gpu.NewRenderer(dev, a.width, a.height, gpu.ShaderSource{
		Label:         src.Name,
		Code:          src.Code,
		VertexEntry:   vs,
		FragmentEntry: fs,
	}, gpu.RendererOptions{
		VSync:      a.opts.vsync,
		ClearColor: a.opts.clearColor,
	})
	if err != nil {
		dev.Destroy()
		return fmt.Errorf("create renderer: %w", err)
	}
	a.device = dev
	a.renderer = r
	a.statsStart = time.Now()

	info := r.AdapterInfo()
	Logger().Info("triangle: initialized",
		"title", a.title,
		"adapter", info.Name,
		"backend", dev.Backend(),
		"format", r.SurfaceFormat(),
		"width", a.width,
		"height", a.height,
		"shader", src.Name)
	return nil
}

func (a *Application) loadShader() (*shader.Source, error) {
	if a.opts.embeddedShader {
		return shader.Parse("embedded:"+shader.DefaultPath, embeddedWGSL)
	}
	return shader.Load(a.opts.shaderPath)
}

// OnUpdate runs once per loop iteration before OnRender. The triangle is
// static, so it only keeps frame statistics.
func (a *Application) OnUpdate() {
	if a.renderer == nil || a.statsEvery == 0 {
		return
	}
	n := a.frames - a.statsBase
	if n < a.statsEvery {
		return
	}
	now := time.Now()
	elapsed := now.Sub(a.statsStart)
	Logger().Debug("triangle: frame stats",
		"frames", a.frames,
		"avg_frame", elapsed/time.Duration(n),
		"fps", float64(n)/elapsed.Seconds())
	a.statsStart = now
	a.statsBase = a.frames
}

// OnRender draws and presents one frame and waits for the GPU to finish it.
func (a *Application) OnRender() error {
	if a.closed {
		return ErrClosed
	}
	if a.renderer == nil {
		return ErrNotInitialized
	}
	if err := a.renderer.RenderFrame(); err != nil {
		return fmt.Errorf("render frame %d: %w", a.frames, err)
	}
	a.frames = a.renderer.FramesRendered()
	return nil
}

// OnClose waits for the GPU to go idle and releases the renderer, the
// device and the window, in that order. Safe to call more than once.
func (a *Application) OnClose() {
	if a.closed {
		return
	}
	a.closed = true
	if a.renderer != nil {
		a.frames = a.renderer.FramesRendered()
		a.renderer.Destroy()
		a.renderer = nil
	}
	if a.device != nil {
		a.device.Destroy()
		a.device = nil
	}
	a.win.Destroy()
	Logger().Info("triangle: closed", "frames", a.frames)
}

// Run initializes the application and renders frames until the window is
// closed or ctx is done, then closes it. ctx is checked between frames.
// Cancellation is a normal shutdown and returns nil.
func (a *Application) Run(ctx context.Context) error {
	if a.closed {
		return ErrClosed
	}
	defer a.OnClose()

	if err := a.OnInitialize(); err != nil {
		return err
	}
	for !a.win.ShouldClose() {
		if err := ctx.Err(); err != nil {
			Logger().Info("triangle: stopping", "reason", context.Cause(ctx))
			return nil
		}
		a.OnUpdate()
		if err := a.OnRender(); err != nil {
			return err
		}
		a.win.PollEvents()
		if a.resizeErr != nil {
			return a.resizeErr
		}
	}
	return nil
}

// ClearColor returns the background color the application draws with.
func (a *Application) ClearColor() gputypes.Color {
	if a.opts.clearColor != nil {
		return *a.opts.clearColor
	}
	return gpu.DefaultClearColor
}

var _ Window = (*window.Window)(nil)

// IsUnsupportedPlatform reports whether err means the window system cannot
// provide a native GPU surface on this platform.
func IsUnsupportedPlatform(err error) bool {
	return errors.Is(err, window.ErrUnsupportedPlatform)
}
