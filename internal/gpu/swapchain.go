package gpu

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// FrameCount is the number of swap-chain back buffers.
const FrameCount = 2

// frameSlot holds the surface texture acquired for one back buffer and the
// render-target view created on it.
type frameSlot struct {
	texture hal.SurfaceTexture
	view    hal.TextureView
}

// SwapChain manages the window surface configuration and a ring of
// FrameCount back-buffer slots. Slot resources are only released once the
// fence has confirmed the GPU is done with them.
type SwapChain struct {
	device  hal.Device
	surface hal.Surface

	format      gputypes.TextureFormat
	presentMode gputypes.PresentMode
	alphaMode   gputypes.CompositeAlphaMode

	width, height uint32
	configured    bool

	frames     [FrameCount]frameSlot
	frameIndex uint32
	acquired   bool

	warnedSuboptimal bool
}

// NewSwapChain configures dev's surface at width x height.
// With vsync the FIFO present mode is used (one vblank per present);
// otherwise immediate or mailbox presentation is chosen when supported.
func NewSwapChain(dev *Device, width, height int, vsync bool) (*SwapChain, error) {
	caps := dev.SurfaceCapabilities()
	if caps == nil || len(caps.Formats) == 0 {
		return nil, ErrNoSurfaceFormat
	}
	sc := &SwapChain{
		device:      dev.device,
		surface:     dev.surface,
		format:      chooseFormat(caps.Formats),
		presentMode: choosePresentMode(caps.PresentModes, vsync),
		alphaMode:   chooseAlphaMode(caps.AlphaModes),
	}
	if err := sc.Resize(width, height); err != nil {
		return nil, err
	}
	return sc, nil
}

// chooseFormat prefers RGBA8Unorm, then BGRA8Unorm, then whatever the
// surface lists first.
func chooseFormat(formats []gputypes.TextureFormat) gputypes.TextureFormat {
	for _, want := range []gputypes.TextureFormat{
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatBGRA8Unorm,
	} {
		if slices.Contains(formats, want) {
			return want
		}
	}
	return formats[0]
}

func choosePresentMode(modes []gputypes.PresentMode, vsync bool) gputypes.PresentMode {
	if vsync {
		return gputypes.PresentModeFifo
	}
	for _, want := range []gputypes.PresentMode{
		gputypes.PresentModeImmediate,
		gputypes.PresentModeMailbox,
	} {
		if slices.Contains(modes, want) {
			return want
		}
	}
	return gputypes.PresentModeFifo
}

func chooseAlphaMode(modes []gputypes.CompositeAlphaMode) gputypes.CompositeAlphaMode {
	if len(modes) == 0 || slices.Contains(modes, gputypes.CompositeAlphaModeOpaque) {
		return gputypes.CompositeAlphaModeOpaque
	}
	return modes[0]
}

// Format returns the back-buffer color format.
func (sc *SwapChain) Format() gputypes.TextureFormat { return sc.format }

// Size returns the configured back-buffer size.
func (sc *SwapChain) Size() (uint32, uint32) { return sc.width, sc.height }

// FrameIndex returns the index of the back buffer the next frame renders to.
func (sc *SwapChain) FrameIndex() uint32 { return sc.frameIndex }

// Ready reports whether the surface is configured with a non-zero area.
func (sc *SwapChain) Ready() bool { return sc.configured }

// Resize reconfigures the surface for a new framebuffer size. The caller
// must make sure no submitted work still references the back buffers.
//
// A zero width or height (minimized window) unconfigures the surface and
// defers configuration until a non-zero size arrives.
func (sc *SwapChain) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("resize swap chain: negative size %dx%d", width, height)
	}
	sc.releaseFrames()
	sc.width, sc.height = uint32(width), uint32(height) //nolint:gosec // checked non-negative
	sc.frameIndex = 0

	if width == 0 || height == 0 {
		if sc.configured {
			sc.surface.Unconfigure(sc.device)
			sc.configured = false
		}
		slogger().Debug("gpu: swap chain deferred for zero-area surface")
		return nil
	}
	if err := sc.configure(); err != nil {
		return err
	}
	slogger().Info("gpu: swap chain configured",
		"width", sc.width, "height", sc.height,
		"format", sc.format, "present_mode", sc.presentMode,
		"buffers", FrameCount)
	return nil
}

func (sc *SwapChain) configure() error {
	err := sc.surface.Configure(sc.device, &hal.SurfaceConfiguration{
		Width:       sc.width,
		Height:      sc.height,
		Format:      sc.format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: sc.presentMode,
		AlphaMode:   sc.alphaMode,
	})
	if err != nil {
		sc.configured = false
		return fmt.Errorf("configure surface %dx%d: %w", sc.width, sc.height, err)
	}
	sc.configured = true
	return nil
}

// Acquire obtains the surface texture for the current back buffer and
// creates a render-target view on it. An outdated surface is reconfigured
// once and acquisition retried.
func (sc *SwapChain) Acquire() (hal.TextureView, error) {
	if !sc.configured {
		return nil, fmt.Errorf("acquire back buffer: %w", hal.ErrZeroArea)
	}
	acquired, err := sc.surface.AcquireTexture(nil)
	if errors.Is(err, hal.ErrSurfaceOutdated) {
		slogger().Debug("gpu: surface outdated, reconfiguring")
		if err := sc.configure(); err != nil {
			return nil, err
		}
		acquired, err = sc.surface.AcquireTexture(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire back buffer %d: %w", sc.frameIndex, err)
	}
	if acquired.Suboptimal && !sc.warnedSuboptimal {
		sc.warnedSuboptimal = true
		slogger().Warn("gpu: surface is suboptimal for the current window")
	}

	slot := &sc.frames[sc.frameIndex]
	sc.releaseSlot(slot)
	view, err := sc.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:           fmt.Sprintf("back_buffer_%d", sc.frameIndex),
		Format:          sc.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		sc.surface.DiscardTexture(acquired.Texture)
		return nil, fmt.Errorf("create back buffer view %d: %w", sc.frameIndex, err)
	}
	slot.texture = acquired.Texture
	slot.view = view
	sc.acquired = true
	return view, nil
}

// Present queues the current back buffer for display.
func (sc *SwapChain) Present(queue hal.Queue) error {
	if !sc.acquired {
		return fmt.Errorf("present: no back buffer acquired")
	}
	sc.acquired = false
	slot := &sc.frames[sc.frameIndex]
	if err := queue.Present(sc.surface, slot.texture, nil); err != nil {
		return fmt.Errorf("present back buffer %d: %w", sc.frameIndex, err)
	}
	return nil
}

// Discard gives back an acquired texture that will not be presented.
func (sc *SwapChain) Discard() {
	if !sc.acquired {
		return
	}
	sc.acquired = false
	slot := &sc.frames[sc.frameIndex]
	sc.surface.DiscardTexture(slot.texture)
	sc.releaseSlot(slot)
}

// Advance moves to the next back buffer. Call only after the frame's fence
// wait has returned.
func (sc *SwapChain) Advance() {
	sc.frameIndex = (sc.frameIndex + 1) % FrameCount
}

func (sc *SwapChain) releaseSlot(slot *frameSlot) {
	if slot.view != nil {
		sc.device.DestroyTextureView(slot.view)
		slot.view = nil
	}
	slot.texture = nil
}

func (sc *SwapChain) releaseFrames() {
	sc.Discard()
	for i := range sc.frames {
		sc.releaseSlot(&sc.frames[i])
	}
}

// Destroy releases back-buffer views and unconfigures the surface.
func (sc *SwapChain) Destroy() {
	sc.releaseFrames()
	if sc.configured {
		sc.surface.Unconfigure(sc.device)
		sc.configured = false
	}
}
