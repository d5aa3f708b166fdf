package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RendererOptions tunes presentation and the clear color.
type RendererOptions struct {
	// VSync presents once per vertical blank (FIFO).
	VSync bool

	// ClearColor is the background color. The zero value means
	// DefaultClearColor.
	ClearColor *gputypes.Color
}

// Renderer draws the triangle into a window surface. It owns the swap
// chain, the reusable command encoder, the pipeline, the vertex buffer and
// the frame fence.
//
// Each RenderFrame call records, submits and presents one frame and then
// blocks until the GPU has finished it. Renderer is not safe for concurrent
// use and must be driven from the thread that owns the window.
type Renderer struct {
	dev    *Device
	device hal.Device
	queue  hal.Queue

	swapChain *SwapChain
	encoder   hal.CommandEncoder
	fence     *Fence
	pipeline  *Pipeline
	vertices  *VertexBuffer

	// retired holds the previous frame's command buffers until the encoder
	// is reset at the start of the next frame.
	retired []hal.CommandBuffer

	viewport Viewport
	scissor  ScissorRect
	clear    gputypes.Color

	frames uint64
	closed bool
}

// NewRenderer performs both one-time setup stages against dev: the swap
// chain and command encoder first, then the pipeline and the vertex upload
// (which waits for the GPU before returning).
func NewRenderer(dev *Device, width, height int, src ShaderSource, opts RendererOptions) (*Renderer, error) {
	device, queue := dev.HAL()
	r := &Renderer{
		dev:    dev,
		device: device,
		queue:  queue,
		clear:  DefaultClearColor,
	}
	if opts.ClearColor != nil {
		r.clear = *opts.ClearColor
	}
	if err := r.loadPipeline(width, height, opts.VSync); err != nil {
		r.Destroy()
		return nil, err
	}
	if err := r.loadAssets(src); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// loadPipeline creates the swap chain and the command encoder.
func (r *Renderer) loadPipeline(width, height int, vsync bool) error {
	sc, err := NewSwapChain(r.dev, width, height, vsync)
	if err != nil {
		return fmt.Errorf("create swap chain: %w", err)
	}
	r.swapChain = sc
	r.viewport, r.scissor = fullViewport(sc.Size())

	enc, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "triangle_commands",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	r.encoder = enc
	return nil
}

// loadAssets builds the pipeline, creates the fence and uploads the
// vertex buffer, blocking until the upload has completed.
func (r *Renderer) loadAssets(src ShaderSource) error {
	p, err := NewPipeline(r.device, src, r.swapChain.Format())
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	r.pipeline = p

	r.fence = NewFence(r.device, r.queue)

	vb, err := UploadVertices(r.device, r.queue, r.encoder, r.fence, TriangleVertices[:])
	if err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}
	r.vertices = vb
	return nil
}

// RenderFrame records, submits and presents one frame, then waits for the
// GPU to finish it before advancing to the next back buffer.
//
// Nothing is drawn while the surface has zero area, and a frame is skipped
// when the surface has no image ready. Every other failure is returned.
func (r *Renderer) RenderFrame() error {
	if r.closed {
		return ErrRendererClosed
	}
	if !r.swapChain.Ready() {
		return nil
	}

	// Reset the allocator: the previous frame is known complete.
	r.encoder.ResetAll(r.retired)
	r.retired = r.retired[:0]

	target, err := r.swapChain.Acquire()
	if errors.Is(err, hal.ErrNotReady) || errors.Is(err, hal.ErrTimeout) {
		slogger().Debug("gpu: no back buffer ready, skipping frame", "err", err)
		return nil
	}
	if err != nil {
		return err
	}

	fc := frameCommands{
		target:   target,
		pipeline: r.pipeline.pipeline,
		vertices: r.vertices.Buffer(),
		count:    r.vertices.Count(),
		viewport: r.viewport,
		scissor:  r.scissor,
		clear:    r.clear,
	}
	cmd, err := fc.record(r.encoder)
	if err != nil {
		r.encoder.DiscardEncoding()
		r.swapChain.Discard()
		return err
	}
	r.retired = append(r.retired, cmd)

	idx, err := r.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		r.swapChain.Discard()
		return fmt.Errorf("submit frame %d: %w", r.frames, err)
	}

	outdated := false
	if err := r.swapChain.Present(r.queue); err != nil {
		if !errors.Is(err, hal.ErrSurfaceOutdated) {
			return err
		}
		outdated = true
	}

	r.fence.Signal(idx)
	if err := r.WaitForPreviousFrame(); err != nil {
		return err
	}
	r.swapChain.Advance()
	r.frames++

	if outdated {
		w, h := r.swapChain.Size()
		slogger().Debug("gpu: surface outdated on present, reconfiguring")
		return r.swapChain.Resize(int(w), int(h))
	}
	return nil
}

// WaitForPreviousFrame blocks until the most recently submitted frame has
// completed on the GPU.
func (r *Renderer) WaitForPreviousFrame() error {
	if r.fence == nil {
		return nil
	}
	return r.fence.Wait()
}

// Resize updates the viewport and scissor and rebuilds the swap chain for
// the new framebuffer size once the GPU is idle.
func (r *Renderer) Resize(width, height int) error {
	if r.closed {
		return ErrRendererClosed
	}
	if err := r.WaitForPreviousFrame(); err != nil {
		return err
	}
	if err := r.swapChain.Resize(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	r.viewport, r.scissor = fullViewport(r.swapChain.Size())
	return nil
}

// FrameIndex returns the back buffer the next frame renders to.
func (r *Renderer) FrameIndex() uint32 { return r.swapChain.FrameIndex() }

// FramesRendered returns the number of frames completed so far.
func (r *Renderer) FramesRendered() uint64 { return r.frames }

// Viewport returns the current viewport and scissor rectangle.
func (r *Renderer) Viewport() (Viewport, ScissorRect) { return r.viewport, r.scissor }

// AdapterInfo describes the adapter the renderer runs on.
func (r *Renderer) AdapterInfo() gpucontext.AdapterInfo { return r.dev.AdapterInfo() }

// SurfaceFormat returns the back-buffer color format.
func (r *Renderer) SurfaceFormat() gputypes.TextureFormat { return r.swapChain.Format() }

// Destroy waits for the GPU to go idle and releases everything the
// renderer created, in reverse creation order. The Device is not
// destroyed. Safe to call more than once.
func (r *Renderer) Destroy() {
	if r.closed {
		return
	}
	r.closed = true
	if err := r.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle before destroy", "err", err)
	}
	if r.vertices != nil {
		r.vertices.Destroy()
		r.vertices = nil
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}
	if r.encoder != nil {
		r.encoder.ResetAll(r.retired)
		r.retired = nil
		r.encoder.Destroy()
		r.encoder = nil
	}
	if r.swapChain != nil {
		r.swapChain.Destroy()
		r.swapChain = nil
	}
	slogger().Debug("gpu: renderer destroyed", "frames", r.frames)
}
