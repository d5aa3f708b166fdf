package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Viewport maps normalized device coordinates onto the render target.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// ScissorRect clips rasterization to a pixel rectangle.
type ScissorRect struct {
	X, Y, Width, Height uint32
}

// fullViewport returns a viewport and scissor covering width x height.
func fullViewport(width, height uint32) (Viewport, ScissorRect) {
	return Viewport{
			Width:    float32(width),
			Height:   float32(height),
			MaxDepth: 1,
		}, ScissorRect{
			Width:  width,
			Height: height,
		}
}

// DefaultClearColor is the background the triangle is drawn over.
var DefaultClearColor = gputypes.Color{R: 0.0, G: 0.2, B: 0.4, A: 1.0}

// frameCommands is everything needed to record one frame.
type frameCommands struct {
	target   hal.TextureView
	pipeline hal.RenderPipeline
	vertices hal.Buffer
	count    uint32
	viewport Viewport
	scissor  ScissorRect
	clear    gputypes.Color
}

// record encodes a single clear-and-draw pass into enc and closes it.
// enc must have been reset by the caller.
func (fc *frameCommands) record(enc hal.CommandEncoder) (hal.CommandBuffer, error) {
	if err := enc.BeginEncoding("triangle_frame"); err != nil {
		return nil, fmt.Errorf("begin frame encoding: %w", err)
	}

	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "triangle_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       fc.target,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: fc.clear,
			},
		},
	})
	vp := fc.viewport
	rp.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	rp.SetScissorRect(fc.scissor.X, fc.scissor.Y, fc.scissor.Width, fc.scissor.Height)
	rp.SetPipeline(fc.pipeline)
	rp.SetVertexBuffer(0, fc.vertices, 0)
	rp.Draw(fc.count, 1, 0, 0)
	rp.End()

	cmd, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end frame encoding: %w", err)
	}
	return cmd, nil
}
