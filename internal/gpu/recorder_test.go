package gpu

import (
	"fmt"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop" // registers gputypes.BackendEmpty
)

// callLog collects the HAL calls made through the recording wrappers.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) reset() { l.calls = nil }

// recordingDevice wraps a noop device and tracks buffers and views.
type recordingDevice struct {
	hal.Device
	log *callLog

	labels    map[hal.Buffer]string
	buffers   []hal.Buffer
	destroyed []hal.Buffer
	liveViews int
	waitIdle  int
}

func (d *recordingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	b, err := d.Device.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	d.labels[b] = desc.Label
	d.buffers = append(d.buffers, b)
	d.log.add("CreateBuffer %s", desc.Label)
	return b, nil
}

func (d *recordingDevice) DestroyBuffer(b hal.Buffer) {
	d.destroyed = append(d.destroyed, b)
	d.log.add("DestroyBuffer %s", d.labels[b])
	d.Device.DestroyBuffer(b)
}

func (d *recordingDevice) CreateTextureView(tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	v, err := d.Device.CreateTextureView(tex, desc)
	if err == nil {
		d.liveViews++
	}
	return v, err
}

func (d *recordingDevice) DestroyTextureView(v hal.TextureView) {
	d.liveViews--
	d.Device.DestroyTextureView(v)
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, log: d.log}, nil
}

func (d *recordingDevice) WaitIdle() error {
	d.waitIdle++
	return d.Device.WaitIdle()
}

type recordingEncoder struct {
	hal.CommandEncoder
	log *callLog
}

func (e *recordingEncoder) ResetAll(cmds []hal.CommandBuffer) {
	e.log.add("ResetAll %d", len(cmds))
	e.CommandEncoder.ResetAll(cmds)
}

func (e *recordingEncoder) BeginEncoding(label string) error {
	e.log.add("BeginEncoding %s", label)
	return e.CommandEncoder.BeginEncoding(label)
}

func (e *recordingEncoder) EndEncoding() (hal.CommandBuffer, error) {
	e.log.add("EndEncoding")
	return e.CommandEncoder.EndEncoding()
}

func (e *recordingEncoder) CopyBufferToBuffer(src, dst hal.Buffer, regions []hal.BufferCopy) {
	e.log.add("CopyBufferToBuffer %d", regions[0].Size)
	e.CommandEncoder.CopyBufferToBuffer(src, dst, regions)
}

func (e *recordingEncoder) TransitionBuffers(barriers []hal.BufferBarrier) {
	for _, b := range barriers {
		e.log.add("TransitionBuffers %d->%d", b.Usage.OldUsage, b.Usage.NewUsage)
	}
	e.CommandEncoder.TransitionBuffers(barriers)
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	c := desc.ColorAttachments[0].ClearValue
	e.log.add("BeginRenderPass clear=%.1f,%.1f,%.1f,%.1f", c.R, c.G, c.B, c.A)
	return &recordingPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), log: e.log}
}

type recordingPass struct {
	hal.RenderPassEncoder
	log *callLog
}

func (p *recordingPass) SetViewport(x, y, w, h, minDepth, maxDepth float32) {
	p.log.add("SetViewport %g %g %g %g %g %g", x, y, w, h, minDepth, maxDepth)
	p.RenderPassEncoder.SetViewport(x, y, w, h, minDepth, maxDepth)
}

func (p *recordingPass) SetScissorRect(x, y, w, h uint32) {
	p.log.add("SetScissorRect %d %d %d %d", x, y, w, h)
	p.RenderPassEncoder.SetScissorRect(x, y, w, h)
}

func (p *recordingPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.log.add("SetPipeline")
	p.RenderPassEncoder.SetPipeline(pipeline)
}

func (p *recordingPass) SetVertexBuffer(slot uint32, buf hal.Buffer, offset uint64) {
	p.log.add("SetVertexBuffer %d %d", slot, offset)
	p.RenderPassEncoder.SetVertexBuffer(slot, buf, offset)
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.log.add("Draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance)
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *recordingPass) End() {
	p.log.add("End")
	p.RenderPassEncoder.End()
}

// recordingQueue wraps a noop queue. presentErrs are returned by Present in
// order before falling through to the wrapped queue.
type recordingQueue struct {
	hal.Queue
	log         *callLog
	presentErrs []error
}

func (q *recordingQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	q.log.add("Submit %d", len(cmds))
	return q.Queue.Submit(cmds)
}

func (q *recordingQueue) Present(s hal.Surface, tex hal.SurfaceTexture, damage []image.Rectangle) error {
	q.log.add("Present")
	if len(q.presentErrs) > 0 {
		err := q.presentErrs[0]
		q.presentErrs = q.presentErrs[1:]
		return err
	}
	return q.Queue.Present(s, tex, damage)
}

// recordingSurface wraps a noop surface. acquireErrs are returned by
// AcquireTexture in order before falling through to the wrapped surface.
type recordingSurface struct {
	hal.Surface
	configures  int
	acquires    int
	acquireErrs []error
}

func (s *recordingSurface) Configure(device hal.Device, cfg *hal.SurfaceConfiguration) error {
	s.configures++
	return s.Surface.Configure(device, cfg)
}

func (s *recordingSurface) AcquireTexture(fence hal.Fence) (*hal.AcquiredSurfaceTexture, error) {
	s.acquires++
	if len(s.acquireErrs) > 0 {
		err := s.acquireErrs[0]
		s.acquireErrs = s.acquireErrs[1:]
		return nil, err
	}
	return s.Surface.AcquireTexture(fence)
}

// recordSurface swaps the renderer's swap-chain surface for a recorder.
// The Device keeps the original surface and still destroys it.
func recordSurface(r *Renderer) *recordingSurface {
	rs := &recordingSurface{Surface: r.swapChain.surface}
	r.swapChain.surface = rs
	return rs
}

// openNoopDevice opens a Device on the noop backend.
func openNoopDevice(t *testing.T) *Device {
	t.Helper()
	d, err := OpenDevice(DeviceConfig{Backends: []gputypes.Backend{gputypes.BackendEmpty}}, 0, 0)
	if err != nil {
		t.Fatalf("OpenDevice failed: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

// openRecordingDevice opens a noop Device whose HAL device and queue are
// wrapped with call recorders.
func openRecordingDevice(t *testing.T) (*Device, *recordingDevice, *recordingQueue, *callLog) {
	t.Helper()
	d := openNoopDevice(t)
	log := &callLog{}
	rd := &recordingDevice{Device: d.device, log: log, labels: make(map[hal.Buffer]string)}
	rq := &recordingQueue{Queue: d.queue, log: log}
	d.device = rd
	d.queue = rq
	return d, rd, rq, log
}

func equalCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d calls, want %d\n got: %q\nwant: %q", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}
