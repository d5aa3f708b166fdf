package gpu

import (
	"errors"
	"strconv"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func newTestRenderer(t *testing.T, w, h int) (*Renderer, *recordingDevice, *recordingQueue, *callLog) {
	t.Helper()
	d, rd, rq, log := openRecordingDevice(t)
	r, err := NewRenderer(d, w, h, testShader(t), RendererOptions{VSync: true})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Destroy)
	log.reset()
	return r, rd, rq, log
}

func frameCalls(w, h int, resetCount int) []string {
	vp := []string{
		"SetViewport 0 0 " + strconv.Itoa(w) + " " + strconv.Itoa(h) + " 0 1",
		"SetScissorRect 0 0 " + strconv.Itoa(w) + " " + strconv.Itoa(h),
	}
	calls := []string{
		"ResetAll " + strconv.Itoa(resetCount),
		"BeginEncoding triangle_frame",
		"BeginRenderPass clear=0.0,0.2,0.4,1.0",
	}
	calls = append(calls, vp...)
	return append(calls,
		"SetPipeline",
		"SetVertexBuffer 0 0",
		"Draw 3 1 0 0",
		"End",
		"EndEncoding",
		"Submit 1",
		"Present",
	)
}

func TestRendererFrameSequence(t *testing.T) {
	r, _, _, log := newTestRenderer(t, 1280, 720)

	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	equalCalls(t, log.calls, frameCalls(1280, 720, 0))

	log.reset()
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("second RenderFrame: %v", err)
	}
	// The second frame recycles the first frame's command buffer.
	equalCalls(t, log.calls, frameCalls(1280, 720, 1))

	if r.FramesRendered() != 2 {
		t.Errorf("FramesRendered() = %d, want 2", r.FramesRendered())
	}
	if r.fence.Completed() != 3 {
		t.Errorf("fence Completed() = %d, want 3 (upload + 2 frames)", r.fence.Completed())
	}
}

func TestRendererFrameIndexAdvances(t *testing.T) {
	r, rd, _, _ := newTestRenderer(t, 64, 64)
	for i := 0; i < 5; i++ {
		if got, want := r.FrameIndex(), uint32(i%FrameCount); got != want {
			t.Fatalf("frame %d: FrameIndex() = %d, want %d", i, got, want)
		}
		if err := r.RenderFrame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if rd.liveViews > FrameCount {
			t.Fatalf("frame %d: %d live views", i, rd.liveViews)
		}
	}
}

func TestRendererResize(t *testing.T) {
	r, _, _, log := newTestRenderer(t, 640, 480)
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	if err := r.Resize(1024, 768); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	vp, sc := r.Viewport()
	if vp.Width != 1024 || vp.Height != 768 || vp.MaxDepth != 1 {
		t.Errorf("viewport = %+v", vp)
	}
	if sc.Width != 1024 || sc.Height != 768 {
		t.Errorf("scissor = %+v", sc)
	}
	if r.FrameIndex() != 0 {
		t.Errorf("FrameIndex() after resize = %d, want 0", r.FrameIndex())
	}

	log.reset()
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame after resize: %v", err)
	}
	equalCalls(t, log.calls, frameCalls(1024, 768, 1))
}

func TestRendererMinimized(t *testing.T) {
	r, _, _, log := newTestRenderer(t, 640, 480)
	if err := r.Resize(0, 0); err != nil {
		t.Fatalf("Resize(0, 0): %v", err)
	}
	log.reset()
	for i := 0; i < 3; i++ {
		if err := r.RenderFrame(); err != nil {
			t.Fatalf("RenderFrame while minimized: %v", err)
		}
	}
	if len(log.calls) != 0 {
		t.Errorf("expected no GPU calls while minimized, got %q", log.calls)
	}
	if r.FramesRendered() != 0 {
		t.Errorf("FramesRendered() = %d, want 0", r.FramesRendered())
	}

	if err := r.Resize(640, 480); err != nil {
		t.Fatalf("Resize restore: %v", err)
	}
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame after restore: %v", err)
	}
	if r.FramesRendered() != 1 {
		t.Errorf("FramesRendered() = %d, want 1", r.FramesRendered())
	}
}

func TestRendererPresentOutdated(t *testing.T) {
	r, _, rq, _ := newTestRenderer(t, 320, 200)
	rq.presentErrs = []error{hal.ErrSurfaceOutdated}
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame with outdated surface: %v", err)
	}
	if r.FramesRendered() != 1 {
		t.Errorf("FramesRendered() = %d, want 1", r.FramesRendered())
	}
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame after reconfigure: %v", err)
	}
}

func TestRendererPresentError(t *testing.T) {
	r, _, rq, _ := newTestRenderer(t, 320, 200)
	rq.presentErrs = []error{hal.ErrSurfaceLost}
	if err := r.RenderFrame(); !errors.Is(err, hal.ErrSurfaceLost) {
		t.Fatalf("expected ErrSurfaceLost, got %v", err)
	}
}

func TestRendererClearColor(t *testing.T) {
	d, _, _, log := openRecordingDevice(t)
	clear := gputypes.Color{R: 1, G: 0.5, B: 0, A: 1}
	r, err := NewRenderer(d, 32, 32, testShader(t), RendererOptions{ClearColor: &clear})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer r.Destroy()
	log.reset()
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if log.calls[2] != "BeginRenderPass clear=1.0,0.5,0.0,1.0" {
		t.Errorf("render pass = %q", log.calls[2])
	}
}

func TestRendererDestroy(t *testing.T) {
	d, rd, _, _ := openRecordingDevice(t)
	r, err := NewRenderer(d, 100, 100, testShader(t), RendererOptions{})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	r.Destroy()
	r.Destroy()

	if rd.liveViews != 0 {
		t.Errorf("live views after Destroy = %d, want 0", rd.liveViews)
	}
	if rd.waitIdle == 0 {
		t.Error("expected Destroy to wait for the GPU")
	}
	if err := r.RenderFrame(); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("RenderFrame after Destroy: got %v, want ErrRendererClosed", err)
	}
	if err := r.Resize(10, 10); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Resize after Destroy: got %v, want ErrRendererClosed", err)
	}
}

func TestRendererAccessors(t *testing.T) {
	r, _, _, _ := newTestRenderer(t, 16, 16)
	if r.SurfaceFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat() = %v", r.SurfaceFormat())
	}
	if info := r.AdapterInfo(); info.Type != gpucontext.AdapterTypeUnknown || info.Name == "" {
		t.Errorf("AdapterInfo() = %+v", info)
	}
}

func TestNewRendererBadShader(t *testing.T) {
	d, rd, _, _ := openRecordingDevice(t)
	if _, err := NewRenderer(d, 16, 16, ShaderSource{}, RendererOptions{}); err == nil {
		t.Fatal("expected error for empty shader")
	}
	if rd.liveViews != 0 {
		t.Errorf("live views = %d after failed setup", rd.liveViews)
	}
}

func TestRendererAcquireOutdatedReconfigures(t *testing.T) {
	r, _, _, log := newTestRenderer(t, 320, 200)
	rs := recordSurface(r)
	rs.acquireErrs = []error{hal.ErrSurfaceOutdated}

	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame with outdated surface: %v", err)
	}
	if rs.configures != 1 {
		t.Errorf("Configure calls = %d, want 1", rs.configures)
	}
	if rs.acquires != 2 {
		t.Errorf("AcquireTexture calls = %d, want 2", rs.acquires)
	}
	if r.FramesRendered() != 1 {
		t.Errorf("FramesRendered() = %d, want 1", r.FramesRendered())
	}
	equalCalls(t, log.calls, frameCalls(320, 200, 0))
}

func TestRendererAcquireOutdatedTwiceFails(t *testing.T) {
	r, _, _, _ := newTestRenderer(t, 320, 200)
	rs := recordSurface(r)
	rs.acquireErrs = []error{hal.ErrSurfaceOutdated, hal.ErrSurfaceOutdated}

	if err := r.RenderFrame(); !errors.Is(err, hal.ErrSurfaceOutdated) {
		t.Fatalf("expected ErrSurfaceOutdated, got %v", err)
	}
	if rs.configures != 1 {
		t.Errorf("Configure calls = %d, want 1", rs.configures)
	}
	if r.FramesRendered() != 0 {
		t.Errorf("FramesRendered() = %d, want 0", r.FramesRendered())
	}
}

func TestRendererAcquireNotReadySkipsFrame(t *testing.T) {
	for _, acquireErr := range []error{hal.ErrNotReady, hal.ErrTimeout} {
		t.Run(acquireErr.Error(), func(t *testing.T) {
			r, _, _, log := newTestRenderer(t, 320, 200)
			rs := recordSurface(r)
			if err := r.RenderFrame(); err != nil {
				t.Fatalf("RenderFrame: %v", err)
			}

			log.reset()
			rs.acquireErrs = []error{acquireErr}
			if err := r.RenderFrame(); err != nil {
				t.Fatalf("RenderFrame with %v: %v", acquireErr, err)
			}
			equalCalls(t, log.calls, []string{"ResetAll 1"})
			if r.FramesRendered() != 1 {
				t.Errorf("FramesRendered() = %d, want 1", r.FramesRendered())
			}
			if r.FrameIndex() != 1 {
				t.Errorf("FrameIndex() = %d, want 1", r.FrameIndex())
			}
			if rs.configures != 0 {
				t.Errorf("Configure calls = %d, want 0", rs.configures)
			}

			log.reset()
			if err := r.RenderFrame(); err != nil {
				t.Fatalf("RenderFrame after skipped frame: %v", err)
			}
			equalCalls(t, log.calls, frameCalls(320, 200, 0))
			if r.FramesRendered() != 2 {
				t.Errorf("FramesRendered() = %d, want 2", r.FramesRendered())
			}
		})
	}
}
