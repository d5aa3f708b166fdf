package triangle

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/internal/shader"
)

// Option configures an Application during creation.
//
// Example:
//
//	app, err := triangle.New("Hello Triangle", 1280, 720,
//	    triangle.WithBackend("vulkan"),
//	    triangle.WithDebug(true),
//	)
type Option func(*options)

// options holds optional configuration for Application creation.
type options struct {
	shaderPath      string
	embeddedShader  bool
	backend         string
	backends        []gputypes.Backend
	highPerformance bool
	debug           bool
	vsync           bool
	resizable       bool
	clearColor      *gputypes.Color
}

// defaultOptions returns the default application options.
func defaultOptions() options {
	return options{
		shaderPath: shader.DefaultPath,
		vsync:      true,
		resizable:  true,
	}
}

// WithShaderPath sets the WGSL file to load. Relative paths are resolved
// against the working directory and then the executable's directory.
func WithShaderPath(path string) Option {
	return func(o *options) {
		o.shaderPath = path
	}
}

// WithEmbeddedShader uses the WGSL program compiled into the binary instead
// of reading it from disk.
func WithEmbeddedShader(enabled bool) Option {
	return func(o *options) {
		o.embeddedShader = enabled
	}
}

// WithBackend selects the GPU backend by name: "auto", "vulkan", "dx12"
// (Windows) or "gl" (Linux and Windows). An empty name or "auto" uses the
// platform default order. Unknown names make New fail; "metal" is
// recognized but no Metal backend is linked.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithHighPerformanceAdapter prefers discrete GPUs over integrated ones
// when several hardware adapters are available.
func WithHighPerformanceAdapter(enabled bool) Option {
	return func(o *options) {
		o.highPerformance = enabled
	}
}

// WithDebug enables the backend's debug and validation layers.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}

// WithVSync selects FIFO presentation (one present per vertical blank).
// With vsync disabled the swap chain prefers immediate presentation.
func WithVSync(enabled bool) Option {
	return func(o *options) {
		o.vsync = enabled
	}
}

// WithClearColor sets the background color the triangle is drawn over.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = &c
	}
}

// WithResizable controls whether the window can be resized by the user.
func WithResizable(enabled bool) Option {
	return func(o *options) {
		o.resizable = enabled
	}
}
