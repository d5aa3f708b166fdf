// Command triangle opens a window and draws a colored triangle with the GPU.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gogpu/triangle"
	"github.com/gogpu/triangle/internal/shader"
)

func init() {
	// GLFW and native surfaces must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	var (
		title    = flag.String("title", "Hello Triangle", "window title")
		width    = flag.Int("width", 1280, "window width")
		height   = flag.Int("height", 720, "window height")
		path     = flag.String("shader", shader.DefaultPath, "WGSL shader file")
		embedded = flag.Bool("embedded-shader", false, "use the shader compiled into the binary")
		backend  = flag.String("backend", "auto", "GPU backend: auto, vulkan, dx12 (Windows), gl (Linux, Windows)")
		highPerf = flag.Bool("high-performance", false, "prefer a discrete GPU")
		debug    = flag.Bool("debug", false, "enable GPU validation layers")
		vsync    = flag.Bool("vsync", true, "synchronize presentation with the display")
		level    = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*level)); err != nil {
		fmt.Fprintf(os.Stderr, "triangle: invalid -log-level %q\n", *level)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	triangle.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *title, *width, *height,
		triangle.WithShaderPath(*path),
		triangle.WithEmbeddedShader(*embedded),
		triangle.WithBackend(*backend),
		triangle.WithHighPerformanceAdapter(*highPerf),
		triangle.WithDebug(*debug),
		triangle.WithVSync(*vsync),
	); err != nil {
		logger.Error("triangle failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, title string, width, height int, opts ...triangle.Option) error {
	app, err := triangle.New(title, width, height, opts...)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
