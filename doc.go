// Package triangle opens a window and draws a single colored triangle with
// the GPU every frame until the window is closed.
//
// # Quick Start
//
//	runtime.LockOSThread()
//
//	app, err := triangle.New("Hello Triangle", 1280, 720)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
// Run drives the Application through four hooks:
//   - OnInitialize: loads and validates the WGSL shader, opens the GPU
//     device on the window surface, then builds the swap chain, command
//     encoder, render pipeline and vertex buffer
//   - OnUpdate: per-frame bookkeeping (frame statistics)
//   - OnRender: records, submits and presents one frame and waits for it
//   - OnClose: waits for the GPU and releases everything in reverse order
//
// Exactly one frame is in flight at a time: every frame ends with a full
// CPU/GPU fence wait.
//
// # Threading
//
// Windowing and surface presentation require the main OS thread. Call
// runtime.LockOSThread from an init function of package main before New.
//
// # Logging
//
// The package is silent by default. Call SetLogger to route lifecycle and
// diagnostic messages to a slog.Logger.
//
// # Architecture
//
// The package is organized into:
//   - Public API: Application, Option, SetLogger
//   - internal/window: GLFW window and native surface handles
//   - internal/shader: WGSL loading and naga validation
//   - internal/gpu: device, swap chain, pipeline, vertex upload, fence, renderer
package triangle
