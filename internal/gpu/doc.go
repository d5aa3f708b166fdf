// Package gpu brings up a GPU device on a native window surface and draws
// a single colored triangle with it, using the gogpu/wgpu HAL directly.
//
// # Lifecycle
//
// Setup happens in two one-time stages followed by a per-frame loop:
//
//	dev, _ := gpu.OpenDevice(cfg, display, window)   // instance, surface, adapter, device, queue
//	r, _ := gpu.NewRenderer(dev, w, h, src, opts)    // swap chain, encoder, pipeline, vertex upload
//	for running {
//	    _ = r.RenderFrame()
//	}
//	r.Destroy()
//	dev.Destroy()
//
// # Frame protocol
//
// Every frame runs the same strictly serial sequence:
//
//	reset encoder -> begin encoding -> begin clear pass -> viewport/scissor ->
//	set pipeline -> set vertex buffer -> draw 3 -> end pass -> end encoding ->
//	submit -> present -> signal fence -> wait -> advance back buffer
//
// Viewport and scissor are render-pass state, so they are set after the
// pass begins.
//
// The CPU blocks on the fence at the end of every frame, so there is never
// more than one frame in flight and the swap-chain slot for the next frame
// is always idle when recording starts.
//
// # Synchronization
//
// [Fence] pairs a monotonically increasing value with the queue submission
// index returned by hal.Queue.Submit. Waiting is unbounded.
//
// # Backends
//
// DX12 is preferred on Windows and Vulkan elsewhere. OpenGL ES is linked on
// Linux and Windows but only used when requested by name. Tests run against
// the hal/noop backend, which completes every submission synchronously.
package gpu
