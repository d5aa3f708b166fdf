package gpu

import "errors"

// Sentinel errors returned by device and renderer setup.
var (
	// ErrNoBackend is returned when none of the requested HAL backends is
	// compiled into the binary.
	ErrNoBackend = errors.New("gpu: no usable backend registered")

	// ErrNoAdapter is returned when adapter enumeration finds nothing.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrUnknownBackend is returned by ParseBackend for unrecognized names.
	ErrUnknownBackend = errors.New("gpu: unknown backend name")

	// ErrNoSurfaceFormat is returned when the surface reports no usable
	// color format for the chosen adapter.
	ErrNoSurfaceFormat = errors.New("gpu: surface supports no color formats")

	// ErrRendererClosed is returned by RenderFrame and Resize after Destroy.
	ErrRendererClosed = errors.New("gpu: renderer destroyed")
)
