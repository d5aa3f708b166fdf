//go:build linux || windows

package gpu

import (
	_ "github.com/gogpu/wgpu/hal/gles" // OpenGL ES backend, selected with -backend gl
)
