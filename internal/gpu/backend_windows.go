//go:build windows

package gpu

import (
	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/wgpu/hal/dx12" // native Direct3D 12 backend
)

var platformBackends = []gputypes.Backend{gputypes.BackendDX12, gputypes.BackendVulkan}
