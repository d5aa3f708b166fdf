package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // Vulkan backend on every platform
)

// ParseBackend maps a command-line backend name to a HAL backend list.
// "auto" and the empty string return nil, meaning the platform preference
// order from PreferredBackends.
func ParseBackend(name string) ([]gputypes.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return nil, nil
	case "vulkan", "vk":
		return []gputypes.Backend{gputypes.BackendVulkan}, nil
	case "dx12", "d3d12":
		return []gputypes.Backend{gputypes.BackendDX12}, nil
	case "metal", "mtl":
		return []gputypes.Backend{gputypes.BackendMetal}, nil
	case "gl", "gles", "opengl":
		return []gputypes.Backend{gputypes.BackendGL}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// PreferredBackends returns the platform's backend preference order.
func PreferredBackends() []gputypes.Backend {
	out := make([]gputypes.Backend, len(platformBackends))
	copy(out, platformBackends)
	return out
}

// resolveBackend returns the first registered backend from candidates.
func resolveBackend(candidates []gputypes.Backend) (hal.Backend, error) {
	if len(candidates) == 0 {
		candidates = platformBackends
	}
	for _, variant := range candidates {
		if b, ok := hal.GetBackend(variant); ok {
			return b, nil
		}
		slogger().Debug("gpu: backend not registered", "backend", variant)
	}
	return nil, fmt.Errorf("%w (tried %v)", ErrNoBackend, candidates)
}
