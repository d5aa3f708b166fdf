//go:build !windows

package gpu

import "github.com/gogpu/gputypes"

var platformBackends = []gputypes.Backend{gputypes.BackendVulkan}
