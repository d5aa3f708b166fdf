package gpu

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceConfig selects the backend and adapter used by OpenDevice.
type DeviceConfig struct {
	// Backends lists HAL backends to try in order. Empty means the
	// platform preference (DX12 then Vulkan on Windows, Vulkan elsewhere).
	Backends []gputypes.Backend

	// HighPerformance ranks discrete GPUs ahead of integrated ones.
	// Without it adapters are tried in enumeration order.
	HighPerformance bool

	// Debug enables backend debug and validation layers when available.
	Debug bool
}

// Device owns the GPU context: instance, window surface, adapter, logical
// device and its single direct queue. Resources are released in reverse
// creation order by Destroy.
type Device struct {
	backend  gputypes.Backend
	instance hal.Instance
	surface  hal.Surface
	adapter  hal.Adapter
	info     gputypes.AdapterInfo
	limits   gputypes.Limits
	device   hal.Device
	queue    hal.Queue
}

// OpenDevice creates a HAL instance, a presentation surface for the native
// window handles, and a logical device on the best hardware adapter.
//
// Adapter selection skips software rasterizers, tries the remaining
// adapters in preference order, and keeps the first one that opens. A
// software adapter is used only when no hardware adapter could be opened.
func OpenDevice(cfg DeviceConfig, display, window uintptr) (*Device, error) {
	backend, err := resolveBackend(cfg.Backends)
	if err != nil {
		return nil, err
	}

	flags := gputypes.InstanceFlagsNone
	if cfg.Debug {
		flags = gputypes.InstanceFlagsDebug | gputypes.InstanceFlagsValidation
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{
		Backends: gputypes.Backends(1) << backend.Variant(),
		Flags:    flags,
	})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	d := &Device{backend: backend.Variant(), instance: instance}

	surface, err := instance.CreateSurface(display, window)
	if err != nil {
		d.Destroy()
		return nil, fmt.Errorf("create surface: %w", err)
	}
	d.surface = surface

	adapters := instance.EnumerateAdapters(surface)
	if len(adapters) == 0 {
		d.Destroy()
		return nil, ErrNoAdapter
	}

	selected, open, err := openAdapter(adapters, cfg.HighPerformance)
	if err != nil {
		d.Destroy()
		return nil, err
	}
	exposed := &adapters[selected]
	d.adapter = exposed.Adapter
	d.info = exposed.Info
	d.limits = exposed.Capabilities.Limits
	d.device = open.Device
	d.queue = open.Queue

	slogger().Info("gpu: selected device",
		"name", d.info.Name,
		"type", d.info.DeviceType,
		"backend", d.backend,
		"driver", d.info.Driver,
		"max_buffer", FormatSize(d.limits.MaxBufferSize),
	)
	return d, nil
}

// openAdapter opens a device on the first adapter that accepts it, in
// rankAdapters order, and destroys every other enumerated adapter.
func openAdapter(adapters []hal.ExposedAdapter, highPerformance bool) (int, hal.OpenDevice, error) {
	selected := -1
	var open hal.OpenDevice
	var openErrs []error
	for _, i := range rankAdapters(adapters, highPerformance) {
		exposed := &adapters[i]
		od, err := exposed.Adapter.Open(0, exposed.Capabilities.Limits)
		if err != nil {
			slogger().Debug("gpu: adapter rejected",
				"adapter", exposed.Info.Name, "err", err)
			openErrs = append(openErrs, fmt.Errorf("%s: %w", exposed.Info.Name, err))
			continue
		}
		if exposed.Info.DeviceType == gputypes.DeviceTypeCPU {
			slogger().Warn("gpu: no hardware adapter available, using software rasterizer",
				"adapter", exposed.Info.Name)
		}
		selected, open = i, od
		break
	}
	for i := range adapters {
		if i != selected && adapters[i].Adapter != nil {
			adapters[i].Adapter.Destroy()
		}
	}
	if selected < 0 {
		return -1, hal.OpenDevice{}, fmt.Errorf("open device: %w", errors.Join(append([]error{ErrNoAdapter}, openErrs...)...))
	}
	return selected, open, nil
}

// rankAdapters returns adapter indices in the order they should be tried.
// Software adapters always come last. With highPerformance set, discrete
// GPUs are moved ahead of integrated and other hardware adapters; the
// enumeration order is otherwise preserved.
func rankAdapters(adapters []hal.ExposedAdapter, highPerformance bool) []int {
	var hardware, software []int
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeCPU {
			software = append(software, i)
			continue
		}
		hardware = append(hardware, i)
	}
	if highPerformance {
		sort.SliceStable(hardware, func(a, b int) bool {
			return performanceRank(adapters[hardware[a]].Info.DeviceType) <
				performanceRank(adapters[hardware[b]].Info.DeviceType)
		})
	}
	return append(hardware, software...)
}

func performanceRank(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 0
	case gputypes.DeviceTypeIntegratedGPU:
		return 1
	case gputypes.DeviceTypeVirtualGPU:
		return 2
	default:
		return 3
	}
}

// Backend reports the HAL backend the device was created on.
func (d *Device) Backend() gputypes.Backend { return d.backend }

// Info returns the HAL description of the selected adapter.
func (d *Device) Info() gputypes.AdapterInfo { return d.info }

// AdapterInfo describes the selected adapter in gpucontext terms.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	var t gpucontext.AdapterType
	switch d.info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		t = gpucontext.AdapterTypeSoftware
	default:
		t = gpucontext.AdapterTypeUnknown
	}
	return gpucontext.AdapterInfo{Name: d.info.Name, Type: t}
}

// Limits returns the limits the device was opened with.
func (d *Device) Limits() gputypes.Limits { return d.limits }

// HAL returns the underlying HAL device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Surface returns the window surface created with the device.
func (d *Device) Surface() hal.Surface { return d.surface }

// SurfaceCapabilities queries what the adapter supports for the surface.
func (d *Device) SurfaceCapabilities() *hal.SurfaceCapabilities {
	if d.adapter == nil || d.surface == nil {
		return nil
	}
	return d.adapter.SurfaceCapabilities(d.surface)
}

// Destroy releases the device, surface and instance. The swap chain must
// already have unconfigured the surface. Safe to call on a partially
// constructed Device and safe to call more than once.
func (d *Device) Destroy() {
	if d.device != nil {
		if err := d.device.WaitIdle(); err != nil {
			slogger().Warn("gpu: wait idle on destroy", "err", err)
		}
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.surface != nil {
		d.surface.Destroy()
		d.surface = nil
	}
	if d.adapter != nil {
		d.adapter.Destroy()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
