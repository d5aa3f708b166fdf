package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// VertexBuffer is a GPU-local vertex buffer filled once at startup.
type VertexBuffer struct {
	device hal.Device
	buffer hal.Buffer
	size   uint64
	count  uint32
}

// UploadVertices copies vertices into a new GPU-local vertex buffer.
//
// The data goes through a host-visible staging buffer: map, copy, unmap,
// then a recorded buffer-to-buffer copy followed by a CopyDst -> Vertex
// barrier. The upload is submitted on queue and the call blocks on fence
// until it completes, after which the staging buffer is released and the
// encoder is reset for reuse.
func UploadVertices(device hal.Device, queue hal.Queue, encoder hal.CommandEncoder, fence *Fence, vertices []Vertex) (*VertexBuffer, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("upload vertices: empty vertex list")
	}
	data := encodeVertices(vertices)
	size := uint64(len(data))

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label:            "triangle_vertex_staging",
		Size:             size,
		Usage:            gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
		MappedAtCreation: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	mapping, err := device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	copy(unsafe.Slice((*byte)(mapping.Ptr), size), data) //nolint:gosec // mapping covers [0, size)
	if err := device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}

	buffer, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "triangle_vertices",
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	vb := &VertexBuffer{device: device, buffer: buffer, size: size, count: uint32(len(vertices))} //nolint:gosec // three vertices

	if err := encoder.BeginEncoding("vertex_upload"); err != nil {
		vb.Destroy()
		return nil, fmt.Errorf("begin upload encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(staging, buffer, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	encoder.TransitionBuffers([]hal.BufferBarrier{
		{
			Buffer: buffer,
			Usage: hal.BufferUsageTransition{
				OldUsage: gputypes.BufferUsageCopyDst,
				NewUsage: gputypes.BufferUsageVertex,
			},
		},
	})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		vb.Destroy()
		return nil, fmt.Errorf("end upload encoding: %w", err)
	}
	defer encoder.ResetAll([]hal.CommandBuffer{cmd})

	idx, err := queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		vb.Destroy()
		return nil, fmt.Errorf("submit vertex upload: %w", err)
	}
	fence.Signal(idx)
	if err := fence.Wait(); err != nil {
		vb.Destroy()
		return nil, fmt.Errorf("wait for vertex upload: %w", err)
	}

	slogger().Debug("gpu: vertex buffer uploaded",
		"vertices", vb.count, "size", FormatSize(size))
	return vb, nil
}

// Buffer returns the HAL vertex buffer.
func (vb *VertexBuffer) Buffer() hal.Buffer { return vb.buffer }

// Count returns the number of vertices stored.
func (vb *VertexBuffer) Count() uint32 { return vb.count }

// Size returns the buffer size in bytes.
func (vb *VertexBuffer) Size() uint64 { return vb.size }

// Destroy releases the GPU buffer. Safe to call multiple times.
func (vb *VertexBuffer) Destroy() {
	if vb.buffer != nil {
		vb.device.DestroyBuffer(vb.buffer)
		vb.buffer = nil
	}
}
