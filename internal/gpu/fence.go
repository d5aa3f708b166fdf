package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// Fence tracks completion of queue submissions with a monotonically
// increasing value. Each Signal binds the next value to the submission index
// returned by hal.Queue.Submit; Wait blocks until that submission retires.
//
// Fence is not safe for concurrent use.
type Fence struct {
	device hal.Device
	queue  hal.Queue

	// value is the next value to signal. Starts at 1 so that a completed
	// value of 0 always means "nothing signaled yet".
	value uint64

	// signaled is the last value handed out by Signal and submission is the
	// queue index it corresponds to.
	signaled   uint64
	submission uint64
}

// NewFence creates a fence for work submitted on queue.
func NewFence(device hal.Device, queue hal.Queue) *Fence {
	return &Fence{device: device, queue: queue, value: 1}
}

// Signal associates the next fence value with submissionIndex and returns
// that value. The internal counter is incremented afterwards.
func (f *Fence) Signal(submissionIndex uint64) uint64 {
	v := f.value
	f.signaled = v
	f.submission = submissionIndex
	f.value++
	return v
}

// Value returns the value the next Signal will use.
func (f *Fence) Value() uint64 { return f.value }

// Completed returns the highest fence value known to have been reached.
func (f *Fence) Completed() uint64 {
	if f.signaled == 0 || f.queue.PollCompleted() >= f.submission {
		return f.signaled
	}
	return f.signaled - 1
}

// Wait blocks until the last signaled value is reached. There is no
// timeout: the caller stalls for as long as the GPU needs.
func (f *Fence) Wait() error {
	if f.signaled == 0 || f.queue.PollCompleted() >= f.submission {
		return nil
	}
	if err := f.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for fence value %d: %w", f.signaled, err)
	}
	return nil
}
