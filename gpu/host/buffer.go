package host

import (
	"fmt"

	"github.com/lunex-engine/rtscene/gpu"
)

// Buffer is an in-memory storage buffer.
type Buffer struct {
	device   *Device
	name     string
	data     []byte
	released bool
}

func (b *Buffer) Name() string {
	return b.name
}

// Get buffer size.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Write data to the buffer at the given byte offset.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	if b.released {
		return gpu.ErrBufferReleased
	}

	src := gpu.SliceBytes(data)
	if offset < 0 || offset+len(src) > len(b.data) {
		return fmt.Errorf("host device (%s): %w: %d bytes at offset %d into %s (size %d)", b.device.name, gpu.ErrInsufficientSpace, len(src), offset, b.name, len(b.data))
	}

	copy(b.data[offset:], src)
	return nil
}

// Bind records the buffer as bound to the given binding point.
func (b *Buffer) Bind(binding uint32) error {
	if b.released {
		return gpu.ErrBufferReleased
	}
	b.device.bindings[binding] = b
	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	for binding, bound := range b.device.bindings {
		if bound == b {
			delete(b.device.bindings, binding)
		}
	}
	b.data = nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// IsReleased reports whether Release has been called.
func (b *Buffer) IsReleased() bool {
	return b.released
}
