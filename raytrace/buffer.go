package raytrace

import (
	"unsafe"

	"github.com/lunex-engine/rtscene/gpu"
	"github.com/pkg/errors"
)

var (
	triangleSize = int(unsafe.Sizeof(TriangleGPU{}))
	nodeSize     = int(unsafe.Sizeof(BVHNodeGPU{}))
	materialSize = int(unsafe.Sizeof(MaterialGPU{}))
	lightSize    = int(unsafe.Sizeof(LightGPU{}))
	handleSize   = int(unsafe.Sizeof(uint64(0)))
)

// Return a buffer that can hold at least required bytes. The existing
// buffer is reused if it is large enough; otherwise it is released and a
// new buffer with capacity max(2*required, minimum) is allocated.
func ensureBuffer(device gpu.Device, buf gpu.StorageBuffer, name string, required, minimum int) (gpu.StorageBuffer, error) {
	if buf != nil && required <= buf.Size() {
		return buf, nil
	}

	if buf != nil {
		buf.Release()
	}

	newBuf, err := device.NewStorageBuffer(name, gpu.GrowCapacity(required, minimum))
	if err != nil {
		return nil, errors.Wrapf(err, "could not allocate %s buffer", name)
	}
	return newBuf, nil
}

// Release buf if not nil.
func releaseBuffer(buf gpu.StorageBuffer) {
	if buf != nil {
		buf.Release()
	}
}
