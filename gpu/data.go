package gpu

import (
	"reflect"
	"unsafe"
)

// SliceData returns a pointer to the data of the slice held by the given
// interface{} together with its length in bytes. Empty slices return a nil
// pointer. Panics if data is not a slice.
func SliceData(data interface{}) (unsafe.Pointer, int) {
	reflVal := reflect.ValueOf(data)

	if reflVal.Kind() != reflect.Slice {
		panic("gpu.SliceData: this function only supports slices")
	}

	sliceElemCount := reflVal.Len()
	if sliceElemCount == 0 {
		return nil, 0
	}

	return reflVal.UnsafePointer(),
		sliceElemCount * int(reflVal.Type().Elem().Size())
}

// SliceBytes returns a byte view of the memory backing the supplied slice.
// The returned slice aliases the original data.
func SliceBytes(data interface{}) []byte {
	ptr, size := SliceData(data)
	if ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), size)
}

// GrowCapacity returns the capacity to allocate for a buffer that needs
// to hold required bytes: twice the requirement, but never less than
// minimum.
func GrowCapacity(required, minimum int) int {
	if c := 2 * required; c > minimum {
		return c
	}
	return minimum
}

// IsNil returns true if v is nil or a nil pointer, map, slice, func or
// channel stored in an interface.
func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
