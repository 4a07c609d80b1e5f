package gpu

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSliceBytes(t *testing.T) {
	data := []float32{1, 2, 3}

	b := SliceBytes(data)
	if len(b) != 12 {
		t.Fatalf("expected byte view length to be 12; got %d", len(b))
	}

	for i, v := range data {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != v {
			t.Fatalf("expected element %d to be %f; got %f", i, v, got)
		}
	}

	if b := SliceBytes([]uint64{}); b != nil {
		t.Fatalf("expected empty slice to yield nil; got %v", b)
	}
}

func TestSliceDataPanicsOnNonSlice(t *testing.T) {
	defer func() {
		if err := recover(); err == nil {
			t.Fatal("expected SliceData to panic for non-slice arguments")
		}
	}()

	SliceData(42)
}

func TestGrowCapacity(t *testing.T) {
	specs := []struct {
		required, minimum, exp int
	}{
		{0, 1024, 1024},
		{100, 1024, 1024},
		{512, 1024, 1024},
		{513, 1024, 1026},
		{4096, 256, 8192},
	}

	for index, spec := range specs {
		if got := GrowCapacity(spec.required, spec.minimum); got != spec.exp {
			t.Fatalf("[spec %d] expected capacity %d; got %d", index, spec.exp, got)
		}
	}
}

func TestIsNil(t *testing.T) {
	var nilSlice []byte
	var nilPtr *int
	var nilIface interface{}
	specs := []struct {
		in  interface{}
		exp bool
	}{
		{nilIface, true},
		{nilPtr, true},
		{nilSlice, true},
		{new(int), false},
		{42, false},
		{[]byte{1}, false},
	}

	for index, spec := range specs {
		if got := IsNil(spec.in); got != spec.exp {
			t.Errorf("[spec %d] expected IsNil(%v) to be %t; got %t", index, spec.in, spec.exp, got)
		}
	}
}
