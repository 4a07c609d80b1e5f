package host

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/lunex-engine/rtscene/gpu"
)

func TestBufferWriteData(t *testing.T) {
	dev := NewDevice("test")
	defer dev.Close()

	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i)
	}

	expSize := len(data) * int(unsafe.Sizeof(data[0]))
	buf, err := dev.NewStorageBuffer("test", expSize)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Release()

	if buf.Size() != expSize {
		t.Fatalf("expected buffer size to be %d; got %d", expSize, buf.Size())
	}

	if err = buf.WriteData(data, 0); err != nil {
		t.Fatal(err)
	}

	hostBuf := buf.(*Buffer)
	got := unsafe.Slice((*float64)(unsafe.Pointer(&hostBuf.Bytes()[0])), len(data))
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("expected element %d to be %f; got %f", i, data[i], got[i])
		}
	}

	err = buf.WriteData(data, 8)
	if !errors.Is(err, gpu.ErrInsufficientSpace) {
		t.Fatalf("expected ErrInsufficientSpace; got %v", err)
	}
}

func TestBufferBindAndRelease(t *testing.T) {
	dev := NewDevice("test")

	buf, err := dev.NewStorageBuffer("test", 16)
	if err != nil {
		t.Fatal(err)
	}

	if err = buf.Bind(3); err != nil {
		t.Fatal(err)
	}
	if dev.Bound(3) != buf {
		t.Fatal("expected buffer to be bound to binding 3")
	}

	buf.Release()
	if dev.Bound(3) != nil {
		t.Fatal("expected released buffer to be unbound")
	}
	if err = buf.Bind(3); err != gpu.ErrBufferReleased {
		t.Fatalf("expected ErrBufferReleased; got %v", err)
	}
	if dev.Allocations() != 1 {
		t.Fatalf("expected 1 allocation; got %d", dev.Allocations())
	}
}

func TestBindlessTextures(t *testing.T) {
	dev := NewDevice("test")
	bindless := dev.Bindless()
	if bindless == nil {
		t.Fatal("expected bindless support to be enabled by default")
	}

	tex, err := dev.NewTexture("tex", 1, 1, []byte{255, 0, 0, 255})
	if err != nil {
		t.Fatal(err)
	}

	handle := bindless.TextureHandle(tex)
	if handle == 0 {
		t.Fatal("expected a non-zero handle")
	}
	if other := bindless.TextureHandle(&Texture{ID: tex.NativeID()}); other != handle {
		t.Fatalf("expected wrappers with the same id to share handle %x; got %x", handle, other)
	}

	bindless.MakeResident(handle)
	if !dev.IsResident(handle) {
		t.Fatal("expected handle to be resident")
	}
	bindless.MakeNonResident(handle)
	if dev.IsResident(handle) {
		t.Fatal("expected handle to be non-resident")
	}

	if _, err = dev.NewTexture("bad", 2, 2, []byte{0}); err != gpu.ErrInvalidTexture {
		t.Fatalf("expected ErrInvalidTexture; got %v", err)
	}

	if NewDevice("legacy", WithBindless(false)).Bindless() != nil {
		t.Fatal("expected bindless support to be disabled")
	}
}
