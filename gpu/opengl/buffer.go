package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/lunex-engine/rtscene/gpu"
)

// Buffer is a shader storage buffer object.
type Buffer struct {
	device *Device
	name   string
	id     uint32
	size   int
}

func (b *Buffer) Name() string {
	return b.name
}

// Get buffer size.
func (b *Buffer) Size() int {
	return b.size
}

// Write data to the buffer at the given byte offset.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	if b.id == 0 {
		return gpu.ErrBufferReleased
	}

	dataPtr, dataLen := gpu.SliceData(data)
	if dataLen == 0 {
		return nil
	}
	if offset < 0 || offset+dataLen > b.size {
		return fmt.Errorf("opengl device: %w: %d bytes at offset %d into %s (size %d)", gpu.ErrInsufficientSpace, dataLen, offset, b.name, b.size)
	}

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, offset, dataLen, dataPtr)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return fmt.Errorf("opengl device: error copying host data to buffer %s (%s)", b.name, ErrorName(errCode))
	}
	return nil
}

// Bind the buffer to an indexed shader storage binding point.
func (b *Buffer) Bind(binding uint32) error {
	if b.id == 0 {
		return gpu.ErrBufferReleased
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, b.id)
	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

// Texture is a 2D GL texture.
type Texture struct {
	name   string
	id     uint32
	width  int
	height int
	loaded bool
}

func (t *Texture) NativeID() uint32 {
	if t == nil {
		return 0
	}
	return t.id
}

func (t *Texture) IsLoaded() bool {
	return t != nil && t.loaded
}

// Delete the GL texture object.
func (t *Texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
		t.loaded = false
	}
}
