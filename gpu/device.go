// Package gpu defines the device abstraction used by the ray tracing scene
// builder: shader storage buffers, textures and bindless texture handles.
package gpu

// Texture is a GPU texture that may be referenced from shaders.
type Texture interface {
	// The native (driver) object id. Two wrappers around the same GPU
	// texture report the same id; 0 means no GPU object.
	NativeID() uint32

	// Returns true if the texture data has been uploaded.
	IsLoaded() bool
}

// StorageBuffer is a linear device buffer bound to an indexed shader
// storage binding point.
type StorageBuffer interface {
	Name() string

	// Allocated size in bytes.
	Size() int

	// Write the contents of a slice to the buffer starting at the given
	// byte offset. The behavior of this method is undefined if a non-slice
	// argument is passed or the argument does not use contiguous memory.
	WriteData(data interface{}, offset int) error

	// Bind the buffer to a storage binding point.
	Bind(binding uint32) error

	Release()
}

// BindlessTextures is implemented by devices that can reference textures
// through 64-bit handles instead of texture units.
type BindlessTextures interface {
	// Get the bindless handle for a texture. Returns 0 on failure.
	TextureHandle(tex Texture) uint64

	MakeResident(handle uint64)
	MakeNonResident(handle uint64)
}

// Device creates GPU resources.
type Device interface {
	Name() string

	// Allocate a storage buffer with the given size in bytes.
	NewStorageBuffer(name string, size int) (StorageBuffer, error)

	// Create an RGBA8 2D texture.
	NewTexture(name string, width, height int, rgba []byte) (Texture, error)

	// Bindless returns nil if the device does not support bindless textures.
	Bindless() BindlessTextures

	Close()
}
