// Package host implements an in-memory gpu.Device. It backs headless
// builds, scene dumps and tests; buffers are plain byte slices and binding
// points are recorded so callers can inspect them.
package host

import (
	"fmt"

	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
)

// Fake handles are tagged so they never collide with texture ids.
const handleTag uint64 = 0xb1d1e55 << 32

// Option configures a host Device.
type Option func(*Device)

// WithBindless toggles bindless texture support.
func WithBindless(enabled bool) Option {
	return func(d *Device) {
		d.bindlessEnabled = enabled
	}
}

// Device is an in-memory GPU device.
type Device struct {
	logger log.Logger
	name   string

	bindlessEnabled bool
	bindless        *bindlessTextures

	// Number of buffers created over the lifetime of the device.
	allocations int

	bindings  map[uint32]*Buffer
	nextTexID uint32
}

// NewDevice creates a host device. Bindless textures are supported unless
// disabled with WithBindless(false).
func NewDevice(name string, opts ...Option) *Device {
	d := &Device{
		logger:          log.New(fmt.Sprintf("host device (%s)", name)),
		name:            name,
		bindlessEnabled: true,
		bindings:        make(map[uint32]*Buffer),
		nextTexID:       1,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.bindlessEnabled {
		d.bindless = &bindlessTextures{resident: make(map[uint64]struct{})}
	}

	return d
}

func (d *Device) Name() string {
	return d.name
}

// Allocate a storage buffer.
func (d *Device) NewStorageBuffer(name string, size int) (gpu.StorageBuffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("host device (%s): invalid size %d for buffer %s", d.name, size, name)
	}

	d.allocations++
	d.logger.Debugf("allocating buffer %s (%d bytes)", name, size)
	return &Buffer{
		device: d,
		name:   name,
		data:   make([]byte, size),
	}, nil
}

// Create an RGBA8 texture.
func (d *Device) NewTexture(name string, width, height int, rgba []byte) (gpu.Texture, error) {
	if width <= 0 || height <= 0 || len(rgba) != width*height*4 {
		return nil, gpu.ErrInvalidTexture
	}

	tex := &Texture{
		ID:     d.nextTexID,
		Name:   name,
		Width:  width,
		Height: height,
		Pixels: append([]byte(nil), rgba...),
		Loaded: true,
	}
	d.nextTexID++
	return tex, nil
}

// Bindless returns nil when bindless support has been disabled.
func (d *Device) Bindless() gpu.BindlessTextures {
	if d.bindless == nil {
		return nil
	}
	return d.bindless
}

// Bound returns the buffer bound to a binding point or nil.
func (d *Device) Bound(binding uint32) *Buffer {
	return d.bindings[binding]
}

// Allocations returns the number of buffers created so far.
func (d *Device) Allocations() int {
	return d.allocations
}

// IsResident reports whether a bindless handle is currently resident.
func (d *Device) IsResident(handle uint64) bool {
	if d.bindless == nil {
		return false
	}
	_, ok := d.bindless.resident[handle]
	return ok
}

// Close drops all bindings.
func (d *Device) Close() {
	d.bindings = make(map[uint32]*Buffer)
}

// Texture is an in-memory texture.
type Texture struct {
	ID     uint32
	Name   string
	Width  int
	Height int
	Pixels []byte
	Loaded bool
}

func (t *Texture) NativeID() uint32 {
	if t == nil {
		return 0
	}
	return t.ID
}

func (t *Texture) IsLoaded() bool {
	return t != nil && t.Loaded
}

type bindlessTextures struct {
	resident map[uint64]struct{}
}

func (b *bindlessTextures) TextureHandle(tex gpu.Texture) uint64 {
	if tex == nil || tex.NativeID() == 0 {
		return 0
	}
	return handleTag | uint64(tex.NativeID())
}

func (b *bindlessTextures) MakeResident(handle uint64) {
	b.resident[handle] = struct{}{}
}

func (b *bindlessTextures) MakeNonResident(handle uint64) {
	delete(b.resident, handle)
}
