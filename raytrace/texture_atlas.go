package raytrace

import (
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
	"github.com/pkg/errors"
)

// Minimum number of handles allocated for the handle buffer.
const minAtlasHandles = 256

// TextureAtlas maps textures to indices into a GPU table of bindless
// texture handles. Textures are deduplicated by their native GPU id and
// the atlas keeps a reference to every registered texture until Clear.
//
// When the device does not support bindless textures the atlas degrades
// gracefully: every lookup returns NoTexture and nothing is uploaded.
type TextureAtlas struct {
	logger log.Logger
	device gpu.Device

	bindlessChecked bool
	bindless        gpu.BindlessTextures

	handles  []uint64
	textures []gpu.Texture
	lookup   map[uint32]int32

	buf   gpu.StorageBuffer
	dirty bool
}

// NewTextureAtlas creates an empty atlas.
func NewTextureAtlas(device gpu.Device) *TextureAtlas {
	return &TextureAtlas{
		logger:   log.New("texture atlas"),
		device:   device,
		handles:  make([]uint64, 0, minAtlasHandles),
		textures: make([]gpu.Texture, 0, minAtlasHandles),
		lookup:   make(map[uint32]int32),
	}
}

// IsBindlessSupported reports whether the device can create bindless
// texture handles. The capability is queried once.
func (a *TextureAtlas) IsBindlessSupported() bool {
	if !a.bindlessChecked {
		a.bindlessChecked = true
		a.bindless = a.device.Bindless()
		if a.bindless != nil {
			a.logger.Infof("bindless textures supported by %s", a.device.Name())
		} else {
			a.logger.Warningf("bindless textures not supported by %s; materials will be rendered without textures", a.device.Name())
		}
	}
	return a.bindless != nil
}

// GetOrAddTexture returns the atlas index for tex, registering it on first
// use. Returns NoTexture for nil or unloaded textures, textures without a
// GPU object, or when bindless textures are unavailable.
func (a *TextureAtlas) GetOrAddTexture(tex gpu.Texture) int32 {
	if gpu.IsNil(tex) || !tex.IsLoaded() {
		return NoTexture
	}
	if !a.IsBindlessSupported() {
		return NoTexture
	}

	id := tex.NativeID()
	if id == 0 {
		return NoTexture
	}
	if index, ok := a.lookup[id]; ok {
		return index
	}

	handle := a.bindless.TextureHandle(tex)
	if handle == 0 {
		a.logger.Warningf("could not get bindless handle for texture %d", id)
		return NoTexture
	}
	a.bindless.MakeResident(handle)

	index := int32(len(a.handles))
	a.handles = append(a.handles, handle)
	a.textures = append(a.textures, tex)
	a.lookup[id] = index
	a.dirty = true
	return index
}

// UploadToGPU writes the handle table to the GPU if it changed since the
// last upload.
func (a *TextureAtlas) UploadToGPU() error {
	if !a.dirty || len(a.handles) == 0 {
		return nil
	}

	var err error
	required := len(a.handles) * handleSize
	if a.buf, err = ensureBuffer(a.device, a.buf, "rt texture handles", required, minAtlasHandles*handleSize); err != nil {
		return errors.Wrap(err, "texture atlas")
	}
	if err = a.buf.WriteData(a.handles, 0); err != nil {
		return errors.Wrap(err, "texture atlas: could not upload handles")
	}

	a.dirty = false
	return nil
}

// Bind the handle table to a storage binding point. No-op if nothing has
// been uploaded yet.
func (a *TextureAtlas) Bind(binding uint32) error {
	if a.buf == nil {
		return nil
	}
	return errors.Wrap(a.buf.Bind(binding), "texture atlas: could not bind handles")
}

// Clear makes all handles non-resident and drops every texture reference.
// Indices handed out before Clear become invalid.
func (a *TextureAtlas) Clear() {
	if a.bindless != nil {
		for _, handle := range a.handles {
			a.bindless.MakeNonResident(handle)
		}
	}

	a.handles = a.handles[:0]
	for i := range a.textures {
		a.textures[i] = nil
	}
	a.textures = a.textures[:0]
	a.lookup = make(map[uint32]int32)
	a.dirty = false
}

// TextureCount returns the number of registered textures.
func (a *TextureAtlas) TextureCount() int {
	return len(a.handles)
}

// Handles returns the bindless handle table.
func (a *TextureAtlas) Handles() []uint64 {
	return a.handles
}

// Shutdown clears the atlas and releases the handle buffer.
func (a *TextureAtlas) Shutdown() {
	a.Clear()
	releaseBuffer(a.buf)
	a.buf = nil
}
