package raytrace

import (
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/scene"
	"github.com/lunex-engine/rtscene/types"
	"github.com/pkg/errors"
)

// Minimum number of materials allocated for the material buffer.
const minMaterialEntries = 256

// MaterialTable packs material instances into a flat GPU table. Instances
// are deduplicated by identity.
type MaterialTable struct {
	logger log.Logger
	device gpu.Device

	materials []MaterialGPU
	lookup    map[scene.MaterialInstance]uint32

	buf   gpu.StorageBuffer
	dirty bool
}

// NewMaterialTable creates an empty material table.
func NewMaterialTable(device gpu.Device) *MaterialTable {
	return &MaterialTable{
		logger:    log.New("material table"),
		device:    device,
		materials: make([]MaterialGPU, 0, minMaterialEntries),
		lookup:    make(map[scene.MaterialInstance]uint32),
	}
}

// GetOrAddMaterial returns the table index for inst, packing it on first
// use. Texture maps are resolved through atlas; a nil atlas leaves every
// texture slot empty. A nil instance, including a nil pointer wrapped in
// the interface, maps to index 0 without modifying the table.
func (t *MaterialTable) GetOrAddMaterial(inst scene.MaterialInstance, atlas *TextureAtlas) uint32 {
	if gpu.IsNil(inst) {
		return 0
	}
	if index, ok := t.lookup[inst]; ok {
		return index
	}

	index := uint32(len(t.materials))
	t.materials = append(t.materials, packMaterial(inst, atlas))
	t.lookup[inst] = index
	t.dirty = true
	return index
}

// AddDefaultMaterial appends DefaultMaterialGPU and returns its index.
func (t *MaterialTable) AddDefaultMaterial() uint32 {
	index := uint32(len(t.materials))
	t.materials = append(t.materials, DefaultMaterialGPU)
	t.dirty = true
	return index
}

func packMaterial(inst scene.MaterialInstance, atlas *TextureAtlas) MaterialGPU {
	data := inst.UniformData()

	var texIndex [scene.NumTextureMaps]int32
	for slot := scene.TextureMap(0); slot < scene.NumTextureMaps; slot++ {
		texIndex[slot] = NoTexture
		if atlas != nil && data.HasMap[slot] {
			texIndex[slot] = atlas.GetOrAddTexture(inst.Map(slot))
		}
	}

	return MaterialGPU{
		BaseColor:           data.Albedo,
		EmissionAndMetallic: data.EmissionColor.Vec4(data.Metallic),
		RoughSpecAOEmission: types.XYZW(data.Roughness, data.Specular, 1.0, data.EmissionIntensity),
		TexIndices1: [4]int32{
			texIndex[scene.AlbedoMap],
			texIndex[scene.NormalMap],
			texIndex[scene.MetallicMap],
			texIndex[scene.RoughnessMap],
		},
		TexIndices2: [4]int32{
			texIndex[scene.SpecularMap],
			texIndex[scene.EmissionMap],
			texIndex[scene.AOMap],
			PackFloatBits(data.NormalIntensity),
		},
	}
}

// UploadToGPU writes the table to the GPU if it changed since the last
// upload. The buffer only ever grows.
func (t *MaterialTable) UploadToGPU() error {
	if !t.dirty || len(t.materials) == 0 {
		return nil
	}

	var err error
	required := len(t.materials) * materialSize
	if t.buf, err = ensureBuffer(t.device, t.buf, "rt materials", required, minMaterialEntries*materialSize); err != nil {
		return errors.Wrap(err, "material table")
	}
	if err = t.buf.WriteData(t.materials, 0); err != nil {
		return errors.Wrap(err, "material table: could not upload materials")
	}

	t.dirty = false
	return nil
}

// Bind the table to a storage binding point. No-op if nothing has been
// uploaded yet.
func (t *MaterialTable) Bind(binding uint32) error {
	if t.buf == nil {
		return nil
	}
	return errors.Wrap(t.buf.Bind(binding), "material table: could not bind materials")
}

// Clear drops all materials. The GPU buffer is kept for reuse.
func (t *MaterialTable) Clear() {
	t.materials = t.materials[:0]
	t.lookup = make(map[scene.MaterialInstance]uint32)
	t.dirty = false
}

// MaterialCount returns the number of packed materials.
func (t *MaterialTable) MaterialCount() int {
	return len(t.materials)
}

// Materials returns the packed materials.
func (t *MaterialTable) Materials() []MaterialGPU {
	return t.materials
}

// Shutdown clears the table and releases the GPU buffer.
func (t *MaterialTable) Shutdown() {
	t.Clear()
	releaseBuffer(t.buf)
	t.buf = nil
}
