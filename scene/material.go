package scene

import (
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/types"
)

// TextureMap identifies a material texture slot.
type TextureMap uint8

// The supported texture slots.
const (
	AlbedoMap TextureMap = iota
	NormalMap
	MetallicMap
	RoughnessMap
	SpecularMap
	EmissionMap
	AOMap
	NumTextureMaps
)

var textureMapNames = [NumTextureMaps]string{
	"albedo", "normal", "metallic", "roughness", "specular", "emission", "ao",
}

func (m TextureMap) String() string {
	if m < NumTextureMaps {
		return textureMapNames[m]
	}
	return "unknown"
}

// MaterialUniformData contains the scalar PBR parameters of a material and
// the texture slot presence flags.
type MaterialUniformData struct {
	Albedo            types.Vec4
	Metallic          float32
	Roughness         float32
	Specular          float32
	EmissionIntensity float32
	EmissionColor     types.Vec3
	NormalIntensity   float32

	HasMap [NumTextureMaps]bool
}

// MaterialInstance is implemented by materials that can be referenced by
// draw items. Instances are compared by identity so implementations must
// be pointer types.
type MaterialInstance interface {
	UniformData() MaterialUniformData

	// Map returns the texture bound to a slot or nil.
	Map(slot TextureMap) gpu.Texture
}

// Material is the default MaterialInstance implementation.
type Material struct {
	Name string

	Albedo            types.Vec4
	Metallic          float32
	Roughness         float32
	Specular          float32
	EmissionColor     types.Vec3
	EmissionIntensity float32
	NormalIntensity   float32

	Maps [NumTextureMaps]gpu.Texture
}

// NewMaterial creates a material with the default parameters: white
// albedo, dielectric, roughness and specular 0.5, unit normal intensity.
func NewMaterial(name string) *Material {
	return &Material{
		Name:            name,
		Albedo:          types.XYZW(1, 1, 1, 1),
		Roughness:       0.5,
		Specular:        0.5,
		NormalIntensity: 1,
	}
}

// UniformData returns the zero value for a nil material.
func (m *Material) UniformData() MaterialUniformData {
	if m == nil {
		return MaterialUniformData{}
	}
	data := MaterialUniformData{
		Albedo:            m.Albedo,
		Metallic:          m.Metallic,
		Roughness:         m.Roughness,
		Specular:          m.Specular,
		EmissionIntensity: m.EmissionIntensity,
		EmissionColor:     m.EmissionColor,
		NormalIntensity:   m.NormalIntensity,
	}
	for slot, tex := range m.Maps {
		data.HasMap[slot] = tex != nil
	}
	return data
}

func (m *Material) Map(slot TextureMap) gpu.Texture {
	if m == nil || slot >= NumTextureMaps {
		return nil
	}
	return m.Maps[slot]
}

// SetMap assigns a texture to a slot.
func (m *Material) SetMap(slot TextureMap, tex gpu.Texture) *Material {
	if slot < NumTextureMaps {
		m.Maps[slot] = tex
	}
	return m
}
