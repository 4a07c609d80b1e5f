package scene

import (
	"testing"

	"github.com/lunex-engine/rtscene/gpu/host"
)

func TestMaterialUniformData(t *testing.T) {
	mat := NewMaterial("test")
	data := mat.UniformData()

	if data.Roughness != 0.5 || data.Specular != 0.5 || data.NormalIntensity != 1 {
		t.Fatalf("unexpected default parameters: %+v", data)
	}
	for slot, present := range data.HasMap {
		if present {
			t.Fatalf("expected no %s map by default", TextureMap(slot))
		}
	}

	tex := &host.Texture{ID: 7, Loaded: true}
	mat.SetMap(NormalMap, tex).SetMap(NumTextureMaps, tex)

	data = mat.UniformData()
	if !data.HasMap[NormalMap] {
		t.Fatal("expected normal map to be present")
	}
	if mat.Map(NormalMap) != tex {
		t.Fatal("expected Map to return the assigned texture")
	}
	if mat.Map(NumTextureMaps) != nil {
		t.Fatal("expected out of range slot to return nil")
	}
}

func TestModelTriangleCount(t *testing.T) {
	model := &MeshModel{
		Meshes: []*Mesh{
			{Indices: []uint32{0, 1, 2, 2, 1, 3}},
			nil,
			{Indices: []uint32{0, 1, 2, 3}},
		},
	}

	if count := model.TriangleCount(); count != 3 {
		t.Fatalf("expected 3 triangles; got %d", count)
	}
}

func TestNilMaterial(t *testing.T) {
	var m *Material
	if data := m.UniformData(); data != (MaterialUniformData{}) {
		t.Fatalf("expected nil material to yield zero uniform data; got %+v", data)
	}
	if tex := m.Map(AlbedoMap); tex != nil {
		t.Fatalf("expected nil material to have no maps; got %v", tex)
	}
}
