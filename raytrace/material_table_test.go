package raytrace

import (
	"testing"

	"github.com/lunex-engine/rtscene/gpu/host"
	"github.com/lunex-engine/rtscene/scene"
	"github.com/lunex-engine/rtscene/types"
)

func TestMaterialTableDedup(t *testing.T) {
	table := NewMaterialTable(host.NewDevice("test"))

	mat := scene.NewMaterial("a")
	first := table.GetOrAddMaterial(mat, nil)
	second := table.GetOrAddMaterial(mat, nil)
	if first != second {
		t.Fatalf("expected the same instance to map to the same index; got %d and %d", first, second)
	}
	if table.MaterialCount() != 1 {
		t.Fatalf("expected 1 material; got %d", table.MaterialCount())
	}

	// Content-identical but distinct instances get their own entries
	twin := scene.NewMaterial("a")
	if idx := table.GetOrAddMaterial(twin, nil); idx == first {
		t.Fatalf("expected a distinct instance to get a new index; got %d", idx)
	}
	if table.MaterialCount() != 2 {
		t.Fatalf("expected 2 materials; got %d", table.MaterialCount())
	}
}

func TestMaterialTableNilInstance(t *testing.T) {
	dev := host.NewDevice("test")
	table := NewMaterialTable(dev)
	atlas := NewTextureAtlas(dev)

	if idx := table.GetOrAddMaterial(nil, atlas); idx != 0 {
		t.Fatalf("expected nil material to map to 0; got %d", idx)
	}
	if table.MaterialCount() != 0 {
		t.Fatalf("expected table to stay empty; got %d materials", table.MaterialCount())
	}
	if idx := atlas.GetOrAddTexture(nil); idx != NoTexture {
		t.Fatalf("expected nil texture to map to NoTexture; got %d", idx)
	}
	if atlas.TextureCount() != 0 {
		t.Fatalf("expected atlas to stay empty; got %d textures", atlas.TextureCount())
	}
}

func TestMaterialTableNilPointerInstance(t *testing.T) {
	dev := host.NewDevice("test")
	table := NewMaterialTable(dev)
	atlas := NewTextureAtlas(dev)

	var mat *scene.Material
	if idx := table.GetOrAddMaterial(mat, atlas); idx != 0 {
		t.Fatalf("expected nil *Material to map to 0; got %d", idx)
	}
	if table.MaterialCount() != 0 {
		t.Fatalf("expected table to stay empty; got %d materials", table.MaterialCount())
	}

	var tex *host.Texture
	if idx := atlas.GetOrAddTexture(tex); idx != NoTexture {
		t.Fatalf("expected nil *host.Texture to map to NoTexture; got %d", idx)
	}
	if atlas.TextureCount() != 0 {
		t.Fatalf("expected atlas to stay empty; got %d textures", atlas.TextureCount())
	}

	// A material whose map slot holds a nil texture pointer
	withNilMap := scene.NewMaterial("nil map").SetMap(scene.AlbedoMap, tex)
	idx := table.GetOrAddMaterial(withNilMap, atlas)
	if got := table.Materials()[idx].TexIndices1[0]; got != NoTexture {
		t.Fatalf("expected albedo slot to be NoTexture; got %d", got)
	}
	if atlas.TextureCount() != 0 {
		t.Fatalf("expected atlas to stay empty; got %d textures", atlas.TextureCount())
	}
}

func TestMaterialTablePacking(t *testing.T) {
	dev := host.NewDevice("test")
	table := NewMaterialTable(dev)
	atlas := NewTextureAtlas(dev)

	albedo := &host.Texture{ID: 10, Loaded: true}
	normal := &host.Texture{ID: 11, Loaded: true}

	mat := scene.NewMaterial("packed")
	mat.Albedo = types.XYZW(0.2, 0.4, 0.6, 1)
	mat.Metallic = 0.8
	mat.Roughness = 0.3
	mat.Specular = 0.7
	mat.EmissionColor = types.XYZ(1, 0.5, 0)
	mat.EmissionIntensity = 4
	mat.NormalIntensity = 0.25
	mat.SetMap(scene.AlbedoMap, albedo).
		SetMap(scene.NormalMap, normal).
		SetMap(scene.AOMap, albedo)

	idx := table.GetOrAddMaterial(mat, atlas)
	packed := table.Materials()[idx]

	if packed.BaseColor != mat.Albedo {
		t.Fatalf("expected base color %v; got %v", mat.Albedo, packed.BaseColor)
	}
	if exp := types.XYZW(1, 0.5, 0, 0.8); packed.EmissionAndMetallic != exp {
		t.Fatalf("expected emission/metallic %v; got %v", exp, packed.EmissionAndMetallic)
	}
	if exp := types.XYZW(0.3, 0.7, 1, 4); packed.RoughSpecAOEmission != exp {
		t.Fatalf("expected roughness/specular/ao/emission %v; got %v", exp, packed.RoughSpecAOEmission)
	}
	if exp := [4]int32{0, 1, NoTexture, NoTexture}; packed.TexIndices1 != exp {
		t.Fatalf("expected texture indices %v; got %v", exp, packed.TexIndices1)
	}

	// The AO map shares the albedo texture and must reuse its atlas slot
	if packed.TexIndices2[0] != NoTexture || packed.TexIndices2[1] != NoTexture || packed.TexIndices2[2] != 0 {
		t.Fatalf("unexpected texture indices %v", packed.TexIndices2)
	}
	if got := UnpackNormalIntensity(packed); got != 0.25 {
		t.Fatalf("expected normal intensity 0.25; got %f", got)
	}
	if atlas.TextureCount() != 2 {
		t.Fatalf("expected 2 textures in the atlas; got %d", atlas.TextureCount())
	}

	// Without an atlas every texture slot is empty
	other := NewMaterialTable(dev)
	packed = other.Materials()[other.GetOrAddMaterial(mat, nil)]
	for i := 0; i < 4; i++ {
		if packed.TexIndices1[i] != NoTexture {
			t.Fatalf("expected slot %d to be empty without an atlas; got %d", i, packed.TexIndices1[i])
		}
	}
}

func TestMaterialTableWithoutBindless(t *testing.T) {
	dev := host.NewDevice("legacy", host.WithBindless(false))
	table := NewMaterialTable(dev)
	atlas := NewTextureAtlas(dev)

	mat := scene.NewMaterial("textured").SetMap(scene.AlbedoMap, &host.Texture{ID: 1, Loaded: true})
	packed := table.Materials()[table.GetOrAddMaterial(mat, atlas)]

	if packed.TexIndices1[0] != NoTexture {
		t.Fatalf("expected albedo slot to be empty without bindless support; got %d", packed.TexIndices1[0])
	}
	if packed.BaseColor != mat.Albedo {
		t.Fatal("expected scalar parameters to be packed")
	}
}

func TestMaterialTableUploadCapacity(t *testing.T) {
	dev := host.NewDevice("test")
	table := NewMaterialTable(dev)

	if err := table.UploadToGPU(); err != nil {
		t.Fatal(err)
	}
	if dev.Allocations() != 0 {
		t.Fatal("expected an empty table not to allocate a buffer")
	}

	table.GetOrAddMaterial(scene.NewMaterial("first"), nil)
	if err := table.UploadToGPU(); err != nil {
		t.Fatal(err)
	}
	if exp, size := minMaterialEntries*materialSize, table.buf.Size(); size != exp {
		t.Fatalf("expected buffer size %d; got %d", exp, size)
	}

	for i := 0; i < 299; i++ {
		table.GetOrAddMaterial(scene.NewMaterial("more"), nil)
	}
	if err := table.UploadToGPU(); err != nil {
		t.Fatal(err)
	}
	if exp, size := 2*300*materialSize, table.buf.Size(); size != exp {
		t.Fatalf("expected buffer size %d; got %d", exp, size)
	}
	if size := table.buf.Size(); size < 2*table.MaterialCount()*materialSize {
		t.Fatalf("expected capacity of at least twice the required size; got %d", size)
	}

	// The buffer never shrinks
	table.Clear()
	table.GetOrAddMaterial(scene.NewMaterial("again"), nil)
	if err := table.UploadToGPU(); err != nil {
		t.Fatal(err)
	}
	if exp, size := 2*300*materialSize, table.buf.Size(); size != exp {
		t.Fatalf("expected buffer to keep size %d; got %d", exp, size)
	}
	if dev.Allocations() != 2 {
		t.Fatalf("expected 2 allocations; got %d", dev.Allocations())
	}

	if err := table.Bind(2); err != nil {
		t.Fatal(err)
	}
	if dev.Bound(2) == nil {
		t.Fatal("expected material buffer to be bound")
	}
}
