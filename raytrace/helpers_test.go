package raytrace

import (
	"github.com/lunex-engine/rtscene/scene"
	"github.com/lunex-engine/rtscene/types"
)

// Create a mesh with a single triangle in the XY plane with its lower-left
// corner at origin.
func triangleMesh(origin types.Vec3, size float32) *scene.Mesh {
	n := types.XYZ(0, 0, 1)
	return &scene.Mesh{
		Name: "tri",
		Vertices: []scene.Vertex{
			{Position: origin, Normal: n, TexCoords: types.XY(0, 0)},
			{Position: origin.Add(types.XYZ(size, 0, 0)), Normal: n, TexCoords: types.XY(1, 0)},
			{Position: origin.Add(types.XYZ(0, size, 0)), Normal: n, TexCoords: types.XY(0, 1)},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// Create a draw item with one triangle sub-mesh per origin.
func trianglesItem(entityID int32, mat scene.MaterialInstance, size float32, origins ...types.Vec3) scene.DrawItem {
	model := &scene.MeshModel{Name: "triangles"}
	for _, origin := range origins {
		model.Meshes = append(model.Meshes, triangleMesh(origin, size))
	}
	return scene.DrawItem{
		Transform: types.Ident4(),
		Model:     model,
		Material:  mat,
		EntityID:  entityID,
	}
}

// Generate a deterministic scatter of count small triangles.
func scatterItem(count int, seed uint32) scene.DrawItem {
	next := func() float32 {
		seed = seed*1664525 + 1013904223
		return float32(seed>>8) / float32(1<<24)
	}

	origins := make([]types.Vec3, count)
	for i := range origins {
		origins[i] = types.XYZ(next()*200-100, next()*200-100, next()*200-100)
	}
	return trianglesItem(1, nil, 0.5, origins...)
}

// Two clusters: three triangles near the origin and two near x = 10.
func clusteredItems() []scene.DrawItem {
	return []scene.DrawItem{
		trianglesItem(1, nil, 0.2,
			types.XYZ(0, 0, 0),
			types.XYZ(0.1, 0.3, 0),
			types.XYZ(0.2, 0.1, 0.1),
		),
		trianglesItem(2, nil, 0.2,
			types.XYZ(10, 0, 0),
			types.XYZ(10.2, 0.2, 0),
		),
	}
}
