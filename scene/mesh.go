// Package scene defines the scene snapshot consumed by the ray tracing
// scene builder: draw items referencing mesh models and material
// instances, plus the scene lights.
package scene

import "github.com/lunex-engine/rtscene/types"

// Vertex is a single mesh vertex.
type Vertex struct {
	Position  types.Vec3
	Normal    types.Vec3
	TexCoords types.Vec2
}

// Mesh is an indexed triangle list. Every 3 consecutive indices define a
// triangle; trailing indices that do not form a full triangle are ignored.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of complete triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// MeshModel groups the sub-meshes of a model.
type MeshModel struct {
	Name   string
	Meshes []*Mesh
}

// TriangleCount returns the number of complete triangles across all
// sub-meshes.
func (m *MeshModel) TriangleCount() int {
	count := 0
	for _, mesh := range m.Meshes {
		if mesh != nil {
			count += mesh.TriangleCount()
		}
	}
	return count
}

// DrawItem places a mesh model in the world.
type DrawItem struct {
	Transform types.Mat4
	Model     *MeshModel

	// May be nil in which case material slot 0 is used.
	Material MaterialInstance

	// Editor entity that owns this item; carried through to the GPU
	// triangles for picking.
	EntityID int32
}

// RenderData is an immutable snapshot of the renderable scene.
type RenderData struct {
	DrawItems []DrawItem
	Lights    []Light
}
