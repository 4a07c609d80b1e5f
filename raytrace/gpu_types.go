package raytrace

import (
	"math"

	"github.com/lunex-engine/rtscene/accel/bvh"
	"github.com/lunex-engine/rtscene/types"
)

// NoTexture marks an unused texture slot in MaterialGPU.
const NoTexture int32 = -1

// TriangleGPU is a world-space triangle (80 bytes, std430). The w
// components of V0, V1 and V2 hold the x, y and z components of the unit
// face normal.
type TriangleGPU struct {
	V0 types.Vec4
	V1 types.Vec4
	V2 types.Vec4

	// uv0.xy, uv1.xy
	TexCoords01 types.Vec4

	// uv2.xy, material index, entity id
	TexCoords2AndMat types.Vec4
}

// Normal returns the face normal packed into the w components.
func (t *TriangleGPU) Normal() types.Vec3 {
	return types.XYZ(t.V0[3], t.V1[3], t.V2[3])
}

// MaterialIndex returns the material table index of the triangle.
func (t *TriangleGPU) MaterialIndex() uint32 {
	return uint32(t.TexCoords2AndMat[2])
}

// EntityID returns the id of the entity that owns the triangle.
func (t *TriangleGPU) EntityID() int32 {
	return int32(t.TexCoords2AndMat[3])
}

// Bounds calculates the AABB of the triangle vertices.
func (t *TriangleGPU) Bounds() types.AABB {
	b := types.EmptyAABB()
	b.Expand(t.V0.Vec3())
	b.Expand(t.V1.Vec3())
	b.Expand(t.V2.Vec3())
	return b
}

// Centroid returns the average of the triangle vertices.
func (t *TriangleGPU) Centroid() types.Vec3 {
	return t.V0.Vec3().Add(t.V1.Vec3()).Add(t.V2.Vec3()).Mul(1.0 / 3.0)
}

// BVHNodeGPU is the shader-side BVH node (32 bytes, std430).
//
// For leaves BoundsMin.w holds the index of the first triangle and
// BoundsMax.w the triangle count (> 0). For internal nodes BoundsMin.w
// holds the left child index and BoundsMax.w is 0; the right child is
// always stored right after the left child.
type BVHNodeGPU struct {
	BoundsMin types.Vec4
	BoundsMax types.Vec4
}

// IsLeaf returns true if the node references triangles.
func (n *BVHNodeGPU) IsLeaf() bool {
	return n.BoundsMax[3] > 0
}

// Triangles returns the triangle range of a leaf.
func (n *BVHNodeGPU) Triangles() (first, count uint32) {
	return uint32(n.BoundsMin[3]), uint32(n.BoundsMax[3])
}

// LeftChild returns the left child index of an internal node.
func (n *BVHNodeGPU) LeftChild() uint32 {
	return uint32(n.BoundsMin[3])
}

// Bounds returns the node AABB.
func (n *BVHNodeGPU) Bounds() types.AABB {
	return types.AABB{Min: n.BoundsMin.Vec3(), Max: n.BoundsMax.Vec3()}
}

// Encode a tagged BVH node into its shader representation.
func encodeNode(node *bvh.Node) BVHNodeGPU {
	out := BVHNodeGPU{
		BoundsMin: node.Bounds.Min.Vec4(0),
		BoundsMax: node.Bounds.Max.Vec4(0),
	}
	if node.IsLeaf() {
		out.BoundsMin[3] = float32(node.First)
		out.BoundsMax[3] = float32(node.Count)
	} else {
		out.BoundsMin[3] = float32(node.Left)
	}
	return out
}

// MaterialGPU is the shader-side material (64 bytes, std430).
type MaterialGPU struct {
	BaseColor types.Vec4

	// rgb = emission color, a = metallic
	EmissionAndMetallic types.Vec4

	// roughness, specular, ambient occlusion, emission intensity
	RoughSpecAOEmission types.Vec4

	// albedo, normal, metallic, roughness texture indices
	TexIndices1 [4]int32

	// specular, emission, ao texture indices and the normal intensity
	// stored as raw float32 bits
	TexIndices2 [4]int32
}

// DefaultMaterialGPU is the fallback material used when triangles reference
// slot 0 of an otherwise empty table.
var DefaultMaterialGPU = MaterialGPU{
	BaseColor:           types.XYZW(1, 1, 1, 1),
	EmissionAndMetallic: types.XYZW(0, 0, 0, 0),
	RoughSpecAOEmission: types.XYZW(0.5, 0.5, 1, 0),
	TexIndices1:         [4]int32{NoTexture, NoTexture, NoTexture, NoTexture},
	TexIndices2:         [4]int32{NoTexture, NoTexture, NoTexture, PackFloatBits(1)},
}

// PackFloatBits reinterprets the bits of a float32 as an int32.
func PackFloatBits(f float32) int32 {
	return int32(math.Float32bits(f))
}

// UnpackFloatBits reinterprets the bits of an int32 as a float32.
func UnpackFloatBits(i int32) float32 {
	return math.Float32frombits(uint32(i))
}

// UnpackNormalIntensity recovers the normal intensity of a packed material.
func UnpackNormalIntensity(m MaterialGPU) float32 {
	return UnpackFloatBits(m.TexIndices2[3])
}

// LightGPU is the shader-side light (64 bytes, std430).
type LightGPU struct {
	// xyz = position, w = light type
	PositionAndType types.Vec4

	// xyz = direction, w = range
	DirectionAndRange types.Vec4

	// rgb = color, a = intensity
	ColorAndIntensity types.Vec4

	// inner cone, outer cone, cast shadows, unused
	Params types.Vec4
}
