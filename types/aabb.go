package types

const (
	// Sentinel extent used for empty boxes so that the first Expand call
	// always replaces both corners.
	aabbEmptyExtent float32 = 1e30
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns an inverted box that contains nothing. Expanding it by
// a point yields a degenerate box around that point.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{aabbEmptyExtent, aabbEmptyExtent, aabbEmptyExtent},
		Max: Vec3{-aabbEmptyExtent, -aabbEmptyExtent, -aabbEmptyExtent},
	}
}

// Expand grows the box so it contains point p.
func (b *AABB) Expand(p Vec3) {
	b.Min = MinVec3(b.Min, p)
	b.Max = MaxVec3(b.Max, p)
}

// ExpandBox grows the box so it contains other.
func (b *AABB) ExpandBox(other AABB) {
	b.Min = MinVec3(b.Min, other.Min)
	b.Max = MaxVec3(b.Max, other.Max)
}

// Union returns a new box enclosing both a and other.
func (b AABB) Union(other AABB) AABB {
	b.ExpandBox(other)
	return b
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// SurfaceArea returns 2(xy + yz + zx) of the box extents.
func (b AABB) SurfaceArea() float32 {
	e := b.Extent()
	return 2 * (e[0]*e[1] + e[1]*e[2] + e[2]*e[0])
}

// IsValid reports whether the box has been expanded at least once.
func (b AABB) IsValid() bool {
	return b.Min[0] <= b.Max[0]
}

// Contains reports whether other lies entirely inside this box.
func (b AABB) Contains(other AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if other.Min[axis] < b.Min[axis] || other.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// LargestAxis returns the index of the axis with the largest extent.
func (b AABB) LargestAxis() int {
	e := b.Extent()
	axis := 0
	if e[1] > e[axis] {
		axis = 1
	}
	if e[2] > e[axis] {
		axis = 2
	}
	return axis
}
