package types

import "github.com/go-gl/mathgl/mgl32"

const floatCmpEpsilon = 1e-6

// Column-major 4x4 matrix; the memory layout matches mgl32 and GLSL.
type Mat4 mgl32.Mat4

// Column-major 3x3 matrix.
type Mat3 mgl32.Mat3

// Create a 4x4 identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Create a scale matrix.
func Scale(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Compose a translation/rotation/scale transform. Rotation is a
// quaternion in (x, y, z, w) order.
func TRS(t Vec3, r Vec4, s Vec3) Mat4 {
	q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	if q.Len() == 0 {
		q = mgl32.QuatIdent()
	}
	m := mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	return Mat4(m)
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Transform a point (w = 1) by this matrix. The result is not divided by
// w so a zero matrix maps every point to the origin.
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	out := mgl32.Mat4(m).Mul4x1(mgl32.Vec4{v[0], v[1], v[2], 1})
	return Vec3(out.Vec3())
}

// Extract the top-left 3x3 matrix from a 4x4 matrix.
func (m Mat4) Mat3() Mat3 {
	return Mat3(mgl32.Mat4(m).Mat3())
}

// Calculate the matrix used to bring normals to world space: the
// inverse-transpose of the upper 3x3 part. Singular matrices yield the
// zero matrix.
func (m Mat4) NormalMatrix() Mat3 {
	return Mat3(mgl32.Mat4(m).Mat3().Inv().Transpose())
}

// Multiply a 3 component vector by this matrix.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3(mgl32.Mat3(m).Mul3x1(mgl32.Vec3(v)))
}
