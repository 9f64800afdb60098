package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// IdentityMatrix returns a new 4x4 identity matrix.
//
// Returns:
//   - [16]float32: the identity matrix (column-major)
func IdentityMatrix() [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Multiply returns a * b for two column-major 4x4 matrices.
// Applied to a column vector, b acts first.
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - [16]float32: the product a * b
func Multiply(a, b [16]float32) [16]float32 {
	var out [16]float32
	Mul4(out[:], a[:], b[:])
	return out
}

// Perspective creates a perspective projection matrix compatible with WebGPU clip space [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// Orthographic creates an orthographic projection matrix mapping depth to WebGPU's [0, 1] range.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal extents of the view volume
//   - bottom, top: vertical extents of the view volume
//   - near, far: depth extents of the view volume
func Orthographic(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	rl := right - left
	tb := top - bottom
	fn := far - near

	out[0] = 2.0 / rl
	out[5] = 2.0 / tb
	out[10] = -1.0 / fn
	out[12] = -(right + left) / rl
	out[13] = -(top + bottom) / tb
	out[14] = -near / fn
}

// Translation returns a matrix translating by (x, y, z).
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - [16]float32: the translation matrix
func Translation(x, y, z float32) [16]float32 {
	m := IdentityMatrix()
	m[12], m[13], m[14] = x, y, z
	return m
}

// RotationX returns a matrix rotating by deg degrees about the X axis.
//
// Parameters:
//   - deg: rotation angle in degrees
//
// Returns:
//   - [16]float32: the rotation matrix
func RotationX(deg float32) [16]float32 {
	s, c := sinCosDeg(deg)
	m := IdentityMatrix()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotationY returns a matrix rotating by deg degrees about the Y axis.
//
// Parameters:
//   - deg: rotation angle in degrees
//
// Returns:
//   - [16]float32: the rotation matrix
func RotationY(deg float32) [16]float32 {
	s, c := sinCosDeg(deg)
	m := IdentityMatrix()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotationZ returns a matrix rotating by deg degrees about the Z axis.
//
// Parameters:
//   - deg: rotation angle in degrees
//
// Returns:
//   - [16]float32: the rotation matrix
func RotationZ(deg float32) [16]float32 {
	s, c := sinCosDeg(deg)
	m := IdentityMatrix()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// ComposeTRS builds a model matrix from a translation, a unit quaternion (x, y, z, w) and a scale.
// The result applies scale first, then rotation, then translation.
//
// Parameters:
//   - t: translation
//   - q: rotation quaternion (x, y, z, w)
//   - s: scale factors
//
// Returns:
//   - [16]float32: the composed matrix (column-major)
func ComposeTRS(t [3]float32, q [4]float32, s [3]float32) [16]float32 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return [16]float32{
		(1 - 2*(yy+zz)) * s[0], 2 * (xy + wz) * s[0], 2 * (xz - wy) * s[0], 0,
		2 * (xy - wz) * s[1], (1 - 2*(xx+zz)) * s[1], 2 * (yz + wx) * s[1], 0,
		2 * (xz + wy) * s[2], 2 * (yz - wx) * s[2], (1 - 2*(xx+yy)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

// Invert4 computes the inverse of a 4x4 column-major matrix using the Laplace
// expansion (cofactor) method. If the matrix is singular (determinant ≈ 0) the
// output is left unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	// 2x2 sub-determinants of the upper-left and lower-right quadrants.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}

	invDet := 1.0 / det

	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return true
}

// InvertRigid inverts a matrix made only of rotation and translation by transposing
// the rotation and rotating the negated translation. It is cheaper than Invert4 and
// exact for camera and light placements, but wrong for matrices carrying scale or shear.
//
// Parameters:
//   - m: source matrix (column-major, orthonormal upper 3x3)
//
// Returns:
//   - [16]float32: the inverse transform
func InvertRigid(m [16]float32) [16]float32 {
	var out [16]float32
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	tx, ty, tz := m[12], m[13], m[14]
	out[12] = -(out[0]*tx + out[4]*ty + out[8]*tz)
	out[13] = -(out[1]*tx + out[5]*ty + out[9]*tz)
	out[14] = -(out[2]*tx + out[6]*ty + out[10]*tz)
	out[15] = 1
	return out
}

// TransformVec4 multiplies a column-major matrix by a column vector.
//
// Parameters:
//   - m: the matrix
//   - v: the vector (x, y, z, w)
//
// Returns:
//   - [4]float32: m * v
func TransformVec4(m [16]float32, v [4]float32) [4]float32 {
	var out [4]float32
	for r := 0; r < 4; r++ {
		out[r] = m[r]*v[0] + m[4+r]*v[1] + m[8+r]*v[2] + m[12+r]*v[3]
	}
	return out
}

// ApproxEqual reports whether two matrices match element-wise within eps.
//
// Parameters:
//   - a, b: the matrices to compare
//   - eps: absolute tolerance per element
//
// Returns:
//   - bool: true if every element differs by at most eps
func ApproxEqual(a, b [16]float32, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// sinCosDeg returns the sine and cosine of an angle given in degrees.
func sinCosDeg(deg float32) (float32, float32) {
	rad := deg * (math32.Pi / 180.0)
	return math32.Sin(rad), math32.Cos(rad)
}
