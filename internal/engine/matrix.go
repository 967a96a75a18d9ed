package engine

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix4 is a 4x4 affine transform stored column-major:
//
//	| m[0] m[4] m[8]  m[12] |
//	| m[1] m[5] m[9]  m[13] |
//	| m[2] m[6] m[10] m[14] |
//	| m[3] m[7] m[11] m[15] |
//
// Elements 12, 13 and 14 hold the translation.
type Matrix4 [16]float64

// Identity4 returns the identity matrix.
func Identity4() Matrix4 {
	return Matrix4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// Translation returns a translation matrix.
func Translation(tx, ty, tz float64) Matrix4 {
	m := Identity4()
	m[12], m[13], m[14] = tx, ty, tz
	return m
}

// Scaling returns a scale matrix.
func Scaling(sx, sy, sz float64) Matrix4 {
	m := Identity4()
	m[0], m[5], m[10] = sx, sy, sz
	return m
}

// RotationZ returns a rotation about +Z (angle in radians).
func RotationZ(radians float64) Matrix4 {
	c, s := math.Cos(radians), math.Sin(radians)
	m := Identity4()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// MatrixFromSlice reads a 16-element column-major slice. ok is false for any
// other length or a non-finite element.
func MatrixFromSlice(s []float64) (m Matrix4, ok bool) {
	if len(s) != 16 {
		return Identity4(), false
	}
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Identity4(), false
		}
		m[i] = v
	}
	return m, true
}

// Multiply returns m * other, which applies other first.
func (m Matrix4) Multiply(other Matrix4) Matrix4 {
	var r Matrix4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// TransformPoint applies the matrix to a point (w = 1).
func (m Matrix4) TransformPoint(x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[4]*y + m[8]*z + m[12],
		m[1]*x + m[5]*y + m[9]*z + m[13],
		m[2]*x + m[6]*y + m[10]*z + m[14]
}

// Position reads the translation column. It is exact: no decomposition is
// involved.
func (m Matrix4) Position() f64.Vec3 {
	return f64.Vec3{m[12], m[13], m[14]}
}

// Determinant3 is the determinant of the upper-left 3x3 block.
func (m Matrix4) Determinant3() float64 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) -
		m[4]*(m[1]*m[10]-m[9]*m[2]) +
		m[8]*(m[1]*m[6]-m[5]*m[2])
}

// Decompose splits the matrix into translation, XYZ Euler rotation
// (radians) and scale. Rotation and scale are approximate under shear; a
// negative determinant is reported as a negative X scale.
func (m Matrix4) Decompose() (position, rotation, scale f64.Vec3) {
	position = m.Position()

	sx := math.Sqrt(m[0]*m[0] + m[1]*m[1] + m[2]*m[2])
	sy := math.Sqrt(m[4]*m[4] + m[5]*m[5] + m[6]*m[6])
	sz := math.Sqrt(m[8]*m[8] + m[9]*m[9] + m[10]*m[10])
	if m.Determinant3() < 0 {
		sx = -sx
	}
	scale = f64.Vec3{sx, sy, sz}

	if sx == 0 || sy == 0 || sz == 0 {
		return position, f64.Vec3{}, scale
	}

	m11, m12, m13 := m[0]/sx, m[4]/sy, m[8]/sz
	m22, m23 := m[5]/sy, m[9]/sz
	m32, m33 := m[6]/sy, m[10]/sz

	ry := math.Asin(math.Max(-1, math.Min(1, m13)))
	var rx, rz float64
	if math.Abs(m13) < 0.9999999 {
		rx = math.Atan2(-m23, m33)
		rz = math.Atan2(-m12, m11)
	} else {
		rx = math.Atan2(m32, m22)
	}
	return position, f64.Vec3{rx, ry, rz}, scale
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix4) IsIdentity() bool {
	const eps = 1e-10
	id := Identity4()
	for i := range m {
		if math.Abs(m[i]-id[i]) >= eps {
			return false
		}
	}
	return true
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix4) ToSlice() []float64 {
	s := make([]float64, 16)
	copy(s, m[:])
	return s
}
