package math3d

// Mat2 is a 2x2 matrix stored in row-major order.
//
// Memory layout (indices):
// | 0 1 |
// | 2 3 |
type Mat2 [4]float64

// M2 builds a Mat2 from its rows.
func M2(r0, r1 [2]float64) Mat2 {
	return Mat2{
		r0[0], r0[1],
		r1[0], r1[1],
	}
}

// Identity2 returns the 2x2 identity matrix.
func Identity2() Mat2 {
	return Mat2{1, 0, 0, 1}
}

// At returns the element at (row, col).
func (m Mat2) At(row, col int) float64 {
	return m[row*2+col]
}

// Set sets the element at (row, col).
func (m *Mat2) Set(row, col int, val float64) {
	m[row*2+col] = val
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat2) Mul(b Mat2) Mat2 {
	var m Mat2
	for row := range 2 {
		for col := range 2 {
			m[row*2+col] = a[row*2]*b[col] + a[row*2+1]*b[2+col]
		}
	}
	return m
}

// MulVec transforms v by the matrix.
func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{
		m[0]*v.X + m[1]*v.Y,
		m[2]*v.X + m[3]*v.Y,
	}
}

// Scale returns the matrix with every element multiplied by s.
func (m Mat2) Scale(s float64) Mat2 {
	for i := range m {
		m[i] *= s
	}
	return m
}

// Transpose returns the transposed matrix.
func (m Mat2) Transpose() Mat2 {
	return Mat2{m[0], m[2], m[1], m[3]}
}

// Determinant returns the determinant of the matrix.
func (m Mat2) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Inverse returns the inverse of the matrix in closed form.
// ok is false when the determinant is exactly zero.
func (m Mat2) Inverse() (inv Mat2, ok bool) {
	det := m.Determinant()
	if det == 0 {
		return Mat2{}, false
	}
	return Mat2{
		m[3], -m[1],
		-m[2], m[0],
	}.Scale(1 / det), true
}
