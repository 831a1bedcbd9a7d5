package linalg

import (
	"errors"
	"fmt"
	"math/cmplx"
	"strings"
)

// ErrNotSquare is returned when a matrix literal is not square.
var ErrNotSquare = errors.New("linalg: matrix is not square")

// Matrix is a dense square complex matrix stored row-major.
//
// Matrices are values: every operation returns a fresh Matrix and never
// writes into its operands, so a Matrix may be shared freely between
// goroutines.
type Matrix struct {
	n    int
	data []complex128
}

// Zeros returns the n×n zero matrix.
func Zeros(n int) Matrix {
	return Matrix{n: n, data: make([]complex128, n*n)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := Zeros(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Diag returns a diagonal matrix with the given entries.
func Diag(vals ...complex128) Matrix {
	m := Zeros(len(vals))
	for i, v := range vals {
		m.data[i*m.n+i] = v
	}
	return m
}

// FromRows builds a matrix from row slices. Every row must have len(rows)
// entries.
func FromRows(rows [][]complex128) (Matrix, error) {
	n := len(rows)
	m := Zeros(n)
	for i, row := range rows {
		if len(row) != n {
			return Matrix{}, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, i, len(row), n)
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m, nil
}

// MustFromRows is FromRows for literals known to be square. It panics otherwise.
func MustFromRows(rows ...[]complex128) Matrix {
	m, err := FromRows(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// FromReal builds a matrix from row-major real entries.
func FromReal(n int, vals []float64) Matrix {
	m := Zeros(n)
	for i, v := range vals[:n*n] {
		m.data[i] = complex(v, 0)
	}
	return m
}

// Dim returns the number of rows (and columns).
func (m Matrix) Dim() int {
	return m.n
}

// At returns the entry at row i, column j.
func (m Matrix) At(i, j int) complex128 {
	return m.data[i*m.n+j]
}

// Rows returns a copy of the entries as row slices.
func (m Matrix) Rows() [][]complex128 {
	rows := make([][]complex128, m.n)
	for i := range rows {
		rows[i] = append([]complex128(nil), m.data[i*m.n:(i+1)*m.n]...)
	}
	return rows
}

// Real returns the real parts, row-major.
func (m Matrix) Real() []float64 {
	out := make([]float64, len(m.data))
	for i, v := range m.data {
		out[i] = real(v)
	}
	return out
}

// Imag returns the imaginary parts, row-major.
func (m Matrix) Imag() []float64 {
	out := make([]float64, len(m.data))
	for i, v := range m.data {
		out[i] = imag(v)
	}
	return out
}

// Mul returns m·o. It panics on a dimension mismatch.
func (m Matrix) Mul(o Matrix) Matrix {
	if m.n != o.n {
		panic(fmt.Sprintf("linalg: multiply %dx%d by %dx%d", m.n, m.n, o.n, o.n))
	}
	n := m.n
	out := Zeros(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			a := m.data[i*n+k]
			if a == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.data[i*n+j] += a * o.data[k*n+j]
			}
		}
	}
	return out
}

// Product returns ms[0]·ms[1]·…·ms[len-1].
func Product(ms ...Matrix) Matrix {
	if len(ms) == 0 {
		panic("linalg: empty product")
	}
	out := ms[0]
	for _, m := range ms[1:] {
		out = out.Mul(m)
	}
	return out
}

// Scale returns c·m.
func (m Matrix) Scale(c complex128) Matrix {
	out := Zeros(m.n)
	for i, v := range m.data {
		out.data[i] = c * v
	}
	return out
}

// Add returns m+o.
func (m Matrix) Add(o Matrix) Matrix {
	out := Zeros(m.n)
	for i := range m.data {
		out.data[i] = m.data[i] + o.data[i]
	}
	return out
}

// Sub returns m-o.
func (m Matrix) Sub(o Matrix) Matrix {
	return m.Add(o.Scale(-1))
}

// Transpose returns mᵀ.
func (m Matrix) Transpose() Matrix {
	n := m.n
	out := Zeros(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.data[j*n+i] = m.data[i*n+j]
		}
	}
	return out
}

// Conj returns the entrywise complex conjugate.
func (m Matrix) Conj() Matrix {
	out := Zeros(m.n)
	for i, v := range m.data {
		out.data[i] = cmplx.Conj(v)
	}
	return out
}

// Dagger returns the conjugate transpose m†.
func (m Matrix) Dagger() Matrix {
	return m.Transpose().Conj()
}

// Trace returns the sum of the diagonal.
func (m Matrix) Trace() complex128 {
	var t complex128
	for i := 0; i < m.n; i++ {
		t += m.data[i*m.n+i]
	}
	return t
}

// Det returns the determinant using Gaussian elimination with partial pivoting.
func (m Matrix) Det() complex128 {
	n := m.n
	a := append([]complex128(nil), m.data...)
	det := complex(1, 0)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if cmplx.Abs(a[r*n+col]) > cmplx.Abs(a[pivot*n+col]) {
				pivot = r
			}
		}
		if a[pivot*n+col] == 0 {
			return 0
		}
		if pivot != col {
			for j := 0; j < n; j++ {
				a[col*n+j], a[pivot*n+j] = a[pivot*n+j], a[col*n+j]
			}
			det = -det
		}
		p := a[col*n+col]
		det *= p
		for r := col + 1; r < n; r++ {
			f := a[r*n+col] / p
			if f == 0 {
				continue
			}
			for j := col; j < n; j++ {
				a[r*n+j] -= f * a[col*n+j]
			}
		}
	}
	return det
}

// Kron returns the Kronecker product a⊗b. The first factor owns the most
// significant index bits.
func Kron(a, b Matrix) Matrix {
	n := a.n * b.n
	out := Zeros(n)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			av := a.data[i*a.n+j]
			if av == 0 {
				continue
			}
			for k := 0; k < b.n; k++ {
				for l := 0; l < b.n; l++ {
					out.data[(i*b.n+k)*n+j*b.n+l] = av * b.data[k*b.n+l]
				}
			}
		}
	}
	return out
}

// Embed lifts a k-qubit matrix onto an n-qubit register. targets[i] is the
// register position (0 is the most significant qubit) of the matrix's i-th
// qubit.
func Embed(m Matrix, targets []int, n int) Matrix {
	k := len(targets)
	if m.n != 1<<k {
		panic(fmt.Sprintf("linalg: %dx%d matrix cannot act on %d qubits", m.n, m.n, k))
	}
	dim := 1 << n
	var mask int
	for _, t := range targets {
		mask |= 1 << (n - 1 - t)
	}
	sub := func(idx int) int {
		s := 0
		for j, t := range targets {
			if idx&(1<<(n-1-t)) != 0 {
				s |= 1 << (k - 1 - j)
			}
		}
		return s
	}
	out := Zeros(dim)
	for r := 0; r < dim; r++ {
		sr := sub(r)
		for c := 0; c < dim; c++ {
			if r&^mask != c&^mask {
				continue
			}
			out.data[r*dim+c] = m.data[sr*m.n+sub(c)]
		}
	}
	return out
}

// String renders the matrix one row per line.
func (m Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		b.WriteString("[")
		for j := 0; j < m.n; j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			v := m.data[i*m.n+j]
			fmt.Fprintf(&b, "%+.4f%+.4fi", real(v), imag(v))
		}
		b.WriteString("]\n")
	}
	return b.String()
}
