// SPDX-License-Identifier: MIT

// Package matrix - CDense, the complex128 sibling of Dense.
//
// Purpose:
//   - Hold N×N unitaries and their factors with the same row-major layout,
//     the same error surface (sentinels wrapped with coordinates) and the same
//     determinism guarantees as Dense.
//
// Complexity quicksheet:
//   - NewCDense: O(r*c); At/Set: O(1); CMul: O(r*n*c); ConjTranspose: O(r*c).

package matrix

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

const (
	opCMul          = "CMul"
	opCSub          = "CSub"
	opConjTranspose = "ConjTranspose"
	ctxCFromRows    = "NewCFromRows"
)

// cdenseErrorf mirrors denseErrorf for complex storage.
func cdenseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("CDense.%s(%d,%d): %w", method, row, col, err)
}

// CDense is a row-major complex matrix (offset = i*c + j).
type CDense struct {
	r, c int
	data []complex128
}

var _ fmt.Stringer = (*CDense)(nil)

// NewCDense creates an r×c complex zero matrix.
// Errors: ErrInvalidDimensions when rows or cols is not positive.
func NewCDense(rows, cols int) (*CDense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &CDense{r: rows, c: cols, data: make([]complex128, rows*cols)}, nil
}

// NewCFromRows builds a CDense from rectangular complex rows (copied).
//
// Errors:
//   - ErrInvalidDimensions (empty input), ErrDimensionMismatch (ragged rows),
//     ErrNaNInf (non-finite real or imaginary part).
func NewCFromRows(rows [][]complex128) (*CDense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, matrixErrorf(ctxCFromRows, ErrInvalidDimensions)
	}
	r, c := len(rows), len(rows[0])
	m, err := NewCDense(r, c)
	if err != nil {
		return nil, matrixErrorf(ctxCFromRows, err)
	}
	var i, j int
	for i = 0; i < r; i++ {
		if len(rows[i]) != c {
			return nil, matrixErrorf(ctxCFromRows, ErrDimensionMismatch)
		}
		for j = 0; j < c; j++ {
			if !isFiniteComplex(rows[i][j]) {
				return nil, cdenseErrorf(ctxCFromRows, i, j, ErrNaNInf)
			}
			m.data[i*c+j] = rows[i][j]
		}
	}

	return m, nil
}

// NewCIdentity returns the n×n complex identity.
func NewCIdentity(n int) (*CDense, error) {
	m, err := NewCDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}

	return m, nil
}

func isFiniteComplex(v complex128) bool {
	re, im := real(v), imag(v)

	return !math.IsNaN(re) && !math.IsInf(re, 0) && !math.IsNaN(im) && !math.IsInf(im, 0)
}

// Rows returns the row count.
func (m *CDense) Rows() int { return m.r }

// Cols returns the column count.
func (m *CDense) Cols() int { return m.c }

// At returns the element at (row, col) or ErrOutOfRange.
func (m *CDense) At(row, col int) (complex128, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, cdenseErrorf(ctxAt, row, col, ErrOutOfRange)
	}

	return m.data[row*m.c+col], nil
}

// Set assigns v at (row, col).
// Errors: ErrOutOfRange, ErrNaNInf.
func (m *CDense) Set(row, col int, v complex128) error {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return cdenseErrorf(ctxSet, row, col, ErrOutOfRange)
	}
	if !isFiniteComplex(v) {
		return cdenseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[row*m.c+col] = v

	return nil
}

// Clone returns a deep copy.
func (m *CDense) Clone() *CDense {
	cp := make([]complex128, len(m.data))
	copy(cp, m.data)

	return &CDense{r: m.r, c: m.c, data: cp}
}

// Values returns a row-major copy of the backing buffer.
func (m *CDense) Values() []complex128 {
	out := make([]complex128, len(m.data))
	copy(out, m.data)

	return out
}

// ToRows returns a fresh [][]complex128 copy of m.
func (m *CDense) ToRows() [][]complex128 {
	out := make([][]complex128, m.r)
	for i := range out {
		out[i] = make([]complex128, m.c)
		copy(out[i], m.data[i*m.c:(i+1)*m.c])
	}

	return out
}

// Real returns the real part as a Dense.
func (m *CDense) Real() *Dense {
	d, _ := NewDense(m.r, m.c) // shape already validated by construction
	for i, v := range m.data {
		d.data[i] = real(v)
	}

	return d
}

// Imag returns the imaginary part as a Dense.
func (m *CDense) Imag() *Dense {
	d, _ := NewDense(m.r, m.c)
	for i, v := range m.data {
		d.data[i] = imag(v)
	}

	return d
}

// String renders rows like Dense.String, with complex entries.
func (m *CDense) String() string {
	var b strings.Builder
	var i, j int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[i*m.c+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// CMul computes the complex product A×B (i→k→j order, zero skip).
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*n*c).
func CMul(a, b *CDense) (*CDense, error) {
	if a == nil || b == nil {
		return nil, matrixErrorf(opCMul, ErrNilMatrix)
	}
	if a.c != b.r {
		return nil, matrixErrorf(opCMul, ErrDimensionMismatch)
	}
	res, err := NewCDense(a.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opCMul, err)
	}
	var i, j, k int
	var av complex128
	for i = 0; i < a.r; i++ {
		for k = 0; k < a.c; k++ {
			av = a.data[i*a.c+k]
			if av == 0 {
				continue
			}
			for j = 0; j < b.c; j++ {
				res.data[i*b.c+j] += av * b.data[k*b.c+j]
			}
		}
	}

	return res, nil
}

// CSub computes A − B.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func CSub(a, b *CDense) (*CDense, error) {
	if a == nil || b == nil {
		return nil, matrixErrorf(opCSub, ErrNilMatrix)
	}
	if a.r != b.r || a.c != b.c {
		return nil, matrixErrorf(opCSub, ErrDimensionMismatch)
	}
	res := a.Clone()
	for i := range res.data {
		res.data[i] -= b.data[i]
	}

	return res, nil
}

// ConjTranspose returns the Hermitian adjoint m†.
//
// Errors: ErrNilMatrix.
func ConjTranspose(m *CDense) (*CDense, error) {
	if m == nil {
		return nil, matrixErrorf(opConjTranspose, ErrNilMatrix)
	}
	res, err := NewCDense(m.c, m.r)
	if err != nil {
		return nil, matrixErrorf(opConjTranspose, err)
	}
	var i, j int
	for i = 0; i < m.r; i++ {
		for j = 0; j < m.c; j++ {
			res.data[j*m.r+i] = cmplx.Conj(m.data[i*m.c+j])
		}
	}

	return res, nil
}
