// SPDX-License-Identifier: MIT
// Package matrix: public API facades.
//
// Purpose:
//   - Provide thin, well-documented entry points for common tasks across the package.
//   - Avoid any logic duplication; each facade delegates to the canonical implementation.
//
// AI-Hints:
//   - Prefer passing *Dense to skip the interface lowering in kernels.
//   - Use NewIdentity/NewZeros to build matrices with explicit shape and neutral elements.

package matrix

import "math"

// ---------- Constructors & Utilities ----------

// NewZeros returns a new zero-initialized *Dense of size rows×cols.
// It is a thin alias of NewDense with an intention-revealing name.
func NewZeros(rows, cols int) (*Dense, error) {
	return NewDense(rows, cols)
}

// NewIdentity returns I_n (n×n identity; ones on the diagonal, zeros elsewhere).
// Complexity: O(n^2) zeroing (constructor) + O(n) writes on the diagonal.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ { // fixed i order guarantees reproducibility
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// NewDiagonal returns the square matrix with d on its diagonal.
func NewDiagonal(d []float64) (*Dense, error) {
	n := len(d)
	D, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, denseErrorf("NewDiagonal", i, i, ErrNaNInf)
		}
		D.data[i*n+i] = v
	}

	return D, nil
}

// ---------- Convenience facades (compositions only; no loop duplication) ----------

// Symmetrize returns (m + mᵀ)/2. Deterministic composition: Transpose → Add → Scale.
// Complexity: O(rc).
//
// AI-Hints: Repairs asymmetry drift of products such as SSᵗ before Jacobi.
func Symmetrize(m Matrix) (*Dense, error) {
	mt, err := Transpose(m)
	if err != nil {
		return nil, matrixErrorf("Symmetrize", err)
	}
	sum, err := Add(m, mt)
	if err != nil {
		return nil, matrixErrorf("Symmetrize", err)
	}

	return Scale(sum, 0.5)
}

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// NaN never compares close.
// Time: O(r*c). Space: O(1). Deterministic.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol| (negative values are normalized).
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	var i, j int
	var av, bv float64
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			av, _ = a.At(i, j)
			bv, _ = b.At(i, j)
			if !(math.Abs(av-bv) <= atol+rtol*math.Abs(bv)) { // NaN-safe negation
				return false, nil
			}
		}
	}

	return true, nil
}

// ToRows returns a fresh [][]float64 copy of m, convenient for algorithms
// that index rows directly.
func ToRows(m Matrix) ([][]float64, error) {
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf("ToRows", err)
	}
	out := make([][]float64, d.r)
	for i := range out {
		out[i] = make([]float64, d.c)
		copy(out[i], d.data[i*d.c:(i+1)*d.c])
	}

	return out, nil
}
