// SPDX-License-Identifier: MIT

package matrix

import "fmt"

const opSymmetricFunc = "SymmetricFunc"

// SymmetricFunc evaluates f on a symmetric matrix through its spectrum:
// Q·diag(f(λ_1), …, f(λ_n))·Qᵗ where m = Q·diag(λ)·Qᵗ.
//
// Implementation:
//   - Stage 1: Symmetrize m (products drift off symmetry by rounding).
//   - Stage 2: Eigen with a magnitude-scaled tolerance.
//   - Stage 3: f is applied per eigenvalue; f may reject a value by returning an error,
//     which is wrapped with the offending eigenvalue.
//
// Typical use: V^{1/2} and V^{-1/2} of a positive-definite covariance.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrMatrixEigenFailed, errors returned by f.
//
// Complexity: Eigen + O(n^3).
func SymmetricFunc(m Matrix, f func(lambda float64) (float64, error)) (*Dense, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return nil, matrixErrorf(opSymmetricFunc, err)
	}
	sym, err := Symmetrize(m)
	if err != nil {
		return nil, matrixErrorf(opSymmetricFunc, err)
	}
	vals, q, err := EigenSorted(sym, JacobiTolerance(sym), JacobiIterations(sym.r))
	if err != nil {
		return nil, matrixErrorf(opSymmetricFunc, err)
	}
	n := len(vals)
	// Q·diag(f)·Qᵗ assembled directly: out[i,j] = Σ_k Q[i,k] f_k Q[j,k].
	fv := make([]float64, n)
	for k, lambda := range vals {
		if fv[k], err = f(lambda); err != nil {
			return nil, matrixErrorf(opSymmetricFunc, fmt.Errorf("eigenvalue %g: %w", lambda, err))
		}
	}
	out, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opSymmetricFunc, err)
	}
	var i, j, k int
	var acc float64
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			acc = ZeroSum
			for k = 0; k < n; k++ {
				acc += q.data[i*n+k] * fv[k] * q.data[j*n+k]
			}
			out.data[i*n+j] = acc
			out.data[j*n+i] = acc
		}
	}

	return out, nil
}
