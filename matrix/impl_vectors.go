// SPDX-License-Identifier: MIT
// Package matrix: dense vector helpers for the eigenvector post-processing
// done by the normal-mode decomposers (projection, pivoted selection).

package matrix

import "math"

// pivotMargin is the relative gain a later candidate needs to displace an
// earlier one in PivotedResidual; near-ties keep the earlier candidate.
const pivotMargin = 1e-9

// Dot returns Σ x[i]·y[i] over the common prefix of x and y.
func Dot(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	acc := ZeroSum
	for i := 0; i < n; i++ {
		acc += x[i] * y[i]
	}

	return acc
}

// Norm2 returns the Euclidean norm of x.
func Norm2(x []float64) float64 {
	acc := NormZero
	for _, v := range x {
		acc = math.Hypot(acc, v)
	}

	return acc
}

// Orthogonalize removes from v its components along basis and returns the
// residual and its norm. basis is assumed orthonormal; the projection is
// applied twice (classical Gram-Schmidt with one reorthogonalization pass).
// v is not mutated.
//
// Complexity: O(len(basis)·len(v)).
func Orthogonalize(v []float64, basis [][]float64) ([]float64, float64) {
	r := make([]float64, len(v))
	copy(r, v)
	var d float64
	for pass := 0; pass < 2; pass++ {
		for _, b := range basis {
			d = Dot(r, b)
			for i := range r {
				r[i] -= d * b[i]
			}
		}
	}

	return r, Norm2(r)
}

// PivotedResidual selects, among candidates, the one with the largest residual
// after Orthogonalize against basis, and returns that residual normalized to
// unit length together with the candidate index.
//
// Determinism:
//   - Candidates are scanned in order; a later one wins only if its residual
//     norm exceeds the current best by the relative margin pivotMargin.
//
// Returns idx = -1 and a nil vector when every residual vanishes.
func PivotedResidual(candidates, basis [][]float64) ([]float64, int) {
	var (
		best     []float64
		bestNorm = NormZero
		idx      = -1
	)
	for k, c := range candidates {
		r, nr := Orthogonalize(c, basis)
		if nr > bestNorm*(1+pivotMargin) {
			best, bestNorm, idx = r, nr, k
		}
	}
	if idx < 0 || bestNorm == 0 {
		return nil, -1
	}
	for i := range best {
		best[i] /= bestNorm
	}

	return best, idx
}
