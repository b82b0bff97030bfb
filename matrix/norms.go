// SPDX-License-Identifier: MIT
// Package matrix: norms used as residual measures by the classifiers and tests.

package matrix

import (
	"math"
	"math/cmplx"
)

// FrobeniusNorm returns sqrt(Σ m[i,j]²), accumulated with math.Hypot to
// avoid intermediate overflow.
//
// Errors: ErrNilMatrix.
// Complexity: O(r*c).
func FrobeniusNorm(m Matrix) (float64, error) {
	d, err := toDense(m)
	if err != nil {
		return 0, matrixErrorf("FrobeniusNorm", err)
	}
	acc := NormZero
	for _, v := range d.data {
		acc = math.Hypot(acc, v)
	}

	return acc, nil
}

// MaxAbs returns max |m[i,j]|.
//
// Errors: ErrNilMatrix.
// Complexity: O(r*c).
func MaxAbs(m Matrix) (float64, error) {
	d, err := toDense(m)
	if err != nil {
		return 0, matrixErrorf("MaxAbs", err)
	}
	best := NormZero
	for _, v := range d.data {
		if a := math.Abs(v); a > best {
			best = a
		}
	}

	return best, nil
}

// CFrobeniusNorm returns sqrt(Σ |m[i,j]|²) for a complex matrix.
// A nil matrix has norm 0.
func CFrobeniusNorm(m *CDense) float64 {
	if m == nil {
		return 0
	}
	acc := NormZero
	for _, v := range m.data {
		acc = math.Hypot(acc, cmplx.Abs(v))
	}

	return acc
}
