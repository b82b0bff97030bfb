// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for kernels.
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/cvgauss/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing kernels through the interface lowering path.
//
// AI-Hints:
//   - Wrap ONLY the operand you want to de-opt; keep the other one *Dense.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test (fatal on error).
func MustDense(tb testing.TB, r, c int) *matrix.Dense {
	tb.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		tb.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// MustFromRows builds a *Dense from literal rows or fails the test.
func MustFromRows(tb testing.TB, rows [][]float64) *matrix.Dense {
	tb.Helper()
	m, err := matrix.NewFromRows(rows)
	if err != nil {
		tb.Fatalf("NewFromRows: %v", err)
	}

	return m
}

// MustAt reads m[i,j] or fails the test.
func MustAt(tb testing.TB, m matrix.Matrix, i, j int) float64 {
	tb.Helper()
	v, err := m.At(i, j)
	if err != nil {
		tb.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// fillDenseRand fills m with uniform values in [-1, 1) from a seeded source.
func fillDenseRand(tb testing.TB, m *matrix.Dense, seed int64) {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if err := m.Set(i, j, 2*rng.Float64()-1); err != nil {
				tb.Fatalf("Set(%d,%d): %v", i, j, err)
			}
		}
	}
}

// randomSymmetric returns (R + Rᵗ)/2 for a seeded random R.
func randomSymmetric(tb testing.TB, n int, seed int64) *matrix.Dense {
	tb.Helper()
	r := MustDense(tb, n, n)
	fillDenseRand(tb, r, seed)
	s, err := matrix.Symmetrize(r)
	if err != nil {
		tb.Fatalf("Symmetrize: %v", err)
	}

	return s
}
