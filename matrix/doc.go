// SPDX-License-Identifier: MIT

// Package matrix provides the dense real and complex linear algebra that the
// Gaussian decomposers are built on.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set and a
//     NaN/Inf guard, plus the Matrix interface that kernels accept.
//   - CDense, its complex128 sibling for unitaries.
//   - Kernels (Add, Sub, Mul, Transpose, Scale, MatVec) that allocate fresh
//     results and never mutate operands.
//   - A deterministic cyclic-pivot Jacobi eigensolver (Eigen, EigenSorted) and
//     SymmetricFunc for matrix functions such as V^{1/2}.
//   - Validators and norms shared by the classifiers.
//
// Matrices here are small (a few dozen modes at most), so every algorithm is
// O(n^3) on contiguous storage with fixed loop orders: identical inputs give
// bit-identical outputs.
package matrix
