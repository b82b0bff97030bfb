// SPDX-License-Identifier: MIT
// Package matrix provides the real linear-algebra kernels consumed by the
// decomposers: element-wise addition and subtraction, matrix multiplication,
// transpose, scalar scaling, matrix-vector products and the symmetric Jacobi
// eigensolver. All functions perform strict fail-fast validation and return
// clear errors on dimension mismatches.
//
// Notes:
//   - Every kernel allocates a fresh *Dense; operands are never mutated.
//   - Inputs are lowered to *Dense once (toDense) so inner loops walk flat slices.

package matrix

import (
	"fmt"
	"math"
	"sort"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// ZeroSum is the initial sum value for dot products and similar reductions.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd         = "Add"
	opSub         = "Sub"
	opMul         = "Mul"
	opTranspose   = "Transpose"
	opScale       = "Scale"
	opMatVec      = "MatVec"
	opEigen       = "Eigen"
	opEigenSorted = "EigenSorted"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// The wrapper keeps a stable "Op: underlying" shape for uniform reporting across facades.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
//
// Implementation:
//   - Stage 1: Wrap using fmt.Errorf("%s: %w", tag, err) to enable errors.Is/As.
//
// Complexity:
//   - Time O(1), Space O(1).
//
// AI-Hints:
//   - Always gate calls with `if err != nil { return nil, matrixErrorf(tag, err) }`.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// addSub computes elementwise out = a + sign*b for sign ∈ {+1, -1}.
// Inputs must have identical shapes. A fresh Dense is allocated; operands are not mutated.
//
// Implementation:
//   - Stage 1: ValidateBinarySameShape(a, b). Lower both operands to *Dense.
//   - Stage 2: single flat loop 0..n-1.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (wrapped with opTag).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func addSub(a, b Matrix, sign float64, opTag string) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	res, err := NewDense(da.r, da.c)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	for idx := range res.data { // deterministic 0..n-1
		res.data[idx] = da.data[idx] + sign*db.data[idx]
	}

	return res, nil
}

// Add computes the element-wise sum C = A + B and returns a fresh Dense result.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (shape mismatch).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func Add(a, b Matrix) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub computes the element-wise difference C = A − B and returns a fresh Dense result.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (shape mismatch).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func Sub(a, b Matrix) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Mul computes the matrix product C = A × B.
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b); lower to *Dense.
//   - Stage 2: i→k→j loop order; zero A[i,k] entries are skipped.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Determinism:
//   - Fixed loop order; identical inputs give bit-identical outputs.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	aRows, aCols, bCols := da.r, da.c, db.c
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, j, k                            int
		av                                 float64
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	for i = 0; i < aRows; i++ {
		rowOffsetA = i * aCols
		rowOffsetR = i * bCols
		for k = 0; k < aCols; k++ {
			av = da.data[rowOffsetA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			rowOffsetB = k * bCols
			for j = 0; j < bCols; j++ {
				res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
			}
		}
	}

	return res, nil
}

// MulChain multiplies left to right: ms[0]·ms[1]···ms[k-1].
// At least one operand is required.
func MulChain(ms ...Matrix) (*Dense, error) {
	if len(ms) == 0 {
		return nil, matrixErrorf(opMul, ErrNilMatrix)
	}
	acc, err := toDense(ms[0])
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	for _, m := range ms[1:] {
		if acc, err = Mul(acc, m); err != nil {
			return nil, err
		}
	}

	return acc, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
//
// Errors:
//   - ErrNilMatrix.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	dm, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	rows, cols := dm.r, dm.c
	res, err := NewDense(cols, rows) // dims flipped
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	// data[i*cols + j] → res.data[j*rows + i]
	var i, j, baseSrc int
	for i = 0; i < rows; i++ {
		baseSrc = i * cols
		for j = 0; j < cols; j++ {
			res.data[j*rows+i] = dm.data[baseSrc+j]
		}
	}

	return res, nil
}

// Scale returns a new matrix whose elements are alpha * m[i,j].
//
// Errors:
//   - ErrNilMatrix.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	dm, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res := dm.clone()
	for idx := range res.data {
		res.data[idx] *= alpha
	}

	return res, nil
}

// MatVec computes y = m·x.
//
// Errors:
//   - ErrNilMatrix (nil m or x), ErrDimensionMismatch (len(x) != Cols).
//
// Complexity:
//   - Time O(r*c), Space O(r).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, d.r)
	var i, j, base int
	var acc float64
	for i = 0; i < d.r; i++ {
		acc = ZeroSum
		base = i * d.c
		for j = 0; j < d.c; j++ {
			acc += d.data[base+j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix via Jacobi sweeps.
// Implementation:
//   - Stage 1: Validate symmetric square input within tol (not nil, square, |A[i,j]-A[j,i]| ≤ tol).
//   - Stage 2: Repeatedly pick (p,q) with the largest |A[p,q]| in i→j order and apply a Jacobi rotation.
//   - Stage 3: Fail with ErrMatrixEigenFailed when max off-diagonal ≥ tol after maxIter rotations.
//
// Behavior highlights:
//   - Stable, deterministic pivot scan; the working copy is updated on flat slices.
//
// Inputs:
//   - m: symmetric Matrix (within tol); n := m.Rows().
//   - tol: convergence threshold (typ. 1e-9..1e-13 for float64).
//   - maxIter: safety cap on rotations.
//
// Returns:
//   - []float64: eigenvalues (diagonal of the rotated matrix), unordered.
//   - *Dense: Q whose columns are the matching orthonormal eigenvectors.
//
// Errors:
//   - ErrDimensionMismatch (non-square), ErrAsymmetry (not symmetric within tol),
//     ErrMatrixEigenFailed (max off-diagonal ≥ tol after maxIter).
//
// Determinism:
//   - Fixed i→j pivot search and fixed update order produce stable results.
//
// Complexity:
//   - Time O(maxIter * n^2), Space O(n^2).
//
// AI-Hints:
//   - Symmetrize inputs that come out of products (SSᵗ, AᵗA) before calling.
//   - Use EigenSorted when callers depend on eigenvalue order.
func Eigen(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	src, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := src.r
	a := src.clone() // working copy; the input is never touched
	qm, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		iter, i, j, base   int
		p, q               int     // current pivot indices
		maxOff, off        float64 // maxOff - current max |A[p,q]|; off - temporary
		app, aqq, apq      float64 // pivot block entries
		aip, aiq, qip, qiq float64 // temporaries for A[i,p], A[i,q] and Q[i,p], Q[i,q]
		newIP, newIQ       float64 // updated values for A[i,p] and A[i,q]
		theta, t, c, s     float64 // rotation parameters
	)
	for iter = 0; iter < maxIter; iter++ {
		// J.1: Find pivot (p,q) maximizing |A[p,q]|.
		maxOff = NormZero
		for i = 0; i < n; i++ {
			base = i * n
			for j = i + 1; j < n; j++ {
				off = math.Abs(a.data[base+j])
				if off > maxOff {
					maxOff, p, q = off, i, j
				}
			}
		}
		// J.2: Converged.
		if maxOff < tol {
			break
		}

		// J.3: Rotation parameters from A[p,p], A[q,q], A[p,q].
		app = a.data[p*n+p]
		aqq = a.data[q*n+q]
		apq = a.data[p*n+q]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		// J.4: Apply rotation to A (symmetric update of rows/cols p and q).
		for i = 0; i < n; i++ {
			if i == p || i == q {
				continue
			}
			aip = a.data[i*n+p]
			aiq = a.data[i*n+q]
			newIP = c*aip - s*aiq
			newIQ = s*aip + c*aiq
			a.data[i*n+p], a.data[p*n+i] = newIP, newIP
			a.data[i*n+q], a.data[q*n+i] = newIQ, newIQ
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		a.data[q*n+q] = s*s*app + 2*c*s*apq + c*c*aqq
		a.data[p*n+q], a.data[q*n+p] = 0, 0

		// J.5: Accumulate rotation into Q.
		for i = 0; i < n; i++ {
			qip = qm.data[i*n+p]
			qiq = qm.data[i*n+q]
			qm.data[i*n+p] = c*qip - s*qiq
			qm.data[i*n+q] = s*qip + c*qiq
		}
	}

	// Final convergence check.
	maxOff = NormZero
	for i = 0; i < n; i++ {
		base = i * n
		for j = i + 1; j < n; j++ {
			if off = math.Abs(a.data[base+j]); off > maxOff {
				maxOff = off
			}
		}
	}
	if maxOff >= tol {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}

	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}

	return eigs, qm, nil
}

// EigenSorted runs Eigen and reorders the spectrum ascending.
// Columns of Q follow their eigenvalues; ties keep the Jacobi output order
// (stable sort), so repeated calls on identical input agree exactly.
//
// Errors: same as Eigen.
// Complexity: Eigen + O(n log n + n^2).
func EigenSorted(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	vals, qm, err := Eigen(m, tol, maxIter)
	if err != nil {
		return nil, nil, err
	}
	n := len(vals)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return vals[order[x]] < vals[order[y]] })

	sortedVals := make([]float64, n)
	sortedQ, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigenSorted, err)
	}
	var i, k, src int
	for k = 0; k < n; k++ {
		src = order[k]
		sortedVals[k] = vals[src]
		for i = 0; i < n; i++ {
			sortedQ.data[i*n+k] = qm.data[i*n+src]
		}
	}

	return sortedVals, sortedQ, nil
}

// JacobiIterations returns the rotation cap used by the decomposers for an n×n input.
// Classical Jacobi needs O(n^2) rotations per sweep and converges in a handful of sweeps.
func JacobiIterations(n int) int {
	return 30*n*n + 64
}

// JacobiTolerance returns an absolute convergence threshold scaled to the magnitude of m.
func JacobiTolerance(m Matrix) float64 {
	scale, err := MaxAbs(m)
	if err != nil || scale < 1 {
		scale = 1
	}

	return 1e-13 * scale
}
