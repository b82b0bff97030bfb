// SPDX-License-Identifier: MIT

package classify

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/cvgauss/matrix"
)

// SymplecticForm returns Ω = [[0, I_n], [−I_n, 0]] in xxpp order.
//
// Errors: matrix.ErrInvalidDimensions for n ≤ 0.
func SymplecticForm(n int) (*matrix.Dense, error) {
	omega, err := matrix.NewZeros(2*n, 2*n)
	if err != nil {
		return nil, fmt.Errorf("SymplecticForm: %w", err)
	}
	for k := 0; k < n; k++ {
		_ = omega.Set(k, n+k, 1)
		_ = omega.Set(n+k, k, -1)
	}

	return omega, nil
}

// RealEmbedding maps an N×N unitary to its 2N×2N orthogonal symplectic
// action on xxpp quadratures: O = [[Re U, −Im U], [Im U, Re U]].
//
// Errors: ErrDimensionMismatch for nil or non-square U.
func RealEmbedding(u *matrix.CDense) (*matrix.Dense, error) {
	if u == nil {
		return nil, fmt.Errorf("RealEmbedding: %w", ErrDimensionMismatch)
	}
	if u.Rows() != u.Cols() {
		return nil, dimensionErrorf("RealEmbedding", u.Rows(), u.Cols())
	}
	n := u.Rows()
	w := 2 * n
	out := make([]float64, w*w)
	vals := u.Values()
	var i, j int
	var re, im float64
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			re, im = real(vals[i*n+j]), imag(vals[i*n+j])
			out[i*w+j] = re
			out[i*w+n+j] = -im
			out[(n+i)*w+j] = im
			out[(n+i)*w+n+j] = re
		}
	}

	return matrix.NewFromValues(w, w, out)
}

// UnitaryFromOrthogonal inverts RealEmbedding: U = O[:N,:N] + i·O[N:,:N].
// O must be orthogonal symplectic, i.e. carry the [[A, −B], [B, A]] block
// structure within tol; the recovered U is then classified as unitary.
//
// Errors:
//   - ErrDimensionMismatch for a non-square or odd-dimension O.
//   - *ClassificationError wrapping ErrNotUnitary when the block structure or
//     unitarity fails.
func UnitaryFromOrthogonal(o matrix.Matrix, tol float64) (*UnitaryMatrix, error) {
	if err := checkPhaseSpace("UnitaryFromOrthogonal", o); err != nil {
		return nil, err
	}
	rows, err := matrix.ToRows(o)
	if err != nil {
		return nil, fmt.Errorf("UnitaryFromOrthogonal: %w", err)
	}
	n := len(rows) / 2
	cr := make([][]complex128, n)
	structural := 0.0
	var i, j int
	for i = 0; i < n; i++ {
		cr[i] = make([]complex128, n)
		for j = 0; j < n; j++ {
			a, b := rows[i][j], rows[n+i][j]
			structural = math.Hypot(structural, rows[n+i][n+j]-a)
			structural = math.Hypot(structural, rows[i][n+j]+b)
			cr[i][j] = complex(a, b)
		}
	}
	if !(structural <= tol) {
		return nil, violation(KindUnitary, "block structure of real embedding", structural, tol)
	}
	u, err := matrix.NewCFromRows(cr)
	if err != nil {
		return nil, fmt.Errorf("UnitaryFromOrthogonal: %w", err)
	}

	return NewUnitary(u, tol)
}

// IsOrthogonal reports ‖SᵗS − I‖_F ≤ tol. Non-square or nil input is not orthogonal.
func IsOrthogonal(s matrix.Matrix, tol float64) bool {
	if matrix.ValidateSquareNonNil(s) != nil {
		return false
	}
	st, err := matrix.Transpose(s)
	if err != nil {
		return false
	}
	prod, err := matrix.Mul(st, s)
	if err != nil {
		return false
	}
	id, err := matrix.NewIdentity(s.Rows())
	if err != nil {
		return false
	}
	diff, err := matrix.Sub(prod, id)
	if err != nil {
		return false
	}
	res, err := matrix.FrobeniusNorm(diff)

	return err == nil && res <= tol
}

// ApplyOmega returns Ωu for a phase-space vector u = (x, p): Ωu = (p, −x).
// An odd-length u is returned as an empty vector.
func ApplyOmega(u []float64) []float64 {
	if len(u)%2 != 0 {
		return []float64{}
	}
	n := len(u) / 2
	out := make([]float64, len(u))
	for k := 0; k < n; k++ {
		out[k] = u[n+k]
		out[n+k] = -u[k]
	}

	return out
}

// momentumWeight is Σ p_k² of a phase-space vector.
func momentumWeight(u []float64) float64 {
	n := len(u) / 2
	w := 0.0
	for _, v := range u[n:] {
		w += v * v
	}

	return w
}

// OrderMomentumFirst stably sorts phase-space vectors by descending weight on
// the p quadratures. Pivoted selections over a degenerate eigenspace then
// prefer momentum-like vectors, which keeps diagonal inputs diagonal.
func OrderMomentumFirst(vs [][]float64) {
	sort.SliceStable(vs, func(a, b int) bool { return momentumWeight(vs[a]) > momentumWeight(vs[b]) })
}

// NearestMode returns the free mode k carrying the largest weight
// u[k]² + u[N+k]² (lowest k on ties) and marks it taken. It returns -1 when
// no mode is free.
func NearestMode(u []float64, free []bool) int {
	n := len(u) / 2
	best, bestW := -1, -1.0
	for k := 0; k < n && k < len(free); k++ {
		if !free[k] {
			continue
		}
		if w := u[k]*u[k] + u[n+k]*u[n+k]; w > bestW {
			best, bestW = k, w
		}
	}
	if best >= 0 {
		free[best] = false
	}

	return best
}

// CanonicalSign returns −1 when the dominant quadrature of mode k in u
// (p_k unless |x_k| is strictly larger) is negative, and +1 otherwise.
func CanonicalSign(u []float64, k int) float64 {
	n := len(u) / 2
	d := u[n+k]
	if math.Abs(u[k]) > math.Abs(d) {
		d = u[k]
	}
	if d < 0 {
		return -1
	}

	return 1
}
