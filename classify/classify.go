// SPDX-License-Identifier: MIT

package classify

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cvgauss/matrix"
)

const (
	opUnitary    = "ClassifyUnitary"
	opSymplectic = "ClassifySymplectic"
	opCovariance = "ClassifyCovariance"
)

// ClassifyUnitary checks ‖U†U − I‖_F ≤ tol.
//
// Errors:
//   - ErrDimensionMismatch for nil or non-square U.
//   - *ClassificationError wrapping ErrNotUnitary otherwise.
//
// Complexity: O(N^3).
func ClassifyUnitary(u *matrix.CDense, tol float64) error {
	if u == nil {
		return fmt.Errorf("%s: %w", opUnitary, ErrDimensionMismatch)
	}
	if u.Rows() != u.Cols() {
		return dimensionErrorf(opUnitary, u.Rows(), u.Cols())
	}
	res, err := unitaryResidual(u)
	if err != nil {
		return fmt.Errorf("%s: %w", opUnitary, err)
	}
	if !(res <= tol) {
		return violation(KindUnitary, "‖U†U − I‖", res, tol)
	}

	return nil
}

func unitaryResidual(u *matrix.CDense) (float64, error) {
	uh, err := matrix.ConjTranspose(u)
	if err != nil {
		return 0, err
	}
	prod, err := matrix.CMul(uh, u)
	if err != nil {
		return 0, err
	}
	id, err := matrix.NewCIdentity(u.Rows())
	if err != nil {
		return 0, err
	}
	diff, err := matrix.CSub(prod, id)
	if err != nil {
		return 0, err
	}

	return matrix.CFrobeniusNorm(diff), nil
}

// ClassifySymplectic checks ‖SᵗΩS − Ω‖_F ≤ tol for a 2N×2N real S.
//
// Errors:
//   - ErrDimensionMismatch for nil, non-square or odd-dimension S.
//   - *ClassificationError wrapping ErrNotSymplectic otherwise.
//
// Complexity: O(N^3).
func ClassifySymplectic(s matrix.Matrix, tol float64) error {
	if err := checkPhaseSpace(opSymplectic, s); err != nil {
		return err
	}
	res, err := SymplecticResidual(s)
	if err != nil {
		return fmt.Errorf("%s: %w", opSymplectic, err)
	}
	if !(res <= tol) {
		return violation(KindSymplectic, "‖SᵗΩS − Ω‖", res, tol)
	}

	return nil
}

// SymplecticResidual returns ‖SᵗΩS − Ω‖_F. S must be 2N×2N.
func SymplecticResidual(s matrix.Matrix) (float64, error) {
	omega, err := SymplecticForm(s.Rows() / 2)
	if err != nil {
		return 0, err
	}
	st, err := matrix.Transpose(s)
	if err != nil {
		return 0, err
	}
	prod, err := matrix.MulChain(st, omega, s)
	if err != nil {
		return 0, err
	}
	diff, err := matrix.Sub(prod, omega)
	if err != nil {
		return 0, err
	}

	return matrix.FrobeniusNorm(diff)
}

// ClassifyCovariance checks that V is a physical covariance matrix for the given ħ:
//
//	Stage 1: ‖V − Vᵗ‖_F ≤ tol.
//	Stage 2: every eigenvalue of V is strictly positive.
//	Stage 3: every eigenvalue of the Hermitian V + i(ħ/2)Ω is ≥ −tol. The check
//	         runs on the real symmetric embedding [[V, −(ħ/2)Ω], [(ħ/2)Ω, V]],
//	         whose spectrum is that of the Hermitian matrix with each value doubled.
//
// Errors:
//   - ErrDimensionMismatch for nil, non-square or odd-dimension V.
//   - *ClassificationError wrapping ErrNotPhysicalCovariance otherwise.
//
// Complexity: O(N^3) per Jacobi sweep.
func ClassifyCovariance(v matrix.Matrix, hbar, tol float64) error {
	if err := checkPhaseSpace(opCovariance, v); err != nil {
		return err
	}
	vt, err := matrix.Transpose(v)
	if err != nil {
		return fmt.Errorf("%s: %w", opCovariance, err)
	}
	asym, err := matrix.Sub(v, vt)
	if err != nil {
		return fmt.Errorf("%s: %w", opCovariance, err)
	}
	res, err := matrix.FrobeniusNorm(asym)
	if err != nil {
		return fmt.Errorf("%s: %w", opCovariance, err)
	}
	if !(res <= tol) {
		return violation(KindCovariance, "‖V − Vᵗ‖", res, tol)
	}

	sym, err := matrix.Symmetrize(v)
	if err != nil {
		return fmt.Errorf("%s: %w", opCovariance, err)
	}
	vals, _, err := matrix.Eigen(sym, matrix.JacobiTolerance(sym), matrix.JacobiIterations(sym.Rows()))
	if err != nil {
		return fmt.Errorf("%s: %w", opCovariance, err)
	}
	if low := minOf(vals); !(low > 0) {
		return violation(KindCovariance, "min eig(V) must be > 0", math.Abs(low), 0)
	}

	emb, err := uncertaintyEmbedding(sym, hbar)
	if err != nil {
		return fmt.Errorf("%s: %w", opCovariance, err)
	}
	vals, _, err = matrix.Eigen(emb, matrix.JacobiTolerance(emb), matrix.JacobiIterations(emb.Rows()))
	if err != nil {
		return fmt.Errorf("%s: %w", opCovariance, err)
	}
	if low := minOf(vals); low < -tol {
		return violation(KindCovariance, "min eig(V + iħΩ/2)", -low, tol)
	}

	return nil
}

// uncertaintyEmbedding builds [[V, −(ħ/2)Ω], [(ħ/2)Ω, V]] (4N×4N).
func uncertaintyEmbedding(v *matrix.Dense, hbar float64) (*matrix.Dense, error) {
	n2 := v.Rows()
	omega, err := SymplecticForm(n2 / 2)
	if err != nil {
		return nil, err
	}
	vr, err := matrix.ToRows(v)
	if err != nil {
		return nil, err
	}
	or, err := matrix.ToRows(omega)
	if err != nil {
		return nil, err
	}
	half := hbar / 2
	out := make([][]float64, 2*n2)
	var i, j int
	for i = 0; i < 2*n2; i++ {
		out[i] = make([]float64, 2*n2)
	}
	for i = 0; i < n2; i++ {
		for j = 0; j < n2; j++ {
			out[i][j] = vr[i][j]
			out[n2+i][n2+j] = vr[i][j]
			out[i][n2+j] = -half * or[i][j]
			out[n2+i][j] = half * or[i][j]
		}
	}

	return matrix.NewFromRows(out)
}

// Classify dispatches on kind. m is a *matrix.CDense or a matrix.Matrix;
// a real matrix passed as KindUnitary is checked as a real unitary
// (orthogonal) matrix, a complex one passed for a real kind must have a
// zero imaginary part.
//
// Errors: as the per-kind classifiers.
func Classify(m any, kind Kind, hbar, tol float64) error {
	switch kind {
	case KindUnitary:
		switch x := m.(type) {
		case *matrix.CDense:
			return ClassifyUnitary(x, tol)
		case matrix.Matrix:
			c, err := promote(x)
			if err != nil {
				return fmt.Errorf("Classify: %w", err)
			}
			return ClassifyUnitary(c, tol)
		}
	case KindSymplectic, KindCovariance:
		rm, err := demote(m, kind, tol)
		if err != nil {
			return err
		}
		if kind == KindSymplectic {
			return ClassifySymplectic(rm, tol)
		}
		return ClassifyCovariance(rm, hbar, tol)
	}

	return fmt.Errorf("Classify: kind %v on %T: %w", kind, m, ErrDimensionMismatch)
}

func promote(m matrix.Matrix) (*matrix.CDense, error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrDimensionMismatch)
	}
	rows, err := matrix.ToRows(m)
	if err != nil {
		return nil, err
	}
	cr := make([][]complex128, len(rows))
	for i, row := range rows {
		cr[i] = make([]complex128, len(row))
		for j, v := range row {
			cr[i][j] = complex(v, 0)
		}
	}

	return matrix.NewCFromRows(cr)
}

func demote(m any, kind Kind, tol float64) (matrix.Matrix, error) {
	switch x := m.(type) {
	case *matrix.CDense:
		if x == nil {
			return nil, fmt.Errorf("Classify: %w", ErrDimensionMismatch)
		}
		im, err := matrix.FrobeniusNorm(x.Imag())
		if err != nil {
			return nil, fmt.Errorf("Classify: %w", err)
		}
		if !(im <= tol) {
			return nil, violation(kind, "imaginary part", im, tol)
		}
		return x.Real(), nil
	case matrix.Matrix:
		return x, nil
	}

	return nil, fmt.Errorf("Classify: %T: %w", m, ErrDimensionMismatch)
}

func checkPhaseSpace(op string, m matrix.Matrix) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return fmt.Errorf("%s: %w", op, ErrDimensionMismatch)
	}
	if err := matrix.ValidateEvenSquare(m); err != nil {
		return dimensionErrorf(op, m.Rows(), m.Cols())
	}

	return nil
}

func minOf(xs []float64) float64 {
	low := math.Inf(1)
	for _, x := range xs {
		if x < low {
			low = x
		}
	}

	return low
}
