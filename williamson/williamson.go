// Package williamson implements the Williamson decomposition.
//
// Algorithm outline:
//
//  1. A = V^{−1/2}·Ω·V^{−1/2} is antisymmetric; AᵗA = −A² has the eigenvalues
//     1/ν_k², each at least twice.
//  2. Diagonalize AᵗA (Jacobi, ascending) and group eigenvalues that agree to
//     a relative degeneracyTolerance into clusters of even size.
//  3. Inside each cluster run a pivoted Gram-Schmidt: pick the candidate u with
//     the largest residual (momentum-heavy candidates first), then
//     w = A·u/‖A·u‖ and ν = 1/‖A·u‖. The span of (u, w) is A-invariant, so
//     later picks stay orthogonal to it; w is reorthogonalized anyway.
//  4. Assign (u, w) to modes by weight: K has w in column k and u in column
//     N+k, so Kᵗ·A·K = [[0, Λ], [−Λ, 0]] with Λ = diag(1/ν).
//  5. S = V^{1/2}·K·diag(ν, ν)^{−1/2}; its symplectic residual is verified.
package williamson

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/matrix"
)

// degeneracyTolerance is the relative gap below which eigenvalues of AᵗA are
// treated as one cluster.
const degeneracyTolerance = 1e-9

// residualFloor is the smallest symplectic residual budget used by the final check.
const residualFloor = 1e-12

// Decompose computes the Williamson normal form of a validated covariance.
//
// Errors:
//
//   - ErrNilCovariance, ErrBadTolerance.
//   - *classify.ClassificationError wrapping classify.ErrNotPhysicalCovariance
//     when ν_k < ħ/2 − Tolerance.
//   - *classify.ClassificationError wrapping classify.ErrNotSymplectic when
//     the assembled S misses SᵗΩS = Ω beyond the residual budget.
//   - matrix.ErrMatrixEigenFailed (wrapped) for non-converging spectra or an
//     odd-sized eigenvalue cluster.
//
// Complexity:
//
//   - Time:  O(N^3) per Jacobi sweep, three spectral solves.
//   - Space: O(N^2).
func Decompose(v *classify.CovarianceMatrix, opts ...Option) (*Result, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNilCovariance
	}

	n := v.Modes()
	hbar := v.Hbar()
	vm := v.Matrix()

	// 1) V^{±1/2} and A.
	vHalf, err := matrix.SymmetricFunc(vm, positiveRoot(+1))
	if err != nil {
		return nil, fmt.Errorf("williamson: V^(1/2): %w", err)
	}
	vInvHalf, err := matrix.SymmetricFunc(vm, positiveRoot(-1))
	if err != nil {
		return nil, fmt.Errorf("williamson: V^(-1/2): %w", err)
	}
	omega, err := classify.SymplecticForm(n)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}
	a, err := matrix.MulChain(vInvHalf, omega, vInvHalf)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}

	// 2) Spectrum of AᵗA.
	at, err := matrix.Transpose(a)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}
	prod, err := matrix.Mul(at, a)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}
	ata, err := matrix.Symmetrize(prod)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}
	jacobiTol := matrix.JacobiTolerance(ata)
	vals, q, err := matrix.EigenSorted(ata, jacobiTol, matrix.JacobiIterations(2*n))
	if err != nil {
		return nil, fmt.Errorf("williamson: AᵗA: %w", err)
	}

	// 3) Pivoted Gram-Schmidt per cluster.
	type pair struct {
		nu   float64
		u, w []float64
	}
	pairs := make([]pair, 0, n)
	basis := make([][]float64, 0, 2*n)
	for _, cl := range clusters(vals, 100*jacobiTol) {
		if len(cl)%2 != 0 {
			return nil, fmt.Errorf("williamson: cluster of %d eigenvalues near %.6g: %w",
				len(cl), vals[cl[0]], matrix.ErrMatrixEigenFailed)
		}
		cands := make([][]float64, 0, len(cl))
		for _, k := range cl {
			c, err := q.Column(k)
			if err != nil {
				return nil, fmt.Errorf("williamson: %w", err)
			}
			cands = append(cands, c)
		}
		classify.OrderMomentumFirst(cands)
		for j := 0; j < len(cl)/2; j++ {
			u, idx := matrix.PivotedResidual(cands, basis)
			if idx < 0 {
				return nil, fmt.Errorf("williamson: cluster near %.6g exhausted: %w", vals[cl[0]], matrix.ErrMatrixEigenFailed)
			}
			au, err := matrix.MatVec(a, u)
			if err != nil {
				return nil, fmt.Errorf("williamson: %w", err)
			}
			norm := matrix.Norm2(au)
			w, wn := matrix.Orthogonalize(au, append(basis, u))
			for i := range w {
				w[i] /= wn
			}
			basis = append(basis, u, w)
			pairs = append(pairs, pair{nu: 1 / norm, u: u, w: w})
		}
		if len(cl) > 2 {
			cfg.Logger.Debug().
				Int("cluster", len(cl)).
				Float64("nu", 1/math.Sqrt(vals[cl[0]])).
				Msg("williamson: degenerate symplectic eigenvalues resolved by pivoted Gram-Schmidt")
		}
	}

	// 4) Mode assignment into K.
	kcols := make([][]float64, 2*n)
	nu := make([]float64, n)
	free := make([]bool, n)
	for i := range free {
		free[i] = true
	}
	for _, p := range pairs {
		mode := classify.NearestMode(p.u, free)
		sign := classify.CanonicalSign(p.u, mode)
		kcols[n+mode] = make([]float64, 2*n)
		kcols[mode] = make([]float64, 2*n)
		for i := 0; i < 2*n; i++ {
			kcols[n+mode][i] = sign * p.u[i]
			kcols[mode][i] = sign * p.w[i]
		}
		nu[mode] = p.nu
	}
	kmat, err := matrix.NewFromColumns(kcols)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}

	for mode, x := range nu {
		if x < hbar/2-cfg.Tolerance {
			return nil, &classify.ClassificationError{
				Kind:      classify.KindCovariance,
				Residual:  hbar/2 - x,
				Tolerance: cfg.Tolerance,
				Reason:    fmt.Sprintf("symplectic eigenvalue %.6g of mode %d below ħ/2", x, mode),
				Err:       classify.ErrNotPhysicalCovariance,
			}
		}
	}

	// 5) S = V^{1/2}·K·D^{−1/2}.
	d := make([]float64, 2*n)
	for mode, x := range nu {
		d[mode] = 1 / math.Sqrt(x)
		d[n+mode] = d[mode]
	}
	dm, err := matrix.NewDiagonal(d)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}
	s, err := matrix.MulChain(vHalf, kmat, dm)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}
	residual, err := classify.SymplecticResidual(s)
	if err != nil {
		return nil, fmt.Errorf("williamson: %w", err)
	}
	if budget := residualBudget(s, cfg.Tolerance); !(residual <= budget) {
		return nil, &classify.ClassificationError{
			Kind:      classify.KindSymplectic,
			Residual:  residual,
			Tolerance: budget,
			Reason:    "assembled Williamson transform",
			Err:       classify.ErrNotSymplectic,
		}
	}

	cfg.Logger.Debug().
		Int("modes", n).
		Floats64("nu", nu).
		Float64("symplectic_residual", residual).
		Msg("williamson: decomposed")

	return &Result{S: s, Nu: nu, Hbar: hbar}, nil
}

// positiveRoot returns λ ↦ λ^{sign/2}, rejecting non-positive eigenvalues.
func positiveRoot(sign float64) func(float64) (float64, error) {
	return func(lambda float64) (float64, error) {
		if !(lambda > 0) {
			return 0, classify.ErrNotPhysicalCovariance
		}

		return math.Pow(lambda, sign/2), nil
	}
}

// clusters groups indices of an ascending spectrum whose values stay within
// degeneracyTolerance (relative) plus slack (absolute) of the first value of
// the group.
func clusters(vals []float64, slack float64) [][]int {
	var out [][]int
	start := 0
	for k := 1; k <= len(vals); k++ {
		if k == len(vals) || vals[k]-vals[start] > degeneracyTolerance*math.Max(1, math.Abs(vals[start]))+slack {
			cl := make([]int, 0, k-start)
			for i := start; i < k; i++ {
				cl = append(cl, i)
			}
			out = append(out, cl)
			start = k
		}
	}

	return out
}

// residualBudget scales tol with ‖S‖²: squeezed transforms carry rounding
// proportional to their largest entries.
func residualBudget(s *matrix.Dense, tol float64) float64 {
	scale, err := matrix.MaxAbs(s)
	if err != nil || scale < 1 {
		scale = 1
	}

	return math.Max(tol, residualFloor) * scale * scale
}
