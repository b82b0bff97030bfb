// Package blochmessiah implements the Bloch-Messiah (Euler) decomposition.
//
// Algorithm outline:
//
//  1. M = S·Sᵗ is symmetric positive definite and symplectic, so its spectrum
//     pairs up as (μ, 1/μ) and Ωu is an eigenvector for 1/μ whenever u is one
//     for μ. Diagonalize M with Jacobi (ascending, stable).
//  2. Pair the ascending spectrum from both ends, (μ_i, μ_{2N−1−i}), and
//     check reciprocity. A pair is squeezed when its larger member exceeds
//     1 + w, with r = ¼ ln(μ_hi/μ_lo); otherwise both members join the unit
//     cluster.
//  3. Pick N orthonormal vectors u_k spanning an isotropic half: the μ_hi
//     eigenvectors under symplectic Gram-Schmidt (each u is cleaned of every
//     earlier u and Ωu), then a pivoted symplectic Gram-Schmidt over the unit
//     cluster.
//  4. Assign u_k to modes by weight and fix signs; W = [Ωu | u] is orthogonal
//     symplectic with Wᵗ M W = D².
//  5. O2 = W, O1 = polar(D⁻¹·Wᵗ·S); both go through the real-embedding
//     inverse to the Clements decomposer.
//
// Unit cluster width:
//
//	w = max(Tolerance, 1e-12, 10·ε_J), where ε_J is the absolute eigenvalue
//	accuracy of the Jacobi solve. Below ε_J the eigenvalues 1 ± 2r cannot be
//	told apart from rounding, so squeezing that small is treated as none.
//	Eigenvectors of nearly degenerate μ are only accurate to ε_J/gap, which
//	is why step 3 re-orthogonalizes them symplectically instead of trusting
//	Jacobi, and step 5 takes the polar factor: O1 then absorbs the residual
//	squeezing r ≤ w/2 of the unit cluster and stays an exact orthogonal
//	symplectic matrix. Deviations from orthogonality beyond 1e3·w (at least
//	1e-7), scaled by ‖S‖²_max, are still reported as ErrNotUnitary.
package blochmessiah

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/clements"
	"github.com/katalvlaran/cvgauss/matrix"
)

const (
	// pairingTolerance bounds |ln μ + ln μ′| for a paired (μ, μ′) on top of
	// the eigensolver's own absolute error.
	pairingTolerance = 1e-6

	// unitClusterFloor keeps the unit cluster non-empty for passive input
	// when Tolerance is zero.
	unitClusterFloor = 1e-12

	// polarFloor is the smallest departure from orthogonality that
	// orthogonalPart always absorbs.
	polarFloor = 1e-7
)

// normalMode is one chosen isotropic direction before mode assignment; r is
// zero for directions taken from the unit cluster.
type normalMode struct {
	r float64
	u []float64
}

// Decompose factors a validated symplectic matrix as S = O2·D·O1.
//
// Errors:
//
//   - ErrNilSymplectic, ErrBadTolerance.
//   - *classify.ClassificationError wrapping classify.ErrNotSymplectic if the
//     spectrum of S·Sᵗ fails to pair.
//   - matrix.ErrMatrixEigenFailed (wrapped) if Jacobi does not converge.
//
// Complexity:
//
//   - Time:  O(N^3) per Jacobi sweep plus two Clements meshes.
//   - Space: O(N^2).
func Decompose(s *classify.SymplecticMatrix, opts ...Option) (*Result, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNilSymplectic
	}

	n := s.Modes()
	sm := s.Matrix()
	res := &Result{N: n, Squeezing: make([]float64, n)}

	modes, split, err := normalModes(sm, n, cfg)
	if err != nil {
		return nil, err
	}
	budget := projectionBudget(sm, split)
	meshTol := clements.WithTolerance(cfg.Tolerance)
	meshLog := clements.WithLogger(cfg.Logger)

	// Passive: S is its own interferometer.
	if modes == nil {
		res.Passive = true
		if res.O1, err = orthogonalPart(sm, budget); err != nil {
			return nil, fmt.Errorf("blochmessiah: passive S: %w", err)
		}
		if res.O2, err = matrix.NewIdentity(2 * n); err != nil {
			return nil, fmt.Errorf("blochmessiah: %w", err)
		}
		u1, err := classify.UnitaryFromOrthogonal(res.O1, conversionTolerance(sm, cfg.Tolerance))
		if err != nil {
			return nil, fmt.Errorf("blochmessiah: passive S: %w", err)
		}
		if res.Mesh1, err = clements.Decompose(u1, meshTol, meshLog); err != nil {
			return nil, fmt.Errorf("blochmessiah: %w", err)
		}
		cfg.Logger.Debug().Int("modes", n).Msg("blochmessiah: passive input, squeezing elided")

		return res, nil
	}

	// W = [Ωu | u] with u_k in column N+k.
	cols := make([][]float64, 2*n)
	free := make([]bool, n)
	for k := range free {
		free[k] = true
	}
	for _, m := range modes {
		k := classify.NearestMode(m.u, free)
		sign := classify.CanonicalSign(m.u, k)
		x := classify.ApplyOmega(m.u)
		cols[n+k] = make([]float64, 2*n)
		cols[k] = make([]float64, 2*n)
		for i := 0; i < 2*n; i++ {
			cols[n+k][i] = sign * m.u[i]
			cols[k][i] = sign * x[i]
		}
		res.Squeezing[k] = m.r
	}
	w, err := matrix.NewFromColumns(cols)
	if err != nil {
		return nil, fmt.Errorf("blochmessiah: %w", err)
	}
	res.O2 = w

	wt, err := matrix.Transpose(w)
	if err != nil {
		return nil, fmt.Errorf("blochmessiah: %w", err)
	}
	dInv, err := squeezeDiagonal(res.Squeezing, -1)
	if err != nil {
		return nil, fmt.Errorf("blochmessiah: %w", err)
	}
	o1, err := matrix.MulChain(dInv, wt, sm)
	if err != nil {
		return nil, fmt.Errorf("blochmessiah: %w", err)
	}
	if res.O1, err = orthogonalPart(o1, budget); err != nil {
		return nil, fmt.Errorf("blochmessiah: O1: %w", err)
	}

	convTol := conversionTolerance(sm, cfg.Tolerance)
	u1, err := classify.UnitaryFromOrthogonal(res.O1, convTol)
	if err != nil {
		return nil, fmt.Errorf("blochmessiah: O1: %w", err)
	}
	u2, err := classify.UnitaryFromOrthogonal(res.O2, convTol)
	if err != nil {
		return nil, fmt.Errorf("blochmessiah: O2: %w", err)
	}
	if res.Mesh1, err = clements.Decompose(u1, meshTol, meshLog); err != nil {
		return nil, fmt.Errorf("blochmessiah: %w", err)
	}
	if res.Mesh2, err = clements.Decompose(u2, meshTol, meshLog); err != nil {
		return nil, fmt.Errorf("blochmessiah: %w", err)
	}

	cfg.Logger.Debug().
		Int("modes", n).
		Floats64("squeezing", res.Squeezing).
		Msg("blochmessiah: decomposed")

	return res, nil
}

// normalModes returns N isotropic orthonormal directions of S·Sᵗ, largest μ
// first, or nil when S is passive, together with the unit-cluster width used.
func normalModes(sm *matrix.Dense, n int, cfg Options) ([]normalMode, float64, error) {
	st, err := matrix.Transpose(sm)
	if err != nil {
		return nil, 0, fmt.Errorf("blochmessiah: %w", err)
	}
	prod, err := matrix.Mul(sm, st)
	if err != nil {
		return nil, 0, fmt.Errorf("blochmessiah: %w", err)
	}
	m, err := matrix.Symmetrize(prod)
	if err != nil {
		return nil, 0, fmt.Errorf("blochmessiah: %w", err)
	}
	jacobiTol := matrix.JacobiTolerance(m)
	vals, q, err := matrix.EigenSorted(m, jacobiTol, matrix.JacobiIterations(2*n))
	if err != nil {
		return nil, 0, fmt.Errorf("blochmessiah: S·Sᵗ: %w", err)
	}

	// 1) Pair the ascending spectrum from both ends: (vals[i], vals[2N-1-i]).
	// A pair counts as squeezed when its larger member leaves the unit cluster.
	split := clusterWidth(cfg.Tolerance, jacobiTol)
	var squeezed []float64
	var big, unit []int
	for i := 0; i < n; i++ {
		lo, hi := vals[i], vals[2*n-1-i]
		if dev := math.Abs(math.Log(hi) + math.Log(lo)); dev > pairingTolerance+jacobiTol/lo {
			return nil, 0, &classify.ClassificationError{
				Kind:      classify.KindSymplectic,
				Residual:  dev,
				Tolerance: pairingTolerance,
				Reason:    fmt.Sprintf("eigenvalues %.6g and %.6g of S·Sᵗ are not reciprocal", hi, lo),
				Err:       classify.ErrNotSymplectic,
			}
		}
		if hi > 1+split {
			big = append(big, 2*n-1-i)
			squeezed = append(squeezed, 0.25*math.Log(hi/lo))
		} else {
			unit = append(unit, i, 2*n-1-i)
		}
	}
	if len(big) == 0 {
		return nil, split, nil
	}

	// 2) Symplectic Gram-Schmidt over the squeezed directions, largest μ
	// first: each u is cleaned of every earlier u and Ωu, so W = [Ωu | u]
	// stays orthogonal symplectic even when Jacobi blurs close eigenvalues.
	out := make([]normalMode, 0, n)
	basis := make([][]float64, 0, 2*n)
	for i, k := range big {
		c, err := q.Column(k)
		if err != nil {
			return nil, 0, fmt.Errorf("blochmessiah: %w", err)
		}
		u, nrm := matrix.Orthogonalize(c, basis)
		if nrm < 0.5 {
			return nil, 0, fmt.Errorf("blochmessiah: eigenvector %d collapsed under orthogonalization (norm %.3g): %w", k, nrm, matrix.ErrMatrixEigenFailed)
		}
		for j := range u {
			u[j] /= nrm
		}
		basis = append(basis, u, classify.ApplyOmega(u))
		out = append(out, normalMode{r: squeezed[i], u: u})
	}

	// 3) Unit cluster: pivoted symplectic Gram-Schmidt.
	if len(unit) > 0 {
		cands := make([][]float64, 0, len(unit))
		for _, k := range unit {
			c, err := q.Column(k)
			if err != nil {
				return nil, 0, fmt.Errorf("blochmessiah: %w", err)
			}
			cands = append(cands, c)
		}
		classify.OrderMomentumFirst(cands)
		for len(out) < n {
			u, idx := matrix.PivotedResidual(cands, basis)
			if idx < 0 {
				return nil, 0, fmt.Errorf("blochmessiah: unit cluster of size %d exhausted: %w", len(unit), matrix.ErrMatrixEigenFailed)
			}
			basis = append(basis, u, classify.ApplyOmega(u))
			out = append(out, normalMode{u: u})
		}
		cfg.Logger.Debug().
			Int("cluster", len(unit)).
			Int("squeezed", len(big)).
			Float64("width", split).
			Msg("blochmessiah: unit cluster resolved by symplectic Gram-Schmidt")
	}

	return out, split, nil
}

// clusterWidth is the half-width of the unit cluster around μ = 1: the
// tolerance, but never narrower than ten times the eigenvalue accuracy of the
// Jacobi solve nor than unitClusterFloor.
func clusterWidth(tol, jacobiTol float64) float64 {
	return math.Max(math.Max(tol, unitClusterFloor), 10*jacobiTol)
}

// orthogonalPart returns the polar factor O·(OᵗO)^{-1/2} of a nearly
// orthogonal O. The polar factor of a symplectic matrix is symplectic, so an
// orthogonal symplectic factor that picked up unsqueezed residue within the
// unit cluster, or rounding, is restored to the real embedding of a unitary.
// A departure ‖OᵗO − I‖_F above budget is an error.
func orthogonalPart(o *matrix.Dense, budget float64) (*matrix.Dense, error) {
	ot, err := matrix.Transpose(o)
	if err != nil {
		return nil, err
	}
	gram, err := matrix.Mul(ot, o)
	if err != nil {
		return nil, err
	}
	id, err := matrix.NewIdentity(o.Rows())
	if err != nil {
		return nil, err
	}
	diff, err := matrix.Sub(gram, id)
	if err != nil {
		return nil, err
	}
	dev, err := matrix.FrobeniusNorm(diff)
	if err != nil {
		return nil, err
	}
	if dev > budget {
		return nil, &classify.ClassificationError{
			Kind:      classify.KindUnitary,
			Residual:  dev,
			Tolerance: budget,
			Reason:    "passive factor is not orthogonal",
			Err:       classify.ErrNotUnitary,
		}
	}
	invRoot, err := matrix.SymmetricFunc(gram, func(l float64) (float64, error) {
		if l <= 0 {
			return 0, matrix.ErrMatrixEigenFailed
		}

		return 1 / math.Sqrt(l), nil
	})
	if err != nil {
		return nil, err
	}

	return matrix.Mul(o, invRoot)
}

// projectionBudget bounds how far a passive factor may sit from orthogonal
// before orthogonalPart: the unit cluster admits residual squeezing up to the
// cluster width on every mode, amplified by the magnitude of S.
func projectionBudget(sm *matrix.Dense, split float64) float64 {
	scale, err := matrix.MaxAbs(sm)
	if err != nil || scale < 1 {
		scale = 1
	}

	return math.Max(polarFloor, 1e3*split) * scale * scale
}

// conversionTolerance scales tol by the squared magnitude of S: the passive
// factors inherit rounding amplified by the squeezing.
func conversionTolerance(sm *matrix.Dense, tol float64) float64 {
	scale, err := matrix.MaxAbs(sm)
	if err != nil || scale < 1 {
		scale = 1
	}

	return math.Max(tol, unitClusterFloor) * scale * scale
}
