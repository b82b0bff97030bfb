// SPDX-License-Identifier: MIT

package gate

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cvgauss/blochmessiah"
	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
	"github.com/katalvlaran/cvgauss/williamson"
)

// Decompose plans the preparation of the state from vacuum:
//
//  1. Thermal(k, n̄_k) for every mode with n̄_k > tol (Williamson normal form).
//  2. If the Williamson transform S is mode-local, one Squeeze(r_k, φ_k) per
//     mode; this covers vacuum, thermal, squeezed and rotated squeezed states
//     without any interferometer. Otherwise S is decomposed with Bloch-Messiah;
//     when all ν_k agree the first interferometer acts on a rotation-invariant
//     state and is elided.
//  3. Displace(k, |α_k|, arg α_k) with α_k = (x_k + i·p_k)/√(2ħ) for |α_k| > tol.
func (g *CovarianceState) Decompose(opts ...Option) ([]ops.Op, error) {
	cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	tol := cfg.Tolerance
	n := g.Modes()
	hbar := g.Hbar()

	wr, err := williamson.Decompose(g.v, williamson.WithTolerance(tol), williamson.WithLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", g, err)
	}

	out := make([]ops.Op, 0, 4*n)
	for k, nbar := range wr.ThermalOccupations() {
		out = append(out, ops.NewThermal(k, nbar))
	}

	local, err := modeLocalSqueezers(wr.S, n, tol)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", g, err)
	}
	if local != nil {
		out = append(out, local...)
		cfg.Logger.Debug().Int("modes", n).Msg("gate: covariance state prepared without interferometer")
	} else {
		seq, err := entangledPlan(wr, tol, cfg)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", g, err)
		}
		out = append(out, seq...)
	}

	scale := math.Sqrt(2 * hbar)
	for k := 0; k < n; k++ {
		x, p := g.mean[k], g.mean[n+k]
		out = append(out, ops.NewDisplace(k, math.Hypot(x, p)/scale, math.Atan2(p, x)))
	}

	return ops.Trim(out, tol), nil
}

// modeLocalSqueezers returns one squeezer per mode when S couples no two modes
// within tol, or nil otherwise. For mode k with block s and s·sᵗ = [[a, b], [b, d]]
// the squeezer satisfies Sq(r,φ)·Sq(r,φ)ᵗ = s·sᵗ:
// sinh 2r = ½·hypot(2b, d − a) and φ = atan2(−2b, d − a), snapped to 0
// within tol.
func modeLocalSqueezers(s *matrix.Dense, n int, tol float64) ([]ops.Op, error) {
	var i, j int
	for i = 0; i < 2*n; i++ {
		for j = 0; j < 2*n; j++ {
			if i%n == j%n {
				continue
			}
			x, err := s.At(i, j)
			if err != nil {
				return nil, err
			}
			if math.Abs(x) > tol {
				return nil, nil
			}
		}
	}

	out := make([]ops.Op, 0, n)
	for k := 0; k < n; k++ {
		xx, _ := s.At(k, k)
		xp, _ := s.At(k, n+k)
		px, _ := s.At(n+k, k)
		pp, _ := s.At(n+k, n+k)
		a := xx*xx + xp*xp
		b := xx*px + xp*pp
		d := px*px + pp*pp
		h := math.Hypot(2*b, d-a)
		phi := math.Atan2(-2*b, d-a)
		if math.Abs(phi) <= tol {
			phi = 0
		}
		out = append(out, ops.NewSqueeze(k, 0.5*math.Asinh(0.5*h), phi))
	}

	return out, nil
}

// entangledPlan decomposes the Williamson transform with Bloch-Messiah.
func entangledPlan(wr *williamson.Result, tol float64, cfg Options) ([]ops.Op, error) {
	scale, err := matrix.MaxAbs(wr.S)
	if err != nil {
		return nil, err
	}
	budget := math.Max(tol, 1e-12) * math.Max(1, scale*scale)
	sym, err := classify.NewSymplectic(wr.S, budget)
	if err != nil {
		return nil, err
	}
	bm, err := blochmessiah.Decompose(sym, blochmessiah.WithTolerance(tol), blochmessiah.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}
	if !wr.Uniform(tol) {
		return bm.Ops(tol), nil
	}

	out := bm.Squeezers(tol)
	if bm.Mesh2 != nil {
		out = append(out, bm.Mesh2.Ops(tol)...)
	}
	cfg.Logger.Debug().Msg("gate: leading interferometer elided on a uniform normal form")

	return out, nil
}
