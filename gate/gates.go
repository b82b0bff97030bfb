// SPDX-License-Identifier: MIT

package gate

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cvgauss/blochmessiah"
	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/clements"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
)

// Interferometer is a passive linear-optical transform.
type Interferometer struct {
	u *classify.UnitaryMatrix
}

// NewInterferometer classifies u within tol.
func NewInterferometer(u *matrix.CDense, tol float64) (*Interferometer, error) {
	vu, err := classify.NewUnitary(u, tol)
	if err != nil {
		return nil, fmt.Errorf("NewInterferometer: %w", err)
	}

	return &Interferometer{u: vu}, nil
}

// InterferometerOf wraps an already validated unitary.
func InterferometerOf(u *classify.UnitaryMatrix) (*Interferometer, error) {
	if u == nil {
		return nil, ErrNilGate
	}

	return &Interferometer{u: u}, nil
}

func (g *Interferometer) Kind() Kind { return KindInterferometer }
func (g *Interferometer) Modes() int { return g.u.Modes() }

// Unitary returns a copy of U.
func (g *Interferometer) Unitary() *matrix.CDense { return g.u.Matrix() }

// Decompose runs the Clements decomposition.
func (g *Interferometer) Decompose(opts ...Option) ([]ops.Op, error) {
	cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	mesh, err := clements.Decompose(g.u, clements.WithTolerance(cfg.Tolerance), clements.WithLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", g, err)
	}

	return mesh.Ops(cfg.Tolerance), nil
}

func (g *Interferometer) String() string { return fmt.Sprintf("Interferometer(N=%d)", g.Modes()) }
func (g *Interferometer) sealed()        {}

// GaussianTransform is a general linear Gaussian transform.
type GaussianTransform struct {
	s *classify.SymplecticMatrix
}

// NewGaussianTransform classifies s within tol.
func NewGaussianTransform(s matrix.Matrix, tol float64) (*GaussianTransform, error) {
	vs, err := classify.NewSymplectic(s, tol)
	if err != nil {
		return nil, fmt.Errorf("NewGaussianTransform: %w", err)
	}

	return &GaussianTransform{s: vs}, nil
}

func (g *GaussianTransform) Kind() Kind { return KindGaussianTransform }
func (g *GaussianTransform) Modes() int { return g.s.Modes() }

// Symplectic returns a copy of S.
func (g *GaussianTransform) Symplectic() *matrix.Dense { return g.s.Matrix() }

// Decompose runs the Bloch-Messiah decomposition.
func (g *GaussianTransform) Decompose(opts ...Option) ([]ops.Op, error) {
	cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	res, err := blochmessiah.Decompose(g.s, blochmessiah.WithTolerance(cfg.Tolerance), blochmessiah.WithLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", g, err)
	}

	return res.Ops(cfg.Tolerance), nil
}

func (g *GaussianTransform) String() string { return fmt.Sprintf("GaussianTransform(N=%d)", g.Modes()) }
func (g *GaussianTransform) sealed()        {}

// Squeeze is the single-mode squeezer Squeeze(r, φ).
type Squeeze struct {
	r, phi float64
}

// NewSqueeze rejects non-finite parameters.
func NewSqueeze(r, phi float64) (*Squeeze, error) {
	if !finite(r, phi) {
		return nil, fmt.Errorf("NewSqueeze(%g, %g): %w", r, phi, ErrBadParameter)
	}

	return &Squeeze{r: r, phi: phi}, nil
}

func (g *Squeeze) Kind() Kind   { return KindSqueeze }
func (g *Squeeze) Modes() int   { return 1 }
func (g *Squeeze) R() float64   { return g.r }
func (g *Squeeze) Phi() float64 { return g.phi }

// Decompose emits the squeezer itself; a negative r is folded into φ + π.
func (g *Squeeze) Decompose(opts ...Option) ([]ops.Op, error) {
	cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	return ops.Trim([]ops.Op{squeezeOp(0, g.r, g.phi)}, cfg.Tolerance), nil
}

func (g *Squeeze) String() string { return fmt.Sprintf("Squeeze(r=%.6g,φ=%.6g)", g.r, g.phi) }
func (g *Squeeze) sealed()        {}

func squeezeOp(mode int, r, phi float64) ops.Op {
	if r < 0 {
		return ops.NewSqueeze(mode, -r, ops.WrapAngle(phi+math.Pi))
	}

	return ops.NewSqueeze(mode, r, phi)
}

// SqueezedState prepares one mode in the squeezed vacuum Squeeze(r, φ)|0⟩.
type SqueezedState struct {
	r, phi, hbar float64
}

// NewSqueezedState rejects non-finite parameters and ħ ≤ 0.
func NewSqueezedState(r, phi, hbar float64) (*SqueezedState, error) {
	if !finite(r, phi, hbar) || !(hbar > 0) {
		return nil, fmt.Errorf("NewSqueezedState(%g, %g, ħ=%g): %w", r, phi, hbar, ErrBadParameter)
	}

	return &SqueezedState{r: r, phi: phi, hbar: hbar}, nil
}

func (g *SqueezedState) Kind() Kind    { return KindSqueezedState }
func (g *SqueezedState) Modes() int    { return 1 }
func (g *SqueezedState) R() float64    { return g.r }
func (g *SqueezedState) Phi() float64  { return g.phi }
func (g *SqueezedState) Hbar() float64 { return g.hbar }

// Covariance returns (ħ/2)·Sq·Sqᵗ, the 2×2 covariance of the prepared mode.
func (g *SqueezedState) Covariance() (*matrix.Dense, error) {
	c, s := math.Cos(g.phi), math.Sin(g.phi)
	ch, sh := math.Cosh(2*g.r), math.Sinh(2*g.r)
	h := g.hbar / 2

	return matrix.NewFromRows([][]float64{
		{h * (ch - c*sh), -h * s * sh},
		{-h * s * sh, h * (ch + c*sh)},
	})
}

// Decompose emits the squeezer that builds the state from vacuum.
func (g *SqueezedState) Decompose(opts ...Option) ([]ops.Op, error) {
	cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	return ops.Trim([]ops.Op{squeezeOp(0, g.r, g.phi)}, cfg.Tolerance), nil
}

func (g *SqueezedState) String() string {
	return fmt.Sprintf("SqueezedState(r=%.6g,φ=%.6g)", g.r, g.phi)
}
func (g *SqueezedState) sealed() {}

// CovarianceState prepares N modes in the Gaussian state with covariance V and
// mean vector (xxpp order) for a given ħ.
type CovarianceState struct {
	v    *classify.CovarianceMatrix
	mean []float64
}

// NewCovarianceState classifies v against ħ within tol. A nil mean is the
// zero vector; otherwise it must have length 2N.
func NewCovarianceState(v matrix.Matrix, mean []float64, hbar, tol float64) (*CovarianceState, error) {
	cv, err := classify.NewCovariance(v, hbar, tol)
	if err != nil {
		return nil, fmt.Errorf("NewCovarianceState: %w", err)
	}
	n2 := 2 * cv.Modes()
	m := make([]float64, n2)
	if mean != nil {
		if len(mean) != n2 {
			return nil, fmt.Errorf("NewCovarianceState: mean of length %d for %d quadratures: %w", len(mean), n2, ErrBadParameter)
		}
		if !finite(mean...) {
			return nil, fmt.Errorf("NewCovarianceState: mean: %w", ErrBadParameter)
		}
		copy(m, mean)
	}

	return &CovarianceState{v: cv, mean: m}, nil
}

func (g *CovarianceState) Kind() Kind    { return KindCovarianceState }
func (g *CovarianceState) Modes() int    { return g.v.Modes() }
func (g *CovarianceState) Hbar() float64 { return g.v.Hbar() }

// Covariance returns a copy of V.
func (g *CovarianceState) Covariance() *matrix.Dense { return g.v.Matrix() }

// Mean returns a copy of the mean vector.
func (g *CovarianceState) Mean() []float64 {
	out := make([]float64, len(g.mean))
	copy(out, g.mean)

	return out
}

func (g *CovarianceState) String() string {
	return fmt.Sprintf("CovarianceState(N=%d,ħ=%g)", g.Modes(), g.Hbar())
}
func (g *CovarianceState) sealed() {}
