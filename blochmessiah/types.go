// Package blochmessiah defines core types and configuration options for the
// Bloch-Messiah decomposition of a real symplectic matrix
//
//	S = O2 · D · O1,   D = diag(e^{−r_1}, …, e^{−r_N}, e^{r_1}, …, e^{r_N}),
//
// where O1 and O2 are orthogonal symplectic (passive interferometers) and D is
// a layer of single-mode squeezers Squeeze(k, r_k, 0) with r_k ≥ 0.
//
// Options:
//
//	– Tolerance: eigenvalues of S·Sᵗ within max(Tolerance, 1e-12, 10·ε_J) of 1
//	             form the unsqueezed cluster, ε_J being the Jacobi eigenvalue
//	             accuracy; also forwarded to the Clements meshes.
//	– Logger:    zerolog logger for debug diagnostics (default: disabled).
//
// Errors (sentinel):
//
//	– ErrNilSymplectic  if the validated symplectic pointer is nil.
//	– ErrBadTolerance   if Tolerance is negative or NaN.
//	– classify.ErrNotSymplectic when the spectrum of S·Sᵗ does not pair up.
package blochmessiah

import (
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/clements"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
)

// Sentinel errors returned by Decompose.
var (
	// ErrNilSymplectic indicates a nil *classify.SymplecticMatrix.
	ErrNilSymplectic = errors.New("blochmessiah: symplectic matrix is nil")

	// ErrBadTolerance indicates a negative or NaN tolerance option.
	ErrBadTolerance = errors.New("blochmessiah: tolerance must be a non-negative number")
)

// DefaultTolerance is the clustering and elision threshold when none is given.
const DefaultTolerance = 1e-10

// Options configures Decompose.
type Options struct {
	Tolerance float64
	Logger    zerolog.Logger
}

// Option represents a functional option for configuring Decompose.
type Option func(*Options)

// DefaultOptions returns DefaultTolerance and a disabled logger.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, Logger: zerolog.Nop()}
}

// WithTolerance sets the unit-cluster and elision threshold.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		o.Tolerance = tol
	}
}

// WithLogger routes debug diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func (o Options) validate() error {
	if math.IsNaN(o.Tolerance) || o.Tolerance < 0 {
		return ErrBadTolerance
	}

	return nil
}

// Result holds S = O2 · D(Squeezing) · O1 and the meshes of both passive factors.
//
// For a passive S (every r_k ≈ 0) O2 is the identity, Mesh2 is nil and
// Mesh1 alone decomposes S.
type Result struct {
	N         int
	Squeezing []float64 // r_k ≥ 0 per mode
	O1, O2    *matrix.Dense
	Mesh1     *clements.Mesh
	Mesh2     *clements.Mesh
	Passive   bool
}

// Squeezers returns Squeeze(k, r_k, 0) for every r_k above tol, in mode order.
func (r *Result) Squeezers(tol float64) []ops.Op {
	out := make([]ops.Op, 0, r.N)
	for k, rk := range r.Squeezing {
		if op := ops.NewSqueeze(k, rk, 0); !op.IsTrivial(tol) {
			out = append(out, op)
		}
	}

	return out
}

// Ops returns the circuit mesh(O1), squeezers, mesh(O2) on local modes, with
// every operation trivial within tol elided.
func (r *Result) Ops(tol float64) []ops.Op {
	out := r.Mesh1.Ops(tol)
	out = append(out, r.Squeezers(tol)...)
	if r.Mesh2 != nil {
		out = append(out, r.Mesh2.Ops(tol)...)
	}

	return out
}

// Reconstruct multiplies the factors back together from the meshes.
func (r *Result) Reconstruct() (*matrix.Dense, error) {
	o1, err := meshEmbedding(r.Mesh1)
	if err != nil {
		return nil, err
	}
	if r.Passive {
		return o1, nil
	}
	o2, err := meshEmbedding(r.Mesh2)
	if err != nil {
		return nil, err
	}
	d, err := squeezeDiagonal(r.Squeezing, 1)
	if err != nil {
		return nil, err
	}

	return matrix.MulChain(o2, d, o1)
}

func meshEmbedding(m *clements.Mesh) (*matrix.Dense, error) {
	u, err := m.Unitary()
	if err != nil {
		return nil, err
	}

	return classify.RealEmbedding(u)
}

// squeezeDiagonal returns diag(e^{−sign·r}, e^{sign·r}); sign = −1 gives D⁻¹.
func squeezeDiagonal(r []float64, sign float64) (*matrix.Dense, error) {
	n := len(r)
	d := make([]float64, 2*n)
	for k, rk := range r {
		d[k] = math.Exp(-sign * rk)
		d[n+k] = math.Exp(sign * rk)
	}

	return matrix.NewDiagonal(d)
}
