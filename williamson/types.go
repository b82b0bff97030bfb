// Package williamson defines core types and configuration options for the
// Williamson normal form of a physical covariance matrix
//
//	V = S · diag(ν_1, …, ν_N, ν_1, …, ν_N) · Sᵗ,   SᵗΩS = Ω,   ν_k ≥ ħ/2.
//
// The ν_k are the symplectic eigenvalues of V; a mode with ν_k = ħ/2 is pure,
// one with ν_k > ħ/2 carries thermal noise with occupation n̄_k = ν_k/ħ − ½.
//
// Options:
//
//	– Tolerance: physicality slack on ν_k ≥ ħ/2 and the symplectic residual budget.
//	– Logger:    zerolog logger for debug diagnostics (default: disabled).
//
// Errors (sentinel):
//
//	– ErrNilCovariance  if the validated covariance pointer is nil.
//	– ErrBadTolerance   if Tolerance is negative or NaN.
//	– classify.ErrNotPhysicalCovariance if some ν_k < ħ/2 − Tolerance.
package williamson

import (
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/cvgauss/matrix"
)

// Sentinel errors returned by Decompose.
var (
	// ErrNilCovariance indicates a nil *classify.CovarianceMatrix.
	ErrNilCovariance = errors.New("williamson: covariance matrix is nil")

	// ErrBadTolerance indicates a negative or NaN tolerance option.
	ErrBadTolerance = errors.New("williamson: tolerance must be a non-negative number")
)

// DefaultTolerance is the physicality slack when none is given.
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

// WithTolerance sets the physicality slack.
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

// Result is the normal form V = S·diag(Nu, Nu)·Sᵗ for a given ħ.
type Result struct {
	S    *matrix.Dense
	Nu   []float64 // symplectic eigenvalue of mode k
	Hbar float64
}

// Reconstruct returns S·diag(Nu, Nu)·Sᵗ.
func (r *Result) Reconstruct() (*matrix.Dense, error) {
	n := len(r.Nu)
	d := make([]float64, 2*n)
	for k, nu := range r.Nu {
		d[k], d[n+k] = nu, nu
	}
	dm, err := matrix.NewDiagonal(d)
	if err != nil {
		return nil, err
	}
	st, err := matrix.Transpose(r.S)
	if err != nil {
		return nil, err
	}

	return matrix.MulChain(r.S, dm, st)
}

// ThermalOccupations returns n̄_k = ν_k/ħ − ½ per mode, clamped at 0.
func (r *Result) ThermalOccupations() []float64 {
	out := make([]float64, len(r.Nu))
	for k, nu := range r.Nu {
		out[k] = math.Max(0, nu/r.Hbar-0.5)
	}

	return out
}

// IsPure reports |ν_k − ħ/2| ≤ tol for every mode.
func (r *Result) IsPure(tol float64) bool {
	for _, nu := range r.Nu {
		if math.Abs(nu-r.Hbar/2) > tol {
			return false
		}
	}

	return true
}

// Uniform reports whether all symplectic eigenvalues agree within tol.
func (r *Result) Uniform(tol float64) bool {
	for _, nu := range r.Nu {
		if math.Abs(nu-r.Nu[0]) > tol {
			return false
		}
	}

	return true
}
