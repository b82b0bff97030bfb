// Package clements defines core types and configuration options for the
// rectangular (Clements) decomposition of an N×N unitary into a mesh of
// two-mode BeamMix elements followed by single-mode phases.
//
// Complexity:
//
//	– Time:  O(N^3)   N(N−1)/2 nulling steps, each an O(N) row or column update.
//	– Space: O(N^2)   one working copy of the unitary.
//
// Options:
//
//	– Tolerance: target entries with |U[m,n]| ≤ Tolerance count as already nulled;
//	             elements with |θ| ≤ Tolerance are absorbed into the phase screen.
//	– Logger:    zerolog logger for debug diagnostics (default: disabled).
//
// Errors (sentinel):
//
//	– ErrNilUnitary    if the validated unitary pointer is nil.
//	– ErrBadTolerance  if Tolerance is negative or NaN.
//
// Example usage:
//
//	u, _ := classify.NewUnitary(m, classify.DefaultTolerance)
//	mesh, err := clements.Decompose(u)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, op := range mesh.Ops(1e-10) {
//	    fmt.Println(op)
//	}
package clements

import (
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
)

// Sentinel errors returned by the Clements implementation.
var (
	// ErrNilUnitary indicates a nil *classify.UnitaryMatrix.
	ErrNilUnitary = errors.New("clements: unitary is nil")

	// ErrBadTolerance indicates a negative or NaN tolerance option.
	ErrBadTolerance = errors.New("clements: tolerance must be a non-negative number")
)

// DefaultTolerance is the nulling and elision threshold when none is given.
const DefaultTolerance = 1e-10

// Options configures Decompose.
type Options struct {
	Tolerance float64        // nulling / absorption threshold
	Logger    zerolog.Logger // debug diagnostics sink
}

// Option represents a functional option for configuring Decompose.
type Option func(*Options)

// DefaultOptions returns DefaultTolerance and a disabled logger.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, Logger: zerolog.Nop()}
}

// WithTolerance sets the nulling and absorption threshold.
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

// Element is one BeamMix of the mesh, T(Theta, Phi) on (ModeI, ModeJ) with
// ModeJ = ModeI+1. Layer is the column of the rectangular mesh the element
// occupies when elements are packed greedily in circuit order.
type Element struct {
	Layer int
	ModeI int
	ModeJ int
	Theta float64
	Phi   float64
}

// Mesh is the decomposition U = diag(e^{i·Phases}) · T_last ··· T_first.
// Elements are in circuit order (Elements[0] acts first); there are always
// exactly N(N−1)/2 of them, identity elements included.
type Mesh struct {
	N        int
	Elements []Element
	Phases   []float64
}

// sequence is the full, unelided operation list in circuit order.
func (m *Mesh) sequence() []ops.Op {
	seq := make([]ops.Op, 0, len(m.Elements)+len(m.Phases))
	for _, e := range m.Elements {
		seq = append(seq, ops.NewBeamMix(e.ModeI, e.ModeJ, e.Theta, e.Phi))
	}
	for k, phi := range m.Phases {
		seq = append(seq, ops.NewPhaseShift(k, phi))
	}

	return seq
}

// Ops returns the mesh as elementary operations on local modes 0..N−1 in
// circuit order, with operations trivial within tol removed. A unitary equal
// to the identity within tol yields an empty, non-nil slice.
func (m *Mesh) Ops(tol float64) []ops.Op {
	return ops.Trim(m.sequence(), tol)
}

// IsIdentity reports whether every element and phase is trivial within tol.
func (m *Mesh) IsIdentity(tol float64) bool {
	return len(m.Ops(tol)) == 0
}

// Unitary reconstructs diag(e^{i·Phases}) · T_last ··· T_first.
func (m *Mesh) Unitary() (*matrix.CDense, error) {
	return ops.TransformUnitary(m.N, m.sequence())
}

// Depth is the number of mesh columns (0 for a single mode).
func (m *Mesh) Depth() int {
	depth := 0
	for _, e := range m.Elements {
		if e.Layer+1 > depth {
			depth = e.Layer + 1
		}
	}

	return depth
}
