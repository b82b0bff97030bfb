// SPDX-License-Identifier: MIT

// Package gate defines the closed set of gates and state preparations a
// caller composes into a program, the merge algebra over them, and the
// elision policy that drops gates acting as the identity.
//
// Variants (sealed; no other package can add one):
//
//	– *Interferometer     passive unitary U on N modes (transform)
//	– *GaussianTransform  symplectic S on N modes (transform)
//	– *Squeeze            single-mode Squeeze(r, φ) (transform)
//	– *SqueezedState      single-mode squeezed vacuum (preparation)
//	– *CovarianceState    Gaussian state (V, mean, ħ) on N modes (preparation)
//
// A transform acts on whatever state its modes hold; a preparation declares
// the absolute state of its modes and discards what was there. Decompose on
// a preparation returns the operations that build the state from vacuum.
//
// Errors (sentinel):
//
//	– ErrNilGate             for a nil operand.
//	– ErrMergeIncompatible   when no merge rule covers the operand pair.
//	– ErrBadParameter        for NaN/Inf parameters, ħ ≤ 0 or a mean of the wrong length.
//	– ErrBadTolerance        for a negative or NaN tolerance option.
package gate

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/ops"
)

// Sentinel errors.
var (
	ErrNilGate           = errors.New("gate: nil gate")
	ErrMergeIncompatible = errors.New("gate: gates cannot be merged")
	ErrBadParameter      = errors.New("gate: invalid parameter")
	ErrBadTolerance      = errors.New("gate: tolerance must be a non-negative number")
)

// Kind tags a gate variant.
type Kind int

const (
	KindInterferometer Kind = iota
	KindGaussianTransform
	KindSqueeze
	KindSqueezedState
	KindCovarianceState

	numKinds
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindInterferometer:
		return "Interferometer"
	case KindGaussianTransform:
		return "GaussianTransform"
	case KindSqueeze:
		return "Squeeze"
	case KindSqueezedState:
		return "SqueezedState"
	case KindCovarianceState:
		return "CovarianceState"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsPreparation reports whether gates of kind k set the state absolutely.
func (k Kind) IsPreparation() bool {
	return k == KindSqueezedState || k == KindCovarianceState
}

// Gate is the closed gate variant. Gates are immutable; accessors return copies.
type Gate interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Modes is the number of modes the gate acts on.
	Modes() int
	// Decompose emits the gate as elementary operations on local modes
	// 0..Modes()-1 in circuit order, trivial operations elided.
	Decompose(opts ...Option) ([]ops.Op, error)
	String() string

	sealed()
}

// DefaultTolerance is the elision threshold when none is given.
const DefaultTolerance = classify.DefaultTolerance

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

// WithTolerance sets the elision threshold, also forwarded to the decomposers.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		o.Tolerance = tol
	}
}

// WithLogger routes debug diagnostics of the decomposers to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func resolve(opts []Option) (Options, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if math.IsNaN(cfg.Tolerance) || cfg.Tolerance < 0 {
		return cfg, ErrBadTolerance
	}

	return cfg, nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}
