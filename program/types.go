// SPDX-License-Identifier: MIT

// Package program keeps an explicit, caller-owned command log of gates applied
// to a register of modes, folds it with the gate merge algebra and compiles it
// into elementary operations.
//
// Nothing in this package holds global state besides the Prometheus
// collectors: the log lives in the *Program the caller passes around, and
// Optimize returns a new log instead of rewriting the old one.
//
// Options (Compile):
//
//	– WithTolerance(tol)     elision threshold forwarded to every gate (default 1e-10).
//	– WithConcurrency(k)     at most k gates decomposed at once (default GOMAXPROCS).
//	– WithLogger(l)          zerolog logger for debug diagnostics (default disabled).
//
// Errors (sentinel):
//
//	– ErrBadRegister     for a register of fewer than one mode.
//	– ErrBadModes        for a mode list that does not fit the gate or the register.
//	– ErrBadTolerance    for a negative or NaN tolerance.
//	– ErrBadConcurrency  for a concurrency limit below one.
//
// Metrics (default Prometheus registry):
//
//	cvgauss_decompositions_total{kind,status}
//	cvgauss_decomposition_duration_seconds{kind}
//	cvgauss_ops_emitted_total{op}
package program

import (
	"errors"
	"math"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/cvgauss/gate"
	"github.com/katalvlaran/cvgauss/ops"
)

// Sentinel errors.
var (
	ErrBadRegister    = errors.New("program: register needs at least one mode")
	ErrBadModes       = errors.New("program: invalid mode list")
	ErrBadTolerance   = errors.New("program: tolerance must be a non-negative number")
	ErrBadConcurrency = errors.New("program: concurrency must be at least 1")
)

// Command is one gate applied to register modes; Modes[k] is the register
// mode that plays local mode k of the gate.
type Command struct {
	Gate  gate.Gate
	Modes []int
}

// Step is the compiled form of a Command: its operations already address
// register modes. Preparation steps discard the previous state of their
// modes before Ops run.
type Step struct {
	Command     Command
	Preparation bool
	Ops         []ops.Op
}

// Options configures Compile.
type Options struct {
	Tolerance   float64
	Concurrency int
	Logger      zerolog.Logger
}

// Option represents a functional option for configuring Compile.
type Option func(*Options)

// DefaultOptions returns gate.DefaultTolerance, GOMAXPROCS workers and a
// disabled logger.
func DefaultOptions() Options {
	return Options{
		Tolerance:   gate.DefaultTolerance,
		Concurrency: runtime.GOMAXPROCS(0),
		Logger:      zerolog.Nop(),
	}
}

// WithTolerance sets the elision threshold.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		o.Tolerance = tol
	}
}

// WithConcurrency bounds the number of gates decomposed in parallel.
func WithConcurrency(k int) Option {
	return func(o *Options) {
		o.Concurrency = k
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
	if o.Concurrency < 1 {
		return ErrBadConcurrency
	}

	return nil
}
