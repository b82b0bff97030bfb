// SPDX-License-Identifier: MIT

package classify

import (
	"errors"
	"fmt"
)

// Sentinel errors. Class violations arrive wrapped in *ClassificationError;
// shape problems wrap ErrDimensionMismatch with the offending shape.
var (
	// ErrNotUnitary reports ‖U†U − I‖_F above tolerance, or a real matrix
	// without the block structure of a unitary's real embedding.
	ErrNotUnitary = errors.New("classify: matrix is not unitary")

	// ErrNotSymplectic reports ‖SᵗΩS − Ω‖_F above tolerance.
	ErrNotSymplectic = errors.New("classify: matrix is not symplectic")

	// ErrNotPhysicalCovariance reports an asymmetric, non positive-definite or
	// uncertainty-violating covariance matrix.
	ErrNotPhysicalCovariance = errors.New("classify: matrix is not a physical covariance")

	// ErrDimensionMismatch reports a non-square or odd-dimension input.
	ErrDimensionMismatch = errors.New("classify: dimension mismatch")
)

// ClassificationError carries the measured residual of a failed class check.
// errors.Is matches the wrapped sentinel; errors.As recovers the residual.
type ClassificationError struct {
	Kind      Kind    // expected class
	Residual  float64 // measured violation (norm or most negative eigenvalue magnitude)
	Tolerance float64 // tolerance the residual was compared against
	Reason    string  // which check failed
	Err       error   // one of ErrNotUnitary, ErrNotSymplectic, ErrNotPhysicalCovariance
}

// Error implements error.
func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%v (%s: residual %.3g > tol %.3g)", e.Err, e.Reason, e.Residual, e.Tolerance)
}

// Unwrap exposes the sentinel to errors.Is.
func (e *ClassificationError) Unwrap() error { return e.Err }

func violation(kind Kind, reason string, residual, tol float64) error {
	return &ClassificationError{
		Kind:      kind,
		Residual:  residual,
		Tolerance: tol,
		Reason:    reason,
		Err:       kind.sentinel(),
	}
}

func dimensionErrorf(op string, rows, cols int) error {
	return fmt.Errorf("%s: shape %dx%d: %w", op, rows, cols, ErrDimensionMismatch)
}
