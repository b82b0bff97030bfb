// SPDX-License-Identifier: MIT

package gate

import (
	"math"

	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
)

// IsIdentity reports whether g leaves every state unchanged within tol:
// ‖U − I‖_F ≤ tol, ‖S − I‖_F ≤ tol or |r| ≤ tol. Preparations are never the
// identity, even when they prepare vacuum.
func IsIdentity(g Gate, tol float64) bool {
	switch t := g.(type) {
	case *Interferometer:
		id, err := matrix.NewCIdentity(t.Modes())
		if err != nil {
			return false
		}
		diff, err := matrix.CSub(t.u.Matrix(), id)

		return err == nil && matrix.CFrobeniusNorm(diff) <= tol
	case *GaussianTransform:
		id, err := matrix.NewIdentity(2 * t.Modes())
		if err != nil {
			return false
		}
		diff, err := matrix.Sub(t.s.Matrix(), id)
		if err != nil {
			return false
		}
		res, err := matrix.FrobeniusNorm(diff)

		return err == nil && res <= tol
	case *Squeeze:
		return math.Abs(t.r) <= tol
	default:
		return false
	}
}

// Elide drops every operation that acts as the identity within tol. An empty,
// non-nil result means the sequence is physically a no-op.
func Elide(seq []ops.Op, tol float64) []ops.Op {
	return ops.Trim(seq, tol)
}
