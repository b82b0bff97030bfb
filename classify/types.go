// SPDX-License-Identifier: MIT

package classify

// DefaultTolerance is the residual bound used when callers have no better value.
const DefaultTolerance = 1e-10

// DefaultHbar is the default value of ħ in the quadrature convention x = √(ħ/2)(a + a†).
const DefaultHbar = 2.0

// Kind names the matrix class a decomposer expects.
type Kind int

const (
	// KindUnitary is an N×N complex matrix with U†U = I.
	KindUnitary Kind = iota
	// KindSymplectic is a 2N×2N real matrix with SᵗΩS = Ω.
	KindSymplectic
	// KindCovariance is a 2N×2N real symmetric positive-definite matrix
	// satisfying V + i(ħ/2)Ω ≥ 0.
	KindCovariance
)

// String returns the lowercase class name.
func (k Kind) String() string {
	switch k {
	case KindUnitary:
		return "unitary"
	case KindSymplectic:
		return "symplectic"
	case KindCovariance:
		return "covariance"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnitary:
		return ErrNotUnitary
	case KindSymplectic:
		return ErrNotSymplectic
	default:
		return ErrNotPhysicalCovariance
	}
}
