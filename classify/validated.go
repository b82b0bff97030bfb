// SPDX-License-Identifier: MIT

package classify

import (
	"fmt"

	"github.com/katalvlaran/cvgauss/matrix"
)

// UnitaryMatrix is an N×N unitary that passed ClassifyUnitary.
// The only constructors are NewUnitary and UnitaryFromOrthogonal; the zero
// value is unusable. Accessors return copies.
type UnitaryMatrix struct {
	u *matrix.CDense
}

// NewUnitary classifies u and wraps a private copy of it.
func NewUnitary(u *matrix.CDense, tol float64) (*UnitaryMatrix, error) {
	if err := ClassifyUnitary(u, tol); err != nil {
		return nil, err
	}

	return &UnitaryMatrix{u: u.Clone()}, nil
}

// Modes returns N.
func (m *UnitaryMatrix) Modes() int { return m.u.Rows() }

// Matrix returns a copy of U.
func (m *UnitaryMatrix) Matrix() *matrix.CDense { return m.u.Clone() }

// SymplecticMatrix is a 2N×2N real symplectic matrix that passed ClassifySymplectic.
type SymplecticMatrix struct {
	s *matrix.Dense
}

// NewSymplectic classifies s and wraps a private copy of it.
func NewSymplectic(s matrix.Matrix, tol float64) (*SymplecticMatrix, error) {
	if err := ClassifySymplectic(s, tol); err != nil {
		return nil, err
	}
	cp, err := matrix.Scale(s, 1)
	if err != nil {
		return nil, fmt.Errorf("NewSymplectic: %w", err)
	}

	return &SymplecticMatrix{s: cp}, nil
}

// Modes returns N.
func (m *SymplecticMatrix) Modes() int { return m.s.Rows() / 2 }

// Matrix returns a copy of S.
func (m *SymplecticMatrix) Matrix() *matrix.Dense {
	cp, _ := matrix.Scale(m.s, 1) // m.s is non-nil by construction

	return cp
}

// CovarianceMatrix is a physical 2N×2N covariance for a fixed ħ.
type CovarianceMatrix struct {
	v    *matrix.Dense
	hbar float64
}

// NewCovariance classifies v against ħ and wraps a private, exactly
// symmetrized copy of it.
func NewCovariance(v matrix.Matrix, hbar, tol float64) (*CovarianceMatrix, error) {
	if !(hbar > 0) {
		return nil, fmt.Errorf("NewCovariance: hbar %g: %w", hbar, ErrNotPhysicalCovariance)
	}
	if err := ClassifyCovariance(v, hbar, tol); err != nil {
		return nil, err
	}
	sym, err := matrix.Symmetrize(v)
	if err != nil {
		return nil, fmt.Errorf("NewCovariance: %w", err)
	}

	return &CovarianceMatrix{v: sym, hbar: hbar}, nil
}

// Modes returns N.
func (m *CovarianceMatrix) Modes() int { return m.v.Rows() / 2 }

// Matrix returns a copy of V.
func (m *CovarianceMatrix) Matrix() *matrix.Dense {
	cp, _ := matrix.Scale(m.v, 1)

	return cp
}

// Hbar returns the ħ the matrix was classified against.
func (m *CovarianceMatrix) Hbar() float64 { return m.hbar }

// ComposeUnitary returns the circuit "a, then b", i.e. U_b·U_a. The product of
// two unitaries is unitary, so no reclassification takes place.
//
// Errors: ErrDimensionMismatch for differing mode counts.
func ComposeUnitary(a, b *UnitaryMatrix) (*UnitaryMatrix, error) {
	if a.Modes() != b.Modes() {
		return nil, fmt.Errorf("ComposeUnitary: %d vs %d modes: %w", a.Modes(), b.Modes(), ErrDimensionMismatch)
	}
	u, err := matrix.CMul(b.u, a.u)
	if err != nil {
		return nil, fmt.Errorf("ComposeUnitary: %w", err)
	}

	return &UnitaryMatrix{u: u}, nil
}

// ComposeSymplectic returns S_b·S_a, the circuit "a, then b".
//
// Errors: ErrDimensionMismatch for differing mode counts.
func ComposeSymplectic(a, b *SymplecticMatrix) (*SymplecticMatrix, error) {
	if a.Modes() != b.Modes() {
		return nil, fmt.Errorf("ComposeSymplectic: %d vs %d modes: %w", a.Modes(), b.Modes(), ErrDimensionMismatch)
	}
	s, err := matrix.Mul(b.s, a.s)
	if err != nil {
		return nil, fmt.Errorf("ComposeSymplectic: %w", err)
	}

	return &SymplecticMatrix{s: s}, nil
}
