// SPDX-License-Identifier: MIT

package ops

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/cvgauss/matrix"
)

// localAction returns the phase-space rows an operation mixes (xxpp indices
// for an n-mode register) and the real block acting on them.
func (o Op) localAction(n int) ([]int, [][]float64, error) {
	for _, m := range o.Modes() {
		if m < 0 || m >= n {
			return nil, nil, fmt.Errorf("%v: mode %d of %d: %w", o.Kind, m, n, ErrModeOutOfRange)
		}
	}
	if o.Kind == BeamMix && o.Mode == o.Peer {
		return nil, nil, fmt.Errorf("%v: modes (%d,%d) coincide: %w", o.Kind, o.Mode, o.Peer, ErrModeOutOfRange)
	}
	switch o.Kind {
	case BeamMix:
		c, s := math.Cos(o.Theta), math.Sin(o.Theta)
		cp, sp := math.Cos(o.Phi), math.Sin(o.Phi)
		// Real embedding of T on (x_i, x_j, p_i, p_j).
		return []int{o.Mode, o.Peer, n + o.Mode, n + o.Peer}, [][]float64{
			{cp * c, -s, -sp * c, 0},
			{cp * s, c, -sp * s, 0},
			{sp * c, 0, cp * c, -s},
			{sp * s, 0, cp * s, c},
		}, nil
	case PhaseShift:
		c, s := math.Cos(o.Phi), math.Sin(o.Phi)
		return []int{o.Mode, n + o.Mode}, [][]float64{{c, -s}, {s, c}}, nil
	case Squeeze:
		c, s := math.Cos(o.Phi), math.Sin(o.Phi)
		ch, sh := math.Cosh(o.R), math.Sinh(o.R)
		return []int{o.Mode, n + o.Mode}, [][]float64{
			{ch - c*sh, -s * sh},
			{-s * sh, ch + c*sh},
		}, nil
	case Displace:
		return []int{o.Mode, n + o.Mode}, [][]float64{{1, 0}, {0, 1}}, nil
	default:
		return nil, nil, fmt.Errorf("%v: %w", o.Kind, ErrNotLinear)
	}
}

// applyLeft replaces rows idx of a by block·a[idx].
func applyLeft(a [][]float64, idx []int, block [][]float64) {
	cols := len(a[0])
	tmp := make([][]float64, len(idx))
	for r := range idx {
		tmp[r] = make([]float64, cols)
		for k, src := range idx {
			if w := block[r][k]; w != 0 {
				for c := 0; c < cols; c++ {
					tmp[r][c] += w * a[src][c]
				}
			}
		}
	}
	for r, dst := range idx {
		copy(a[dst], tmp[r])
	}
}

// applyRightT replaces columns idx of a by a[:,idx]·blockᵗ.
func applyRightT(a [][]float64, idx []int, block [][]float64) {
	tmp := make([]float64, len(idx))
	for row := range a {
		for r := range idx {
			tmp[r] = 0
			for k, src := range idx {
				tmp[r] += a[row][src] * block[r][k]
			}
		}
		for r, dst := range idx {
			a[row][dst] = tmp[r]
		}
	}
}

func identityRows(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1
	}

	return out
}

// Transform composes the symplectic action of seq on an n-mode register,
// seq[0] acting first: S = S_last ··· S_first. Displacements contribute the
// identity.
//
// Errors:
//   - ErrModeOutOfRange for a record outside the register.
//   - ErrNotLinear for a Thermal record.
//
// Complexity: O(len(seq)·N).
func Transform(n int, seq []Op) (*matrix.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("Transform: %d modes: %w", n, ErrModeOutOfRange)
	}
	s := identityRows(2 * n)
	for i, o := range seq {
		idx, block, err := o.localAction(n)
		if err != nil {
			return nil, fmt.Errorf("Transform: op %d: %w", i, err)
		}
		applyLeft(s, idx, block)
	}

	return matrix.NewFromRows(s)
}

// TransformUnitary composes the unitary of a passive sequence (BeamMix and
// PhaseShift only), seq[0] acting first.
//
// Errors: ErrModeOutOfRange, ErrNotPassive.
func TransformUnitary(n int, seq []Op) (*matrix.CDense, error) {
	u, err := matrix.NewCIdentity(n)
	if err != nil {
		return nil, fmt.Errorf("TransformUnitary: %d modes: %w", n, ErrModeOutOfRange)
	}
	rows := u.ToRows()
	for i, o := range seq {
		for _, m := range o.Modes() {
			if m < 0 || m >= n {
				return nil, fmt.Errorf("TransformUnitary: op %d: mode %d: %w", i, m, ErrModeOutOfRange)
			}
		}
		switch o.Kind {
		case BeamMix:
			if o.Mode == o.Peer {
				return nil, fmt.Errorf("TransformUnitary: op %d: modes (%d,%d) coincide: %w", i, o.Mode, o.Peer, ErrModeOutOfRange)
			}
			e := cmplx.Exp(complex(0, o.Phi))
			c, s := complex(math.Cos(o.Theta), 0), complex(math.Sin(o.Theta), 0)
			for col := 0; col < n; col++ {
				a, b := rows[o.Mode][col], rows[o.Peer][col]
				rows[o.Mode][col] = e*c*a - s*b
				rows[o.Peer][col] = e*s*a + c*b
			}
		case PhaseShift:
			e := cmplx.Exp(complex(0, o.Phi))
			for col := 0; col < n; col++ {
				rows[o.Mode][col] *= e
			}
		default:
			return nil, fmt.Errorf("TransformUnitary: op %d %v: %w", i, o.Kind, ErrNotPassive)
		}
	}

	return matrix.NewCFromRows(rows)
}

// Simulate runs seq on an n-mode register prepared in vacuum and returns the
// final covariance matrix and mean vector (xxpp order, given ħ).
//
// Thermal(k, n̄) re-prepares mode k: its correlations are cleared, its block
// becomes (2n̄+1)(ħ/2)·I and its mean is reset. Displace(k, |α|, φ) adds
// √(2ħ)|α|(cos φ, sin φ) to the mean of mode k.
//
// Errors: ErrModeOutOfRange.
func Simulate(n int, hbar float64, seq []Op) (*matrix.Dense, []float64, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("Simulate: %d modes: %w", n, ErrModeOutOfRange)
	}
	v := identityRows(2 * n)
	for i := range v {
		v[i][i] = hbar / 2
	}
	mean := make([]float64, 2*n)
	for i, o := range seq {
		switch o.Kind {
		case Thermal:
			if o.Mode < 0 || o.Mode >= n {
				return nil, nil, fmt.Errorf("Simulate: op %d: mode %d: %w", i, o.Mode, ErrModeOutOfRange)
			}
			for _, q := range []int{o.Mode, n + o.Mode} {
				for j := range v {
					v[q][j], v[j][q] = 0, 0
				}
				v[q][q] = (2*o.R + 1) * hbar / 2
				mean[q] = 0
			}
		case Displace:
			if o.Mode < 0 || o.Mode >= n {
				return nil, nil, fmt.Errorf("Simulate: op %d: mode %d: %w", i, o.Mode, ErrModeOutOfRange)
			}
			scale := math.Sqrt(2*hbar) * o.R
			mean[o.Mode] += scale * math.Cos(o.Phi)
			mean[n+o.Mode] += scale * math.Sin(o.Phi)
		default:
			idx, block, err := o.localAction(n)
			if err != nil {
				return nil, nil, fmt.Errorf("Simulate: op %d: %w", i, err)
			}
			applyLeft(v, idx, block)
			applyRightT(v, idx, block)
			vec := make([][]float64, len(mean))
			for k := range mean {
				vec[k] = []float64{mean[k]}
			}
			applyLeft(vec, idx, block)
			for k := range mean {
				mean[k] = vec[k][0]
			}
		}
	}
	cov, err := matrix.NewFromRows(v)
	if err != nil {
		return nil, nil, fmt.Errorf("Simulate: %w", err)
	}

	return cov, mean, nil
}
