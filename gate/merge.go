// SPDX-License-Identifier: MIT

package gate

import (
	"fmt"

	"github.com/katalvlaran/cvgauss/classify"
)

// rule merges a (applied first) with b (applied second); both are non-nil
// and act on the same number of modes.
type rule func(a, b Gate) (Gate, error)

// mergeTable[a.Kind()][b.Kind()] is the only place merge semantics live.
// A nil entry means the pair is kept as two sequential gates.
var mergeTable = [numKinds][numKinds]rule{
	KindInterferometer: {
		KindInterferometer:  composeInterferometers,
		KindSqueezedState:   override,
		KindCovarianceState: override,
	},
	KindGaussianTransform: {
		KindGaussianTransform: composeTransforms,
		KindSqueezedState:     override,
		KindCovarianceState:   override,
	},
	KindSqueeze: {
		KindSqueeze:         composeSqueezers,
		KindSqueezedState:   override,
		KindCovarianceState: override,
	},
	KindSqueezedState: {
		KindSqueezedState:   override,
		KindCovarianceState: override,
	},
	KindCovarianceState: {
		KindSqueezedState:   override,
		KindCovarianceState: override,
	},
}

// Merge returns the single gate equivalent to applying a, then b, on the
// same modes:
//
//	Interferometer(U1) · Interferometer(U2)        → Interferometer(U2·U1)
//	GaussianTransform(S1) · GaussianTransform(S2)  → GaussianTransform(S2·S1)
//	Squeeze(r1, φ) · Squeeze(r2, φ)                → Squeeze(r1+r2, φ)
//	any gate · preparation                         → the preparation
//
// A preparation on more modes also absorbs a smaller gate, which the caller
// applies to a subset of its modes. Every other pair, and every other pair
// with differing mode counts, fails with ErrMergeIncompatible. Operands are
// never modified.
func Merge(a, b Gate) (Gate, error) {
	if a == nil || b == nil {
		return nil, ErrNilGate
	}
	if a.Modes() != b.Modes() {
		if a.Modes() < b.Modes() && b.Kind().IsPreparation() {
			return b, nil
		}

		return nil, fmt.Errorf("merge %v with %v: %w", a, b, ErrMergeIncompatible)
	}
	ka, kb := a.Kind(), b.Kind()
	if ka < 0 || ka >= numKinds || kb < 0 || kb >= numKinds {
		return nil, fmt.Errorf("merge %v with %v: %w", ka, kb, ErrMergeIncompatible)
	}
	r := mergeTable[ka][kb]
	if r == nil {
		return nil, fmt.Errorf("merge %v with %v: %w", a, b, ErrMergeIncompatible)
	}

	return r(a, b)
}

// CanMerge reports whether Merge(a, b) would succeed.
func CanMerge(a, b Gate) bool {
	_, err := Merge(a, b)

	return err == nil
}

func override(_, b Gate) (Gate, error) { return b, nil }

func composeInterferometers(a, b Gate) (Gate, error) {
	u, err := classify.ComposeUnitary(a.(*Interferometer).u, b.(*Interferometer).u)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	return &Interferometer{u: u}, nil
}

func composeTransforms(a, b Gate) (Gate, error) {
	s, err := classify.ComposeSymplectic(a.(*GaussianTransform).s, b.(*GaussianTransform).s)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	return &GaussianTransform{s: s}, nil
}

// composeSqueezers adds magnitudes of squeezers sharing the exact same angle;
// squeezers along different axes do not commute into a single squeezer.
func composeSqueezers(a, b Gate) (Gate, error) {
	sa, sb := a.(*Squeeze), b.(*Squeeze)
	if sa.phi != sb.phi {
		return nil, fmt.Errorf("merge %v with %v: angles differ: %w", sa, sb, ErrMergeIncompatible)
	}

	return &Squeeze{r: sa.r + sb.r, phi: sa.phi}, nil
}
