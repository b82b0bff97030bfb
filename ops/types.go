// SPDX-License-Identifier: MIT

package ops

import (
	"fmt"
	"math"
)

// Kind enumerates the elementary operations.
type Kind int

const (
	// BeamMix is the two-mode element T(θ,φ) = [[e^{iφ}cosθ, −sinθ], [e^{iφ}sinθ, cosθ]] on (Mode, Peer).
	BeamMix Kind = iota
	// PhaseShift multiplies the annihilation operator of Mode by e^{iφ}.
	PhaseShift
	// Squeeze applies single-mode squeezing with magnitude R ≥ 0 and angle Phi.
	Squeeze
	// Displace shifts the mean of Mode by α = R·e^{iPhi}.
	Displace
	// Thermal prepares Mode in a thermal state with mean photon number R.
	Thermal
)

// String returns the operation name.
func (k Kind) String() string {
	switch k {
	case BeamMix:
		return "BeamMix"
	case PhaseShift:
		return "PhaseShift"
	case Squeeze:
		return "Squeeze"
	case Displace:
		return "Displace"
	case Thermal:
		return "Thermal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NoPeer marks single-mode operations.
const NoPeer = -1

// Op is one elementary operation record. Which numeric fields are meaningful
// depends on Kind:
//
//	BeamMix    Mode, Peer, Theta, Phi
//	PhaseShift Mode, Phi
//	Squeeze    Mode, R (magnitude), Phi
//	Displace   Mode, R (|α|), Phi (arg α)
//	Thermal    Mode, R (mean photon number n̄)
type Op struct {
	Kind  Kind
	Mode  int
	Peer  int
	Theta float64
	Phi   float64
	R     float64
}

// NewBeamMix returns T(θ,φ) acting on modes (i, j).
func NewBeamMix(i, j int, theta, phi float64) Op {
	return Op{Kind: BeamMix, Mode: i, Peer: j, Theta: theta, Phi: phi}
}

// NewPhaseShift returns a rotation by φ on mode k.
func NewPhaseShift(k int, phi float64) Op {
	return Op{Kind: PhaseShift, Mode: k, Peer: NoPeer, Phi: phi}
}

// NewSqueeze returns Squeeze(r, φ) on mode k.
func NewSqueeze(k int, r, phi float64) Op {
	return Op{Kind: Squeeze, Mode: k, Peer: NoPeer, R: r, Phi: phi}
}

// NewDisplace returns a displacement by α = mag·e^{iφ} on mode k.
func NewDisplace(k int, mag, phi float64) Op {
	return Op{Kind: Displace, Mode: k, Peer: NoPeer, R: mag, Phi: phi}
}

// NewThermal returns a thermal preparation with mean photon number nbar on mode k.
func NewThermal(k int, nbar float64) Op {
	return Op{Kind: Thermal, Mode: k, Peer: NoPeer, R: nbar}
}

// Modes lists the modes the operation touches.
func (o Op) Modes() []int {
	if o.Kind == BeamMix {
		return []int{o.Mode, o.Peer}
	}

	return []int{o.Mode}
}

// IsTrivial reports whether the operation acts as the identity within tol.
// Angles and phases are compared modulo 2π.
func (o Op) IsTrivial(tol float64) bool {
	switch o.Kind {
	case BeamMix:
		return math.Abs(WrapAngle(o.Theta)) <= tol && math.Abs(WrapAngle(o.Phi)) <= tol
	case PhaseShift:
		return math.Abs(WrapAngle(o.Phi)) <= tol
	case Squeeze, Displace, Thermal:
		return math.Abs(o.R) <= tol
	default:
		return false
	}
}

// Remap translates local mode indices through modes (local k → modes[k]).
//
// Errors: ErrModeOutOfRange when a local index has no entry in modes.
func (o Op) Remap(modes []int) (Op, error) {
	out := o
	if o.Mode < 0 || o.Mode >= len(modes) {
		return Op{}, fmt.Errorf("Remap %v mode %d of %d: %w", o.Kind, o.Mode, len(modes), ErrModeOutOfRange)
	}
	out.Mode = modes[o.Mode]
	if o.Kind == BeamMix {
		if o.Peer < 0 || o.Peer >= len(modes) {
			return Op{}, fmt.Errorf("Remap %v peer %d of %d: %w", o.Kind, o.Peer, len(modes), ErrModeOutOfRange)
		}
		out.Peer = modes[o.Peer]
	}

	return out, nil
}

// String renders the record in a compact, log-friendly form.
func (o Op) String() string {
	switch o.Kind {
	case BeamMix:
		return fmt.Sprintf("BeamMix(%d,%d,θ=%.6g,φ=%.6g)", o.Mode, o.Peer, o.Theta, o.Phi)
	case PhaseShift:
		return fmt.Sprintf("PhaseShift(%d,φ=%.6g)", o.Mode, o.Phi)
	case Squeeze:
		return fmt.Sprintf("Squeeze(%d,r=%.6g,φ=%.6g)", o.Mode, o.R, o.Phi)
	case Displace:
		return fmt.Sprintf("Displace(%d,|α|=%.6g,φ=%.6g)", o.Mode, o.R, o.Phi)
	case Thermal:
		return fmt.Sprintf("Thermal(%d,n̄=%.6g)", o.Mode, o.R)
	default:
		return o.Kind.String()
	}
}

// WrapAngle maps x to the representative of x mod 2π in [−π, π].
func WrapAngle(x float64) float64 {
	return math.Remainder(x, 2*math.Pi)
}

// Trim drops the records that are trivial within tol, keeping order.
// The result is never nil.
func Trim(seq []Op, tol float64) []Op {
	out := make([]Op, 0, len(seq))
	for _, o := range seq {
		if !o.IsTrivial(tol) {
			out = append(out, o)
		}
	}

	return out
}
