// SPDX-License-Identifier: MIT

package program

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/cvgauss/gate"
)

// Program is an ordered command log over a register of N modes.
// The zero value is unusable; build one with New.
type Program struct {
	n    int
	cmds []Command
}

// New returns an empty program over n modes.
func New(n int) (*Program, error) {
	if n < 1 {
		return nil, fmt.Errorf("New(%d): %w", n, ErrBadRegister)
	}

	return &Program{n: n}, nil
}

// Modes is the register size.
func (p *Program) Modes() int { return p.n }

// Len is the number of commands in the log.
func (p *Program) Len() int { return len(p.cmds) }

// Append records g acting on the given register modes. The list must name
// g.Modes() distinct modes in [0, N).
func (p *Program) Append(g gate.Gate, modes ...int) error {
	if g == nil {
		return fmt.Errorf("Append: %w", gate.ErrNilGate)
	}
	if len(modes) != g.Modes() {
		return fmt.Errorf("Append %v on %v: %d modes for a %d-mode gate: %w", g, modes, len(modes), g.Modes(), ErrBadModes)
	}
	seen := make(map[int]bool, len(modes))
	for _, m := range modes {
		if m < 0 || m >= p.n {
			return fmt.Errorf("Append %v on %v: mode %d outside [0,%d): %w", g, modes, m, p.n, ErrBadModes)
		}
		if seen[m] {
			return fmt.Errorf("Append %v on %v: mode %d repeated: %w", g, modes, m, ErrBadModes)
		}
		seen[m] = true
	}
	p.cmds = append(p.cmds, Command{Gate: g, Modes: slices.Clone(modes)})

	return nil
}

// Commands returns a copy of the log in application order.
func (p *Program) Commands() []Command {
	out := make([]Command, len(p.cmds))
	for i, c := range p.cmds {
		out[i] = Command{Gate: c.Gate, Modes: slices.Clone(c.Modes)}
	}

	return out
}

// Optimize returns a new program in which every command has been merged,
// where gate.Merge allows it, into the latest earlier command touching any of
// its modes, provided both act on the same mode list. A preparation also
// absorbs a predecessor acting on a subset of its modes. Merging repeats
// against the next such predecessor until a pair is incompatible, so a
// preparation absorbs every gate before it that it overwrites. Transforms
// that are, or merge into, the identity within tol are dropped. p is left
// unchanged.
func (p *Program) Optimize(tol float64) (*Program, error) {
	if math.IsNaN(tol) || tol < 0 {
		return nil, ErrBadTolerance
	}
	out := make([]Command, 0, len(p.cmds))
	for _, c := range p.cmds {
		cur := Command{Gate: c.Gate, Modes: slices.Clone(c.Modes)}
		for !gate.IsIdentity(cur.Gate, tol) {
			i := lastTouching(out, cur.Modes)
			if i < 0 || !sameOrCovered(out[i].Modes, cur) {
				break
			}
			merged, err := gate.Merge(out[i].Gate, cur.Gate)
			if err != nil {
				break
			}
			// Nothing after i touches these modes, so the merged command
			// may move to the end of the log.
			out = slices.Delete(out, i, i+1)
			cur.Gate = merged
		}
		if !gate.IsIdentity(cur.Gate, tol) {
			out = append(out, cur)
		}
	}

	return &Program{n: p.n, cmds: out}, nil
}

// sameOrCovered reports whether prev acts on exactly the modes of cur, or on
// a subset of them when cur is a preparation.
func sameOrCovered(prev []int, cur Command) bool {
	if slices.Equal(prev, cur.Modes) {
		return true
	}
	if !cur.Gate.Kind().IsPreparation() {
		return false
	}
	for _, m := range prev {
		if !slices.Contains(cur.Modes, m) {
			return false
		}
	}

	return true
}

// lastTouching returns the index of the latest command sharing a mode with
// modes, or -1.
func lastTouching(cmds []Command, modes []int) int {
	for i := len(cmds) - 1; i >= 0; i-- {
		for _, m := range cmds[i].Modes {
			if slices.Contains(modes, m) {
				return i
			}
		}
	}

	return -1
}
