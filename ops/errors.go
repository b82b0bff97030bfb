// SPDX-License-Identifier: MIT

package ops

import "errors"

var (
	// ErrModeOutOfRange reports an operation addressing a mode outside the register.
	ErrModeOutOfRange = errors.New("ops: mode out of range")

	// ErrNotLinear reports an operation without a symplectic action (thermal preparation)
	// in a context that composes linear actions.
	ErrNotLinear = errors.New("ops: operation has no linear action")

	// ErrNotPassive reports an active operation (squeezing, displacement, thermal)
	// in a context that composes unitaries.
	ErrNotPassive = errors.New("ops: operation is not passive")
)
