// SPDX-License-Identifier: MIT

// Package ops defines the elementary operation records every decomposer
// emits (BeamMix, PhaseShift, Squeeze, Displace, Thermal) and the
// reference semantics used to check them: Transform composes the symplectic
// action of a sequence, TransformUnitary the unitary of a passive one, and
// Simulate evolves the vacuum through a full sequence.
//
// Sequences are in circuit order: element 0 acts first.
package ops
