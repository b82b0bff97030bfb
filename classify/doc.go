// SPDX-License-Identifier: MIT

// Package classify decides whether a matrix belongs to one of the three
// classes the Gaussian decomposers accept (unitary, symplectic, physical
// covariance) and wraps accepted matrices in validated types.
//
// Every decomposer takes a *UnitaryMatrix, *SymplecticMatrix or
// *CovarianceMatrix, so an unchecked matrix cannot reach one. Failures are
// *ClassificationError values that carry the measured residual and match the
// package sentinels with errors.Is.
//
// Phase-space matrices use xxpp order: index k is x_k and index N+k is p_k,
// with Ω = [[0, I], [−I, 0]].
package classify
