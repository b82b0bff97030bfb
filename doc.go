// Package cvgauss turns Gaussian continuous-variable optics into hardware
// settings: it validates the matrices that describe linear optics, squeezing
// and Gaussian states, factors them into beam splitters, phase shifters,
// squeezers, displacements and thermal sources, and pre-combines gates so
// fewer physical operations are emitted.
//
// Conventions: quadratures in xxpp order, Ω = [[0, I], [−I, 0]], vacuum
// covariance (ħ/2)·I with ħ = 2 unless given, tolerance 1e-10 unless given.
//
// Packages:
//
//	matrix/          dense real and complex matrices, Jacobi eigen, spectral functions
//	classify/        unitary / symplectic / covariance checks and validated types
//	ops/             elementary operation records and their phase-space action
//	clements/        rectangular beam-splitter mesh for a unitary
//	blochmessiah/    S = O2 · diag(e^{-r}, e^{r}) · O1
//	williamson/      V = S · diag(ν, ν) · Sᵗ
//	gate/            sealed gate variants, merge table, elision, state planner
//	program/         explicit command log, Optimize, concurrent Compile
//
// Quick example:
//
//	v, _ := matrix.NewDiagonal([]float64{e⁻⁰·¹, e⁻⁰·¹, e⁰·¹, e⁰·¹})
//	st, _ := gate.NewCovarianceState(v, nil, 2, 1e-10)
//	seq, _ := st.Decompose()   // [Squeeze(0,r=0.05,φ=0) Squeeze(1,r=0.05,φ=0)]
//
// Runnable scenarios live in examples/.
package cvgauss
