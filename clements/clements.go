// Package clements implements the rectangular decomposition of a unitary
// into BeamMix elements and a final phase screen.
//
// Algorithm outline:
//
//   - Work on a copy V of U. For each anti-diagonal, counted k = 0, 1, … from
//     the bottom-left corner, null its entries in turn:
//     even k nulls from the right, V ← V·T⁻¹ on columns (n, n+1);
//     odd  k nulls from the left,  V ← T·V   on rows    (m−1, m).
//     After N(N−1)/2 steps V is diagonal: L_b···L_1 · U · R_1⁻¹···R_a⁻¹ = D.
//   - Push every left element through the diagonal with T⁻¹D = D′T′, so that
//     U = D′ · T′_1 ··· T′_b · R_a ··· R_1 reads as one circuit.
//   - Assign layers greedily in circuit order.
//
// Notes on implementation choices:
//
//   - A target with |U[m,n]| ≤ tol is treated as nulled and yields the
//     identity element θ = φ = 0; a vanishing pivot yields θ = π/2, φ = 0.
//   - A left element with |θ| ≤ tol is the pure phase diag(e^{iφ}, 1); it is
//     folded into the diagonal and emitted as the identity element, so U ≈ I
//     produces a mesh whose every operation elides.
package clements

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/cvgauss/classify"
)

// rotation is one nulling step before layering.
type rotation struct {
	m, n       int // mode pair (n = m+1)
	theta, phi float64
}

// Decompose computes the rectangular mesh of a validated unitary.
//
// Returns:
//
//   - mesh with exactly N(N−1)/2 elements in circuit order and N phases.
//
// Errors:
//
//   - ErrNilUnitary, ErrBadTolerance.
//
// Complexity:
//
//   - Time:  O(N^3)
//   - Space: O(N^2)
func Decompose(u *classify.UnitaryMatrix, opts ...Option) (*Mesh, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNilUnitary
	}

	n := u.Modes()
	v := u.Matrix().ToRows()
	tol := cfg.Tolerance

	// 1) Null the lower triangle, alternating sides per anti-diagonal.
	right := make([]rotation, 0, n*(n-1)/2)
	left := make([]rotation, 0, n*(n-1)/2)
	var k, i, j int
	for k, i = 0, n-2; i >= 0; k, i = k+1, i-1 {
		if k%2 == 0 {
			for j = n - 2 - i; j >= 0; j-- {
				r := nullFromRight(v, i+j+1, j, tol)
				applyRightInverse(v, r)
				right = append(right, r)
			}
		} else {
			for j = 0; j <= n-2-i; j++ {
				r := nullFromLeft(v, i+j+1, j, tol)
				applyLeft(v, r)
				left = append(left, r)
			}
		}
	}

	// 2) Read the diagonal; residual off-diagonal weight is a precision diagnostic.
	diag := make([]complex128, n)
	offDiag := 0.0
	for i = 0; i < n; i++ {
		diag[i] = v[i][i]
		for j = 0; j < n; j++ {
			if i != j {
				offDiag = math.Hypot(offDiag, cmplx.Abs(v[i][j]))
			}
		}
	}

	// 3) Push left elements through the diagonal, last one first.
	circuit := make([]rotation, 0, len(right)+len(left))
	circuit = append(circuit, right...)
	for idx := len(left) - 1; idx >= 0; idx-- {
		circuit = append(circuit, pushThroughDiagonal(left[idx], diag, tol))
	}

	// 4) Layers and phases.
	mesh := &Mesh{
		N:        n,
		Elements: layer(n, circuit),
		Phases:   make([]float64, n),
	}
	for i = 0; i < n; i++ {
		mesh.Phases[i] = cmplx.Phase(diag[i])
	}

	cfg.Logger.Debug().
		Int("modes", n).
		Int("elements", len(mesh.Elements)).
		Int("depth", mesh.Depth()).
		Float64("offdiag_residual", offDiag).
		Msg("clements: mesh decomposed")

	return mesh, nil
}

// nullFromRight chooses T on columns (col, col+1) such that (V·T⁻¹)[row,col] = 0.
func nullFromRight(v [][]complex128, row, col int, tol float64) rotation {
	target, pivot := v[row][col], v[row][col+1]

	return angles(col, col+1, target, pivot, tol)
}

// nullFromLeft chooses T on rows (row−1, row) such that (T·V)[row,col] = 0.
func nullFromLeft(v [][]complex128, row, col int, tol float64) rotation {
	target, pivot := v[row][col], v[row-1][col]

	return angles(row-1, row, -target, pivot, tol)
}

// angles solves tanθ·e^{iφ} = target/pivot with the tie rules of the package doc.
func angles(m, n int, target, pivot complex128, tol float64) rotation {
	switch {
	case cmplx.Abs(target) <= tol:
		return rotation{m: m, n: n}
	case cmplx.Abs(pivot) <= tol:
		return rotation{m: m, n: n, theta: math.Pi / 2}
	}
	r := target / pivot

	return rotation{m: m, n: n, theta: math.Atan(cmplx.Abs(r)), phi: cmplx.Phase(r)}
}

// tMatrix returns the 2×2 block of T(θ,φ).
func tMatrix(theta, phi float64) (a, b, c, d complex128) {
	e := cmplx.Exp(complex(0, phi))
	cs, sn := complex(math.Cos(theta), 0), complex(math.Sin(theta), 0)

	return e * cs, -sn, e * sn, cs
}

// applyRightInverse sets V ← V·T⁻¹ = V·T† on columns (r.m, r.n).
func applyRightInverse(v [][]complex128, r rotation) {
	a, b, c, d := tMatrix(r.theta, r.phi)
	// T† = [[conj a, conj c], [conj b, conj d]]
	ha, hb, hc, hd := cmplx.Conj(a), cmplx.Conj(c), cmplx.Conj(b), cmplx.Conj(d)
	for row := range v {
		x, y := v[row][r.m], v[row][r.n]
		v[row][r.m] = x*ha + y*hc
		v[row][r.n] = x*hb + y*hd
	}
}

// applyLeft sets V ← T·V on rows (r.m, r.n).
func applyLeft(v [][]complex128, r rotation) {
	a, b, c, d := tMatrix(r.theta, r.phi)
	for col := range v[r.m] {
		x, y := v[r.m][col], v[r.n][col]
		v[r.m][col] = a*x + b*y
		v[r.n][col] = c*x + d*y
	}
}

// pushThroughDiagonal rewrites T(θ,φ)⁻¹·D as D′·T(θ,φ′), updating diag in place.
//
// With D = diag(e^{iα}, e^{iβ}) on (m, n): φ′ = α − β + π, α′ = β − φ + π, β′ = β.
// A pure phase (|θ| ≤ tol) is absorbed: α′ = α − φ and the identity is returned.
func pushThroughDiagonal(r rotation, diag []complex128, tol float64) rotation {
	alpha, beta := cmplx.Phase(diag[r.m]), cmplx.Phase(diag[r.n])
	if math.Abs(r.theta) <= tol {
		diag[r.m] = cmplx.Exp(complex(0, alpha-r.phi))
		diag[r.n] = cmplx.Exp(complex(0, beta))

		return rotation{m: r.m, n: r.n}
	}
	newPhi := math.Mod(alpha-beta+math.Pi, 2*math.Pi)
	diag[r.m] = cmplx.Exp(complex(0, beta-r.phi+math.Pi))
	diag[r.n] = cmplx.Exp(complex(0, beta))

	return rotation{m: r.m, n: r.n, theta: r.theta, phi: newPhi}
}

// layer packs rotations into mesh columns: an element lands one column after
// the latest element touching either of its modes.
func layer(n int, circuit []rotation) []Element {
	depth := make([]int, n)
	out := make([]Element, len(circuit))
	for idx, r := range circuit {
		l := depth[r.m]
		if depth[r.n] > l {
			l = depth[r.n]
		}
		depth[r.m], depth[r.n] = l+1, l+1
		out[idx] = Element{Layer: l, ModeI: r.m, ModeJ: r.n, Theta: r.theta, Phi: r.phi}
	}

	return out
}

// String renders the mesh summary for logs.
func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh{N=%d elements=%d depth=%d}", m.N, len(m.Elements), m.Depth())
}
