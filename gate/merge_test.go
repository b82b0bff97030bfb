// SPDX-License-Identifier: MIT

package gate_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cvgauss/gate"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
)

const (
	tol  = 1e-10
	hbar = 2.0
)

func passive(rng *rand.Rand, n int) []ops.Op {
	seq := make([]ops.Op, 0, 4*n*n)
	for k := 0; k < 2*n*n; k++ {
		if n > 1 {
			i := rng.Intn(n)
			j := (i + 1 + rng.Intn(n-1)) % n
			seq = append(seq, ops.NewBeamMix(i, j, rng.Float64()*math.Pi, (2*rng.Float64()-1)*math.Pi))
		}
		seq = append(seq, ops.NewPhaseShift(rng.Intn(n), (2*rng.Float64()-1)*math.Pi))
	}

	return seq
}

func randomInterferometer(t *testing.T, rng *rand.Rand, n int) *gate.Interferometer {
	t.Helper()
	u, err := ops.TransformUnitary(n, passive(rng, n))
	require.NoError(t, err)
	g, err := gate.NewInterferometer(u, 1e-9)
	require.NoError(t, err)

	return g
}

func randomTransform(t *testing.T, rng *rand.Rand, n int) *gate.GaussianTransform {
	t.Helper()
	seq := passive(rng, n)
	for k := 0; k < n; k++ {
		seq = append(seq, ops.NewSqueeze(k, rng.Float64(), 0))
	}
	seq = append(seq, passive(rng, n)...)
	s, err := ops.Transform(n, seq)
	require.NoError(t, err)
	g, err := gate.NewGaussianTransform(s, 1e-9)
	require.NoError(t, err)

	return g
}

func vacuumState(t *testing.T, n int) *gate.CovarianceState {
	t.Helper()
	v, err := matrix.NewIdentity(2 * n)
	require.NoError(t, err)
	g, err := gate.NewCovarianceState(v, nil, hbar, tol)
	require.NoError(t, err)

	return g
}

func cDistance(t *testing.T, a, b *matrix.CDense) float64 {
	t.Helper()
	diff, err := matrix.CSub(a, b)
	require.NoError(t, err)

	return matrix.CFrobeniusNorm(diff)
}

func distance(t *testing.T, a, b matrix.Matrix) float64 {
	t.Helper()
	diff, err := matrix.Sub(a, b)
	require.NoError(t, err)
	d, err := matrix.FrobeniusNorm(diff)
	require.NoError(t, err)

	return d
}

func TestMergeProductLaw(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	i1, i2 := randomInterferometer(t, rng, 3), randomInterferometer(t, rng, 3)

	merged, err := gate.Merge(i1, i2)
	require.NoError(t, err)
	require.Equal(t, gate.KindInterferometer, merged.Kind())

	want, err := matrix.CMul(i2.Unitary(), i1.Unitary())
	require.NoError(t, err)
	require.Less(t, cDistance(t, merged.(*gate.Interferometer).Unitary(), want), 1e-12)
}

func TestMergeIdentityLaw(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(2))
	g := randomInterferometer(t, rng, 4)
	dagger, err := matrix.ConjTranspose(g.Unitary())
	require.NoError(t, err)
	inv, err := gate.NewInterferometer(dagger, tol)
	require.NoError(t, err)

	merged, err := gate.Merge(g, inv)
	require.NoError(t, err)
	id, err := matrix.NewCIdentity(4)
	require.NoError(t, err)
	require.Less(t, cDistance(t, merged.(*gate.Interferometer).Unitary(), id), 1e-12)
	require.True(t, gate.IsIdentity(merged, 1e-9))

	seq, err := merged.Decompose(gate.WithTolerance(1e-9))
	require.NoError(t, err)
	require.Empty(t, seq)
}

func TestMergeGaussianTransforms(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	g1, g2 := randomTransform(t, rng, 2), randomTransform(t, rng, 2)

	merged, err := gate.Merge(g1, g2)
	require.NoError(t, err)
	want, err := matrix.Mul(g2.Symplectic(), g1.Symplectic())
	require.NoError(t, err)
	require.Less(t, distance(t, merged.(*gate.GaussianTransform).Symplectic(), want), 1e-12)
}

func TestMergeSqueezers(t *testing.T) {
	t.Parallel()
	a, _ := gate.NewSqueeze(0.2, 0.3)
	b, _ := gate.NewSqueeze(0.5, 0.3)
	merged, err := gate.Merge(a, b)
	require.NoError(t, err)
	sq := merged.(*gate.Squeeze)
	require.InDelta(t, 0.7, sq.R(), 1e-15)
	require.Equal(t, 0.3, sq.Phi())

	c, _ := gate.NewSqueeze(0.5, 0.4)
	_, err = gate.Merge(a, c)
	require.ErrorIs(t, err, gate.ErrMergeIncompatible)
}

func TestMergeStateOverride(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(4))
	v2, err := matrix.NewFromRows([][]float64{{3, 0}, {0, 3}})
	require.NoError(t, err)
	cov2, err := gate.NewCovarianceState(v2, []float64{1, 0}, hbar, tol)
	require.NoError(t, err)
	sqState, err := gate.NewSqueezedState(0.4, 0, hbar)
	require.NoError(t, err)
	sq, _ := gate.NewSqueeze(0.1, 0)

	for _, a := range []gate.Gate{
		vacuumState(t, 1),
		sqState,
		sq,
		randomInterferometer(t, rng, 1),
		randomTransform(t, rng, 1),
	} {
		merged, err := gate.Merge(a, cov2)
		require.NoError(t, err, "%v", a)
		require.Same(t, cov2, merged)

		merged, err = gate.Merge(a, sqState)
		require.NoError(t, err, "%v", a)
		require.Same(t, sqState, merged)
	}
}

func TestMergeStateAbsorbsSmallerGate(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(9))
	sqState, err := gate.NewSqueezedState(2, 0, hbar)
	require.NoError(t, err)
	sq, _ := gate.NewSqueeze(0.3, 0)
	v3 := vacuumState(t, 3)

	for _, a := range []gate.Gate{
		sqState,
		sq,
		vacuumState(t, 2),
		randomInterferometer(t, rng, 2),
		randomTransform(t, rng, 1),
	} {
		merged, err := gate.Merge(a, v3)
		require.NoError(t, err, "%v", a)
		require.Same(t, v3, merged)
	}

	// A smaller preparation never absorbs a larger gate.
	_, err = gate.Merge(v3, sqState)
	require.ErrorIs(t, err, gate.ErrMergeIncompatible)
	_, err = gate.Merge(randomInterferometer(t, rng, 2), sq)
	require.ErrorIs(t, err, gate.ErrMergeIncompatible)
}

func TestMergeIncompatible(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(5))
	i2 := randomInterferometer(t, rng, 2)
	g2 := randomTransform(t, rng, 2)
	sq, _ := gate.NewSqueeze(0.1, 0)
	sqState, _ := gate.NewSqueezedState(0.1, 0, hbar)

	cases := []struct {
		name string
		a, b gate.Gate
	}{
		{"interferometer then transform", i2, g2},
		{"transform then interferometer", g2, i2},
		{"state then interferometer", vacuumState(t, 2), i2},
		{"state then squeeze", sqState, sq},
		{"squeeze then interferometer", sq, randomInterferometer(t, rng, 1)},
		{"mode count", i2, randomInterferometer(t, rng, 3)},
		{"state mode count", vacuumState(t, 2), vacuumState(t, 1)},
	}
	for _, tc := range cases {
		_, err := gate.Merge(tc.a, tc.b)
		require.ErrorIs(t, err, gate.ErrMergeIncompatible, tc.name)
		require.False(t, gate.CanMerge(tc.a, tc.b), tc.name)
	}

	_, err := gate.Merge(nil, i2)
	require.ErrorIs(t, err, gate.ErrNilGate)
	_, err = gate.Merge(i2, nil)
	require.ErrorIs(t, err, gate.ErrNilGate)
}

func TestMergeLeavesOperandsUntouched(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(6))
	i1, i2 := randomInterferometer(t, rng, 3), randomInterferometer(t, rng, 3)
	before1, before2 := i1.Unitary(), i2.Unitary()

	_, err := gate.Merge(i1, i2)
	require.NoError(t, err)
	require.Equal(t, before1.Values(), i1.Unitary().Values())
	require.Equal(t, before2.Values(), i2.Unitary().Values())

	// Accessors hand out copies.
	u := i1.Unitary()
	require.NoError(t, u.Set(0, 0, 42))
	require.Equal(t, before1.Values(), i1.Unitary().Values())
}

func TestIsIdentityAndElide(t *testing.T) {
	t.Parallel()
	id, _ := matrix.NewCIdentity(6)
	g, err := gate.NewInterferometer(id, tol)
	require.NoError(t, err)
	require.True(t, gate.IsIdentity(g, tol))
	seq, err := g.Decompose()
	require.NoError(t, err)
	require.NotNil(t, seq)
	require.Empty(t, seq)

	sq, _ := gate.NewSqueeze(1e-12, 1)
	require.True(t, gate.IsIdentity(sq, tol))
	require.False(t, gate.IsIdentity(vacuumState(t, 1), tol), "preparations reset their modes")

	kept := gate.Elide([]ops.Op{
		ops.NewPhaseShift(0, 2*math.Pi),
		ops.NewSqueeze(1, 0.3, 0),
		ops.NewBeamMix(0, 1, 1e-13, 0),
	}, tol)
	require.Equal(t, []ops.Op{ops.NewSqueeze(1, 0.3, 0)}, kept)
}

func TestConstructorsRejectBadInput(t *testing.T) {
	t.Parallel()
	_, err := gate.NewSqueeze(math.NaN(), 0)
	require.ErrorIs(t, err, gate.ErrBadParameter)
	_, err = gate.NewSqueezedState(0.1, 0, 0)
	require.ErrorIs(t, err, gate.ErrBadParameter)

	v, _ := matrix.NewIdentity(2)
	_, err = gate.NewCovarianceState(v, []float64{1}, hbar, tol)
	require.ErrorIs(t, err, gate.ErrBadParameter)

	_, err = vacuumState(t, 1).Decompose(gate.WithTolerance(-1))
	require.ErrorIs(t, err, gate.ErrBadTolerance)
}
