// Package blochmessiah_test contains unit tests for the Bloch-Messiah decomposition:
// round trips on random symplectic matrices, diagonal and passive special cases,
// the degenerate unit cluster, and option validation.
package blochmessiah_test

import (
	"bytes"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cvgauss/blochmessiah"
	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
)

const tol = 1e-10

// passive appends a deep random interferometer on n modes to seq.
func passive(rng *rand.Rand, n int, seq []ops.Op) []ops.Op {
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

// randomSymplectic returns O_b·D(r)·O_a for random interferometers and the given r.
func randomSymplectic(tb testing.TB, rng *rand.Rand, r []float64) *matrix.Dense {
	tb.Helper()
	n := len(r)
	seq := passive(rng, n, nil)
	for k, rk := range r {
		seq = append(seq, ops.NewSqueeze(k, rk, 0))
	}
	seq = passive(rng, n, seq)
	s, err := ops.Transform(n, seq)
	require.NoError(tb, err)

	return s
}

func mustSymplectic(tb testing.TB, s matrix.Matrix) *classify.SymplecticMatrix {
	tb.Helper()
	vs, err := classify.NewSymplectic(s, 1e-9)
	require.NoError(tb, err)

	return vs
}

func distance(tb testing.TB, a, b matrix.Matrix) float64 {
	tb.Helper()
	diff, err := matrix.Sub(a, b)
	require.NoError(tb, err)
	d, err := matrix.FrobeniusNorm(diff)
	require.NoError(tb, err)

	return d
}

func sorted(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)

	return out
}

// ------------------------------------------------------------------------
// 1. Round trips.
// ------------------------------------------------------------------------

func TestDecompose_RandomRoundTrip(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(11))
	for n := 1; n <= 5; n++ {
		r := make([]float64, n)
		for k := range r {
			r[k] = 0.05 + rng.Float64()
		}
		s := randomSymplectic(t, rng, r)

		res, err := blochmessiah.Decompose(mustSymplectic(t, s))
		require.NoError(t, err, "n=%d", n)
		require.False(t, res.Passive)

		rec, err := res.Reconstruct()
		require.NoError(t, err)
		require.Less(t, distance(t, rec, s), 1e-9, "n=%d", n)

		// Both passive factors are orthogonal symplectic.
		for _, o := range []*matrix.Dense{res.O1, res.O2} {
			require.True(t, classify.IsOrthogonal(o, 1e-9))
			require.NoError(t, classify.ClassifySymplectic(o, 1e-9))
		}
		require.InDeltaSlice(t, sorted(r), sorted(res.Squeezing), 1e-9)

		// The emitted circuit reproduces S.
		circuit, err := ops.Transform(n, res.Ops(1e-14))
		require.NoError(t, err)
		require.Less(t, distance(t, circuit, s), 1e-9)
	}
}

func TestDecompose_DiagonalSqueezersKeepTheirModes(t *testing.T) {
	t.Parallel()
	s, err := ops.Transform(3, []ops.Op{
		ops.NewSqueeze(0, 0.1, 0),
		ops.NewSqueeze(1, 0.5, 0),
		ops.NewSqueeze(2, 0.3, 0),
	})
	require.NoError(t, err)

	res, err := blochmessiah.Decompose(mustSymplectic(t, s))
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.1, 0.5, 0.3}, res.Squeezing, 1e-12)

	seq := res.Ops(tol)
	require.Len(t, seq, 3, "no interferometer around a diagonal squeezer")
	for k, op := range seq {
		require.Equal(t, ops.Squeeze, op.Kind)
		require.Equal(t, k, op.Mode)
	}
}

func TestDecompose_PassiveIsSingleMesh(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(5))
	s, err := ops.Transform(4, passive(rng, 4, nil))
	require.NoError(t, err)

	res, err := blochmessiah.Decompose(mustSymplectic(t, s))
	require.NoError(t, err)
	require.True(t, res.Passive)
	require.Nil(t, res.Mesh2)
	require.Empty(t, res.Squeezers(tol))
	require.Len(t, res.Mesh1.Elements, 6)

	rec, err := res.Reconstruct()
	require.NoError(t, err)
	require.Less(t, distance(t, rec, s), 1e-9)
}

func TestDecompose_IdentityEmitsNothing(t *testing.T) {
	t.Parallel()
	id, err := matrix.NewIdentity(6)
	require.NoError(t, err)

	res, err := blochmessiah.Decompose(mustSymplectic(t, id))
	require.NoError(t, err)
	require.NotNil(t, res.Ops(tol))
	require.Empty(t, res.Ops(tol))
}

// ------------------------------------------------------------------------
// 2. Degenerate spectra.
// ------------------------------------------------------------------------

func TestDecompose_UnitClusterAroundOneSqueezer(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(17))
	s := randomSymplectic(t, rng, []float64{0, 0.4, 0})

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	res, err := blochmessiah.Decompose(mustSymplectic(t, s), blochmessiah.WithLogger(logger))
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0, 0, 0.4}, sorted(res.Squeezing), 1e-9)
	require.Len(t, res.Squeezers(tol), 1)

	rec, err := res.Reconstruct()
	require.NoError(t, err)
	require.Less(t, distance(t, rec, s), 1e-9)
	require.Contains(t, buf.String(), "unit cluster resolved")
	require.Contains(t, buf.String(), `"cluster":4`)
}

func TestDecompose_EqualSqueezing(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(23))
	s := randomSymplectic(t, rng, []float64{0.4, 0.4, 0, 0})

	res, err := blochmessiah.Decompose(mustSymplectic(t, s))
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0, 0, 0.4, 0.4}, sorted(res.Squeezing), 1e-9)
	rec, err := res.Reconstruct()
	require.NoError(t, err)
	require.Less(t, distance(t, rec, s), 1e-9)
}

func TestDecompose_AntiSqueezedPosition(t *testing.T) {
	t.Parallel()
	// φ = π squeezes p instead of x: the factors rotate the mode by a quarter turn.
	s, err := ops.Transform(2, []ops.Op{ops.NewSqueeze(0, 0.5, math.Pi)})
	require.NoError(t, err)

	res, err := blochmessiah.Decompose(mustSymplectic(t, s))
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.5, 0}, res.Squeezing, 1e-12)

	circuit, err := ops.Transform(2, res.Ops(tol))
	require.NoError(t, err)
	require.Less(t, distance(t, circuit, s), 1e-12)
}

// TestDecompose_WeakSqueezing covers squeezing so weak that the eigenvalues
// of S·Sᵗ crowd around 1 and Jacobi eigenvectors lose orthogonality.
func TestDecompose_WeakSqueezing(t *testing.T) {
	t.Parallel()
	for _, base := range []float64{1e-3, 1e-5, 1e-7, 5e-11} {
		for seed := int64(1); seed <= 4; seed++ {
			rng := rand.New(rand.NewSource(seed))
			r := []float64{base, 2 * base, 3 * base}
			s := randomSymplectic(t, rng, r)

			res, err := blochmessiah.Decompose(mustSymplectic(t, s))
			require.NoError(t, err, "r=%g seed=%d", base, seed)
			require.InDeltaSlice(t, sorted(r), sorted(res.Squeezing), 1e-9, "r=%g seed=%d", base, seed)
			for _, o := range []*matrix.Dense{res.O1, res.O2} {
				require.True(t, classify.IsOrthogonal(o, 1e-9))
				require.NoError(t, classify.ClassifySymplectic(o, 1e-9))
			}

			rec, err := res.Reconstruct()
			require.NoError(t, err)
			require.Less(t, distance(t, rec, s), 1e-9, "r=%g seed=%d", base, seed)

			circuit, err := ops.Transform(3, res.Ops(tol))
			require.NoError(t, err)
			require.Less(t, distance(t, circuit, s), 1e-8, "r=%g seed=%d", base, seed)
		}
	}
}

// ------------------------------------------------------------------------
// 3. Validation.
// ------------------------------------------------------------------------

func TestDecompose_Errors(t *testing.T) {
	t.Parallel()
	_, err := blochmessiah.Decompose(nil)
	require.ErrorIs(t, err, blochmessiah.ErrNilSymplectic)

	id, err := matrix.NewIdentity(2)
	require.NoError(t, err)
	_, err = blochmessiah.Decompose(mustSymplectic(t, id), blochmessiah.WithTolerance(-1))
	require.ErrorIs(t, err, blochmessiah.ErrBadTolerance)
}
