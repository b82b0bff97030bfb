package clements_test

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/clements"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
)

const tol = 1e-10

// randomUnitary composes a deep random passive circuit on n modes.
func randomUnitary(tb testing.TB, rng *rand.Rand, n int) *matrix.CDense {
	tb.Helper()
	seq := make([]ops.Op, 0, 4*n*n)
	for k := 0; k < 2*n*n; k++ {
		if n > 1 {
			i := rng.Intn(n)
			j := (i + 1 + rng.Intn(n-1)) % n
			seq = append(seq, ops.NewBeamMix(i, j, rng.Float64()*math.Pi, (2*rng.Float64()-1)*math.Pi))
		}
		seq = append(seq, ops.NewPhaseShift(rng.Intn(n), (2*rng.Float64()-1)*math.Pi))
	}
	u, err := ops.TransformUnitary(n, seq)
	require.NoError(tb, err)

	return u
}

func mustUnitary(tb testing.TB, u *matrix.CDense) *classify.UnitaryMatrix {
	tb.Helper()
	vu, err := classify.NewUnitary(u, 1e-9)
	require.NoError(tb, err)

	return vu
}

func reconstructionError(tb testing.TB, mesh *clements.Mesh, u *matrix.CDense) float64 {
	tb.Helper()
	got, err := mesh.Unitary()
	require.NoError(tb, err)
	diff, err := matrix.CSub(got, u)
	require.NoError(tb, err)

	return matrix.CFrobeniusNorm(diff)
}

func TestDecomposeReconstructs(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(20240611))
	for n := 1; n <= 7; n++ {
		u := randomUnitary(t, rng, n)
		mesh, err := clements.Decompose(mustUnitary(t, u))
		require.NoError(t, err)
		require.Len(t, mesh.Elements, n*(n-1)/2, "n=%d", n)
		require.Len(t, mesh.Phases, n)
		require.Less(t, reconstructionError(t, mesh, u), 1e-9, "n=%d", n)

		// Elided operations still reproduce U.
		elided, err := ops.TransformUnitary(n, mesh.Ops(1e-14))
		require.NoError(t, err)
		diff, _ := matrix.CSub(elided, u)
		require.Less(t, matrix.CFrobeniusNorm(diff), 1e-9)
	}
}

func TestIdentityEmitsNothing(t *testing.T) {
	t.Parallel()
	id, err := matrix.NewCIdentity(6)
	require.NoError(t, err)
	mesh, err := clements.Decompose(mustUnitary(t, id))
	require.NoError(t, err)

	require.Len(t, mesh.Elements, 15)
	require.True(t, mesh.IsIdentity(tol))
	require.NotNil(t, mesh.Ops(tol))
	require.Empty(t, mesh.Ops(tol))
}

func TestNearIdentityEmitsNothing(t *testing.T) {
	t.Parallel()
	rows := [][]complex128{
		{1, 1e-13i, 0},
		{1e-13i, 1, 0},
		{0, 0, complex(math.Cos(1e-13), math.Sin(1e-13))},
	}
	u, err := matrix.NewCFromRows(rows)
	require.NoError(t, err)
	mesh, err := clements.Decompose(mustUnitary(t, u))
	require.NoError(t, err)
	require.Empty(t, mesh.Ops(tol))
}

func TestPermutationUsesZeroPivotRule(t *testing.T) {
	t.Parallel()
	u, err := matrix.NewCFromRows([][]complex128{{0, 1}, {1, 0}})
	require.NoError(t, err)
	mesh, err := clements.Decompose(mustUnitary(t, u))
	require.NoError(t, err)

	require.Len(t, mesh.Elements, 1)
	require.InDelta(t, math.Pi/2, mesh.Elements[0].Theta, 1e-15)
	require.Equal(t, 0.0, mesh.Elements[0].Phi)
	require.Less(t, reconstructionError(t, mesh, u), 1e-12)
}

func TestLayersAreRectangular(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	for n := 3; n <= 6; n++ {
		mesh, err := clements.Decompose(mustUnitary(t, randomUnitary(t, rng, n)))
		require.NoError(t, err)
		require.Equal(t, n, mesh.Depth(), "rectangular mesh has N columns")

		seen := map[[2]int]bool{}
		for _, e := range mesh.Elements {
			require.Equal(t, e.ModeI+1, e.ModeJ)
			require.Less(t, e.Layer, n)
			key := [2]int{e.Layer, e.ModeI}
			require.False(t, seen[key], "slot (layer %d, mode %d) used twice", e.Layer, e.ModeI)
			seen[key] = true
		}
	}
}

func TestDecomposeErrors(t *testing.T) {
	t.Parallel()
	_, err := clements.Decompose(nil)
	require.ErrorIs(t, err, clements.ErrNilUnitary)

	id, _ := matrix.NewCIdentity(2)
	_, err = clements.Decompose(mustUnitary(t, id), clements.WithTolerance(-1))
	require.ErrorIs(t, err, clements.ErrBadTolerance)
	_, err = clements.Decompose(mustUnitary(t, id), clements.WithTolerance(math.NaN()))
	require.ErrorIs(t, err, clements.ErrBadTolerance)
}

func TestDecomposeLogsAtDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	id, _ := matrix.NewCIdentity(3)

	_, err := clements.Decompose(mustUnitary(t, id), clements.WithLogger(logger))
	require.NoError(t, err)
	require.Contains(t, buf.String(), "clements: mesh decomposed")
	require.Contains(t, buf.String(), `"elements":3`)
}
