package williamson_test

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
	"github.com/katalvlaran/cvgauss/williamson"
)

const (
	tol  = 1e-10
	hbar = classify.DefaultHbar
)

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

// gaussianState returns S·diag(ν, ν)·Sᵗ with S the action of seq.
func gaussianState(tb testing.TB, n int, seq []ops.Op, nu []float64) *matrix.Dense {
	tb.Helper()
	s, err := ops.Transform(n, seq)
	require.NoError(tb, err)
	d := make([]float64, 2*n)
	for k, x := range nu {
		d[k], d[n+k] = x, x
	}
	dm, err := matrix.NewDiagonal(d)
	require.NoError(tb, err)
	st, err := matrix.Transpose(s)
	require.NoError(tb, err)
	v, err := matrix.MulChain(s, dm, st)
	require.NoError(tb, err)

	return v
}

func mustCovariance(tb testing.TB, v matrix.Matrix) *classify.CovarianceMatrix {
	tb.Helper()
	cv, err := classify.NewCovariance(v, hbar, 1e-9)
	require.NoError(tb, err)

	return cv
}

func distance(tb testing.TB, a, b matrix.Matrix) float64 {
	tb.Helper()
	diff, err := matrix.Sub(a, b)
	require.NoError(tb, err)
	d, err := matrix.FrobeniusNorm(diff)
	require.NoError(tb, err)

	return d
}

func requireNormalForm(t *testing.T, res *williamson.Result, v matrix.Matrix) {
	t.Helper()
	rec, err := res.Reconstruct()
	require.NoError(t, err)
	require.Less(t, distance(t, rec, v), 1e-9)
	require.NoError(t, classify.ClassifySymplectic(res.S, 1e-9))
	for _, nu := range res.Nu {
		require.GreaterOrEqual(t, nu, hbar/2-tol)
	}
}

func TestDecomposeRandomStates(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	for n := 1; n <= 5; n++ {
		nu := make([]float64, n)
		seq := passive(rng, n, nil)
		for k := range nu {
			nu[k] = hbar/2 + 2*rng.Float64()
			seq = append(seq, ops.NewSqueeze(k, rng.Float64(), 0))
		}
		seq = passive(rng, n, seq)
		v := gaussianState(t, n, seq, nu)

		res, err := williamson.Decompose(mustCovariance(t, v))
		require.NoError(t, err, "n=%d", n)
		requireNormalForm(t, res, v)

		got := append([]float64(nil), res.Nu...)
		sort.Float64s(got)
		sort.Float64s(nu)
		require.InDeltaSlice(t, nu, got, 1e-9)
	}
}

func TestDecomposeSpecialStates(t *testing.T) {
	t.Parallel()
	e := math.Exp
	cases := []struct {
		name     string
		v        [][]float64
		wantNu   []float64
		identity bool
		diagonal bool
	}{
		{
			name:     "vacuum",
			v:        [][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
			wantNu:   []float64{1, 1},
			identity: true,
		},
		{
			name:     "thermal",
			v:        [][]float64{{3, 0, 0, 0}, {0, 5, 0, 0}, {0, 0, 3, 0}, {0, 0, 0, 5}},
			wantNu:   []float64{3, 5},
			identity: true,
		},
		{
			name: "squeezed",
			v: [][]float64{
				{e(-0.1), 0, 0, 0, 0, 0},
				{0, e(-0.1), 0, 0, 0, 0},
				{0, 0, e(-0.1), 0, 0, 0},
				{0, 0, 0, e(0.1), 0, 0},
				{0, 0, 0, 0, e(0.1), 0},
				{0, 0, 0, 0, 0, e(0.1)},
			},
			wantNu:   []float64{1, 1, 1},
			diagonal: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, err := matrix.NewFromRows(tc.v)
			require.NoError(t, err)
			res, err := williamson.Decompose(mustCovariance(t, v))
			require.NoError(t, err)
			requireNormalForm(t, res, v)
			require.InDeltaSlice(t, tc.wantNu, res.Nu, 1e-12)

			n := len(tc.wantNu)
			if tc.identity {
				id, _ := matrix.NewIdentity(2 * n)
				require.Less(t, distance(t, res.S, id), 1e-12)
			}
			if tc.diagonal {
				diag, err := matrix.IsZeroOffDiagonal(res.S, 1e-12)
				require.NoError(t, err)
				require.True(t, diag)
				x, err := res.S.At(0, 0)
				require.NoError(t, err)
				require.InDelta(t, math.Exp(-0.05), x, 1e-12)
			}
		})
	}
}

func TestDecomposeDegenerateSpectrum(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(41))
	seq := passive(rng, 3, nil)
	seq = append(seq, ops.NewSqueeze(0, 0.3, 0), ops.NewSqueeze(1, 0.2, 0))
	seq = passive(rng, 3, seq)

	for _, nu := range [][]float64{{1, 1, 1}, {3, 3, 1}, {2, 2, 2}} {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
		v := gaussianState(t, 3, seq, nu)

		res, err := williamson.Decompose(mustCovariance(t, v), williamson.WithLogger(logger))
		require.NoError(t, err, "nu=%v", nu)
		requireNormalForm(t, res, v)
		require.Contains(t, buf.String(), "degenerate symplectic eigenvalues")
	}
}

func TestRotatedSqueezedStateStaysModeLocal(t *testing.T) {
	t.Parallel()
	seq := []ops.Op{ops.NewSqueeze(0, 0.3, 0.7), ops.NewSqueeze(1, 0.2, -1), ops.NewSqueeze(2, 0.5, 2)}
	v := gaussianState(t, 3, seq, []float64{1, 1, 1})

	res, err := williamson.Decompose(mustCovariance(t, v))
	require.NoError(t, err)
	requireNormalForm(t, res, v)
	require.True(t, res.IsPure(1e-9))

	n := 3
	for i := 0; i < 2*n; i++ {
		for j := 0; j < 2*n; j++ {
			if i%n == j%n {
				continue
			}
			x, err := res.S.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, 0, x, 1e-12, "S[%d,%d] couples two modes", i, j)
		}
	}
}

func TestThermalOccupations(t *testing.T) {
	t.Parallel()
	res := &williamson.Result{Nu: []float64{1, 3, 0.9999999999999}, Hbar: 2}
	require.InDeltaSlice(t, []float64{0, 1, 0}, res.ThermalOccupations(), 1e-12)
	require.False(t, res.IsPure(tol))
	require.False(t, res.Uniform(tol))
	require.True(t, (&williamson.Result{Nu: []float64{2, 2}, Hbar: 2}).Uniform(tol))
}

func TestPhysicalityBoundary(t *testing.T) {
	t.Parallel()
	// ν = ħ/2 exactly passes.
	v, err := matrix.NewFromRows([][]float64{{0.5, 0}, {0, 2}})
	require.NoError(t, err)
	res, err := williamson.Decompose(mustCovariance(t, v))
	require.NoError(t, err)
	require.InDelta(t, 1.0, res.Nu[0], 1e-12)

	// ν = ħ/2 − δ slips through a loose classification but not the decomposer.
	delta := 1e-6
	v, err = matrix.NewFromRows([][]float64{{1 - delta, 0}, {0, 1 - delta}})
	require.NoError(t, err)
	loose, err := classify.NewCovariance(v, hbar, 1e-3)
	require.NoError(t, err)
	_, err = williamson.Decompose(loose)
	require.ErrorIs(t, err, classify.ErrNotPhysicalCovariance)
	var ce *classify.ClassificationError
	require.True(t, errors.As(err, &ce))
	require.InDelta(t, delta, ce.Residual, 1e-12)
}

func TestDecomposeErrors(t *testing.T) {
	t.Parallel()
	_, err := williamson.Decompose(nil)
	require.ErrorIs(t, err, williamson.ErrNilCovariance)

	id, err := matrix.NewIdentity(2)
	require.NoError(t, err)
	_, err = williamson.Decompose(mustCovariance(t, id), williamson.WithTolerance(math.NaN()))
	require.ErrorIs(t, err, williamson.ErrBadTolerance)
}
