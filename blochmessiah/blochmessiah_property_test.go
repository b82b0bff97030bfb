package blochmessiah_test

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/katalvlaran/cvgauss/blochmessiah"
	"github.com/katalvlaran/cvgauss/classify"
	"github.com/katalvlaran/cvgauss/matrix"
)

// TestDecomposeRoundTripProperty reconstructs random symplectic matrices whose
// squeezing spectrum mixes zero and non-zero values.
func TestDecomposeRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("O2·D·O1 reproduces S", prop.ForAll(
		func(n int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			r := make([]float64, n)
			for k := range r {
				if rng.Intn(3) > 0 {
					r[k] = rng.Float64() * 1.2
				}
			}
			s := randomSymplectic(t, rng, r)
			vs, err := classify.NewSymplectic(s, 1e-9)
			if err != nil {
				return false
			}
			res, err := blochmessiah.Decompose(vs)
			if err != nil {
				return false
			}
			rec, err := res.Reconstruct()
			if err != nil {
				return false
			}
			diff, err := matrix.Sub(rec, s)
			if err != nil {
				return false
			}
			d, err := matrix.FrobeniusNorm(diff)

			return err == nil && d < 1e-8
		},
		gen.IntRange(1, 5),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
