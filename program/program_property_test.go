package program_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/katalvlaran/cvgauss/gate"
	"github.com/katalvlaran/cvgauss/matrix"
	"github.com/katalvlaran/cvgauss/ops"
	"github.com/katalvlaran/cvgauss/program"
)

// randomProgram draws commands that merge often: repeated mode pairs,
// inverse interferometers, squeezers on two fixed angles and preparations.
func randomProgram(t *testing.T, rng *rand.Rand, n, length int) *program.Program {
	p := mustProgram(t, n)
	var last *gate.Interferometer
	var lastModes []int
	for k := 0; k < length; k++ {
		switch rng.Intn(4) {
		case 0:
			i := rng.Intn(n)
			j := (i + 1 + rng.Intn(n-1)) % n
			last, lastModes = interferometer(t, rng, 2), []int{i, j}
			_ = p.Append(last, lastModes...)
		case 1:
			if last != nil {
				_ = p.Append(inverse(t, last), lastModes...)
			}
		case 2:
			_ = p.Append(squeeze(t, rng.Float64(), 0.5*float64(rng.Intn(2))), rng.Intn(n))
		default:
			_ = p.Append(thermalState(t, rng.Float64()), rng.Intn(n))
		}
	}

	return p
}

func finalState(p *program.Program) (*matrix.Dense, []float64, error) {
	steps, err := p.Compile(context.Background())
	if err != nil {
		return nil, nil, err
	}

	return ops.Simulate(p.Modes(), hbar, program.Flatten(steps))
}

// TestOptimizePreservesStateProperty runs random programs with and without
// optimization from vacuum and compares the final states.
func TestOptimizePreservesStateProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("Optimize never changes the prepared state", prop.ForAll(
		func(length int, seed int64) bool {
			p := randomProgram(t, rand.New(rand.NewSource(seed)), 3, length)
			opt, err := p.Optimize(1e-9)
			if err != nil || opt.Len() > p.Len() {
				return false
			}
			covA, meanA, err := finalState(p)
			if err != nil {
				return false
			}
			covB, meanB, err := finalState(opt)
			if err != nil {
				return false
			}
			ok, err := matrix.AllClose(covA, covB, 0, 1e-8)
			if err != nil || !ok {
				return false
			}
			for i := range meanA {
				if d := meanA[i] - meanB[i]; d > 1e-8 || d < -1e-8 {
					return false
				}
			}

			return true
		},
		gen.IntRange(1, 12),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
