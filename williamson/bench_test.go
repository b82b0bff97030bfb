package williamson_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/cvgauss/ops"
	"github.com/katalvlaran/cvgauss/williamson"
)

var sinkResult *williamson.Result

func BenchmarkDecompose(b *testing.B) {
	b.ReportAllocs()
	for _, n := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("N=%d", n), func(b *testing.B) {
			rng := rand.New(rand.NewSource(int64(n)))
			nu := make([]float64, n)
			seq := passive(rng, n, nil)
			for k := range nu {
				nu[k] = hbar/2 + rng.Float64()
				seq = append(seq, ops.NewSqueeze(k, rng.Float64(), 0))
			}
			cv := mustCovariance(b, gaussianState(b, n, passive(rng, n, seq), nu))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				res, err := williamson.Decompose(cv)
				if err != nil {
					b.Fatal(err)
				}
				sinkResult = res
			}
		})
	}
}
