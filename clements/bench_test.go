package clements_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/cvgauss/clements"
)

var sinkMesh *clements.Mesh

func BenchmarkDecompose(b *testing.B) {
	b.ReportAllocs()
	for _, n := range []int{4, 8, 16} {
		b.Run(fmt.Sprintf("N=%d", n), func(b *testing.B) {
			u := mustUnitary(b, randomUnitary(b, rand.New(rand.NewSource(int64(n))), n))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				mesh, err := clements.Decompose(u)
				if err != nil {
					b.Fatal(err)
				}
				sinkMesh = mesh
			}
		})
	}
}
