package fluid

import (
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/flip/parallel"
)

func benchScene(b *testing.B, n int) (*Grid, *Particles) {
	g := newTestGrid(b, n)
	ps := Seed(g, SeedConfig{Mode: SeedFill, Density: 8, Color: WaterColor}, rand.New(rand.NewPCG(1, 2)))
	for i := range ps.Items {
		ps.Items[i].Velocity.Y = -1
	}
	return g, ps
}

func BenchmarkScatterSerial(b *testing.B) {
	g, ps := benchScene(b, 32)
	tr := NewTransfer(WeightShared, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Scatter(ps, g)
	}
}

func BenchmarkScatterParallel(b *testing.B) {
	g, ps := benchScene(b, 32)
	pool := parallel.NewPool(0)
	defer pool.Stop()
	tr := NewTransfer(WeightShared, pool)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Scatter(ps, g)
	}
}

func BenchmarkSampleVelocity(b *testing.B) {
	g, ps := benchScene(b, 32)
	NewTransfer(WeightPerAxis, nil).Scatter(ps, g)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SampleVelocity(g, ps.Items[i%ps.Len()].Position)
	}
}
