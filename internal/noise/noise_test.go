package noise

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestSimpleSources(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want float64
	}{
		{"zero", Zero{}, 0},
		{"constant", Constant(0.25), 0.25},
		{"func", Func(func() float64 { return -1.5 }), -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				if got := tt.src.Next(); got != tt.want {
					t.Errorf("Next() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestOUDeterministic(t *testing.T) {
	a := NewOU(DefaultMu, DefaultTheta, DefaultSigma, 0.01, rand.NewPCG(1, 2))
	b := NewOU(DefaultMu, DefaultTheta, DefaultSigma, 0.01, rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("step %d: %v != %v with identical seeds", i, x, y)
		}
	}
}

func TestOUWithoutDiffusionDecaysToMean(t *testing.T) {
	o := NewOU(1.0, 0.5, 0, 0.1, rand.NewPCG(1, 1))
	for i := 0; i < 1000; i++ {
		o.Next()
	}
	if math.Abs(o.Value()-1.0) > 1e-6 {
		t.Errorf("expected process to settle at mu=1, got %f", o.Value())
	}

	o.Reset()
	if o.Value() != 0 {
		t.Errorf("Reset left state at %f", o.Value())
	}
}

func TestOUStationaryVariance(t *testing.T) {
	// Stationary variance of the OU process is σ²/(2θ).
	theta, sigma, dt := 1.0, 0.5, 0.01
	o := NewOU(0, theta, sigma, dt, rand.NewPCG(42, 7))
	for i := 0; i < 1000; i++ {
		o.Next()
	}

	n := 200000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		x := o.Next()
		sum += x
		sumSq += x * x
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	want := sigma * sigma / (2 * theta)
	if math.Abs(variance-want)/want > 0.2 {
		t.Errorf("variance = %f, want ~%f", variance, want)
	}
}

func TestOUFactoryBuildsFreshProcesses(t *testing.T) {
	factory := OUFactory(0, 0, 1, rand.NewPCG(3, 4))
	a := factory(0.01).(*OU)
	a.Next()
	b := factory(0.02).(*OU)
	if b.Value() != 0 {
		t.Errorf("new process starts at %f, want 0", b.Value())
	}
	if b.Dt != 0.02 {
		t.Errorf("dt = %f, want 0.02", b.Dt)
	}
}
