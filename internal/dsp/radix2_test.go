package dsp

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func TestPlan_MatchesRadix2Oracle(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16, 64, 256, 1024} {
		src := make([]complex128, n)
		rng := rand.New(rand.NewSource(int64(n)))
		for i := range src {
			src[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
		}

		want := radix2FFT(src)
		got := NewPlan(n).Forward(nil, src)

		if len(got) != len(want) {
			t.Fatalf("n=%d: length mismatch got=%d want=%d", n, len(got), len(want))
		}
		for i := range want {
			if cmplx.Abs(got[i]-want[i]) > 1e-6 {
				t.Fatalf("n=%d: bin %d got=%v want=%v", n, i, got[i], want[i])
			}
		}
	}
}

func TestRadix2FFT_ImpulseIsFlat(t *testing.T) {
	n := 32
	src := make([]complex128, n)
	src[0] = 1

	out := radix2FFT(src)
	for i, v := range out {
		if math.Abs(real(v)-1) > 1e-9 || math.Abs(imag(v)) > 1e-9 {
			t.Fatalf("bin %d = %v, want 1+0i", i, v)
		}
	}
}

func TestRadix2FFT_PanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-power-of-two length")
		}
	}()
	radix2FFT(make([]complex128, 6))
}
