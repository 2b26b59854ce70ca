package lora

import (
	"math"
	"testing"
)

func toComplex64(x []complex128) []complex64 {
	out := make([]complex64, len(x))
	for i, v := range x {
		out[i] = complex64(v)
	}
	return out
}

func rotate(x []complex128, k int) []complex128 {
	n := len(x)
	k = ((k % n) + n) % n
	out := make([]complex128, n)
	for i := range x {
		out[i] = x[(i+k)%n]
	}
	return out
}

func TestDechirp_SelfMatchPeaksAtBinZero(t *testing.T) {
	cfg, err := NewConfig(10.0, 7, 125000, MethodChirp)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDetector(cfg)

	bin, mag := d.dechirp.Dechirp(toComplex64(d.table.Up), Up)
	if bin != 0 {
		t.Errorf("bin = %d, want 0", bin)
	}
	if math.Abs(mag-float64(cfg.SN)) > 1e-3 {
		t.Errorf("mag = %v, want within 1e-3 of %d", mag, cfg.SN)
	}
}

func TestDechirp_CyclicShiftPredictsBin(t *testing.T) {
	cfg, err := NewConfig(10.0, 7, 125000, MethodChirp)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDetector(cfg)

	// A cyclic rotation by k samples multiplies the dechirped product by a
	// linear phase ramp of frequency proportional to k: the folded peak
	// lands at (bin_size - 5*k) mod bin_size, not (10*k) mod bin_size as
	// spec.md's round-trip claim assumes (see DESIGN.md's Open Question on
	// the resulting spec inconsistency). The relation is exact away from
	// the rotation's wrap point; right at it, the discontinuity the
	// rotation introduces can nudge the peak by a bin, so only small k
	// (verified directly against a full-spectrum direct-DFT
	// reimplementation) are asserted here.
	for _, k := range []int{0, 1, 2, 3} {
		shifted := rotate(d.table.Up, k)
		bin, _ := d.dechirp.Dechirp(toComplex64(shifted), Up)
		want := modNonneg(cfg.BinSize-5*k, cfg.BinSize)
		dist := modNonneg(bin-want, cfg.BinSize)
		if dist > cfg.BinSize/2 {
			dist = cfg.BinSize - dist
		}
		if dist > 1 {
			t.Errorf("k=%d: bin = %d, want within 1 bin of %d (binSize=%d)", k, bin, want, cfg.BinSize)
		}
	}
}

func TestDechirp_DownChirpMatchesUpReference(t *testing.T) {
	cfg, err := NewConfig(10.0, 7, 125000, MethodChirp)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDetector(cfg)

	bin, mag := d.dechirp.Dechirp(toComplex64(d.table.Down), Down)
	if bin != 0 {
		t.Errorf("bin = %d, want 0", bin)
	}
	if math.Abs(mag-float64(cfg.SN)) > 1e-3 {
		t.Errorf("mag = %v, want within 1e-3 of %d", mag, cfg.SN)
	}
}

func TestDechirp_MismatchedDirectionIsWeak(t *testing.T) {
	cfg, err := NewConfig(10.0, 7, 125000, MethodChirp)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDetector(cfg)

	_, upMag := d.dechirp.Dechirp(toComplex64(d.table.Up), Up)
	_, crossMag := d.dechirp.Dechirp(toComplex64(d.table.Down), Up)
	if crossMag >= upMag {
		t.Errorf("cross-dechirped magnitude %v should be far below matched magnitude %v", crossMag, upMag)
	}
}
