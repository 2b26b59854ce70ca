package lora

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/kazawai/lorasniff/internal/chirp"
)

// SyntheticFrame synthesizes a baseband capture: leadingPadSymbols silent
// sn-sized symbols (so a detector's fixed 12-symbol lookback window starts
// exactly on the first preamble symbol), preambleChirps up-chirps, two
// down-chirp SFD symbols, a gapSymbols-long silent gap, then noiseSamples
// of unit-variance white complex noise (zeros when rng is nil). cfoHz applies a constant carrier
// frequency offset as a linear phase ramp across the whole capture. Used by
// tests and the CLI's -simulate mode to exercise the detector without live
// audio hardware.
func SyntheticFrame(cfg *Config, leadingPadSymbols, preambleChirps int, gapSymbols float64, noiseSamples int, cfoHz float64, rng *rand.Rand) []complex64 {
	table := chirp.Build(cfg.SN, cfg.BW, cfg.FS)
	sn := cfg.SN
	gapLen := int(gapSymbols * float64(sn))

	total := leadingPadSymbols*sn + preambleChirps*sn + 2*sn + gapLen + noiseSamples
	out := make([]complex64, 0, total)

	cfoRad := 2 * math.Pi * cfoHz / float64(cfg.FS)
	phase := 0.0

	appendSymbol := func(symbol []complex128) {
		for _, s := range symbol {
			rotated := s * cmplx.Exp(complex(0, phase))
			out = append(out, complex64(rotated))
			phase += cfoRad
		}
	}

	for i := 0; i < leadingPadSymbols*sn; i++ {
		out = append(out, 0)
		phase += cfoRad
	}
	for i := 0; i < preambleChirps; i++ {
		appendSymbol(table.Up)
	}
	for i := 0; i < 2; i++ {
		appendSymbol(table.Down)
	}
	for i := 0; i < gapLen; i++ {
		out = append(out, 0)
		phase += cfoRad
	}
	if rng != nil {
		for i := 0; i < noiseSamples; i++ {
			out = append(out, complex64(complex(rng.NormFloat64(), rng.NormFloat64())))
		}
	} else {
		out = append(out, make([]complex64, noiseSamples)...)
	}

	return out
}

// NoiseOnly synthesizes n samples of unit-variance white complex noise,
// used to exercise the detector's false-preamble rejection path.
func NoiseOnly(n int, rng *rand.Rand) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		out[i] = complex64(complex(rng.NormFloat64(), rng.NormFloat64()))
	}
	return out
}
