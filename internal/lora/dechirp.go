package lora

import (
	"math"
	"math/cmplx"

	"github.com/kazawai/lorasniff/internal/chirp"
	"github.com/kazawai/lorasniff/internal/dsp"
)

// Direction selects which reference chirp a Dechirper multiplies against.
type Direction int

const (
	// Up dechirps against the downchirp, recovering an up-chirp symbol.
	Up Direction = iota
	// Down dechirps against the upchirp, recovering a down-chirp symbol.
	Down
)

// Dechirper reduces one sn-sample window to a (bin, magnitude) peak
// statistic. All scratch buffers are allocated once at construction and
// reused across calls; a Dechirper is not safe for concurrent use.
type Dechirper struct {
	table chirp.Table
	plan  *dsp.Plan

	fftSize int
	binSize int

	product []complex128
	padded  []complex128
	folded  []float64
}

// NewDechirper builds a Dechirper sized for cfg, sharing the reference
// chirp table with the detector that owns it.
func NewDechirper(table chirp.Table, cfg *Config) *Dechirper {
	return &Dechirper{
		table:   table,
		plan:    dsp.NewPlan(cfg.FFTSize),
		fftSize: cfg.FFTSize,
		binSize: cfg.BinSize,
		product: make([]complex128, cfg.SN),
		padded:  make([]complex128, cfg.FFTSize),
		folded:  make([]float64, cfg.BinSize),
	}
}

func (d *Dechirper) reference(dir Direction) []complex128 {
	if dir == Down {
		return d.table.Up
	}
	return d.table.Down
}

// Dechirp multiplies samples (length sn) by the opposite reference chirp,
// zero-pads the product into the FFT-sized scratch buffer, runs a forward
// FFT, and folds the magnitude spectrum (Coherent Power Addition): the
// upper bin_size bins are added onto the lower bin_size bins, compensating
// for the deterministic two-fold aliasing the 2x oversampling convention
// introduces. Returns the argmax bin in [0, bin_size) and its magnitude.
func (d *Dechirper) Dechirp(samples []complex64, dir Direction) (bin int, mag float64) {
	ref := d.reference(dir)
	for i, s := range samples {
		d.product[i] = complex128(s) * ref[i]
	}

	for i := range d.padded {
		d.padded[i] = 0
	}
	copy(d.padded, d.product)

	spectrum := d.plan.Forward(nil, d.padded)

	upper := spectrum[d.fftSize-d.binSize:]
	for i := 0; i < d.binSize; i++ {
		d.folded[i] = cmplx.Abs(spectrum[i]) + cmplx.Abs(upper[i])
	}

	return argmaxFloat(d.folded)
}

// DechirpFPA is the phase-coherent (Full Phase Addition) variant: instead
// of folding magnitudes, it rotates the lower bin_size bins of the complex
// spectrum by {0, pi/2, pi, 3pi/2} before adding the upper bin_size bins to
// them, and keeps the
// strongest of the four coherent folds. Available for low-SNR
// configurations in place of the baseline CPA fold.
func (d *Dechirper) DechirpFPA(samples []complex64, dir Direction) (bin int, mag float64) {
	ref := d.reference(dir)
	for i, s := range samples {
		d.product[i] = complex128(s) * ref[i]
	}

	for i := range d.padded {
		d.padded[i] = 0
	}
	copy(d.padded, d.product)

	spectrum := d.plan.Forward(nil, d.padded)
	upper := spectrum[d.fftSize-d.binSize:]

	bestBin, bestMag := 0, -1.0
	for phase := 0; phase < 4; phase++ {
		rot := cmplx.Exp(complex(0, float64(phase)*math.Pi/2))
		for i := 0; i < d.binSize; i++ {
			d.folded[i] = cmplx.Abs(spectrum[i]*rot + upper[i])
		}
		b, m := argmaxFloat(d.folded)
		if m > bestMag {
			bestBin, bestMag = b, m
		}
	}
	return bestBin, bestMag
}

// passthrough multiplies samples by the downchirp reference and writes the
// raw product into dst, skipping the FFT and bin-fold steps entirely. Used
// only by MethodDiagnostic, which streams the dechirped signal straight to
// output without ever detecting a peak.
func (d *Dechirper) passthrough(samples, dst []complex64) {
	ref := d.reference(Up)
	for i, s := range samples {
		dst[i] = complex64(complex128(s) * ref[i])
	}
}

func argmaxFloat(x []float64) (idx int, max float64) {
	max = x[0]
	for i, v := range x {
		if v > max {
			max, idx = v, i
		}
	}
	return idx, max
}
