package lora

import (
	"math"
	"sync/atomic"

	"github.com/kazawai/lorasniff/internal/chirp"
)

// totalDetections is the process-wide detection counter, written only from
// inside Step and read through TotalDetections (status requests, detection
// broadcasts, and the shutdown log); it carries no cross-instance ordering
// guarantee.
var totalDetections uint64

// TotalDetections returns the number of frames detected by every Detector
// in this process since startup.
func TotalDetections() uint64 {
	return atomic.LoadUint64(&totalDetections)
}

// Detector drives the four-state preamble/SFD recognition process over a
// stream of sn-sample windows, per Step call.
type Detector struct {
	cfg     *Config
	table   chirp.Table
	dechirp *Dechirper

	history *PeakHistory
	state   State

	sfdRecoveryCount int
	cfoEstimate      float64
	lastPeakBin      int
	lastPeakMag      float64

	onStateChange func(from, to State)
}

// Option configures a Detector at construction.
type Option func(*Detector)

// WithStateChangeCallback registers a callback invoked whenever Step
// transitions the detector to a new state.
func WithStateChangeCallback(fn func(from, to State)) Option {
	return func(d *Detector) { d.onStateChange = fn }
}

// NewDetector builds a Detector for cfg: generates the reference chirp
// pair once and allocates the Dechirper's reusable scratch buffers.
func NewDetector(cfg *Config, opts ...Option) *Detector {
	table := chirp.Build(cfg.SN, cfg.BW, cfg.FS)
	d := &Detector{
		cfg:     cfg,
		table:   table,
		dechirp: NewDechirper(table, cfg),
		history: NewPeakHistory(minPreambleChirps),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the detector's current state.
func (d *Detector) State() State { return d.state }

// CFOEstimate returns the most recent coarse carrier frequency offset
// estimate in Hz, populated in StateCFOAlign.
func (d *Detector) CFOEstimate() float64 { return d.cfoEstimate }

// LastPeak returns the most recent dechirp peak bin and magnitude,
// diagnostic only.
func (d *Detector) LastPeak() (bin int, mag float64) { return d.lastPeakBin, d.lastPeakMag }

func (d *Detector) setState(next State) {
	if d.onStateChange != nil && next != d.state {
		d.onStateChange(d.state, next)
	}
	d.state = next
}

// mod_nonneg: a non-negative representative of a mod n, first-class here
// because Go's % keeps the sign of its left operand and every bin-distance
// computation needs the Python-style non-negative remainder instead.
func modNonneg(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// isConsistent applies the preamble-consistency predicate: the newest
// entry (index 0) must lie within maxDistance bins, with wraparound
// tolerance on both sides of bin zero, of every other entry currently
// held. All entries must pass, compared against the newest, not
// pairwise and not incrementally.
func (d *Detector) isConsistent() bool {
	bins := make([]int, d.history.Len())
	for i := range bins {
		bins[i] = d.history.At(i)
	}
	return consistentAgainstNewest(bins, d.cfg.BinSize)
}

// consistentAgainstNewest is the wrap-tolerant consistency predicate
// itself, factored out so it can be exercised directly against arbitrary
// bin sequences and bin sizes.
func consistentAgainstNewest(bins []int, binSize int) bool {
	newest := bins[0]
	for i := 1; i < len(bins); i++ {
		dist := modNonneg(newest-bins[i], binSize)
		if dist > maxDistance && dist < binSize-maxDistance {
			return false
		}
	}
	return true
}

// Step feeds one runtime call's worth of available input through the
// state machine. samples must hold at least cfg.HistoryLength() contiguous
// complex samples, presented from the oldest retained sample: the current
// window is samples[12*cfg.SN : 13*cfg.SN], and everything before it is
// the retrospective history used for frame extraction and CFO estimation.
// output must be sized to a multiple of cfg.FrameLength().
//
// If cfg.Method is MethodDiagnostic, Step bypasses the state machine
// entirely and writes the dechirped (not raw) window to output on every
// call, consuming exactly one symbol each time: a debug passthrough with
// no bearing on preamble/SFD detection, matching the original block's
// unconditional debug branch. If cfg.Method is MethodAmplitude, Step
// consumes one symbol per call and never produces output or reaches the
// detected/export/metrics paths: an unimplemented diagnostic stub, not a
// production detection method.
//
// Returns the number of input samples consumed and output samples
// produced. Each call performs at most three FFTs of size cfg.FFTSize (two
// in StateSFDSearch, three in StateCFOAlign) and never blocks.
func (d *Detector) Step(samples, output []complex64) (consumed, produced int) {
	if len(samples) < d.cfg.HistoryLength() {
		return 0, 0
	}
	sn := d.cfg.SN
	// The current window sits at a fixed offset from the start of the
	// presented history, not from its end: a runtime may legally present
	// more than HistoryLength() samples, and the window position must
	// not drift with however much extra lookahead it hands over.
	windowStart := (demodHistory - 1) * sn
	window := samples[windowStart : windowStart+sn]

	switch d.cfg.Method {
	case MethodDiagnostic:
		d.dechirp.passthrough(window, output)
		return sn, sn
	case MethodAmplitude:
		return sn, 0
	}

	switch d.state {
	case StateIdle:
		d.history.Clear()
		d.sfdRecoveryCount = 0
		d.setState(StateBuffering)
		return 0, 0

	case StateBuffering:
		bin, mag := d.dechirp.Dechirp(window, Up)
		d.lastPeakBin, d.lastPeakMag = bin, mag
		d.history.Push(bin)

		if d.history.Len() < minPreambleChirps {
			return sn, 0
		}
		if !d.isConsistent() {
			return sn, 0
		}
		consumed = sn - 2*d.history.At(0)/10
		d.setState(StateSFDSearch)
		return consumed, 0

	case StateSFDSearch:
		d.sfdRecoveryCount++
		if d.sfdRecoveryCount > sfdRecoveryBound {
			d.setState(StateIdle)
			return 0, 0
		}
		_, upMag := d.dechirp.Dechirp(window, Up)
		_, downMag := d.dechirp.Dechirp(window, Down)
		if upMag >= downMag {
			return sn, 0
		}
		consumed = int(math.Ceil(1.25 * float64(sn)))
		d.setState(StateCFOAlign)
		return consumed, 0

	case StateCFOAlign:
		return d.stepCFOAlign(samples, window, output)
	}

	return 0, 0
}

func (d *Detector) stepCFOAlign(samples, window, output []complex64) (consumed, produced int) {
	sn := d.cfg.SN
	binSize := d.cfg.BinSize
	bw := float64(d.cfg.BW)

	pkdIdx, pkdMag := d.dechirp.Dechirp(window, Down)

	var timeOffset int
	if pkdIdx > binSize/2 {
		timeOffset = roundDiv10(pkdIdx - 1 - binSize)
	} else {
		timeOffset = roundDiv10(pkdIdx - 1)
	}
	// Saturate: a fine time offset outside one symbol means the
	// arithmetic overflowed its useful range; clamp rather than
	// propagate, per the overflow-handling contract.
	if timeOffset < -sn || timeOffset > sn {
		timeOffset = 0
	}

	windowStart := (demodHistory - 1) * sn
	histOffset := windowStart - 4*sn + timeOffset
	if histOffset >= 0 && histOffset+sn <= len(samples) {
		pkuIdx, _ := d.dechirp.Dechirp(samples[histOffset:histOffset+sn], Up)
		if pkuIdx > binSize/2 {
			d.cfoEstimate = float64(pkuIdx-1-binSize) * bw / float64(binSize)
		} else {
			d.cfoEstimate = float64(pkuIdx-1) * bw / float64(binSize)
		}
	} else {
		d.cfoEstimate = 0
	}

	_, candUpMag := d.dechirp.Dechirp(window, Up)
	if candUpMag > pkdMag {
		consumed = timeOffset + roundFloat(2.25*float64(sn))
	} else {
		consumed = timeOffset + roundFloat(1.25*float64(sn))
	}

	atomic.AddUint64(&totalDetections, 1)
	frameLen := d.cfg.FrameLength()
	// The aligned frame origin is time_offset, not sample zero: the
	// coarse state-machine consumption lands samples[0] only approximately
	// at the true preamble start, and time_offset is exactly the residual
	// fine correction computed above to close that gap.
	origin := timeOffset
	if origin < 0 {
		origin = 0
	}
	if origin+frameLen > len(samples) {
		origin = len(samples) - frameLen
	}
	copy(output, samples[origin:origin+frameLen])
	produced = frameLen

	d.setState(StateIdle)
	return consumed, produced
}

func roundDiv10(x int) int {
	return int(math.Round(float64(x) / 10))
}

func roundFloat(x float64) int {
	return int(math.Round(x))
}
