// Package lora implements the preamble/SFD front-end detector: the
// Dechirper, PeakHistory, and the Detector state machine that drives them.
package lora

import "fmt"

// Method selects the detection algorithm a Detector runs.
type Method int

const (
	// MethodAmplitude is a diagnostic amplitude-threshold stub, never
	// wired to the detected message port or frame-export path.
	MethodAmplitude Method = 0
	// MethodChirp is the full preamble/SFD chirp detector.
	MethodChirp Method = 1
	// MethodDiagnostic passes the dechirped (not raw) window straight to
	// output every call, unconditionally. Non-production.
	MethodDiagnostic Method = 2
)

func (m Method) String() string {
	switch m {
	case MethodAmplitude:
		return "amplitude"
	case MethodChirp:
		return "chirp"
	case MethodDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

const (
	minPreambleChirps = 6
	maxDistance       = 10
	sfdRecoveryBound  = 5
	// demodHistory is the minimum number of sn-sized windows a caller
	// must keep contiguous for Step: twelve windows of history plus the
	// current one.
	demodHistory = 13
)

// Config holds the detector's construction parameters plus every size
// derived from them. Built once at construction and read-only thereafter.
type Config struct {
	Threshold float32
	SF        uint8
	BW        uint32
	Method    Method

	SPS     int    // chips per symbol, 2^sf
	SN      int    // samples per symbol, 2*sps
	FS      uint32 // sample rate, 2*bw
	FFTSize int    // dechirp FFT length, 10*sn
	BinSize int    // folded bin count, 10*sps == fft_size/2
}

// NewConfig validates sf and method, derives every dependent sample count,
// and returns an immutable Config. Out-of-range parameters are a fatal
// construction error, never a runtime one.
func NewConfig(threshold float32, sf uint8, bw uint32, method Method) (*Config, error) {
	if sf < 6 || sf > 12 {
		return nil, fmt.Errorf("lora: spreading factor %d out of range [6,12]", sf)
	}
	switch method {
	case MethodAmplitude, MethodChirp, MethodDiagnostic:
	default:
		return nil, fmt.Errorf("lora: unknown method %d", method)
	}
	if bw == 0 {
		return nil, fmt.Errorf("lora: bandwidth must be non-zero")
	}

	sps := 1 << sf
	sn := 2 * sps
	fs := 2 * bw
	fftSize := 10 * sn
	binSize := 10 * sps

	return &Config{
		Threshold: threshold,
		SF:        sf,
		BW:        bw,
		Method:    method,
		SPS:       sps,
		SN:        sn,
		FS:        fs,
		FFTSize:   fftSize,
		BinSize:   binSize,
	}, nil
}

// FrameLength is the fixed (preamble_chirps + SFD_chirps) * sn window
// copied to output on a detection.
func (c *Config) FrameLength() int { return 13 * c.SN }

// HistoryLength is the minimum number of contiguous input samples Step
// needs per call.
func (c *Config) HistoryLength() int { return demodHistory * c.SN }
