// Package dsp provides the forward FFT primitive the dechirper reduces a
// dechirped symbol down to a (bin, magnitude) pair with.
package dsp

import "gonum.org/v1/gonum/dsp/fourier"

// Plan wraps a reusable gonum complex FFT plan for a fixed transform length.
//
// fft_size here is 10*sn = 5*2^(sf+2), which is never a power of two, so a
// radix-2 Cooley-Tukey implementation (see radix2.go) cannot serve it.
// gonum's fourier.CmplxFFT implements a mixed-radix transform that handles
// arbitrary lengths, and factors cleanly for the highly-composite sizes
// this module produces.
type Plan struct {
	fft *fourier.CmplxFFT
	n   int
}

// NewPlan creates an FFT plan for transforms of length n.
func NewPlan(n int) *Plan {
	return &Plan{fft: fourier.NewCmplxFFT(n), n: n}
}

// Len returns the configured transform length.
func (p *Plan) Len() int { return p.n }

// Forward computes the forward DFT of src (length n) into dst, returning
// dst. dst may be nil, in which case a new slice is allocated.
func (p *Plan) Forward(dst, src []complex128) []complex128 {
	return p.fft.Coefficients(dst, src)
}
