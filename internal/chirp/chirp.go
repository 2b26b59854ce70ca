// Package chirp builds the reference up-chirp and down-chirp templates
// used as matched filters by the dechirper.
package chirp

import (
	"math"
	"math/cmplx"
)

// Table holds the reference chirp pair for one spreading-factor/bandwidth
// configuration. Built once at construction and read-only thereafter.
type Table struct {
	Up   []complex128
	Down []complex128
}

// Build generates the up-chirp and down-chirp templates of length sn for the
// given spreading factor, bandwidth and sample rate.
//
// The phase follows the closed form phase(i) = (pi/fsr) * (i - i^2/n), with
// n = sn and fsr = fs/bw. Numerical integration is deliberately avoided: it
// accumulates drift over the symbol and is a known bug class in chirp
// generators of this shape.
func Build(sn int, bw, fs uint32) Table {
	fsr := float64(fs) / float64(bw)
	n := float64(sn)

	up := make([]complex128, sn)
	down := make([]complex128, sn)
	for i := 0; i < sn; i++ {
		x := float64(i)
		phase := (math.Pi / fsr) * (x - x*x/n)
		up[i] = cmplx.Exp(complex(0, phase))
		down[i] = cmplx.Conj(up[i])
	}
	return Table{Up: up, Down: down}
}
