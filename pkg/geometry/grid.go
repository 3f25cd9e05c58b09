// Package geometry builds the 1D coordinate grids shared by the sinogram
// and deformation kernels: object-space sample positions, detector-offset
// positions and projection angles.
package geometry

import "math"

// Centering selects the sub-pixel convention for object centres. Different
// downstream consumers place the pixel origin differently, so the effective
// centre of a solid is shifted by a full or half grid step before it enters
// a projection formula.
type Centering int

const (
	// CenteringRadon matches matlab radon/iradon: centres shift by a full
	// grid step.
	CenteringRadon Centering = iota

	// CenteringAstra matches the astra-toolbox parallel-beam convention:
	// centres shift by half a grid step. This is the default.
	CenteringAstra
)

func (c Centering) String() string {
	switch c {
	case CenteringRadon:
		return "radon"
	case CenteringAstra:
		return "astra"
	}
	return "unknown"
}

// ObjectGrid returns the n object-space sample positions on [-1,1) together
// with the grid step: x[i] = -1 + i*h, h = 2/n.
func ObjectGrid(n int) ([]float64, float64) {
	h := 2.0 / float64(n)
	x := make([]float64, n)
	for i := range x {
		x[i] = -1.0 + float64(i)*h
	}
	return x, h
}

// DetectorGrid returns the p detector-offset positions, symmetric around
// zero with half-width pmax = p/(n+1), laid out from +pmax downwards:
// pos[j] = pmax - j*hp.
func DetectorGrid(n, p int) ([]float64, float64) {
	pmax := float64(p) / float64(n+1)
	hp := 2.0 * pmax / float64(p-1)
	pos := make([]float64, p)
	for j := range pos {
		pos[j] = pmax - float64(j)*hp
	}
	return pos, hp
}

// AnglesRad converts a list of projection angles from degrees to radians.
func AnglesRad(deg []float64) []float64 {
	rad := make([]float64, len(deg))
	for i, d := range deg {
		rad[i] = d * math.Pi / 180.0
	}
	return rad
}

// AngleSpan returns count angles evenly spaced over [start, stop) degrees,
// the usual way a projection set is specified.
func AngleSpan(start, stop float64, count int) []float64 {
	deg := make([]float64, count)
	step := (stop - start) / float64(count)
	for i := range deg {
		deg[i] = start + float64(i)*step
	}
	return deg
}

// CenterOffset returns the shift added to an object centre coordinate for
// the given centering convention and object-grid step.
func CenterOffset(c Centering, hx float64) float64 {
	if c == CenteringRadon {
		return hx
	}
	return 0.5 * hx
}
