package models

import "fmt"

// Volume is a dense 3-axis sinogram buffer indexed (slice, angle, detector).
// Data is stored in row-major order so that one slice occupies a contiguous
// slab of Angles*Detectors values; slice index is therefore the natural
// boundary for parallel writers.
type Volume struct {
	// Data is the volume data as a 1D array in (slice, angle, detector) order
	Data []float64

	// Slices is the number of cross-sections along the object z-axis
	Slices int

	// Angles is the number of projection angles
	Angles int

	// Detectors is the number of detector bins per projection
	Detectors int
}

// NewVolume allocates a zeroed volume. All dimensions must be positive.
func NewVolume(slices, angles, detectors int) (*Volume, error) {
	if slices <= 0 || angles <= 0 || detectors <= 0 {
		return nil, fmt.Errorf("volume dimensions must be positive, got %dx%dx%d",
			slices, angles, detectors)
	}
	return &Volume{
		Data:      make([]float64, slices*angles*detectors),
		Slices:    slices,
		Angles:    angles,
		Detectors: detectors,
	}, nil
}

// Index returns the flat offset of cell (k, i, j).
func (v *Volume) Index(k, i, j int) int {
	return k*v.Angles*v.Detectors + i*v.Detectors + j
}

// At returns the value at slice k, angle i, detector j.
func (v *Volume) At(k, i, j int) float64 {
	return v.Data[v.Index(k, i, j)]
}

// Add accumulates val into cell (k, i, j). Contributions from separate
// objects must be summed, never overwritten.
func (v *Volume) Add(k, i, j int, val float64) {
	v.Data[v.Index(k, i, j)] += val
}

// SliceData returns the contiguous slab holding slice k. The returned
// slice aliases the volume's backing array.
func (v *Volume) SliceData(k int) []float64 {
	stride := v.Angles * v.Detectors
	return v.Data[k*stride : (k+1)*stride]
}

// Plane extracts a 2D cross-section along the named axis ("slice", "angle"
// or "detector") at the given position. The result is row-major with its
// own explicit dimensions.
func (v *Volume) Plane(axis string, pos int) ([]float64, int, int, error) {
	switch axis {
	case "slice", "z":
		if pos < 0 || pos >= v.Slices {
			return nil, 0, 0, fmt.Errorf("slice position %d out of range [0,%d)", pos, v.Slices)
		}
		out := make([]float64, v.Angles*v.Detectors)
		copy(out, v.SliceData(pos))
		return out, v.Detectors, v.Angles, nil
	case "angle", "y":
		if pos < 0 || pos >= v.Angles {
			return nil, 0, 0, fmt.Errorf("angle position %d out of range [0,%d)", pos, v.Angles)
		}
		out := make([]float64, v.Slices*v.Detectors)
		for k := 0; k < v.Slices; k++ {
			for j := 0; j < v.Detectors; j++ {
				out[k*v.Detectors+j] = v.At(k, pos, j)
			}
		}
		return out, v.Detectors, v.Slices, nil
	case "detector", "x":
		if pos < 0 || pos >= v.Detectors {
			return nil, 0, 0, fmt.Errorf("detector position %d out of range [0,%d)", pos, v.Detectors)
		}
		out := make([]float64, v.Slices*v.Angles)
		for k := 0; k < v.Slices; k++ {
			for i := 0; i < v.Angles; i++ {
				out[k*v.Angles+i] = v.At(k, i, pos)
			}
		}
		return out, v.Angles, v.Slices, nil
	default:
		return nil, 0, 0, fmt.Errorf("unknown axis %q", axis)
	}
}
