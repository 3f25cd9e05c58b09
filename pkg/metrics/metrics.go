// Package metrics compares equally-shaped numeric buffers, reporting the
// fidelity numbers used to validate deformation round trips and synthetic
// sinograms.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Comparison summarizes the difference between a reference buffer and a
// reconstruction of it.
type Comparison struct {
	// RMSE is the root mean square error between the buffers.
	RMSE float64

	// MaxAbsDiff is the largest absolute per-cell difference.
	MaxAbsDiff float64

	// Correlation is the Pearson correlation coefficient; 1 means the
	// buffers are linearly identical.
	Correlation float64

	// MeanRef and MeanOut are the buffer means.
	MeanRef float64
	MeanOut float64
}

// Compare computes the comparison metrics for two buffers of equal length.
func Compare(ref, out []float64) (Comparison, error) {
	if len(ref) != len(out) {
		return Comparison{}, fmt.Errorf("buffer lengths differ: %d vs %d", len(ref), len(out))
	}
	if len(ref) == 0 {
		return Comparison{}, fmt.Errorf("buffers must not be empty")
	}

	var sumSq, maxAbs float64
	for i := range ref {
		d := ref[i] - out[i]
		sumSq += d * d
		if a := math.Abs(d); a > maxAbs {
			maxAbs = a
		}
	}

	return Comparison{
		RMSE:        math.Sqrt(sumSq / float64(len(ref))),
		MaxAbsDiff:  maxAbs,
		Correlation: stat.Correlation(ref, out, nil),
		MeanRef:     stat.Mean(ref, nil),
		MeanOut:     stat.Mean(out, nil),
	}, nil
}

// CompareDense compares two dense matrices of equal shape.
func CompareDense(ref, out *mat.Dense) (Comparison, error) {
	rr, rc := ref.Dims()
	or, oc := out.Dims()
	if rr != or || rc != oc {
		return Comparison{}, fmt.Errorf("matrix shapes differ: %dx%d vs %dx%d", rr, rc, or, oc)
	}
	return Compare(flatten(ref), flatten(out))
}

func flatten(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}
