package sinogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomosynth/pkg/geometry"
	"tomosynth/pkg/phantom"
)

func TestBuildModelAccumulationCommutes(t *testing.T) {
	objA := phantom.Object{Kind: phantom.KindGaussian, Intensity: 1.0, X0: 0.2, A: 0.3, B: 0.4, C: 0.3}
	objB := phantom.Object{Kind: phantom.KindDisk, Intensity: 0.5, Y0: -0.1, A: 0.5, B: 0.5, C: 0.6}

	b := NewBuilder(16, 21, []float64{0, 45, 90, 135}, geometry.CenteringAstra)
	volAB, err := b.BuildModel(&phantom.Model{Objects: []phantom.Object{objA, objB}})
	require.NoError(t, err)
	volBA, err := b.BuildModel(&phantom.Model{Objects: []phantom.Object{objB, objA}})
	require.NoError(t, err)

	for i := range volAB.Data {
		assert.InDelta(t, volAB.Data[i], volBA.Data[i], 1e-12,
			"cell %d differs between object orders", i)
	}
}

func TestBuildModelSequentialMatchesParallel(t *testing.T) {
	model := &phantom.Model{Objects: []phantom.Object{
		{Kind: phantom.KindCone, Intensity: 1.0, A: 0.4, B: 0.3, C: 0.5, Phi1: 20},
		{Kind: phantom.KindRectangle, Intensity: 0.7, X0: 0.1, A: 0.3, B: 0.5, C: 0.6},
	}}

	seq := NewBuilder(24, 31, []float64{0, 30, 60, 90}, geometry.CenteringAstra)
	seq.Workers = 1
	par := NewBuilder(24, 31, []float64{0, 30, 60, 90}, geometry.CenteringAstra)
	par.Workers = 8

	volSeq, err := seq.BuildModel(model)
	require.NoError(t, err)
	volPar, err := par.BuildModel(model)
	require.NoError(t, err)

	// Slices are disjoint slabs, so worker count must not change the
	// result at all.
	assert.Equal(t, volSeq.Data, volPar.Data)
}

func TestBuildModelSkipsUnknownKind(t *testing.T) {
	model := &phantom.Model{Objects: []phantom.Object{
		{Kind: phantom.KindUnknown, Intensity: 1.0, A: 0.5, B: 0.5, C: 0.5},
		{Kind: phantom.KindDisk, Intensity: 1.0, A: 0.5, B: 0.5, C: 0.5},
	}}

	b := NewBuilder(8, 11, []float64{0}, geometry.CenteringAstra)
	vol, err := b.BuildModel(model)
	require.NoError(t, err, "unknown kinds must be skipped, not fatal")

	// Only the disk contributed.
	var sum float64
	for _, v := range vol.Data {
		sum += v
	}
	assert.Greater(t, sum, 0.0)
}

func TestBuildModelSkipsDegenerateObject(t *testing.T) {
	model := &phantom.Model{Objects: []phantom.Object{
		{Kind: phantom.KindGaussian, Intensity: 1.0, A: 0, B: 0.5, C: 0.5},
	}}

	b := NewBuilder(8, 11, []float64{0}, geometry.CenteringAstra)
	vol, err := b.BuildModel(model)
	require.NoError(t, err)

	for i, v := range vol.Data {
		assert.Zerof(t, v, "cell %d: zero-axis object must contribute nothing", i)
	}
}

func TestBuildModelRejectsEmptyAngles(t *testing.T) {
	b := NewBuilder(8, 11, nil, geometry.CenteringAstra)
	_, err := b.BuildModel(&phantom.Model{})
	assert.Error(t, err)
}

func TestBuildModelProgressCoversAllSlices(t *testing.T) {
	model := &phantom.Model{Objects: []phantom.Object{
		{Kind: phantom.KindDisk, Intensity: 1.0, A: 0.5, B: 0.5, C: 0.5},
		{Kind: phantom.KindGaussian, Intensity: 1.0, A: 0.5, B: 0.5, C: 0.5},
	}}

	b := NewBuilder(8, 11, []float64{0, 90}, geometry.CenteringAstra)
	var last, calls int
	b.Progress = func(done, total int) {
		last = done
		calls++
		assert.Equal(t, 16, total)
	}
	_, err := b.BuildModel(model)
	require.NoError(t, err)
	assert.Equal(t, 16, last)
	assert.Equal(t, 16, calls)
}

func TestCenteringShiftsProjection(t *testing.T) {
	obj := phantom.Object{Kind: phantom.KindGaussian, Intensity: 1.0, A: 0.4, B: 0.4, C: 0.4}
	model := &phantom.Model{Objects: []phantom.Object{obj}}

	astra := NewBuilder(16, 33, []float64{0}, geometry.CenteringAstra)
	radon := NewBuilder(16, 33, []float64{0}, geometry.CenteringRadon)

	volA, err := astra.BuildModel(model)
	require.NoError(t, err)
	volR, err := radon.BuildModel(model)
	require.NoError(t, err)

	// The conventions differ by half a grid step, so the projections
	// cannot coincide.
	var maxDiff float64
	for i := range volA.Data {
		if d := math.Abs(volA.Data[i] - volR.Data[i]); d > maxDiff {
			maxDiff = d
		}
	}
	assert.Greater(t, maxDiff, 1e-6)
}
