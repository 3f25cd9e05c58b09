package sinogram

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"tomosynth/internal/models"
	"tomosynth/pkg/geometry"
	"tomosynth/pkg/phantom"
)

// Builder composes object projections into a sinogram volume. Within one
// object the slice index is the parallel boundary: each worker owns a
// disjoint slab of the output. Across objects accumulation is strictly
// sequential, because every object touches the same cells.
type Builder struct {
	// N is the object grid size; the volume has N slices.
	N int

	// P is the number of detector bins.
	P int

	// AnglesDeg are the projection angles in degrees.
	AnglesDeg []float64

	// Centering selects the object-centre convention.
	Centering geometry.Centering

	// Workers is the number of goroutines used per object. Defaults to
	// the number of CPUs.
	Workers int

	// Progress, when set, is called after each completed slice with the
	// running count over the whole model build.
	Progress func(done, total int)

	log *logrus.Entry
}

// NewBuilder returns a builder with default worker count and logging.
func NewBuilder(n, p int, anglesDeg []float64, cen geometry.Centering) *Builder {
	return &Builder{
		N:         n,
		P:         p,
		AnglesDeg: anglesDeg,
		Centering: cen,
		Workers:   runtime.NumCPU(),
		log:       logrus.WithField("pkg", "sinogram"),
	}
}

// SetLogger redirects the builder's diagnostics.
func (b *Builder) SetLogger(entry *logrus.Entry) {
	b.log = entry
}

// Build loads the requested model from a library file and builds its
// sinogram. This is the top-level convenience entry.
func Build(libraryPath string, modelID, n, p int, anglesDeg []float64, cen geometry.Centering) (*models.Volume, error) {
	model, err := phantom.LoadModel(libraryPath, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %d: %w", modelID, err)
	}
	return NewBuilder(n, p, anglesDeg, cen).BuildModel(model)
}

// BuildModel evaluates every recognized object of the model over the full
// (slice, angle, detector) space and accumulates the contributions in
// order. The build is best-effort: invalid or unsupported objects are
// reported and skipped, never fatal.
func (b *Builder) BuildModel(model *phantom.Model) (*models.Volume, error) {
	if len(b.AnglesDeg) == 0 {
		return nil, fmt.Errorf("angle list must not be empty")
	}
	vol, err := models.NewVolume(b.N, len(b.AnglesDeg), b.P)
	if err != nil {
		return nil, err
	}

	x, hx := geometry.ObjectGrid(b.N)
	p, _ := geometry.DetectorGrid(b.N, b.P)
	angles := geometry.AnglesRad(b.AnglesDeg)

	total := len(model.Objects) * b.N
	done := 0
	for idx, obj := range model.Objects {
		if err := obj.Validate(); err != nil {
			b.log.Warnf("skipping object %d (%v): %v", idx, obj.Kind, err)
			done += b.N
			b.reportProgress(done, total)
			continue
		}
		proj, err := newProjector(obj, b.N, x, hx, p, angles, b.Centering)
		if err != nil {
			b.log.Warnf("skipping object %d: %v", idx, err)
			done += b.N
			b.reportProgress(done, total)
			continue
		}
		b.projectObject(vol, proj, &done, total)
	}
	return vol, nil
}

// projectObject dispatches the slices of one object across the worker
// pool and waits for the full write to complete before returning, keeping
// object accumulation sequential.
func (b *Builder) projectObject(vol *models.Volume, proj projector, done *int, total int) {
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > b.N {
		workers = b.N
	}

	finished := make(chan int, b.N)
	var wg sync.WaitGroup
	slicesPerWorker := (b.N + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * slicesPerWorker
		end := start + slicesPerWorker
		if end > b.N {
			end = b.N
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for k := start; k < end; k++ {
				proj.projectSlice(vol, k)
				finished <- k
			}
		}(start, end)
	}

	go func() {
		wg.Wait()
		close(finished)
	}()
	for range finished {
		*done++
		b.reportProgress(*done, total)
	}
}

func (b *Builder) reportProgress(done, total int) {
	if b.Progress != nil {
		b.Progress(done, total)
	}
}
