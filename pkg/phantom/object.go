// Package phantom defines the parametric solids a synthetic model is built
// from and loads model descriptions from library files.
package phantom

import (
	"fmt"
	"math"
)

// Kind identifies one of the supported analytic solids. The set is closed:
// every kind has a matching closed-form projection kernel in pkg/sinogram.
type Kind int

const (
	// KindUnknown marks an unrecognized object code from a library file.
	KindUnknown Kind = iota

	// KindGaussian is a volumetric gaussian blob with unbounded support.
	KindGaussian

	// KindParabolaHalf is a parabolic-density blob with lambda = 1/2.
	KindParabolaHalf

	// KindDisk is a uniform-density elliptical disk.
	KindDisk

	// KindParabola is a parabolic-density blob with lambda = 1.
	KindParabola

	// KindCone is a cone.
	KindCone

	// KindRectangle is a rectangular slab.
	KindRectangle
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindGaussian:     "gaussian",
	KindParabolaHalf: "parabola1/2",
	KindDisk:         "disk",
	KindParabola:     "parabola",
	KindCone:         "cone",
	KindRectangle:    "rectangle",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindFromCode maps the numeric object codes used by the legacy library
// format (1..6) onto kinds. Unrecognized codes map to KindUnknown; the
// compositor reports and skips them rather than failing the build.
func KindFromCode(code int) Kind {
	if code >= 1 && code <= 6 {
		return Kind(code)
	}
	return KindUnknown
}

// Object is one parametric solid of a model. Records are immutable once
// parsed; the projection kernels consume them read-only.
type Object struct {
	// Kind selects the projection kernel.
	Kind Kind `yaml:"kind"`

	// Intensity is the density amplitude C0.
	Intensity float64 `yaml:"intensity"`

	// X0, Y0, Z0 is the object centre in the [-1,1] object domain.
	X0 float64 `yaml:"x0"`
	Y0 float64 `yaml:"y0"`
	Z0 float64 `yaml:"z0"`

	// A, B, C are the semi-axes (half-widths for the rectangle).
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`

	// Phi1, Phi2, Phi3 are rotation angles in degrees. Only Phi1, the
	// in-plane rotation, participates in a parallel-beam projection.
	Phi1 float64 `yaml:"phi1"`
	Phi2 float64 `yaml:"phi2"`
	Phi3 float64 `yaml:"phi3"`
}

// Validate checks that an object is geometrically usable: strictly positive
// semi-axes, centre inside the object domain and finite intensity. Objects
// failing validation yield no contribution and are reported by the caller.
func (o Object) Validate() error {
	if o.Kind == KindUnknown {
		return fmt.Errorf("unsupported object kind")
	}
	for name, v := range map[string]float64{"a": o.A, "b": o.B, "c": o.C} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("semi-axis %s must be positive and finite, got %v", name, v)
		}
	}
	for name, v := range map[string]float64{"x0": o.X0, "y0": o.Y0, "z0": o.Z0} {
		if math.IsNaN(v) || v < -1 || v > 1 {
			return fmt.Errorf("centre %s must lie in [-1,1], got %v", name, v)
		}
	}
	if math.IsNaN(o.Intensity) || math.IsInf(o.Intensity, 0) {
		return fmt.Errorf("intensity must be finite, got %v", o.Intensity)
	}
	return nil
}

// Model is an ordered list of objects. Their projections sum in list order.
type Model struct {
	// ID is the model number in the library it was loaded from.
	ID int `yaml:"id"`

	// Objects are the components of the model, in file order.
	Objects []Object `yaml:"objects"`
}
