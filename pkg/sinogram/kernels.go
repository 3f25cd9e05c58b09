// Package sinogram computes exact parallel-beam sinograms of parametric 3D
// solids. Every solid kind has a closed-form projection kernel; the builder
// composes kernels slice by slice into a dense (slice, angle, detector)
// volume.
package sinogram

import (
	"fmt"
	"math"

	"tomosynth/internal/models"
	"tomosynth/pkg/geometry"
	"tomosynth/pkg/phantom"
)

// Eps guards divisions and sqrt/log domains in the kernels. Values this
// close to a singular configuration contribute zero rather than NaN.
const Eps = 1e-9

// gaussC1 is the exponent constant -4*ln2 giving the gaussian a
// half-maximum at its semi-axis.
var gaussC1 = -4.0 * math.Ln2

// projector adds one object's analytic projection for a single slice into
// the output volume. Implementations are pure: the same (slice, angle,
// detector) cell is written exactly once per call, so distinct slices may
// run on distinct workers.
type projector interface {
	projectSlice(vol *models.Volume, k int)
}

// objectGeometry bundles the coordinate grids and the centring-adjusted
// object parameters shared by all kernels.
type objectGeometry struct {
	n      int
	hx     float64
	x      []float64 // object-space sample positions
	p      []float64 // detector offsets
	angles []float64 // projection angles in radians

	obj       phantom.Object
	centering geometry.Centering

	xc, yc float64 // centring-adjusted centre
	phi    float64 // in-plane rotation in radians

	zdel []float64 // x[k] - z0 per slice
	zs   []float64 // scaled squared z-profile per slice
}

func newObjectGeometry(obj phantom.Object, n int, x []float64, hx float64, p, angles []float64, cen geometry.Centering) *objectGeometry {
	g := &objectGeometry{
		n:         n,
		hx:        hx,
		x:         x,
		p:         p,
		angles:    angles,
		obj:       obj,
		centering: cen,
		phi:       obj.Phi1 * math.Pi / 180.0,
	}
	off := geometry.CenterOffset(cen, hx)
	g.xc = obj.X0 + off
	g.yc = obj.Y0 + off

	// The parabola (lambda=1) has a steeper z-profile: its inverse squared
	// c-axis is quadrupled.
	czInv := 1.0 / (obj.C * obj.C)
	if obj.Kind == phantom.KindParabola {
		czInv *= 4.0
	}
	g.zdel = make([]float64, n)
	g.zs = make([]float64, n)
	for k := 0; k < n; k++ {
		g.zdel[k] = x[k] - obj.Z0
		g.zs[k] = czInv * g.zdel[k] * g.zdel[k]
	}
	return g
}

// newProjector returns the kernel matching the object kind.
func newProjector(obj phantom.Object, n int, x []float64, hx float64, p, angles []float64, cen geometry.Centering) (projector, error) {
	g := newObjectGeometry(obj, n, x, hx, p, angles, cen)
	switch obj.Kind {
	case phantom.KindGaussian:
		return gaussian{g}, nil
	case phantom.KindParabolaHalf:
		return parabolaHalf{g}, nil
	case phantom.KindDisk:
		return disk{g}, nil
	case phantom.KindParabola:
		return parabola{g}, nil
	case phantom.KindCone:
		return cone{g}, nil
	case phantom.KindRectangle:
		return rectangle{g}, nil
	}
	return nil, fmt.Errorf("no projection kernel for object kind %v", obj.Kind)
}

// shrink returns the in-slice semi-axes and intensity of a slice-bounded
// solid, scaled by (1-zs)^2, and whether the slice intersects the solid at
// all. A fully collapsed slice (shrink below Eps) reports false so callers
// skip it instead of dividing by zero.
func (g *objectGeometry) shrink(k int) (a1, b1, c00 float64, ok bool) {
	zs := g.zs[k]
	if zs > 1 {
		return 0, 0, 0, false
	}
	f := (1.0 - zs) * (1.0 - zs)
	if f <= Eps {
		return 0, 0, 0, false
	}
	return g.obj.A * f, g.obj.B * f, g.obj.Intensity * f, true
}

// gaussian is a volumetric gaussian blob. Its support is unbounded along
// z, so every slice contributes.
type gaussian struct{ *objectGeometry }

func (g gaussian) projectSlice(vol *models.Volume, k int) {
	a2 := g.obj.A * g.obj.A
	b2 := g.obj.B * g.obj.B
	amp := (float64(g.n) / 2.0) * (g.obj.Intensity * g.obj.A * g.obj.B / 2.0) * math.Sqrt(math.Pi/math.Ln2)
	for i, th := range g.angles {
		sin := math.Sin(th + g.phi)
		cos := math.Cos(th + g.phi)
		delta := 1.0 / (a2*cos*cos + b2*sin*sin)
		lead := amp * math.Sqrt(delta)
		p0 := -g.xc*math.Cos(th) + g.yc*math.Sin(th)
		for j, p := range g.p {
			d := p - p0
			vol.Add(k, i, j, lead*math.Exp(gaussC1*d*d*delta))
		}
	}
}

// parabolaHalf is a parabolic-density blob with lambda = 1/2.
type parabolaHalf struct{ *objectGeometry }

func (q parabolaHalf) projectSlice(vol *models.Volume, k int) {
	a1, b1, c00, ok := q.shrink(k)
	if !ok {
		return
	}
	amp := (float64(q.n) / 2.0) * (math.Pi / 2.0) * c00 * math.Sqrt(a1) * math.Sqrt(b1)
	for i, th := range q.angles {
		sin := math.Sin(th + q.phi)
		cos := math.Cos(th + q.phi)
		delta := 1.0 / (a1*cos*cos + b1*sin*sin)
		lead := amp * math.Sqrt(delta)
		p0 := -q.xc*math.Cos(th) + q.yc*math.Sin(th)
		for j, p := range q.p {
			d := p - p0
			u := d * d * delta
			if u < 1.0 {
				vol.Add(k, i, j, lead*(1.0-u))
			}
		}
	}
}

// disk is a uniform-density elliptical disk; its exact projection is a
// semicircle profile. The in-slice axes do not shrink with z.
type disk struct{ *objectGeometry }

func (d disk) projectSlice(vol *models.Volume, k int) {
	if d.zs[k] > 1 {
		return
	}
	a2 := d.obj.A * d.obj.A
	b2 := d.obj.B * d.obj.B
	amp := float64(d.n) * d.obj.Intensity * d.obj.A * d.obj.B
	for i, th := range d.angles {
		sin := math.Sin(th + d.phi)
		cos := math.Cos(th + d.phi)
		delta := 1.0 / (a2*cos*cos + b2*sin*sin)
		lead := amp * math.Sqrt(delta)
		p0 := -d.xc*math.Cos(th) + d.yc*math.Sin(th)
		for j, p := range d.p {
			dd := p - p0
			u := dd * dd * delta
			if u < 1.0 {
				vol.Add(k, i, j, lead*math.Sqrt(1.0-u))
			}
		}
	}
}

// parabola is a parabolic-density blob with lambda = 1. Same functional
// form as lambda = 1/2 but with a quartered projection width and its own
// normalization.
type parabola struct{ *objectGeometry }

func (q parabola) projectSlice(vol *models.Volume, k int) {
	a1, b1, c00, ok := q.shrink(k)
	if !ok {
		return
	}
	amp := (float64(q.n) / 2.0) * 4.0 * (0.25 * math.Sqrt(a1) * math.Sqrt(b1) * c00 / 2.5)
	for i, th := range q.angles {
		sin := math.Sin(th + q.phi)
		cos := math.Cos(th + q.phi)
		delta := 1.0 / (0.25*a1*cos*cos + 0.25*b1*sin*sin)
		lead := amp * math.Sqrt(delta)
		p0 := -q.xc*math.Cos(th) + q.yc*math.Sin(th)
		for j, p := range q.p {
			d := p - p0
			u := d * d * delta
			if u < 1.0 {
				vol.Add(k, i, j, lead*(1.0-u))
			}
		}
	}
}

// cone evaluates the cone projection pbar - u/2*ln((1+pbar)/(1-pbar)).
// The logarithm is only taken when its argument is strictly positive and u
// is safely away from both 0 and 1; all other cases fall back to zero
// terms.
type cone struct{ *objectGeometry }

func (c cone) projectSlice(vol *models.Volume, k int) {
	a1, b1, c00, ok := c.shrink(k)
	if !ok {
		return
	}
	amp := (float64(c.n) / 2.0) * math.Sqrt(a1) * math.Sqrt(b1) * c00
	for i, th := range c.angles {
		sin := math.Sin(th + c.phi)
		cos := math.Cos(th + c.phi)
		delta := 1.0 / (a1*cos*cos + b1*sin*sin)
		lead := amp * math.Sqrt(delta)
		p0 := -c.xc*math.Cos(th) + c.yc*math.Sin(th)
		for j, p := range c.p {
			d := p - p0
			u := d * d * delta

			pbar := 0.0
			if u < 1.0-Eps {
				pbar = math.Sqrt(math.Abs(1.0 - u))
			}
			rlog := 0.0
			if u > Eps && pbar != 1.0 {
				ratio := (1.0 + pbar) / (1.0 - pbar)
				if ratio > 0 {
					rlog = 0.5 * u * math.Log(ratio)
				}
			}
			if pbar == 0 && rlog == 0 {
				continue
			}
			vol.Add(k, i, j, lead*(pbar-rlog))
		}
	}
}

// rectangle projects a rotated rectangular slab. The contribution of a ray
// is its clipped intersection length with the rectangle, resolved by a
// trigonometric case split in the frame of the rectangle; rays near-parallel
// to an edge take dedicated guarded branches. The angle axis runs reversed
// relative to the other kernels.
type rectangle struct{ *objectGeometry }

func (r rectangle) projectSlice(vol *models.Volume, k int) {
	if math.Abs(r.zdel[k]) >= 0.5*r.obj.C {
		return
	}

	// Centre of the rectangle in the doubled, swapped frame the chord
	// formula works in. The centring shift differs from the other kernels.
	var x11, y11 float64
	if r.centering == geometry.CenteringRadon {
		x11 = -2.0*r.obj.Y0 - r.hx
		y11 = 2.0*r.obj.X0 + r.hx
	} else {
		x11 = -2.0*r.obj.Y0 - 0.5*r.hx
		y11 = 2.0*r.obj.X0 + 0.5*r.hx
	}

	xwid := r.obj.B
	ywid := r.obj.A
	ksi1 := r.phi
	if ksi1 < 0 {
		ksi1 += math.Pi
	}

	scale := float64(r.n) / 2.0 * r.obj.Intensity
	last := len(r.angles) - 1
	for i := range r.angles {
		ksi := r.angles[last-i]
		for j, p00 := range r.p {
			chord := rectChord(p00, ksi, ksi1, x11, y11, xwid, ywid)
			if chord != 0 {
				vol.Add(k, i, j, scale*chord)
			}
		}
	}
}

// rectChord returns the intersection length of the ray at offset p00 and
// angle ksi with the rectangle of half-widths xwid/2, ywid/2 centred at
// (x11, y11) and rotated by ksi1.
func rectChord(p00, ksi, ksi1, x11, y11, xwid, ywid float64) float64 {
	p := p00
	if ksi > math.Pi {
		ksi -= math.Pi
		p = -p00
	}

	c := math.Cos(ksi)
	s := math.Sin(ksi)
	xsyc := -x11*s + y11*c
	a2 := 0.5 * xwid
	b2 := 0.5 * ywid

	fi := ksi - ksi1
	if fi < 0 {
		fi += math.Pi
	}
	if fi > 0.5*math.Pi {
		fi = math.Pi - fi
	}
	cf := math.Cos(fi)
	sf := math.Sin(fi)
	pd := math.Abs(p - xsyc)

	// Ray runs along one of the edges: the chord is a full side length or
	// nothing, and the general formula below would divide by zero.
	if math.Abs(cf) <= Eps {
		if pd-a2 > Eps {
			return 0
		}
		return ywid
	}
	if math.Abs(sf) <= Eps {
		if pd-b2 > Eps {
			return 0
		}
		return xwid
	}

	tf := sf / cf
	pc := pd / cf
	qp := b2 + a2*tf
	if pc >= qp {
		return 0
	}
	if qp+pc > ywid {
		if pd+b2*cf > a2*sf {
			return (qp - pc) / sf
		}
		return ywid / sf
	}
	return xwid / cf
}
