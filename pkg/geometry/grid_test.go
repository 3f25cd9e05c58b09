package geometry

import (
	"math"
	"testing"
)

func TestObjectGrid(t *testing.T) {
	x, h := ObjectGrid(64)

	if len(x) != 64 {
		t.Fatalf("expected 64 samples, got %d", len(x))
	}
	if h != 2.0/64.0 {
		t.Errorf("expected step %f, got %f", 2.0/64.0, h)
	}
	if x[0] != -1.0 {
		t.Errorf("grid must start at -1, got %f", x[0])
	}
	for i := 1; i < len(x); i++ {
		if math.Abs((x[i]-x[i-1])-h) > 1e-15 {
			t.Fatalf("non-uniform step between %d and %d", i-1, i)
		}
	}
	// Right endpoint is one step short of +1.
	if math.Abs(x[63]-(1.0-h)) > 1e-15 {
		t.Errorf("expected last sample %f, got %f", 1.0-h, x[63])
	}
}

func TestDetectorGrid(t *testing.T) {
	p, hp := DetectorGrid(64, 90)

	if len(p) != 90 {
		t.Fatalf("expected 90 bins, got %d", len(p))
	}
	pmax := 90.0 / 65.0
	if math.Abs(p[0]-pmax) > 1e-15 {
		t.Errorf("expected first offset %f, got %f", pmax, p[0])
	}
	if math.Abs(p[89]+pmax) > 1e-12 {
		t.Errorf("expected last offset %f, got %f", -pmax, p[89])
	}
	if hp <= 0 {
		t.Errorf("step must be positive, got %f", hp)
	}
	// The grid is symmetric around zero: mirror bins negate.
	for j := 0; j < 45; j++ {
		if math.Abs(p[j]+p[89-j]) > 1e-12 {
			t.Errorf("bins %d and %d are not mirrored: %f vs %f", j, 89-j, p[j], p[89-j])
		}
	}
}

func TestAnglesRad(t *testing.T) {
	rad := AnglesRad([]float64{0, 90, 180, 270})
	want := []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}
	for i := range rad {
		if math.Abs(rad[i]-want[i]) > 1e-15 {
			t.Errorf("angle %d: got %f, want %f", i, rad[i], want[i])
		}
	}
}

func TestAngleSpan(t *testing.T) {
	deg := AngleSpan(0, 180, 180)
	if len(deg) != 180 {
		t.Fatalf("expected 180 angles, got %d", len(deg))
	}
	if deg[0] != 0 {
		t.Errorf("span must start at 0, got %f", deg[0])
	}
	if deg[179] != 179 {
		t.Errorf("expected last angle 179, got %f", deg[179])
	}
}

func TestCenterOffset(t *testing.T) {
	_, hx := ObjectGrid(64)
	if got := CenterOffset(CenteringAstra, hx); got != 0.5*hx {
		t.Errorf("astra offset: got %f, want %f", got, 0.5*hx)
	}
	if got := CenterOffset(CenteringRadon, hx); got != hx {
		t.Errorf("radon offset: got %f, want %f", got, hx)
	}
}
