package models

import (
	"testing"
)

func TestNewVolumeRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][3]int{{0, 4, 4}, {4, 0, 4}, {4, 4, 0}, {-1, 4, 4}} {
		if _, err := NewVolume(dims[0], dims[1], dims[2]); err == nil {
			t.Errorf("dimensions %v: expected error", dims)
		}
	}
}

func TestVolumeIndexIsBijective(t *testing.T) {
	v, err := NewVolume(3, 4, 5)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[int]bool)
	for k := 0; k < 3; k++ {
		for i := 0; i < 4; i++ {
			for j := 0; j < 5; j++ {
				idx := v.Index(k, i, j)
				if idx < 0 || idx >= len(v.Data) {
					t.Fatalf("index (%d,%d,%d) maps out of range: %d", k, i, j, idx)
				}
				if seen[idx] {
					t.Fatalf("index (%d,%d,%d) collides at %d", k, i, j, idx)
				}
				seen[idx] = true
			}
		}
	}
	if len(seen) != len(v.Data) {
		t.Errorf("iteration space covers %d cells, volume has %d", len(seen), len(v.Data))
	}
}

func TestVolumeAddAccumulates(t *testing.T) {
	v, _ := NewVolume(2, 2, 2)
	v.Add(1, 0, 1, 2.5)
	v.Add(1, 0, 1, 1.5)
	if got := v.At(1, 0, 1); got != 4.0 {
		t.Errorf("expected accumulated 4.0, got %f", got)
	}
}

func TestVolumeSliceDataIsDisjoint(t *testing.T) {
	v, _ := NewVolume(3, 2, 2)
	for k := 0; k < 3; k++ {
		slab := v.SliceData(k)
		for i := range slab {
			slab[i] = float64(k)
		}
	}
	for k := 0; k < 3; k++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				if got := v.At(k, i, j); got != float64(k) {
					t.Errorf("cell (%d,%d,%d) = %f, want %f", k, i, j, got, float64(k))
				}
			}
		}
	}
}

func TestVolumePlane(t *testing.T) {
	v, _ := NewVolume(2, 3, 4)
	for k := 0; k < 2; k++ {
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				v.Add(k, i, j, float64(100*k+10*i+j))
			}
		}
	}

	data, w, h, err := v.Plane("slice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if w != 4 || h != 3 {
		t.Fatalf("slice plane dims %dx%d, want 4x3", w, h)
	}
	if data[1*4+2] != float64(100+10+2) {
		t.Errorf("slice plane cell (1,2) = %f", data[1*4+2])
	}

	data, w, h, err = v.Plane("angle", 2)
	if err != nil {
		t.Fatal(err)
	}
	if w != 4 || h != 2 {
		t.Fatalf("angle plane dims %dx%d, want 4x2", w, h)
	}
	if data[1*4+3] != float64(100+20+3) {
		t.Errorf("angle plane cell (1,3) = %f", data[1*4+3])
	}

	if _, _, _, err := v.Plane("slice", 5); err == nil {
		t.Error("out-of-range position must error")
	}
	if _, _, _, err := v.Plane("bogus", 0); err == nil {
		t.Error("unknown axis must error")
	}
}
