// Package visualization exports sinogram planes and deformed images as
// grayscale JPEG files for quick inspection.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"tomosynth/internal/models"
)

// Viewer renders planes of a sinogram volume.
type Viewer struct {
	vol *models.Volume

	// Scale rescales exported images by an integer factor using bilinear
	// interpolation. 0 or 1 exports at native resolution.
	Scale int
}

// NewViewer creates a viewer over the given volume.
func NewViewer(vol *models.Volume) *Viewer {
	return &Viewer{vol: vol}
}

// ExtractPlane renders a 2D cross-section along the named axis ("slice",
// "angle" or "detector") as an 8-bit grayscale image, normalized to the
// plane's own intensity range.
func (v *Viewer) ExtractPlane(axis string, pos int) (image.Image, error) {
	data, w, h, err := v.vol.Plane(axis, pos)
	if err != nil {
		return nil, err
	}
	img := FloatsToGray(data, w, h)
	if v.Scale > 1 {
		img = rescale(img, w*v.Scale, h*v.Scale)
	}
	return img, nil
}

// SavePlane writes one plane to a JPEG file, creating the directory if
// needed.
func (v *Viewer) SavePlane(axis string, pos int, path string) error {
	img, err := v.ExtractPlane(axis, pos)
	if err != nil {
		return err
	}
	return SaveJPEG(img, path)
}

// SavePlaneSequence writes every plane along the axis into dir, one file
// per position.
func (v *Viewer) SavePlaneSequence(axis, dir string) error {
	var count int
	switch axis {
	case "slice", "z":
		count = v.vol.Slices
	case "angle", "y":
		count = v.vol.Angles
	case "detector", "x":
		count = v.vol.Detectors
	default:
		return fmt.Errorf("unknown axis %q", axis)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for pos := 0; pos < count; pos++ {
		path := filepath.Join(dir, fmt.Sprintf("%s_%04d.jpg", axis, pos))
		if err := v.SavePlane(axis, pos, path); err != nil {
			return fmt.Errorf("failed to save plane %d: %w", pos, err)
		}
	}
	return nil
}

// FloatsToGray converts a row-major float buffer into an 8-bit grayscale
// image, mapping [min, max] onto [0, 255]. A constant buffer maps to black.
func FloatsToGray(data []float64, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	if len(data) == 0 {
		return img
	}
	lo := floats.Min(data)
	hi := floats.Max(data)
	span := hi - lo
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			val := data[y*w+x]
			var g uint8
			if span > 0 {
				g = uint8(255.0 * (val - lo) / span)
			}
			img.SetGray(x, y, color.Gray{Y: g})
		}
	}
	return img
}

// DenseToGray renders a matrix the same way FloatsToGray renders a buffer.
func DenseToGray(m *mat.Dense) *image.Gray {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return FloatsToGray(data, c, r)
}

// GrayToDense converts a single-channel image into a float matrix with
// values in [0, 1].
func GrayToDense(img image.Image) *mat.Dense {
	b := img.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			m.Set(y-b.Min.Y, x-b.Min.X, float64(g.Y)/255.0)
		}
	}
	return m
}

// SaveJPEG writes img to path, creating parent directories as needed.
func SaveJPEG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

func rescale(img *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
