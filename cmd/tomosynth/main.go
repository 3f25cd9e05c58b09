package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"gonum.org/v1/gonum/floats"

	"tomosynth/pkg/config"
	"tomosynth/pkg/deform"
	"tomosynth/pkg/geometry"
	"tomosynth/pkg/metrics"
	"tomosynth/pkg/phantom"
	"tomosynth/pkg/sinogram"
	"tomosynth/pkg/visualization"
)

func main() {
	// Parse command line arguments
	mode := flag.String("mode", "sino", "Operation mode: 'sino' builds an analytic sinogram, 'deform' warps an image")
	configPath := flag.String("config", "", "Optional YAML configuration file")

	// Sinogram flags
	library := flag.String("library", "", "Path to the model library (.dat or .yaml)")
	modelID := flag.Int("model", 1, "Model number within the library")
	size := flag.Int("size", 0, "Object grid size N (output has N slices)")
	detectors := flag.Int("detectors", 0, "Detector bin count P")
	anglesCount := flag.Int("angles", 0, "Number of projection angles")
	anglesStart := flag.Float64("angles-start", 0, "First projection angle in degrees")
	anglesStop := flag.Float64("angles-stop", 180, "Projection angle upper bound in degrees (exclusive)")
	centering := flag.String("centering", "", "Volume centering: 'astra' or 'radon'")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: all CPUs)")
	outDir := flag.String("out", "", "Directory for exported images")
	savePlanes := flag.Bool("save-planes", false, "Export every angle plane of the sinogram")

	// Deformation flags
	imagePath := flag.String("image", "", "Square grayscale image to deform (JPEG or PNG)")
	rfp := flag.Float64("rfp", 0, "Focal-distance proportionality constant")
	deformAngle := flag.Float64("deform-angle", 0, "Deformation angle in degrees")
	inverse := flag.Bool("inverse", false, "Apply the inverse transform instead of the forward one")
	roundTrip := flag.Bool("round-trip", false, "Apply forward then inverse and report reconstruction fidelity")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlagOverrides(cfg, library, size, detectors, anglesCount, anglesStart, anglesStop, centering, workers, outDir, savePlanes, rfp, deformAngle)

	switch *mode {
	case "sino":
		if err := runSinogram(cfg, *modelID); err != nil {
			log.Fatalf("Sinogram build failed: %v", err)
		}
	case "deform":
		if err := runDeform(cfg, *imagePath, *inverse, *roundTrip); err != nil {
			log.Fatalf("Deformation failed: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// applyFlagOverrides lets explicit flags win over the configuration file.
func applyFlagOverrides(cfg *config.Config, library *string, size, detectors, anglesCount *int,
	anglesStart, anglesStop *float64, centering *string, workers *int, outDir *string,
	savePlanes *bool, rfp, deformAngle *float64) {

	if *library != "" {
		cfg.Synthesis.LibraryPath = *library
	}
	if *size > 0 {
		cfg.Synthesis.VolumeSize = *size
	}
	if *detectors > 0 {
		cfg.Synthesis.DetectorCount = *detectors
	}
	if *anglesCount > 0 {
		cfg.Synthesis.AnglesCount = *anglesCount
		cfg.Synthesis.AnglesStart = *anglesStart
		cfg.Synthesis.AnglesStop = *anglesStop
	}
	if *centering != "" {
		cfg.Synthesis.Centering = *centering
	}
	if *workers > 0 {
		cfg.Processing.NumWorkers = *workers
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *savePlanes {
		cfg.Output.SavePlanes = true
	}
	if *rfp != 0 {
		cfg.Deformation.RFP = *rfp
	}
	if *deformAngle != 0 {
		cfg.Deformation.AngleDeg = *deformAngle
	}
}

func parseCentering(s string) (geometry.Centering, error) {
	switch s {
	case "astra", "":
		return geometry.CenteringAstra, nil
	case "radon":
		return geometry.CenteringRadon, nil
	}
	return geometry.CenteringAstra, fmt.Errorf("choose 'radon' or 'astra', got %q", s)
}

func runSinogram(cfg *config.Config, modelID int) error {
	cen, err := parseCentering(cfg.Synthesis.Centering)
	if err != nil {
		return err
	}
	if cfg.Synthesis.LibraryPath == "" {
		return fmt.Errorf("a model library path is required")
	}

	model, err := phantom.LoadModel(cfg.Synthesis.LibraryPath, modelID)
	if err != nil {
		return err
	}
	fmt.Printf("Model %d: %d object(s)\n", model.ID, len(model.Objects))

	angles := geometry.AngleSpan(cfg.Synthesis.AnglesStart, cfg.Synthesis.AnglesStop, cfg.Synthesis.AnglesCount)
	builder := sinogram.NewBuilder(cfg.Synthesis.VolumeSize, cfg.Synthesis.DetectorCount, angles, cen)
	builder.Workers = cfg.Processing.NumWorkers
	builder.SetLogger(config.NamedLogger("sinogram", cfg.Output.Verbose))

	bar := pb.StartNew(len(model.Objects) * cfg.Synthesis.VolumeSize)
	builder.Progress = func(done, total int) { bar.SetCurrent(int64(done)) }

	start := time.Now()
	vol, err := builder.BuildModel(model)
	bar.Finish()
	if err != nil {
		return err
	}
	fmt.Printf("Built %dx%dx%d sinogram in %.2f seconds\n",
		vol.Slices, vol.Angles, vol.Detectors, time.Since(start).Seconds())
	fmt.Printf("Intensity range: [%.6f, %.6f]\n", floats.Min(vol.Data), floats.Max(vol.Data))

	viewer := visualization.NewViewer(vol)
	if cfg.Output.SavePlanes {
		dir := filepath.Join(cfg.Output.Dir, fmt.Sprintf("model_%d", modelID))
		fmt.Printf("Saving angle planes to %s\n", dir)
		return viewer.SavePlaneSequence("angle", dir)
	}
	// Always keep a middle-slice preview around.
	path := filepath.Join(cfg.Output.Dir, fmt.Sprintf("model_%d_slice_%d.jpg", modelID, vol.Slices/2))
	if err := viewer.SavePlane("slice", vol.Slices/2, path); err != nil {
		return err
	}
	fmt.Printf("Preview written to %s\n", path)
	return nil
}

func runDeform(cfg *config.Config, imagePath string, inverse, roundTrip bool) error {
	if imagePath == "" {
		return fmt.Errorf("an input image is required in deform mode")
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	src := visualization.GrayToDense(img)

	mode := deform.Forward
	if inverse && !roundTrip {
		mode = deform.Inverse
	}
	warper := &deform.Warper{
		RFP:      cfg.Deformation.RFP,
		AngleDeg: cfg.Deformation.AngleDeg,
		Mode:     mode,
		Workers:  cfg.Processing.NumWorkers,
	}
	out, err := warper.Apply(src)
	if err != nil {
		return err
	}

	base := filepath.Join(cfg.Output.Dir, strippedName(imagePath))
	if err := visualization.SaveJPEG(visualization.DenseToGray(out), base+"_"+mode.String()+".jpg"); err != nil {
		return err
	}
	fmt.Printf("Deformed image written to %s_%s.jpg\n", base, mode.String())

	if roundTrip {
		warper.Mode = deform.Inverse
		back, err := warper.Apply(out)
		if err != nil {
			return err
		}
		cmp, err := metrics.CompareDense(src, back)
		if err != nil {
			return err
		}
		fmt.Printf("Round-trip fidelity: RMSE %.6f, max abs diff %.6f, correlation %.4f\n",
			cmp.RMSE, cmp.MaxAbsDiff, cmp.Correlation)
		if err := visualization.SaveJPEG(visualization.DenseToGray(back), base+"_roundtrip.jpg"); err != nil {
			return err
		}
	}
	return nil
}

func strippedName(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}
