// Command pixaro-render applies an adjustment state to an image and writes
// the rendered result. It exercises the full engine: quality scaling,
// pipeline rendering through the health controller, and optional local
// depth estimation for lens blur.
package main

import (
	"encoding/json"
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"

	_ "image/jpeg"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/depth"
	"github.com/pixaro/pixaro/health"
	"github.com/pixaro/pixaro/pipeline"
	"github.com/pixaro/pixaro/quality"

	// Enable GPU acceleration; falls back to CPU when unavailable.
	_ "github.com/pixaro/pixaro/gpu"
)

func main() {
	var (
		input   = flag.String("input", "", "input image (png or jpeg)")
		statef  = flag.String("state", "", "adjustment state JSON file (default: neutral)")
		output  = flag.String("output", "out.png", "output file")
		maxDim  = flag.Int("max-dim", quality.DefaultMaxDimension, "preview long-edge cap")
		export  = flag.Bool("export", false, "render at full source resolution")
		tone    = flag.String("tone", "clip", "tone operator: clip, reinhard or aces")
		noGPU   = flag.Bool("no-gpu", false, "force the CPU pipeline")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		pixaro.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if *input == "" {
		log.Fatal("missing -input")
	}

	src, err := loadImage(*input)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *input, err)
	}

	state := pixaro.DefaultState()
	if *statef != "" {
		if err := loadState(*statef, &state); err != nil {
			log.Fatalf("Failed to load state: %v", err)
		}
	}

	mode := quality.ModePreview
	if *export {
		mode = quality.ModeExport
	}
	working := quality.NewManager(*maxDim).Scale(src, mode)

	opts := []pipeline.Option{pipeline.WithToneOperator(toneOperator(*tone))}
	if *noGPU {
		opts = append(opts, pipeline.WithoutAcceleration())
	}
	ctrl := health.NewController(pipeline.New(opts...))
	defer ctrl.Dispose()

	if res := ctrl.Initialize(); !res.Success {
		log.Fatalf("Failed to initialize: %v", res.Err)
	}

	const photoID = "cli"
	if state.LensBlur.Enabled {
		ctrl.SetDepthMap(photoID, estimateDepth(working))
	}

	res := ctrl.Render(working, state, photoID)
	if !res.Success {
		log.Fatalf("Render failed: %v", res.Err)
	}

	if err := savePNG(*output, res.Image); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Rendered %s (%dx%d)\n", *output, res.Image.Width(), res.Image.Height())
}

func toneOperator(name string) pipeline.ToneOperator {
	switch name {
	case "reinhard":
		return pipeline.ToneReinhard
	case "aces":
		return pipeline.ToneACES
	default:
		return pipeline.ToneClip
	}
}

func loadImage(path string) (*pixaro.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return pixaro.FromImage(img), nil
}

func loadState(path string, state *pixaro.AdjustmentState) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, state)
}

// estimateDepth runs the chunked local estimator to completion. The CLI has
// no remote depth service, so lens blur always uses the local gradient.
func estimateDepth(img *pixaro.Image) *pixaro.DepthMap {
	est := depth.NewLocalEstimator(img)
	for !est.Step() {
	}
	return est.Result()
}

func savePNG(path string, img *pixaro.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img.ToRGBA()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
