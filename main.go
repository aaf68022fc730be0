package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-stratified-raytracer/pkg/config"
	"github.com/df07/go-stratified-raytracer/pkg/core"
	"github.com/df07/go-stratified-raytracer/pkg/output"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
	"github.com/df07/go-stratified-raytracer/pkg/scene"
)

// options are the command line flags; zero values defer to config and scene defaults
type options struct {
	scene   string
	width   int
	height  int
	samples int
	depth   int
	out     string
	envFile string
	upload  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.scene, "scene", "default", "Built-in scene name, json:<name>, or path to a .json scene")
	flag.IntVar(&opts.width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&opts.height, "height", 0, "Image height in pixels (0 = scene default)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per axis; each pixel gets samples² rays (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", 0, "Maximum bounce depth (0 = scene default)")
	flag.StringVar(&opts.out, "out", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	flag.StringVar(&opts.envFile, "env", ".env", "Environment file to load before RAYTRACER_* variables")
	flag.BoolVar(&opts.upload, "upload", false, "Also upload the render to the configured S3 bucket")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if err := run(opts, renderer.NewDefaultLogger(), time.Now); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Stratified Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	scenes, err := scene.ListScenes()
	if err != nil {
		fmt.Printf("  (failed to list scenes: %v)\n", err)
	}
	for _, info := range scenes {
		fmt.Printf("  %-20s %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

func run(opts options, logger core.Logger, now func() time.Time) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	preset, err := createScene(opts, cfg)
	if err != nil {
		return err
	}
	logger.Printf("Using %s scene...\n", preset.Name)

	rt, err := preset.NewRaytracer(logger)
	if err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = outputPath(cfg.OutputDir, opts.scene, now())
	}
	fileSink := output.NewFileSink(path, cfg.Resize())

	var sink renderer.Sink = fileSink
	if opts.upload {
		if !cfg.UploadEnabled() {
			return fmt.Errorf("-upload requires RAYTRACER_S3_BUCKET: %w", output.ErrNoBucket)
		}
		uploader, err := output.NewS3Uploader(cfg.S3)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(filepath.Join("renders", sceneDirName(opts.scene), filepath.Base(path)))
		sink = output.NewMultiSink(fileSink, output.NewS3Sink(context.Background(), uploader, key, cfg.Resize()))
	}

	start := now()
	stats, err := rt.Render(sink)
	if err != nil {
		return err
	}

	logger.Printf("Time: %d ms\n", now().Sub(start).Milliseconds())
	logger.Printf("Samples per pixel: %d, rays cast: %d\n", stats.SamplesPerPixel, stats.RaysCast)
	logger.Printf("Render saved as %s\n", path)
	return nil
}

// createScene builds the named scene with flag values layered over config values
func createScene(opts options, cfg config.Config) (*scene.Preset, error) {
	override := renderer.CameraConfig{
		Width:   firstPositive(opts.width, cfg.Width),
		Height:  firstPositive(opts.height, cfg.Height),
		Samples: firstPositive(opts.samples, cfg.Samples),
	}

	preset, err := scene.Create(opts.scene, override)
	if err != nil {
		return nil, err
	}

	if depth := firstPositive(opts.depth, cfg.MaxDepth); depth > 0 {
		preset.SamplingConfig.MaxDepth = depth
	}
	return preset, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// outputPath returns <dir>/<scene>/render_<timestamp>.png
func outputPath(dir, sceneName string, t time.Time) string {
	timestamp := t.Format("20060102_150405")
	return filepath.Join(dir, sceneDirName(sceneName), fmt.Sprintf("render_%s.png", timestamp))
}

// sceneDirName turns a scene name or path into a directory-safe name
func sceneDirName(sceneName string) string {
	name := strings.TrimPrefix(sceneName, "json:")
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
