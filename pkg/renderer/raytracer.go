package renderer

import (
	"fmt"
	"image"
	"time"

	"github.com/df07/go-stratified-raytracer/pkg/core"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	MaxDepth         int           // Maximum ray bounce depth, at least 1
	Gamma            float64       // Gamma applied to finalized pixels (1 = none)
	Seed             int64         // Seed for bounce direction sampling
	ProgressInterval time.Duration // Minimum time between progress messages (0 disables them)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		MaxDepth:         4,
		Gamma:            1.0,
		Seed:             42, // Deterministic for testing
		ProgressInterval: time.Second,
	}
}

// MergeSamplingConfig returns base with the non-zero fields of override applied
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.Gamma != 0 {
		result.Gamma = override.Gamma
	}
	if override.Seed != 0 {
		result.Seed = override.Seed
	}
	if override.ProgressInterval != 0 {
		result.ProgressInterval = override.ProgressInterval
	}
	return result
}

// Validate checks that the configuration can drive a render
func (c SamplingConfig) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth must be at least 1, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.Gamma < 0 {
		return fmt.Errorf("%w: gamma must not be negative, got %g", ErrInvalidConfig, c.Gamma)
	}
	return nil
}

// Scene interface to avoid circular imports
type Scene interface {
	Trace(ray core.Ray, remainingBounces int, sampler core.Sampler, stats *core.TraceStats) core.Vec3
}

// Raytracer renders a scene through a camera, one pixel at a time
type Raytracer struct {
	scene   Scene
	camera  *Camera
	config  SamplingConfig
	sampler core.Sampler
	logger  core.Logger
	now     func() time.Time
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, camera *Camera, config SamplingConfig, logger core.Logger) (*Raytracer, error) {
	if scene == nil || camera == nil {
		return nil, fmt.Errorf("%w: scene and camera are required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NopLogger{}
	}

	return &Raytracer{
		scene:   scene,
		camera:  camera,
		config:  config,
		sampler: core.NewSeededSampler(config.Seed),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// SetSampler replaces the sampler used for bounce directions
func (rt *Raytracer) SetSampler(sampler core.Sampler) {
	rt.sampler = sampler
}

// Render traces every pixel and streams the result into sink.
// Rendering is single-threaded; pixels reach the sink in row-major order.
func (rt *Raytracer) Render(sink Sink) (RenderStats, error) {
	cameraConfig := rt.camera.Config()
	width, height := cameraConfig.Width, cameraConfig.Height

	img, err := NewImage(width, height, sink)
	if err != nil {
		return RenderStats{}, err
	}
	img.SetGamma(rt.config.Gamma)

	rt.logger.Printf("Rendering %dx%d, %d samples per pixel, max depth %d, %.1f° FOV\n",
		width, height, rt.camera.SamplesPerPixel(), rt.config.MaxDepth, rt.camera.FieldOfView())

	stats := RenderStats{
		SamplesPerPixel: rt.camera.SamplesPerPixel(),
		MaxDepth:        rt.config.MaxDepth,
	}
	var trace core.TraceStats
	progress := newProgressReporter(rt.logger, rt.config.ProgressInterval, width*height, rt.now)
	start := rt.now()

	err = img.EachPixel(func(p *Pixel) error {
		progress.report(p.Row()*width + p.Col())

		for ray := range rt.camera.PixelRays(p.U(), p.V()) {
			p.AddSample(rt.scene.Trace(ray, rt.config.MaxDepth, rt.sampler, &trace))
		}

		stats.TotalPixels++
		stats.TotalSamples += p.Samples()
		return nil
	})

	stats.RaysCast = trace.RaysCast
	stats.IntersectionTests = trace.IntersectionTests
	stats.Elapsed = rt.now().Sub(start)
	if err != nil {
		return stats, fmt.Errorf("render: %w", err)
	}

	rt.logger.Printf("Render completed in %v (%d rays, %.0f rays/s)\n",
		stats.Elapsed, stats.RaysCast, stats.RaysPerSecond())
	return stats, nil
}

// RenderImage renders into memory and returns the image
func (rt *Raytracer) RenderImage() (*image.RGBA, RenderStats, error) {
	sink := NewImageSink()
	stats, err := rt.Render(sink)
	if err != nil {
		return nil, stats, err
	}
	return sink.Image(), stats, nil
}

// progressReporter logs completion percentage at most once per interval
type progressReporter struct {
	logger   core.Logger
	interval time.Duration
	total    int
	now      func() time.Time
	last     time.Time
}

func newProgressReporter(logger core.Logger, interval time.Duration, total int, now func() time.Time) *progressReporter {
	return &progressReporter{
		logger:   logger,
		interval: interval,
		total:    total,
		now:      now,
		last:     now(),
	}
}

func (pr *progressReporter) report(pixelIndex int) {
	if pr.interval <= 0 {
		return
	}
	if now := pr.now(); now.Sub(pr.last) > pr.interval {
		pr.logger.Printf("%.3f%%\n", float64(pixelIndex)/float64(pr.total)*100.0)
		pr.last = now
	}
}
