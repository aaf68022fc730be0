package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/df07/go-stratified-raytracer/pkg/output"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config holds settings shared by the CLI and the web server.
// Zero render values mean "use the scene's own setting".
type Config struct {
	Width     int
	Height    int
	Samples   int // Samples per axis; each pixel receives Samples² rays
	MaxDepth  int
	OutputDir string

	ResizeWidth  uint
	ResizeHeight uint

	S3 output.S3Config

	Port              int
	MaxConcurrentJobs int // 0 sizes the job pool from the CPU count
	MaxPixels         int // Largest width*height the web server accepts
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		OutputDir: "output",
		S3: output.S3Config{
			Region: "us-east-1",
		},
		Port:      8080,
		MaxPixels: 1920 * 1080,
	}
}

// Load reads envFile if it exists, then applies RAYTRACER_* environment
// variables over the defaults. An empty envFile skips the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var errs []error
	intVar := func(key string, dst *int) {
		if err := lookupInt(key, dst); err != nil {
			errs = append(errs, err)
		}
	}
	uintVar := func(key string, dst *uint) {
		if err := lookupUint(key, dst); err != nil {
			errs = append(errs, err)
		}
	}

	intVar("RAYTRACER_WIDTH", &cfg.Width)
	intVar("RAYTRACER_HEIGHT", &cfg.Height)
	intVar("RAYTRACER_SAMPLES", &cfg.Samples)
	intVar("RAYTRACER_MAX_DEPTH", &cfg.MaxDepth)
	lookupString("RAYTRACER_OUTPUT_DIR", &cfg.OutputDir)

	uintVar("RAYTRACER_RESIZE_WIDTH", &cfg.ResizeWidth)
	uintVar("RAYTRACER_RESIZE_HEIGHT", &cfg.ResizeHeight)

	lookupString("RAYTRACER_S3_BUCKET", &cfg.S3.Bucket)
	lookupString("RAYTRACER_S3_REGION", &cfg.S3.Region)
	lookupString("RAYTRACER_S3_ENDPOINT", &cfg.S3.Endpoint)
	lookupString("RAYTRACER_S3_ACCESS_KEY", &cfg.S3.AccessKey)
	lookupString("RAYTRACER_S3_SECRET_KEY", &cfg.S3.SecretKey)
	lookupString("RAYTRACER_S3_ACL", &cfg.S3.ACL)

	intVar("RAYTRACER_PORT", &cfg.Port)
	intVar("RAYTRACER_MAX_JOBS", &cfg.MaxConcurrentJobs)
	intVar("RAYTRACER_MAX_PIXELS", &cfg.MaxPixels)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges
func (c Config) Validate() error {
	var errs []error
	for _, field := range []struct {
		name  string
		value int
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"samples", c.Samples},
		{"max depth", c.MaxDepth},
		{"max jobs", c.MaxConcurrentJobs},
	} {
		if field.value < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, field.name, field.value))
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: port must be in 1-65535, got %d", ErrInvalid, c.Port))
	}
	if c.MaxPixels < 1 {
		errs = append(errs, fmt.Errorf("%w: max pixels must be positive, got %d", ErrInvalid, c.MaxPixels))
	}
	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("%w: output directory must be set", ErrInvalid))
	}
	return errors.Join(errs...)
}

// UploadEnabled reports whether finished renders should go to S3
func (c Config) UploadEnabled() bool {
	return c.S3.Bucket != ""
}

// Resize returns the output resize options
func (c Config) Resize() output.ResizeOptions {
	return output.ResizeOptions{Width: c.ResizeWidth, Height: c.ResizeHeight}
}

func lookupString(key string, dst *string) {
	if value, ok := os.LookupEnv(key); ok {
		*dst = value
	}
}

func lookupInt(key string, dst *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, value)
	}
	*dst = n
	return nil
}

func lookupUint(key string, dst *uint) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a non-negative integer", ErrInvalid, key, value)
	}
	*dst = uint(n)
	return nil
}
