package renderer

import (
	"fmt"
	"iter"
	"math"

	"github.com/df07/go-stratified-raytracer/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Origin        core.Vec3 // Camera position
	Forward       core.Vec3 // Viewing direction
	Up            core.Vec3 // Up direction, combined with Forward to build the viewport basis
	ViewportWidth float64   // Viewport width in scene units
	FocalLength   float64   // Distance from origin to the viewport
	Samples       int       // Samples per axis; each pixel gets Samples² rays
	Width         int       // Image width in pixels
	Height        int       // Image height in pixels
}

// DefaultCameraConfig returns a camera at the origin looking down +z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Origin:        core.NewVec3(0, 0, 0),
		Forward:       core.NewVec3(0, 0, 1),
		Up:            core.NewVec3(0, 1, 0),
		ViewportWidth: 2.0,
		FocalLength:   1.0,
		Samples:       4,
		Width:         400,
		Height:        225, // 16:9 aspect ratio
	}
}

// MergeCameraConfig merges a camera config override with a default config.
// Only non-zero values in the override replace values in the default.
func MergeCameraConfig(defaultConfig, override CameraConfig) CameraConfig {
	result := defaultConfig

	if !override.Origin.IsZero() {
		result.Origin = override.Origin
	}
	if !override.Forward.IsZero() {
		result.Forward = override.Forward
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.ViewportWidth != 0 {
		result.ViewportWidth = override.ViewportWidth
	}
	if override.FocalLength != 0 {
		result.FocalLength = override.FocalLength
	}
	if override.Samples != 0 {
		result.Samples = override.Samples
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Height != 0 {
		result.Height = override.Height
	}

	return result
}

// Validate checks the configuration for values that would produce NaN or empty images
func (c CameraConfig) Validate() error {
	switch {
	case !(c.ViewportWidth > 0):
		return fmt.Errorf("%w: viewport width must be positive, got %g", ErrInvalidConfig, c.ViewportWidth)
	case !(c.FocalLength > 0):
		return fmt.Errorf("%w: focal length must be positive, got %g", ErrInvalidConfig, c.FocalLength)
	case c.Samples < 1:
		return fmt.Errorf("%w: samples per axis must be at least 1, got %d", ErrInvalidConfig, c.Samples)
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("%w: image size must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.Forward.IsZero():
		return fmt.Errorf("%w: forward direction must be non-zero", ErrInvalidConfig)
	case c.Forward.Cross(c.Up).LengthSquared() < 1e-18:
		return fmt.Errorf("%w: up vector %v must not be zero or parallel to forward %v", ErrInvalidConfig, c.Up, c.Forward)
	}
	return nil
}

// Camera maps pixel coordinates to world-space rays
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	uStep           float64 // UV width of one sub-pixel cell
	vStep           float64 // UV height of one sub-pixel cell
	samples         int
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	aspectRatio := float64(config.Width) / float64(config.Height)
	viewportHeight := config.ViewportWidth / aspectRatio

	horizontal := config.Forward.Cross(config.Up).Multiply(config.ViewportWidth)
	vertical := config.Up.Multiply(viewportHeight)
	forward := config.Forward.Multiply(config.FocalLength)
	lowerLeftCorner := config.Origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Add(forward)

	return &Camera{
		config:          config,
		origin:          config.Origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		uStep:           1.0 / float64(config.Width*config.Samples),
		vStep:           1.0 / float64(config.Height*config.Samples),
		samples:         config.Samples,
	}, nil
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// SamplesPerPixel returns the number of rays generated per pixel
func (c *Camera) SamplesPerPixel() int {
	return c.samples * c.samples
}

// GetRay generates a ray for viewport coordinates (u, v) where 0 <= u,v <= 1
func (c *Camera) GetRay(u, v float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(u)).
		Add(c.vertical.Multiply(v)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}

// PixelRays yields the Samples² rays of a stratified grid inside the pixel whose
// lower-left corner is at (u, v). Sample k lands in sub-cell (k/S, k%S).
// The sequence is deterministic and can be iterated any number of times.
func (c *Camera) PixelRays(u, v float64) iter.Seq[core.Ray] {
	return func(yield func(core.Ray) bool) {
		total := c.samples * c.samples
		for k := 0; k < total; k++ {
			subU := u + c.uStep*float64(k/c.samples)
			subV := v + c.vStep*float64(k%c.samples)
			if !yield(c.GetRay(subU, subV)) {
				return
			}
		}
	}
}

// FieldOfView returns the horizontal field of view in degrees
func (c *Camera) FieldOfView() float64 {
	return 2 * math.Atan(c.config.ViewportWidth/(2*c.config.FocalLength)) * 180 / math.Pi
}
