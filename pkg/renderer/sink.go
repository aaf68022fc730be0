package renderer

import (
	"errors"
	"image/color"
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation error
	ErrInvalidConfig = errors.New("invalid render configuration")

	// ErrNoSamples is returned when a pixel is finalized before any sample was added
	ErrNoSamples = errors.New("pixel finalized with zero samples")

	// ErrSinkOrder is returned by sinks that receive calls outside the open → write → close sequence
	ErrSinkOrder = errors.New("image sink used out of order")
)

// Sink receives a rendered image. Open is called once with the image size,
// then WritePixel once per pixel in row-major order (left to right, top to
// bottom), then Close once.
type Sink interface {
	Open(width, height int) error
	WritePixel(c color.RGBA) error
	Close() error
}
