package renderer

import (
	"fmt"
	"image"
	"image/color"
)

// ImageSink collects streamed pixels into an in-memory RGBA image
type ImageSink struct {
	img    *image.RGBA
	next   int // Index of the next pixel in row-major order
	closed bool
}

// NewImageSink creates an empty image sink
func NewImageSink() *ImageSink {
	return &ImageSink{}
}

// Open allocates the image
func (s *ImageSink) Open(width, height int) error {
	if s.img != nil {
		return fmt.Errorf("%w: open called twice", ErrSinkOrder)
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: image size must be at least 1x1, got %dx%d", ErrInvalidConfig, width, height)
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// WritePixel stores the next pixel in row-major order
func (s *ImageSink) WritePixel(c color.RGBA) error {
	if s.img == nil || s.closed {
		return fmt.Errorf("%w: write outside open/close", ErrSinkOrder)
	}
	width := s.img.Rect.Dx()
	if s.next >= width*s.img.Rect.Dy() {
		return fmt.Errorf("%w: more than %d pixels written", ErrSinkOrder, width*s.img.Rect.Dy())
	}
	s.img.SetRGBA(s.next%width, s.next/width, c)
	s.next++
	return nil
}

// Close marks the image complete. Closing before every pixel was written is an error.
func (s *ImageSink) Close() error {
	if s.img == nil || s.closed {
		return fmt.Errorf("%w: close without open", ErrSinkOrder)
	}
	s.closed = true
	if expected := s.img.Rect.Dx() * s.img.Rect.Dy(); s.next != expected {
		return fmt.Errorf("%w: closed after %d of %d pixels", ErrSinkOrder, s.next, expected)
	}
	return nil
}

// Image returns the collected image, or nil before Open
func (s *ImageSink) Image() *image.RGBA {
	return s.img
}

// Complete reports whether every pixel was written and the sink was closed
func (s *ImageSink) Complete() bool {
	return s.closed && s.img != nil && s.next == s.img.Rect.Dx()*s.img.Rect.Dy()
}
