package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/nfnt/resize"

	"github.com/df07/go-stratified-raytracer/pkg/renderer"
)

// ResizeOptions scales the finished image before encoding.
// A zero dimension preserves the aspect ratio; both zero disables resizing.
type ResizeOptions struct {
	Width  uint
	Height uint
}

// Enabled reports whether any resizing is requested
func (o ResizeOptions) Enabled() bool {
	return o.Width > 0 || o.Height > 0
}

// Apply resizes img with Lanczos3 resampling, or returns it unchanged when disabled
func (o ResizeOptions) Apply(img image.Image) image.Image {
	if !o.Enabled() {
		return img
	}
	return resize.Resize(o.Width, o.Height, img, resize.Lanczos3)
}

// Thumbnail scales img to fit within a size x size box, keeping the aspect ratio
func Thumbnail(img image.Image, size uint) image.Image {
	return resize.Thumbnail(size, size, img, resize.Bilinear)
}

// PNGSink collects a render and PNG-encodes it into a writer when closed
type PNGSink struct {
	collector *renderer.ImageSink
	writer    io.Writer
	resize    ResizeOptions
}

// NewPNGSink creates a sink that encodes into w
func NewPNGSink(w io.Writer, resize ResizeOptions) *PNGSink {
	return &PNGSink{
		collector: renderer.NewImageSink(),
		writer:    w,
		resize:    resize,
	}
}

// Open prepares a width x height image
func (s *PNGSink) Open(width, height int) error {
	return s.collector.Open(width, height)
}

// WritePixel appends the next pixel in row-major order
func (s *PNGSink) WritePixel(c color.RGBA) error {
	return s.collector.WritePixel(c)
}

// Close encodes the completed image. Nothing is written for an incomplete render.
func (s *PNGSink) Close() error {
	if err := s.collector.Close(); err != nil {
		return err
	}
	if err := png.Encode(s.writer, s.resize.Apply(s.collector.Image())); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Image returns the collected image at render resolution
func (s *PNGSink) Image() *image.RGBA {
	return s.collector.Image()
}
