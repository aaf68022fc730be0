package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/df07/go-stratified-raytracer/pkg/core"
)

// Pixel accumulates color samples for a single output pixel.
// It is only valid inside the callback passed to Image.EachPixel.
type Pixel struct {
	row, col  int
	u, v      float64
	sum       core.Vec3
	samples   int
	finalized bool
}

// Row returns the pixel row, 0 being the top of the image
func (p *Pixel) Row() int { return p.row }

// Col returns the pixel column, 0 being the left of the image
func (p *Pixel) Col() int { return p.col }

// U returns the horizontal viewport coordinate of the pixel's lower-left corner
func (p *Pixel) U() float64 { return p.u }

// V returns the vertical viewport coordinate of the pixel's lower-left corner
func (p *Pixel) V() float64 { return p.v }

// Samples returns the number of samples added so far
func (p *Pixel) Samples() int { return p.samples }

// AddSample adds a radiance sample to the pixel
func (p *Pixel) AddSample(c core.Vec3) {
	p.sum = p.sum.Add(c)
	p.samples++
}

// Mean returns the average of all samples added so far
func (p *Pixel) Mean() (core.Vec3, error) {
	if p.samples == 0 {
		return core.Vec3{}, ErrNoSamples
	}
	return p.sum.Divide(float64(p.samples)), nil
}

// ColorToRGBA maps a linear color to 8-bit RGBA: optional gamma, then each
// channel is scaled by 256, truncated and clamped to [0, 255]. Alpha is opaque.
func ColorToRGBA(c core.Vec3, gamma float64) color.RGBA {
	if gamma > 0 {
		c = c.GammaCorrect(gamma)
	}
	return color.RGBA{
		R: channelToByte(c.X),
		G: channelToByte(c.Y),
		B: channelToByte(c.Z),
		A: 255,
	}
}

func channelToByte(channel float64) uint8 {
	scaled := math.Trunc(channel * 256)
	if !(scaled > 0) {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

// Image walks the pixel grid of an output image and streams finished pixels
// into a Sink in row-major order
type Image struct {
	width, height int
	gamma         float64
	sink          Sink
}

// NewImage creates an image surface of the given size writing to sink
func NewImage(width, height int, sink Sink) (*Image, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: image size must be at least 1x1, got %dx%d", ErrInvalidConfig, width, height)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", ErrInvalidConfig)
	}
	return &Image{width: width, height: height, gamma: 1, sink: sink}, nil
}

// SetGamma sets the gamma applied when pixels are finalized (1 disables it)
func (img *Image) SetGamma(gamma float64) {
	img.gamma = gamma
}

// Width returns the image width in pixels
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels
func (img *Image) Height() int { return img.height }

// EachPixel opens the sink, calls fn once per pixel in row-major order and
// closes the sink. Every pixel is finalized exactly once after fn returns,
// whether fn succeeded, failed or panicked; finalizing writes the averaged
// color to the sink. The first error stops the walk.
func (img *Image) EachPixel(fn func(p *Pixel) error) (err error) {
	if err := img.sink.Open(img.width, img.height); err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer func() {
		if closeErr := img.sink.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close sink: %w", closeErr))
		}
	}()

	for row := 0; row < img.height; row++ {
		for col := 0; col < img.width; col++ {
			if err := img.visit(row, col, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// visit scopes a single pixel: the deferred finalize runs on every exit path
func (img *Image) visit(row, col int, fn func(p *Pixel) error) (err error) {
	pixel := &Pixel{
		row: row,
		col: col,
		u:   float64(col) / float64(img.width),
		v:   float64(img.height-1-row) / float64(img.height),
	}
	defer func() {
		if finalizeErr := img.finalize(pixel); finalizeErr != nil {
			err = errors.Join(err, finalizeErr)
		}
	}()

	return fn(pixel)
}

func (img *Image) finalize(p *Pixel) error {
	if p.finalized {
		return nil
	}
	p.finalized = true

	mean, err := p.Mean()
	if err != nil {
		return fmt.Errorf("pixel (%d, %d): %w", p.row, p.col, err)
	}
	if err := img.sink.WritePixel(ColorToRGBA(mean, img.gamma)); err != nil {
		return fmt.Errorf("write pixel (%d, %d): %w", p.row, p.col, err)
	}
	return nil
}
