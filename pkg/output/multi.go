package output

import (
	"errors"
	"image/color"

	"github.com/df07/go-stratified-raytracer/pkg/renderer"
)

// MultiSink fans a render out to several sinks
type MultiSink struct {
	sinks  []renderer.Sink
	opened int
}

// NewMultiSink creates a sink writing to every given sink in order
func NewMultiSink(sinks ...renderer.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Open opens each sink. If one fails, the ones already opened are closed.
func (m *MultiSink) Open(width, height int) error {
	for _, s := range m.sinks {
		if err := s.Open(width, height); err != nil {
			return errors.Join(err, m.closeOpened())
		}
		m.opened++
	}
	return nil
}

// WritePixel writes c to every sink, stopping at the first failure
func (m *MultiSink) WritePixel(c color.RGBA) error {
	for _, s := range m.sinks {
		if err := s.WritePixel(c); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every opened sink and joins their errors
func (m *MultiSink) Close() error {
	return m.closeOpened()
}

func (m *MultiSink) closeOpened() error {
	var errs []error
	for _, s := range m.sinks[:m.opened] {
		errs = append(errs, s.Close())
	}
	m.opened = 0
	return errors.Join(errs...)
}
