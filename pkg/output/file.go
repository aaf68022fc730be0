package output

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
)

// FileSink writes a render to a PNG file, creating parent directories as needed.
// The file is created on Open and removed again if the render does not complete.
type FileSink struct {
	path   string
	resize ResizeOptions
	file   *os.File
	png    *PNGSink
}

// NewFileSink creates a sink for the given output path
func NewFileSink(path string, resize ResizeOptions) *FileSink {
	return &FileSink{path: path, resize: resize}
}

// Path returns the output file path
func (s *FileSink) Path() string {
	return s.path
}

// Open creates the output file
func (s *FileSink) Open(width, height int) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	s.file = file
	s.png = NewPNGSink(file, s.resize)
	if err := s.png.Open(width, height); err != nil {
		s.file.Close()
		os.Remove(s.path)
		return err
	}
	return nil
}

// WritePixel appends the next pixel in row-major order
func (s *FileSink) WritePixel(c color.RGBA) error {
	if s.png == nil {
		return fmt.Errorf("write to %s before open", s.path)
	}
	return s.png.WritePixel(c)
}

// Close encodes the image and closes the file
func (s *FileSink) Close() error {
	if s.file == nil {
		return fmt.Errorf("close of %s before open", s.path)
	}

	encodeErr := s.png.Close()
	closeErr := s.file.Close()
	if err := errors.Join(encodeErr, closeErr); err != nil {
		os.Remove(s.path)
		return err
	}
	return nil
}
