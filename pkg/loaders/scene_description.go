package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnknownKind is returned for shape or material kinds the renderer does not support
var ErrUnknownKind = errors.New("unknown kind")

// Shape kinds
const (
	ShapeSphere = "sphere"
	ShapePlane  = "plane"
)

// Material kinds
const (
	MaterialDiffuse    = "diffuse"
	MaterialLambertian = "lambertian"
)

// Vec is a JSON triple: [x, y, z] or [r, g, b]
type Vec [3]float64

// SceneDescription is the on-disk form of a scene: an ordered list of
// shape/material pairs plus optional camera and sampling hints
type SceneDescription struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Camera      *CameraDescription     `json:"camera,omitempty"`
	MaxDepth    int                    `json:"maxDepth,omitempty"`
	Background  *BackgroundDescription `json:"background,omitempty"`
	DepthFloor  *Vec                   `json:"depthFloor,omitempty"`
	Objects     []ObjectDescription    `json:"objects"`
}

// CameraDescription overrides camera defaults; zero values keep the default
type CameraDescription struct {
	Origin        *Vec    `json:"origin,omitempty"`
	Forward       *Vec    `json:"forward,omitempty"`
	Up            *Vec    `json:"up,omitempty"`
	ViewportWidth float64 `json:"viewportWidth,omitempty"`
	FocalLength   float64 `json:"focalLength,omitempty"`
	Samples       int     `json:"samples,omitempty"`
	Width         int     `json:"width,omitempty"`
	Height        int     `json:"height,omitempty"`
}

// BackgroundDescription is a vertical sky gradient
type BackgroundDescription struct {
	Top    Vec `json:"top"`
	Bottom Vec `json:"bottom"`
}

// ObjectDescription pairs one shape with one material
type ObjectDescription struct {
	Shape    ShapeDescription    `json:"shape"`
	Material MaterialDescription `json:"material"`
}

// ShapeDescription describes a sphere (center, radius) or a plane (point, normal)
type ShapeDescription struct {
	Kind   string  `json:"kind"`
	Center Vec     `json:"center"`
	Radius float64 `json:"radius,omitempty"`
	Point  Vec     `json:"point"`
	Normal Vec     `json:"normal"`
}

// MaterialDescription describes a diffuse or lambertian surface
type MaterialDescription struct {
	Kind        string   `json:"kind"`
	Albedo      Vec      `json:"albedo"`
	Attenuation *float64 `json:"attenuation,omitempty"`
}

// LoadSceneDescription reads a scene description from a JSON file
func LoadSceneDescription(path string) (*SceneDescription, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	desc, err := ParseSceneDescription(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

// ParseSceneDescription decodes and validates a scene description
func ParseSceneDescription(r io.Reader) (*SceneDescription, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var desc SceneDescription
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

// Validate checks kinds and the parameters each kind needs
func (d *SceneDescription) Validate() error {
	if d.MaxDepth < 0 {
		return fmt.Errorf("maxDepth must not be negative, got %d", d.MaxDepth)
	}
	for i, obj := range d.Objects {
		if err := obj.Shape.validate(); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		if err := obj.Material.validate(); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

func (s ShapeDescription) validate() error {
	switch s.Kind {
	case ShapeSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("sphere radius must be positive, got %g", s.Radius)
		}
	case ShapePlane:
		if s.Normal == (Vec{}) {
			return fmt.Errorf("plane normal must be non-zero")
		}
	default:
		return fmt.Errorf("shape %q: %w", s.Kind, ErrUnknownKind)
	}
	return nil
}

func (m MaterialDescription) validate() error {
	switch m.Kind {
	case MaterialDiffuse:
		if m.Attenuation != nil {
			return fmt.Errorf("diffuse attenuation is fixed and cannot be set")
		}
	case MaterialLambertian:
	default:
		return fmt.Errorf("material %q: %w", m.Kind, ErrUnknownKind)
	}
	if m.Attenuation != nil && (*m.Attenuation < 0 || *m.Attenuation > 1) {
		return fmt.Errorf("attenuation must be in [0, 1], got %g", *m.Attenuation)
	}
	return nil
}

// SaveSceneDescription writes a scene description as indented JSON
func SaveSceneDescription(path string, desc *SceneDescription) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(desc); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}
