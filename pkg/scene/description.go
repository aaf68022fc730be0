package scene

import (
	"fmt"

	"github.com/df07/go-stratified-raytracer/pkg/core"
	"github.com/df07/go-stratified-raytracer/pkg/geometry"
	"github.com/df07/go-stratified-raytracer/pkg/loaders"
	"github.com/df07/go-stratified-raytracer/pkg/material"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
)

// FromDescription builds a preset from a loaded scene description.
// Entries keep the order of the description's objects.
func FromDescription(desc *loaders.SceneDescription, cameraOverrides ...renderer.CameraConfig) (*Preset, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	s := New()
	if desc.Background != nil {
		s.Background = Gradient{
			Top:    vec(desc.Background.Top),
			Bottom: vec(desc.Background.Bottom),
		}
	}
	if desc.DepthFloor != nil {
		s.DepthFloor = vec(*desc.DepthFloor)
	}

	for i, obj := range desc.Objects {
		shape, err := buildShape(obj.Shape)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		mat, err := buildMaterial(obj.Material)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		s.Add(shape, mat)
	}

	samplingConfig := renderer.DefaultSamplingConfig()
	if desc.MaxDepth > 0 {
		samplingConfig.MaxDepth = desc.MaxDepth
	}

	cameraConfig := renderer.DefaultCameraConfig()
	if desc.Camera != nil {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraFromDescription(desc.Camera))
	}

	name := desc.Name
	if name == "" {
		name = "custom"
	}
	return newPreset(name, s, cameraConfig, samplingConfig, cameraOverrides), nil
}

func buildShape(d loaders.ShapeDescription) (geometry.Shape, error) {
	switch d.Kind {
	case loaders.ShapeSphere:
		return geometry.NewSphere(vec(d.Center), d.Radius), nil
	case loaders.ShapePlane:
		return geometry.NewPlane(vec(d.Point), vec(d.Normal)), nil
	default:
		return nil, fmt.Errorf("shape %q: %w", d.Kind, loaders.ErrUnknownKind)
	}
}

func buildMaterial(d loaders.MaterialDescription) (material.Material, error) {
	switch d.Kind {
	case loaders.MaterialDiffuse:
		return material.NewDiffuse(vec(d.Albedo)), nil
	case loaders.MaterialLambertian:
		if d.Attenuation != nil {
			return material.NewAttenuatedLambertian(vec(d.Albedo), *d.Attenuation), nil
		}
		return material.NewLambertian(vec(d.Albedo)), nil
	default:
		return nil, fmt.Errorf("material %q: %w", d.Kind, loaders.ErrUnknownKind)
	}
}

func cameraFromDescription(d *loaders.CameraDescription) renderer.CameraConfig {
	config := renderer.CameraConfig{
		ViewportWidth: d.ViewportWidth,
		FocalLength:   d.FocalLength,
		Samples:       d.Samples,
		Width:         d.Width,
		Height:        d.Height,
	}
	if d.Origin != nil {
		config.Origin = vec(*d.Origin)
	}
	if d.Forward != nil {
		config.Forward = vec(*d.Forward)
	}
	if d.Up != nil {
		config.Up = vec(*d.Up)
	}
	return config
}

func vec(v loaders.Vec) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
