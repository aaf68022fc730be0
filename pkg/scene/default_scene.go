package scene

import (
	"github.com/df07/go-stratified-raytracer/pkg/core"
	"github.com/df07/go-stratified-raytracer/pkg/geometry"
	"github.com/df07/go-stratified-raytracer/pkg/material"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
)

// Preset is a scene together with the camera and sampling settings it was composed for
type Preset struct {
	Name           string
	Scene          *Scene
	CameraConfig   renderer.CameraConfig
	SamplingConfig renderer.SamplingConfig
}

// NewRaytracer builds a raytracer for the preset
func (p *Preset) NewRaytracer(logger core.Logger) (*renderer.Raytracer, error) {
	camera, err := renderer.NewCamera(p.CameraConfig)
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(p.Scene, camera, p.SamplingConfig, logger)
}

func newPreset(name string, s *Scene, cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig, cameraOverrides []renderer.CameraConfig) *Preset {
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	return &Preset{
		Name:           name,
		Scene:          s,
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
}

// NewDefaultScene creates three red diffuse spheres in a row in front of the camera
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Preset {
	cameraConfig := renderer.DefaultCameraConfig()
	cameraConfig.Samples = 20

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.MaxDepth = 4

	s := New()
	red := material.NewDiffuse(core.NewVec3(1, 0, 0))
	s.Add(geometry.NewSphere(core.NewVec3(-0.9, 0, 2), 0.5), red)
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), red)
	s.Add(geometry.NewSphere(core.NewVec3(0.9, 0, 2), 0.5), red)

	return newPreset("default", s, cameraConfig, samplingConfig, cameraOverrides)
}

// NewSingleSphereScene creates one red diffuse sphere straight ahead
func NewSingleSphereScene(cameraOverrides ...renderer.CameraConfig) *Preset {
	cameraConfig := renderer.DefaultCameraConfig()
	cameraConfig.Samples = 8

	s := New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), material.NewDiffuse(core.NewVec3(1, 0, 0)))

	return newPreset("single", s, cameraConfig, renderer.DefaultSamplingConfig(), cameraOverrides)
}

// NewGroundScene creates a tinted sphere resting on a ground plane.
// Light that exhausts its bounces is dropped, so crevices darken.
func NewGroundScene(cameraOverrides ...renderer.CameraConfig) *Preset {
	cameraConfig := renderer.DefaultCameraConfig()
	cameraConfig.Samples = 10

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.MaxDepth = 8
	samplingConfig.Gamma = 2.0

	s := New()
	s.DepthFloor = core.Vec3{}

	ground := material.NewAttenuatedLambertian(core.NewVec3(0.8, 0.8, 0.0), 0.5)
	ball := material.NewAttenuatedLambertian(core.NewVec3(0.7, 0.3, 0.3), 0.5)
	s.Add(geometry.NewPlane(core.NewVec3(0, -0.5, 0), core.NewVec3(0, 1, 0)), ground)
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), ball)

	return newPreset("ground", s, cameraConfig, samplingConfig, cameraOverrides)
}
