package material

import (
	"testing"

	"github.com/df07/go-stratified-raytracer/pkg/core"
)

func TestDiffuse_ColorAndAttenuation(t *testing.T) {
	albedo := core.NewVec3(1, 0, 0)
	diffuse := NewDiffuse(albedo)

	if diffuse.Color() != albedo {
		t.Errorf("Expected color %v, got %v", albedo, diffuse.Color())
	}
	if diffuse.BounceAttenuation() != 0.5 {
		t.Errorf("Expected attenuation 0.5, got %f", diffuse.BounceAttenuation())
	}

	// Diffuse only attenuates, it does not tint
	var m Material = diffuse
	if _, ok := m.(Tinter); ok {
		t.Errorf("Diffuse should not implement Tinter")
	}
}

func TestLambertian_Tint(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.9)
	var m Material = NewLambertian(albedo)

	tinter, ok := m.(Tinter)
	if !ok {
		t.Fatal("Lambertian should implement Tinter")
	}
	if tinter.Tint() != albedo {
		t.Errorf("Expected tint %v, got %v", albedo, tinter.Tint())
	}
	if m.BounceAttenuation() != 1 {
		t.Errorf("Expected attenuation 1, got %f", m.BounceAttenuation())
	}
}

func TestLambertian_AttenuationClamped(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"below range", -0.5, 0},
		{"in range", 0.3, 0.3},
		{"above range", 1.7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAttenuatedLambertian(core.NewVec3(1, 1, 1), tt.input)
			if m.BounceAttenuation() != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, m.BounceAttenuation())
			}
		})
	}
}
