package material

import (
	"github.com/df07/go-stratified-raytracer/pkg/core"
)

// Lambertian represents a diffuse material that tints bounced light by its albedo
type Lambertian struct {
	Albedo      core.Vec3 // Base color/reflectance
	Attenuation float64   // Energy kept per bounce, in [0, 1]
}

// NewLambertian creates a new lambertian material that keeps all bounced energy
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo, Attenuation: 1}
}

// NewAttenuatedLambertian creates a lambertian material with an explicit
// attenuation factor, clamped to [0, 1]
func NewAttenuatedLambertian(albedo core.Vec3, attenuation float64) *Lambertian {
	return &Lambertian{Albedo: albedo, Attenuation: clampAttenuation(attenuation)}
}

// Color returns the albedo
func (l *Lambertian) Color() core.Vec3 {
	return l.Albedo
}

// BounceAttenuation returns the configured attenuation
func (l *Lambertian) BounceAttenuation() float64 {
	return l.Attenuation
}

// Tint returns the albedo so the scene multiplies bounced light component-wise
func (l *Lambertian) Tint() core.Vec3 {
	return l.Albedo
}
