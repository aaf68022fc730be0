package material

import "github.com/df07/go-stratified-raytracer/pkg/core"

// DiffuseAttenuation is the fraction of energy a diffuse bounce keeps
const DiffuseAttenuation = 0.5

// Diffuse is the basic diffuse material. Its albedo is reported as the surface
// color but bounced radiance is only scaled by DiffuseAttenuation, not tinted.
type Diffuse struct {
	Albedo core.Vec3
}

// NewDiffuse creates a new diffuse material
func NewDiffuse(albedo core.Vec3) *Diffuse {
	return &Diffuse{Albedo: albedo}
}

// Color returns the albedo
func (d *Diffuse) Color() core.Vec3 {
	return d.Albedo
}

// BounceAttenuation returns DiffuseAttenuation
func (d *Diffuse) BounceAttenuation() float64 {
	return DiffuseAttenuation
}
