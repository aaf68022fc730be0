package material

import (
	"github.com/df07/go-stratified-raytracer/pkg/core"
)

// Material describes how a surface responds to a bounced ray
type Material interface {
	// Color returns the base color of the surface
	Color() core.Vec3

	// BounceAttenuation returns the fraction of bounced radiance kept, in [0, 1]
	BounceAttenuation() float64
}

// Tinter is implemented by materials whose bounced radiance is also
// multiplied component-wise by their albedo
type Tinter interface {
	Tint() core.Vec3
}

// clampAttenuation keeps attenuation factors inside [0, 1]
func clampAttenuation(a float64) float64 {
	return max(0, min(1, a))
}
