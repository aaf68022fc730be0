package geometry

import "github.com/df07/go-stratified-raytracer/pkg/core"

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal, always facing the incoming ray
	T         float64   // Parameter t along the ray, strictly positive
	FrontFace bool      // Whether the ray approached from outside the surface
}

// SetFaceNormal sets the normal vector and determines front/back face.
// outwardNormal must point away from the surface interior.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Shape interface for objects that can be hit by rays.
// Hit reports only intersections in front of the ray origin (t > 0).
type Shape interface {
	Hit(ray core.Ray) (*HitRecord, bool)
}
