package scene

import (
	"github.com/df07/go-stratified-raytracer/pkg/core"
	"github.com/df07/go-stratified-raytracer/pkg/geometry"
	"github.com/df07/go-stratified-raytracer/pkg/material"
)

// DefaultDepthFloor is the radiance returned once the bounce budget is spent
var DefaultDepthFloor = core.NewVec3(0, 1, 0)

// Gradient is a vertical sky gradient keyed on a ray's normalized Y direction
type Gradient struct {
	Top    core.Vec3 // Color for rays pointing straight up
	Bottom core.Vec3 // Color for rays pointing straight down
}

// DefaultBackground returns the white-to-sky-blue gradient
func DefaultBackground() Gradient {
	return Gradient{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// At returns the gradient color for a ray that escaped the scene
func (g Gradient) At(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()

	// Map the y-component from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return g.Bottom.Multiply(1.0 - t).Add(g.Top.Multiply(t))
}

// Entry pairs a shape with its surface material
type Entry struct {
	Shape    geometry.Shape
	Material material.Material
}

// Hit is an intersection resolved against a scene entry
type Hit struct {
	geometry.HitRecord
	Shape    geometry.Shape
	Material material.Material
}

// BounceRay scatters a diffuse bounce off the hit: the new direction is the
// facing normal plus a random point in the unit sphere
func (h *Hit) BounceRay(sampler core.Sampler) core.Ray {
	return core.NewRay(h.Point, h.Normal.Add(core.SampleInUnitSphere(sampler)))
}

// Scene is an unordered collection of shapes and materials. It is built during
// setup and read-only while rendering.
type Scene struct {
	Entries    []Entry
	Background Gradient
	DepthFloor core.Vec3 // Returned when no bounces remain
}

// New creates an empty scene with the default background and depth floor
func New() *Scene {
	return &Scene{
		Entries:    make([]Entry, 0),
		Background: DefaultBackground(),
		DepthFloor: DefaultDepthFloor,
	}
}

// Add appends a shape with its material
func (s *Scene) Add(shape geometry.Shape, mat material.Material) {
	s.Entries = append(s.Entries, Entry{Shape: shape, Material: mat})
}

// Len returns the number of entries in the scene
func (s *Scene) Len() int {
	return len(s.Entries)
}

// ClosestHit returns the intersection nearest to the ray origin.
// Distances are compared as raw squared lengths; on an exact tie the entry
// added first wins.
func (s *Scene) ClosestHit(ray core.Ray) (*Hit, bool) {
	return s.closestHit(ray, nil)
}

func (s *Scene) closestHit(ray core.Ray, stats *core.TraceStats) (*Hit, bool) {
	var closest *Hit
	closestDistance := 0.0

	if stats != nil {
		stats.RaysCast++
		stats.IntersectionTests += int64(len(s.Entries))
	}

	for _, entry := range s.Entries {
		record, isHit := entry.Shape.Hit(ray)
		if !isHit {
			continue
		}
		distance := record.Point.Subtract(ray.Origin).LengthSquared()
		if closest == nil || distance < closestDistance {
			closest = &Hit{HitRecord: *record, Shape: entry.Shape, Material: entry.Material}
			closestDistance = distance
		}
	}

	return closest, closest != nil
}

// Radiance returns the light arriving along ray, bouncing off diffuse surfaces
// up to remainingBounces times
func (s *Scene) Radiance(ray core.Ray, remainingBounces int, sampler core.Sampler) core.Vec3 {
	return s.Trace(ray, remainingBounces, sampler, nil)
}

// Trace is Radiance with optional work counters.
// The bounce chain is unrolled into a loop with a running throughput, which
// yields the same result as scaling each recursive return value.
func (s *Scene) Trace(ray core.Ray, remainingBounces int, sampler core.Sampler, stats *core.TraceStats) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)

	for ; remainingBounces > 0; remainingBounces-- {
		hit, isHit := s.closestHit(ray, stats)
		if !isHit {
			return throughput.MultiplyVec(s.Background.At(ray))
		}

		throughput = throughput.Multiply(hit.Material.BounceAttenuation())
		if tinter, ok := hit.Material.(material.Tinter); ok {
			throughput = throughput.MultiplyVec(tinter.Tint())
		}

		ray = hit.BounceRay(sampler)
	}

	return throughput.MultiplyVec(s.DepthFloor)
}
