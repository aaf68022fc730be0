package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-stratified-raytracer/pkg/core"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectHit      bool
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectHit:      true,
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			// The near root is behind the origin, and the far root is never used
			name:         "origin inside sphere",
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(0, 0, 1),
			expectHit:    false,
		},
		{
			name:         "sphere behind ray",
			rayOrigin:    core.NewVec3(0, 0, 3),
			rayDirection: core.NewVec3(0, 0, 1),
			expectHit:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray)

			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, isHit)
			}
			if !isHit {
				return
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}

			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestHitRecord_SetFaceNormal_BackFace(t *testing.T) {
	var rec HitRecord
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	rec.SetFaceNormal(ray, core.NewVec3(0, 0, 1))

	if rec.FrontFace {
		t.Errorf("Expected back face when ray travels along the outward normal")
	}
	if rec.Normal != core.NewVec3(0, 0, -1) {
		t.Errorf("Expected flipped normal (0, 0, -1), got %v", rec.Normal)
	}
}

func TestSphere_Hit_PointOnSurface(t *testing.T) {
	center := core.NewVec3(0, 0, 2)
	radius := 0.5
	sphere := NewSphere(center, radius)

	origins := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(3, 1, -2),
		core.NewVec3(-4, 7, 2),
		core.NewVec3(0.1, -0.2, 10),
	}

	for _, origin := range origins {
		ray := core.NewRay(origin, center.Subtract(origin))
		hit, isHit := sphere.Hit(ray)
		if !isHit {
			t.Fatalf("Expected hit for ray from %v aimed at center", origin)
		}

		distance := hit.Point.Subtract(center).Length()
		if math.Abs(distance-radius) > 1e-9 {
			t.Errorf("Hit point %v is %f from center, expected %f", hit.Point, distance, radius)
		}
		if hit.T <= 0 {
			t.Errorf("Expected positive t, got %f", hit.T)
		}
	}
}

func TestSphere_Hit_NormalFacesRay(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	random := rand.New(rand.NewSource(42))

	hits := 0
	for i := 0; i < 1000; i++ {
		origin := core.NewVec3(random.Float64()*8-4, random.Float64()*8-4, random.Float64()*8-4)
		target := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		ray := core.NewRay(origin, target.Subtract(origin))

		hit, isHit := sphere.Hit(ray)
		if !isHit {
			continue
		}
		hits++
		if ray.Direction.Dot(hit.Normal) > 0 {
			t.Fatalf("Normal %v does not face ray direction %v", hit.Normal, ray.Direction)
		}
	}
	if hits == 0 {
		t.Fatal("Expected at least one hit")
	}
}

func TestSphere_Hit_NoSelfIntersection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 2), 0.5)
	random := rand.New(rand.NewSource(1))

	const epsilon = 1e-6
	for i := 0; i < 500; i++ {
		origin := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, -1)
		ray := core.NewRay(origin, sphere.Center.Subtract(origin).Add(
			core.NewVec3(random.Float64()*0.4-0.2, random.Float64()*0.4-0.2, 0)))

		hit, isHit := sphere.Hit(ray)
		if !isHit {
			continue
		}

		bounce := core.NewRay(hit.Point, hit.Normal)
		again, isHit := sphere.Hit(bounce)
		if isHit && again.T <= epsilon {
			t.Fatalf("Bounce ray re-intersected its own surface at t=%g", again.T)
		}
	}
}

func TestSphere_Hit_DegenerateRadius(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	for _, radius := range []float64{0, -1} {
		sphere := NewSphere(core.NewVec3(0, 0, 2), radius)
		if _, isHit := sphere.Hit(ray); isHit {
			t.Errorf("Radius %f should never intersect", radius)
		}
	}
}

func TestSphere_Hit_Tangent(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	// Passes just outside the silhouette
	ray := core.NewRay(core.NewVec3(1.0000001, 0, 5), core.NewVec3(0, 0, -1))
	if _, isHit := sphere.Hit(ray); isHit {
		t.Errorf("Expected miss for ray outside the silhouette")
	}
}
