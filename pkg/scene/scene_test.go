package scene

import (
	"math"
	"testing"

	"github.com/df07/go-stratified-raytracer/pkg/core"
	"github.com/df07/go-stratified-raytracer/pkg/geometry"
	"github.com/df07/go-stratified-raytracer/pkg/material"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
)

const tolerance = 1e-9

func rendererConfig(width, height, samples int) renderer.CameraConfig {
	return renderer.CameraConfig{Width: width, Height: height, Samples: samples}
}

func vecClose(a, b core.Vec3) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance && math.Abs(a.Z-b.Z) < tolerance
}

// alwaysHitShape reports a hit one unit along every ray, facing straight up
type alwaysHitShape struct {
	calls int
}

func (s *alwaysHitShape) Hit(ray core.Ray) (*geometry.HitRecord, bool) {
	s.calls++
	return &geometry.HitRecord{
		Point:     ray.At(1),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1,
		FrontFace: true,
	}, true
}

func TestGradient_At(t *testing.T) {
	g := DefaultBackground()

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), g.Top},
		{"straight down", core.NewVec3(0, -1, 0), g.Bottom},
		{"horizon", core.NewVec3(0, 0, 1), core.NewVec3(0.75, 0.85, 1.0)},
		{"unnormalized up", core.NewVec3(0, 5, 0), g.Top},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.At(core.NewRay(core.Vec3{}, tt.direction))
			if !vecClose(got, tt.expected) {
				t.Errorf("At(%v) = %v, want %v", tt.direction, got, tt.expected)
			}
		})
	}
}

func TestScene_ClosestHit_Nearest(t *testing.T) {
	near := material.NewDiffuse(core.NewVec3(1, 0, 0))
	far := material.NewDiffuse(core.NewVec3(0, 0, 1))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	// Insertion order must not matter
	for _, farFirst := range []bool{true, false} {
		s := New()
		if farFirst {
			s.Add(geometry.NewSphere(core.NewVec3(0, 0, 5), 0.5), far)
			s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), near)
		} else {
			s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), near)
			s.Add(geometry.NewSphere(core.NewVec3(0, 0, 5), 0.5), far)
		}

		hit, isHit := s.ClosestHit(ray)
		if !isHit {
			t.Fatalf("Expected hit (farFirst=%v)", farFirst)
		}
		if hit.Material != near {
			t.Errorf("Expected nearest material (farFirst=%v), got %v", farFirst, hit.Material.Color())
		}
		if math.Abs(hit.Point.Z-1.5) > tolerance {
			t.Errorf("Expected hit at z=1.5, got %v", hit.Point)
		}
	}
}

func TestScene_ClosestHit_TieKeepsFirst(t *testing.T) {
	first := material.NewDiffuse(core.NewVec3(1, 0, 0))
	second := material.NewDiffuse(core.NewVec3(0, 1, 0))

	s := New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), first)
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), second)

	hit, isHit := s.ClosestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)))
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.Material != first {
		t.Error("Expected the first added entry to win an exact tie")
	}
}

func TestScene_ClosestHit_SmallDistanceDifference(t *testing.T) {
	// Surfaces 1e-4 apart must still resolve to the nearer one
	near := material.NewDiffuse(core.NewVec3(1, 0, 0))
	far := material.NewDiffuse(core.NewVec3(0, 0, 1))

	s := New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2.0001), 0.5), far)
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), near)

	hit, _ := s.ClosestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)))
	if hit == nil || hit.Material != near {
		t.Error("Expected the nearer sphere to win")
	}
}

func TestScene_ClosestHit_Miss(t *testing.T) {
	s := New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), material.NewDiffuse(core.NewVec3(1, 0, 0)))

	if _, isHit := s.ClosestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))); isHit {
		t.Error("Expected miss")
	}
	if _, isHit := New().ClosestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))); isHit {
		t.Error("Expected empty scene to miss")
	}
}

func TestScene_Radiance_NoBouncesSkipsIntersection(t *testing.T) {
	shape := &alwaysHitShape{}
	s := New()
	s.Add(shape, material.NewDiffuse(core.NewVec3(1, 0, 0)))
	sampler := core.NewSeededSampler(42)

	for _, depth := range []int{0, -1, -10} {
		got := s.Radiance(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), depth, sampler)
		if !vecClose(got, DefaultDepthFloor) {
			t.Errorf("Radiance(depth=%d) = %v, want depth floor %v", depth, got, DefaultDepthFloor)
		}
	}
	if shape.calls != 0 {
		t.Errorf("Expected no intersection tests, got %d", shape.calls)
	}
}

func TestScene_Radiance_MissReturnsBackground(t *testing.T) {
	s := New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), material.NewDiffuse(core.NewVec3(1, 0, 0)))

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))
	got := s.Radiance(ray, 4, core.NewSeededSampler(42))
	if !vecClose(got, s.Background.At(ray)) {
		t.Errorf("Expected background %v, got %v", s.Background.At(ray), got)
	}
}

func TestScene_Radiance_DiffuseHalvesPerBounce(t *testing.T) {
	tests := []struct {
		depth    int
		expected core.Vec3
	}{
		{1, core.NewVec3(0, 0.5, 0)},
		{2, core.NewVec3(0, 0.25, 0)},
		{3, core.NewVec3(0, 0.125, 0)},
	}

	for _, tt := range tests {
		shape := &alwaysHitShape{}
		s := New()
		s.Add(shape, material.NewDiffuse(core.NewVec3(1, 0, 0)))

		got := s.Radiance(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), tt.depth, core.NewSeededSampler(42))
		if !vecClose(got, tt.expected) {
			t.Errorf("depth %d: got %v, want %v", tt.depth, got, tt.expected)
		}
		if shape.calls != tt.depth {
			t.Errorf("depth %d: expected %d intersection tests, got %d", tt.depth, tt.depth, shape.calls)
		}
	}
}

func TestScene_Radiance_DiffuseHitThenBackground(t *testing.T) {
	// A sphere straight ahead; every bounce leaves through the camera-facing
	// hemisphere and escapes, so one hit is followed by a background lookup
	s := New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 2), 0.5), material.NewDiffuse(core.NewVec3(1, 0, 0)))
	sampler := core.NewSeededSampler(7)

	for i := 0; i < 50; i++ {
		got := s.Radiance(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 4, sampler)
		for _, c := range []float64{got.X, got.Y, got.Z} {
			if c < 0.5*0.5-tolerance || c > 0.5+tolerance {
				t.Fatalf("Expected half-attenuated sky color, got %v", got)
			}
		}
		if got.Z < 0.5-tolerance {
			t.Fatalf("Expected blue channel 0.5 from the sky gradient, got %v", got)
		}
	}
}

func TestScene_Radiance_TinterMultipliesAlbedo(t *testing.T) {
	albedo := core.NewVec3(0.5, 1.0, 0.25)
	s := New()
	s.DepthFloor = core.NewVec3(1, 1, 1)
	s.Add(&alwaysHitShape{}, material.NewAttenuatedLambertian(albedo, 0.5))

	got := s.Radiance(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 2, core.NewSeededSampler(42))
	expected := albedo.MultiplyVec(albedo).Multiply(0.25)
	if !vecClose(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestScene_Trace_CountsWork(t *testing.T) {
	s := New()
	s.Add(&alwaysHitShape{}, material.NewDiffuse(core.NewVec3(1, 0, 0)))
	s.Add(&alwaysHitShape{}, material.NewDiffuse(core.NewVec3(1, 0, 0)))

	var stats core.TraceStats
	s.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 3, core.NewSeededSampler(42), &stats)

	if stats.RaysCast != 3 {
		t.Errorf("Expected 3 rays cast, got %d", stats.RaysCast)
	}
	if stats.IntersectionTests != 6 {
		t.Errorf("Expected 6 intersection tests, got %d", stats.IntersectionTests)
	}
}

func TestScene_SatisfiesRendererScene(t *testing.T) {
	var _ renderer.Scene = New()
}
