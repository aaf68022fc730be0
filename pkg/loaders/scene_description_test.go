package loaders

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSceneDescription(t *testing.T) {
	input := `{
  "name": "Row",
  "maxDepth": 6,
  "camera": {"origin": [0, 1, -1], "samples": 3},
  "background": {"top": [0, 0, 1], "bottom": [1, 1, 1]},
  "depthFloor": [0, 0, 0],
  "objects": [
    {"shape": {"kind": "sphere", "center": [0, 0, 2], "radius": 0.5},
     "material": {"kind": "lambertian", "albedo": [0.2, 0.4, 0.6], "attenuation": 0.75}}
  ]
}`

	desc, err := ParseSceneDescription(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSceneDescription error: %v", err)
	}

	if desc.Name != "Row" || desc.MaxDepth != 6 {
		t.Errorf("Unexpected header: %+v", desc)
	}
	if desc.Camera == nil || desc.Camera.Origin == nil || *desc.Camera.Origin != (Vec{0, 1, -1}) {
		t.Errorf("Camera origin not parsed: %+v", desc.Camera)
	}
	if desc.Camera.Samples != 3 {
		t.Errorf("Expected 3 samples, got %d", desc.Camera.Samples)
	}
	if desc.DepthFloor == nil || *desc.DepthFloor != (Vec{}) {
		t.Errorf("Depth floor not parsed: %v", desc.DepthFloor)
	}
	if len(desc.Objects) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(desc.Objects))
	}

	obj := desc.Objects[0]
	if obj.Shape.Kind != ShapeSphere || obj.Shape.Radius != 0.5 || obj.Shape.Center != (Vec{0, 0, 2}) {
		t.Errorf("Unexpected shape: %+v", obj.Shape)
	}
	if obj.Material.Attenuation == nil || *obj.Material.Attenuation != 0.75 {
		t.Errorf("Unexpected attenuation: %v", obj.Material.Attenuation)
	}
}

func TestParseSceneDescription_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		unknownKind bool
	}{
		{"malformed json", `{"objects": [`, false},
		{"unknown field", `{"objects": [], "lights": []}`, false},
		{"negative depth", `{"maxDepth": -1, "objects": []}`, false},
		{"unknown shape", `{"objects": [{"shape": {"kind": "cube"}, "material": {"kind": "diffuse", "albedo": [1, 1, 1]}}]}`, true},
		{"unknown material", `{"objects": [{"shape": {"kind": "sphere", "radius": 1}, "material": {"kind": "metal", "albedo": [1, 1, 1]}}]}`, true},
		{"zero radius", `{"objects": [{"shape": {"kind": "sphere", "radius": 0}, "material": {"kind": "diffuse", "albedo": [1, 1, 1]}}]}`, false},
		{"zero plane normal", `{"objects": [{"shape": {"kind": "plane", "point": [0, 0, 0]}, "material": {"kind": "diffuse", "albedo": [1, 1, 1]}}]}`, false},
		{"attenuation out of range", `{"objects": [{"shape": {"kind": "sphere", "radius": 1}, "material": {"kind": "lambertian", "albedo": [1, 1, 1], "attenuation": 2}}]}`, false},
		{"diffuse attenuation", `{"objects": [{"shape": {"kind": "sphere", "radius": 1}, "material": {"kind": "diffuse", "albedo": [1, 1, 1], "attenuation": 0.5}}]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSceneDescription(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected error")
			}
			if errors.Is(err, ErrUnknownKind) != tt.unknownKind {
				t.Errorf("errors.Is(err, ErrUnknownKind) = %v, want %v (err: %v)", !tt.unknownKind, tt.unknownKind, err)
			}
		})
	}
}

func TestSaveAndLoadSceneDescription(t *testing.T) {
	attenuation := 0.5
	original := &SceneDescription{
		Name:     "Saved",
		MaxDepth: 2,
		Objects: []ObjectDescription{
			{
				Shape:    ShapeDescription{Kind: ShapePlane, Point: Vec{0, -1, 0}, Normal: Vec{0, 1, 0}},
				Material: MaterialDescription{Kind: MaterialLambertian, Albedo: Vec{0.8, 0.8, 0}, Attenuation: &attenuation},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "saved.json")
	if err := SaveSceneDescription(path, original); err != nil {
		t.Fatalf("SaveSceneDescription error: %v", err)
	}

	loaded, err := LoadSceneDescription(path)
	if err != nil {
		t.Fatalf("LoadSceneDescription error: %v", err)
	}
	if loaded.Name != "Saved" || len(loaded.Objects) != 1 {
		t.Fatalf("Unexpected description: %+v", loaded)
	}
	if loaded.Objects[0].Shape.Normal != (Vec{0, 1, 0}) {
		t.Errorf("Plane normal lost: %+v", loaded.Objects[0].Shape)
	}
}

func TestLoadSceneDescription_MissingFile(t *testing.T) {
	if _, err := LoadSceneDescription(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
