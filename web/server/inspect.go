package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-stratified-raytracer/pkg/core"
	"github.com/df07/go-stratified-raytracer/pkg/geometry"
	"github.com/df07/go-stratified-raytracer/pkg/material"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
	"github.com/df07/go-stratified-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func triple(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := renderer.ColorToRGBA(v, 1.0)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// extractMaterialInfo describes a material using type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"attenuation": mat.BounceAttenuation(),
		"color":       hexColor(mat.Color()),
	}

	switch m := mat.(type) {
	case *material.Diffuse:
		properties["albedo"] = triple(m.Albedo)
		return "diffuse", properties
	case *material.Lambertian:
		properties["albedo"] = triple(m.Albedo)
		return "lambertian", properties
	default:
		if tinter, ok := mat.(material.Tinter); ok {
			properties["tint"] = triple(tinter.Tint())
		}
		return "unknown", properties
	}
}

// extractGeometryInfo describes a shape
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = triple(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties
	case *geometry.Plane:
		properties["point"] = triple(geom.Point)
		properties["normal"] = triple(geom.Normal)
		return "plane", properties
	default:
		return "unknown", properties
	}
}

// inspectPixel casts the ray through the center of pixel (x, y), with y
// counted from the top row, and returns the nearest hit
func inspectPixel(preset *scene.Preset, x, y int) (*scene.Hit, bool, error) {
	camera, err := renderer.NewCamera(preset.CameraConfig)
	if err != nil {
		return nil, false, err
	}

	width, height := preset.CameraConfig.Width, preset.CameraConfig.Height
	u := (float64(x) + 0.5) / float64(width)
	v := (float64(height-1-y) + 0.5) / float64(height)

	hit, isHit := preset.Scene.ClosestHit(camera.GetRay(u, v))
	return hit, isHit, nil
}

// handleInspect reports which object is visible through a pixel
func (s *Server) handleInspect(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
	}

	preset, err := s.buildPreset(req)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	width, height := preset.CameraConfig.Width, preset.CameraConfig.Height
	x, err := parseIntParam(c.QueryParams(), "x", -1, 0, width-1)
	if err != nil || x < 0 {
		return jsonError(c, http.StatusBadRequest, "Invalid x coordinate")
	}
	y, err := parseIntParam(c.QueryParams(), "y", -1, 0, height-1)
	if err != nil || y < 0 {
		return jsonError(c, http.StatusBadRequest, "Invalid y coordinate")
	}

	hit, isHit, err := inspectPixel(preset, x, y)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if !isHit {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	materialType, materialProps := extractMaterialInfo(hit.Material)
	geometryType, geometryProps := extractGeometryInfo(hit.Shape)

	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        triple(hit.Point),
		Normal:       triple(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
