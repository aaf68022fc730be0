package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-stratified-raytracer/pkg/loaders"
	"github.com/df07/go-stratified-raytracer/pkg/output"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
	"github.com/df07/go-stratified-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client.
// Zero numeric values keep the scene's own settings.
type RenderRequest struct {
	Scene       string          `json:"scene"`                 // Scene ID from /api/scenes
	Width       int             `json:"width"`                 // Image width
	Height      int             `json:"height"`                // Image height
	Samples     int             `json:"samples"`               // Samples per axis
	MaxDepth    int             `json:"maxDepth"`              // Maximum bounce depth
	Description json.RawMessage `json:"description,omitempty"` // Inline scene, replaces Scene
}

// parseRenderRequest parses query parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, maxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, maxDimension); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", 0, 1, maxDepth); err != nil {
		return nil, err
	}
	return req, nil
}

// validate range-checks a request decoded from JSON
func (r *RenderRequest) validate() error {
	for _, field := range []struct {
		name  string
		value int
		max   int
	}{
		{"width", r.Width, maxDimension},
		{"height", r.Height, maxDimension},
		{"samples", r.Samples, maxSamples},
		{"maxDepth", r.MaxDepth, maxDepth},
	} {
		if field.value < 0 || field.value > field.max {
			return fmt.Errorf("%s must be between 1 and %d, got: %d", field.name, field.max, field.value)
		}
	}
	if r.Scene == "" && len(r.Description) == 0 {
		return errors.New("scene or description is required")
	}
	return nil
}

// buildPreset resolves the request's scene and applies its overrides
func (s *Server) buildPreset(req *RenderRequest) (*scene.Preset, error) {
	override := renderer.CameraConfig{Width: req.Width, Height: req.Height, Samples: req.Samples}

	var preset *scene.Preset
	if len(req.Description) > 0 {
		desc, err := loaders.ParseSceneDescription(bytes.NewReader(req.Description))
		if err != nil {
			return nil, err
		}
		if preset, err = scene.FromDescription(desc, override); err != nil {
			return nil, err
		}
	} else {
		// Only listed scenes may be rendered, never arbitrary paths
		if strings.ContainsAny(req.Scene, `/\`) || strings.Contains(req.Scene, "..") || strings.HasSuffix(req.Scene, ".json") {
			return nil, fmt.Errorf("%q: %w", req.Scene, scene.ErrUnknownScene)
		}
		var err error
		if preset, err = scene.Create(req.Scene, override); err != nil {
			return nil, err
		}
	}

	if req.MaxDepth > 0 {
		preset.SamplingConfig.MaxDepth = req.MaxDepth
	}

	// Descriptions carry their own camera and depth, so the final preset is
	// checked against the same limits as the request
	cam := preset.CameraConfig
	if cam.Width > maxDimension || cam.Height > maxDimension {
		return nil, fmt.Errorf("%dx%d exceeds the %d pixel dimension limit", cam.Width, cam.Height, maxDimension)
	}
	if cam.Width > 0 && cam.Height > s.cfg.MaxPixels/cam.Width {
		return nil, fmt.Errorf("%dx%d exceeds the %d pixel limit", cam.Width, cam.Height, s.cfg.MaxPixels)
	}
	if cam.Samples > maxSamples {
		return nil, fmt.Errorf("samples must be at most %d, got: %d", maxSamples, cam.Samples)
	}
	if preset.SamplingConfig.MaxDepth > maxDepth {
		return nil, fmt.Errorf("maxDepth must be at most %d, got: %d", maxDepth, preset.SamplingConfig.MaxDepth)
	}
	return preset, nil
}

// handleRender renders synchronously and responds with the PNG
func (s *Server) handleRender(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	preset, err := s.buildPreset(req)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	rt, err := preset.NewRaytracer(NewJobLogger("sync", nil, s.logOut))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	var buf bytes.Buffer
	if _, err := rt.Render(output.NewPNGSink(&buf, s.cfg.Resize())); err != nil {
		return jsonError(c, http.StatusInternalServerError, "Render error: "+err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// handleCreateJob queues an asynchronous render
func (s *Server) handleCreateJob(c echo.Context) error {
	var req RenderRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	preset, err := s.buildPreset(&req)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	job, err := s.jobs.Submit(preset)
	if errors.Is(err, ErrQueueFull) {
		return jsonError(c, http.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusAccepted, job.View())
}

func (s *Server) lookupJob(c echo.Context) (*Job, error) {
	job, err := s.jobs.Get(c.Param("id"))
	if err != nil {
		return nil, jsonError(c, http.StatusNotFound, err.Error())
	}
	return job, nil
}

// handleGetJob reports job status, stats and console
func (s *Server) handleGetJob(c echo.Context) error {
	job, err := s.lookupJob(c)
	if job == nil {
		return err
	}
	return c.JSON(http.StatusOK, job.View())
}

// handleJobImage serves the finished PNG
func (s *Server) handleJobImage(c echo.Context) error {
	job, err := s.lookupJob(c)
	if job == nil {
		return err
	}

	if status := job.Status(); status != JobDone {
		return jsonError(c, http.StatusConflict, fmt.Sprintf("render is %s", status))
	}
	_, data := job.Result()
	return c.Blob(http.StatusOK, "image/png", data)
}

// handleJobThumbnail serves a downscaled copy of the finished image
func (s *Server) handleJobThumbnail(c echo.Context) error {
	job, err := s.lookupJob(c)
	if job == nil {
		return err
	}

	size, err := parseIntParam(c.QueryParams(), "size", 128, 16, 512)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	if status := job.Status(); status != JobDone {
		return jsonError(c, http.StatusConflict, fmt.Sprintf("render is %s", status))
	}
	img, _ := job.Result()

	var buf bytes.Buffer
	if err := png.Encode(&buf, output.Thumbnail(img, uint(size))); err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
