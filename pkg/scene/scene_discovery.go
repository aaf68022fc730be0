package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-stratified-raytracer/pkg/loaders"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
)

// ErrUnknownScene is returned when a scene name matches no built-in scene or file
var ErrUnknownScene = errors.New("unknown scene")

// Scene types reported in SceneInfo.Type
const (
	TypeBuiltin = "builtin"
	TypeJSON    = "json"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Name accepted by Create
	Name        string `json:"name"`               // Scene name
	DisplayName string `json:"displayName"`        // UI display name
	Description string `json:"description"`        // Optional description
	Type        string `json:"type"`               // "builtin" or "json"
	FilePath    string `json:"filePath,omitempty"` // Path to the description (json type only)
}

type builtinScene struct {
	info   SceneInfo
	create func(cameraOverrides ...renderer.CameraConfig) *Preset
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Three red diffuse spheres in a row",
		},
		create: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "single",
			Name:        "Single Sphere",
			Description: "One red diffuse sphere straight ahead",
		},
		create: NewSingleSphereScene,
	},
	{
		info: SceneInfo{
			ID:          "ground",
			Name:        "Ground Plane",
			Description: "Tinted sphere resting on a ground plane",
		},
		create: NewGroundScene,
	},
}

// ScenesDirs are the directories searched for JSON scene descriptions, first match wins
var ScenesDirs = []string{"scenes", "../scenes"}

// ListScenes returns the built-in scenes followed by any JSON scenes found in
// the scenes directory, sorted by name
func ListScenes() ([]SceneInfo, error) {
	var scenes []SceneInfo
	for _, b := range builtinScenes {
		info := b.info
		info.DisplayName = info.Name
		info.Type = TypeBuiltin
		scenes = append(scenes, info)
	}

	if dir := findScenesDir(); dir != "" {
		jsonScenes, err := ListJSONScenes(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list JSON scenes: %w", err)
		}
		scenes = append(scenes, jsonScenes...)
	}

	sort.SliceStable(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ListJSONScenes scans dir for *.json scene descriptions.
// Files that fail to parse are skipped with a warning.
func ListJSONScenes(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var scenes []SceneInfo
	for _, filePath := range files {
		desc, err := loaders.LoadSceneDescription(filePath)
		if err != nil {
			fmt.Printf("Warning: skipping scene %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, jsonSceneInfo(filePath, desc))
	}
	return scenes, nil
}

func jsonSceneInfo(filePath string, desc *loaders.SceneDescription) SceneInfo {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	name := desc.Name
	if name == "" {
		name = titleCase(nameWithoutExt)
	}
	return SceneInfo{
		ID:          "json:" + nameWithoutExt,
		Name:        name,
		DisplayName: name,
		Description: desc.Description,
		Type:        TypeJSON,
		FilePath:    filePath,
	}
}

// Create builds the named scene. The name may be a built-in scene ID, a
// "json:<name>" ID from ListScenes, or a path to a .json description.
func Create(name string, cameraOverrides ...renderer.CameraConfig) (*Preset, error) {
	for _, b := range builtinScenes {
		if b.info.ID == name {
			return b.create(cameraOverrides...), nil
		}
	}

	path := ""
	switch {
	case strings.HasPrefix(name, "json:"):
		dir := findScenesDir()
		if dir == "" {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownScene)
		}
		path = filepath.Join(dir, strings.TrimPrefix(name, "json:")+".json")
	case strings.HasSuffix(name, ".json"):
		path = name
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownScene)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownScene)
	}
	desc, err := loaders.LoadSceneDescription(path)
	if err != nil {
		return nil, err
	}
	return FromDescription(desc, cameraOverrides...)
}

func findScenesDir() string {
	for _, path := range ScenesDirs {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
