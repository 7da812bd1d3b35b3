package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Scene sources
const (
	TypeBuiltin = "builtin"
	TypeFile    = "file"
)

const (
	builtinGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"
	filePrefix   = "file:"
	sceneExt     = ".txt"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Preset id or "file:<name>"
	Name        string `json:"name"`               // Scene name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	Type        string `json:"type"`               // "builtin" or "file"
	FilePath    string `json:"filePath,omitempty"` // Scene file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// ListSceneFiles returns the scene files in dir. A missing directory yields
// an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+sceneExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, path := range files {
		info, err := ParseSceneMetadata(path)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata reads "// Scene:", "// Description:" and "// Group:"
// lines from the comment header of a scene file
func ParseSceneMetadata(path string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := SceneInfo{
		ID:       filePrefix + base,
		Name:     titleCase(base),
		Group:    fileGroup,
		Type:     TypeFile,
		FilePath: path,
	}

	file, err := os.Open(path)
	if err != nil {
		return info, fmt.Errorf("failed to read scene metadata: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "//") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "//"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			info.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case strings.HasPrefix(content, "Group:"):
			info.Group = strings.TrimSpace(strings.TrimPrefix(content, "Group:"))
		}
	}
	return info, scanner.Err()
}

// ListAllScenes returns the presets and the scene files in dir, grouped by
// category with the built-in group first
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	var all []SceneInfo
	for _, p := range presets {
		all = append(all, SceneInfo{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Group:       builtinGroup,
			Type:        TypeBuiltin,
		})
	}

	files, err := ListSceneFiles(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}
	all = append(all, files...)

	groupMap := make(map[string][]SceneInfo)
	var groupNames []string
	for _, info := range all {
		if _, ok := groupMap[info.Group]; !ok && info.Group != builtinGroup {
			groupNames = append(groupNames, info.Group)
		}
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: groupMap[builtinGroup]})
	for _, name := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: name, Scenes: groupMap[name]})
	}
	return response, nil
}

// LoadByID builds a preset or reads "file:<name>" from dir. File ids are
// restricted to plain names inside dir.
func LoadByID(dir, id string, logger core.Logger) (*Scene, error) {
	name, isFile := strings.CutPrefix(id, filePrefix)
	if !isFile {
		return NewPreset(id)
	}

	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	path := filepath.Join(dir, name+sceneExt)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return LoadScene(path, logger)
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
