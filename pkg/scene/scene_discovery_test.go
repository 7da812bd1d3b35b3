package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"glass-spheres", "Glass Spheres"},
		{"teapot_gold", "Teapot Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete.txt",
			content: `// Scene: Glass Box
// Description: Nested transparent spheres
// Group: Refraction

` + cameraHeader,
			expected: SceneInfo{
				ID:          "file:complete",
				Name:        "Glass Box",
				Description: "Nested transparent spheres",
				Group:       "Refraction",
				Type:        TypeFile,
			},
		},
		{
			name:    "no_metadata.txt",
			content: cameraHeader,
			expected: SceneInfo{
				ID:    "file:no_metadata",
				Name:  "No Metadata",
				Group: "Scene Files",
				Type:  TypeFile,
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.name, tc.content)
			tc.expected.FilePath = path

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestListSceneFiles_MissingDirectory(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Errorf("ListSceneFiles() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected an empty slice, got %v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "b-scene.txt", cameraHeader)
	writeSceneFile(t, dir, "a-scene.txt", "// Group: Extra\n"+cameraHeader)
	writeSceneFile(t, dir, "ignored.pbrt", "")

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	wantGroups := []string{"Built-in Scenes", "Extra", "Scene Files"}
	if len(response.Groups) != len(wantGroups) {
		t.Fatalf("Expected %d groups, got %+v", len(wantGroups), response.Groups)
	}
	for i, want := range wantGroups {
		if response.Groups[i].Name != want {
			t.Errorf("Group %d = %q, want %q", i, response.Groups[i].Name, want)
		}
	}

	builtin := response.Groups[0].Scenes
	if len(builtin) != len(Presets()) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtin), len(Presets()))
	}
	for _, info := range builtin {
		if info.Type != TypeBuiltin || info.FilePath != "" {
			t.Errorf("Unexpected built-in entry %+v", info)
		}
	}

	files := response.Groups[2].Scenes
	if len(files) != 1 || files[0].ID != "file:b-scene" {
		t.Errorf("Unexpected scene files %+v", files)
	}
}

func TestLoadByID(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "simple.txt", cameraHeader)

	tests := []struct {
		id      string
		wantErr error
	}{
		{"default", nil},
		{"cylinder", nil},
		{"file:simple", nil},
		{"teapot", ErrUnknownScene},
		{"file:missing", ErrUnknownScene},
		{"file:../simple", ErrUnknownScene},
		{"file:", ErrUnknownScene},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := LoadByID(dir, tt.id, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadByID(%q) error: %v", tt.id, err)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Loaded scene is invalid: %v", err)
			}
		})
	}
}
