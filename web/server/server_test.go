package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	content := `// Scene: Single Sphere
imsize 8 8
eye 0 0 0
viewdir 0 0 -1
updir 0 1 0
hfov 40
bkgcolor 0 0 0 1
light 0 0 0 1 1 1 1
mtlcolor 1 0 0 1 1 1 0.1 0.8 0 1 1 1
sphere 0 0 -5 1
`
	if err := os.WriteFile(filepath.Join(dir, "sphere.txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return NewServer(0, dir)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response scene.ScenesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected built-in and file groups, got %+v", response.Groups)
	}
	files := response.Groups[1].Scenes
	if len(files) != 1 || files[0].ID != "file:sphere" || files[0].Name != "Single Sphere" {
		t.Errorf("Unexpected scene files %+v", files)
	}
}

func TestHandleRender(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/render?scene=default&width=16&height=9&workers=2&hardShadows=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Errorf("Expected 16x9, got %dx%d", b.Dx(), b.Dy())
	}
	if got := rec.Header().Get("X-Primary-Rays"); got != "144" {
		t.Errorf("Expected 144 primary rays, got %s", got)
	}
	if got := rec.Header().Get("X-Render-Workers"); got != "2" {
		t.Errorf("Expected 2 workers, got %s", got)
	}

	if len(s.console.Messages()) == 0 {
		t.Error("Expected render messages on the console")
	}
}

func TestHandleRender_KeepsAspect(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/render?scene=default&width=16&hardShadows=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	// Default scene is 400x225
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Errorf("Expected 16x9, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestHandleRender_SceneFilePPM(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/render?scene=file:sphere&format=ppm")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/x-portable-pixmap" {
		t.Errorf("Expected PPM content type, got %s", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "P3\n8 8\n255\n") {
		t.Errorf("Unexpected PPM header: %q", rec.Body.String()[:12])
	}
}

func TestHandleRender_Errors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		target string
		status int
	}{
		{"/api/render?scene=teapot", http.StatusNotFound},
		{"/api/render?scene=file:../sphere", http.StatusNotFound},
		{"/api/render?width=0", http.StatusBadRequest},
		{"/api/render?width=abc", http.StatusBadRequest},
		{"/api/render?height=5000", http.StatusBadRequest},
		{"/api/render?format=exr", http.StatusBadRequest},
		{"/api/render?hardShadows=maybe", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("Expected a JSON error, got %q", rec.Body.String())
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer(t)

	// The camera looks at the sphere center; pixel (4,4) is just off axis
	rec := get(t, s, "/api/inspect?scene=file:sphere&x=4&y=4")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if !response.Hit || response.GeometryType != "sphere" || response.MaterialType != "opaque" {
		t.Errorf("Unexpected inspection %+v", response)
	}
	if response.Distance < 4 || response.Distance > 4.1 {
		t.Errorf("Expected distance near 4, got %f", response.Distance)
	}

	miss := get(t, s, "/api/inspect?scene=file:sphere&x=0&y=0")
	if err := json.Unmarshal(miss.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if response.Hit {
		t.Error("Expected a miss in the corner")
	}
}

func TestHandleInspect_Errors(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{
		"/api/inspect?scene=file:sphere&x=a&y=0",
		"/api/inspect?scene=file:sphere&x=0",
		"/api/inspect?scene=file:sphere&x=8&y=0",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestHandleConsole(t *testing.T) {
	s := newTestServer(t)
	get(t, s, "/api/render?scene=file:sphere&hardShadows=true")

	rec := get(t, s, "/api/console")
	var messages []ConsoleMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &messages); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(messages) == 0 || messages[0].RenderID != "render-1" {
		t.Errorf("Expected messages from render-1, got %+v", messages)
	}
}
