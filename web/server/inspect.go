package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/labstack/echo/v4"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Color        [3]float64             `json:"color"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo classifies a Phong material and lists its coefficients
func extractMaterialInfo(mat *material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"diffuse":   vec(mat.Diffuse),
		"specular":  vec(mat.Specular),
		"color":     hexColor(mat.Diffuse),
		"ka":        mat.Ka,
		"kd":        mat.Kd,
		"ks":        mat.Ks,
		"shininess": mat.Shininess,
	}

	switch {
	case mat.IsOpaque():
		return "opaque", properties
	case mat.Beer:
		properties["alpha"] = vec(mat.Alpha)
		properties["eta"] = mat.Eta
		return "absorbing", properties
	default:
		properties["alpha"] = mat.AverageAlpha()
		properties["eta"] = mat.Eta
		return "transparent", properties
	}
}

// extractGeometryInfo describes the shaded primitive
func extractGeometryInfo(obj, face geometry.Object, region geometry.Region) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	if mesh, ok := obj.(*geometry.TriangleMesh); ok {
		properties["meshTriangles"] = mesh.GetTriangleCount()
		properties["bvhLevels"] = mesh.BVH().Levels
	}

	switch geom := face.(type) {
	case *geometry.Sphere:
		properties["center"] = vec(geom.Center)
		properties["radius"] = geom.Radius
		properties["textured"] = geom.Texture != nil
		return "sphere", properties

	case *geometry.Cylinder:
		properties["center"] = vec(geom.Center)
		properties["axis"] = vec(geom.Axis())
		properties["radius"] = geom.Radius
		properties["length"] = geom.Length
		switch region {
		case geometry.RegionBase:
			properties["surface"] = "base"
		case geometry.RegionTop:
			properties["surface"] = "top"
		default:
			properties["surface"] = "side"
		}
		return "cylinder", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vec(geom.V0), vec(geom.V1), vec(geom.V2)}
		properties["faceNormal"] = vec(geom.FaceNormal())
		if _, ok := obj.(*geometry.TriangleMesh); ok {
			return "mesh", properties
		}
		return "triangle", properties

	default:
		return "unknown", properties
	}
}

// handleInspect casts the primary ray through pixel (x, y) and describes
// the nearest surface
func (s *Server) handleInspect(c echo.Context) error {
	values := c.QueryParams()
	req, err := parseRenderRequest(values)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}

	x, err := strconv.Atoi(values.Get("x"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, fmt.Errorf("invalid x coordinate"))
	}
	y, err := strconv.Atoi(values.Get("y"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, fmt.Errorf("invalid y coordinate"))
	}

	logger := s.newRenderLogger()
	sc, status, err := s.loadScene(req.Scene, req.Width, req.Height, logger)
	if err != nil {
		return jsonError(c, status, err)
	}

	config := renderer.Config{MaxDepth: req.MaxDepth}
	config.Shadow.Hard = req.HardShadows
	result, err := renderer.InspectPixel(sc, config, x, y)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}

	response := InspectResponse{Hit: result.Hit, Color: vec(result.Color)}
	if !result.Hit {
		return c.JSON(http.StatusOK, response)
	}

	materialType, materialProps := extractMaterialInfo(result.Face.Material())
	geometryType, geometryProps := extractGeometryInfo(result.Object, result.Face, result.Region)

	response.MaterialType = materialType
	response.GeometryType = geometryType
	response.Point = vec(result.Point)
	response.Normal = vec(result.Normal)
	response.Distance = result.Distance
	response.Properties = map[string]interface{}{
		"material": materialProps,
		"geometry": geometryProps,
	}
	return c.JSON(http.StatusOK, response)
}
