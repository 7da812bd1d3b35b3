package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// DefaultBVHLevels is the split depth used when a mesh does not name one
const DefaultBVHLevels = 8

// ErrEmptyMesh is returned when a mesh is built without triangles
var ErrEmptyMesh = errors.New("mesh has no triangles")

// TriangleMesh represents a collection of triangles with efficient ray intersection.
// It uses an internal BVH for fast intersection tests; on a hit the concrete
// triangle is recorded as the shading face.
type TriangleMesh struct {
	id        int
	triangles []*Triangle
	bvh       *BVH
	bbox      core.AABB          // Overall bounding box
	material  *material.Material // Default material (triangles carry their own)
}

// NewTriangleMesh wraps prebuilt triangles in a BVH with the given split depth
func NewTriangleMesh(triangles []*Triangle, levels int, mat *material.Material) (*TriangleMesh, error) {
	if len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}
	if levels < 0 {
		return nil, fmt.Errorf("invalid BVH depth %d", levels)
	}

	bbox := core.EmptyAABB()
	for _, tri := range triangles {
		bbox = bbox.Union(tri.BoundingBox())
	}

	return &TriangleMesh{
		id:        nextID(),
		triangles: triangles,
		bvh:       NewBVH(triangles, levels),
		bbox:      bbox,
		material:  mat,
	}, nil
}

// NewTriangleMeshFromFaces creates a flat-shaded mesh from vertices and face indices.
// Every group of 3 zero-based indices forms a triangle.
func NewTriangleMeshFromFaces(vertices []core.Vec3, faces []int, levels int, mat *material.Material) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face indices must be a multiple of 3, got %d", len(faces))
	}

	triangles := make([]*Triangle, 0, len(faces)/3)
	for i := 0; i < len(faces); i += 3 {
		i0, i1, i2 := faces[i], faces[i+1], faces[i+2]
		for _, idx := range [3]int{i0, i1, i2} {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("face %d: vertex index %d out of range [0, %d)", i/3, idx, len(vertices))
			}
		}
		triangles = append(triangles, NewTriangle(vertices[i0], vertices[i1], vertices[i2], mat))
	}

	return NewTriangleMesh(triangles, levels, mat)
}

func (tm *TriangleMesh) ID() int                      { return tm.id }
func (tm *TriangleMesh) Material() *material.Material { return tm.material }

// Intersect delegates to the BVH and reports the mesh as the hit object
func (tm *TriangleMesh) Intersect(ray core.Ray, hit *HitRecord) bool {
	if !tm.bvh.Intersect(ray, hit) {
		return false
	}
	hit.Object = tm
	return true
}

// CollectOccluders reports every distinct triangle along a shadow ray
func (tm *TriangleMesh) CollectOccluders(ray core.Ray, tMin, tMax float64, exclude Object, visit func(Object)) {
	tm.bvh.CollectOccluders(ray, tMin, tMax, exclude, visit)
}

// Normal, Diffuse and Specular defer to the triangle recorded in hit
func (tm *TriangleMesh) Normal(point core.Vec3, hit *HitRecord) core.Vec3 {
	return tm.face(hit).Normal(point, hit)
}

func (tm *TriangleMesh) Diffuse(point core.Vec3, hit *HitRecord) core.Vec3 {
	return tm.face(hit).Diffuse(point, hit)
}

func (tm *TriangleMesh) Specular(hit *HitRecord) core.Vec3 {
	return tm.face(hit).Specular(hit)
}

func (tm *TriangleMesh) face(hit *HitRecord) Object {
	if hit.Face != nil && hit.Face != Object(tm) {
		return hit.Face
	}
	return tm.triangles[0]
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// GetTriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return len(tm.triangles)
}

// GetTriangles returns the individual triangles
func (tm *TriangleMesh) GetTriangles() []*Triangle {
	return tm.triangles
}

// BVH exposes the acceleration structure for statistics
func (tm *TriangleMesh) BVH() *BVH {
	return tm.bvh
}
