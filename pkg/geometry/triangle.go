package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

const degenerateEpsilon = 1e-15

// TriangleOptions carries the optional per-vertex data of a triangle
type TriangleOptions struct {
	Normals   *[3]core.Vec3 // Vertex normals for smooth shading
	UVs       *[3]core.Vec3 // Texture coordinates in X (u) and Y (v)
	Texture   *material.ImageTexture
	NormalMap *material.NormalMap
}

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices

	id  int
	mat *material.Material

	normals   *[3]core.Vec3
	uvs       *[3]core.Vec3
	texture   *material.ImageTexture
	normalMap *material.NormalMap

	// Cached values
	edge1, edge2       core.Vec3
	normal             core.Vec3 // Unit face normal, (V1-V0)×(V2-V0)
	planeD             float64   // Plane equation normal·P + planeD = 0
	d11, d22, d12      float64   // Edge Gram matrix for barycentrics
	det                float64
	tangent, bitangent core.Vec3
	bbox               core.AABB
}

// NewTriangle creates a flat-shaded triangle
func NewTriangle(v0, v1, v2 core.Vec3, mat *material.Material) *Triangle {
	return NewTriangleWithOptions(v0, v1, v2, mat, TriangleOptions{})
}

// NewTriangleWithOptions creates a triangle with optional vertex normals,
// texture coordinates, texture and normal map. A texture or normal map without
// texture coordinates is ignored.
func NewTriangleWithOptions(v0, v1, v2 core.Vec3, mat *material.Material, opts TriangleOptions) *Triangle {
	t := &Triangle{
		V0:  v0,
		V1:  v1,
		V2:  v2,
		id:  nextID(),
		mat: mat,
	}

	if opts.Normals != nil {
		normals := [3]core.Vec3{
			opts.Normals[0].Normalize(),
			opts.Normals[1].Normalize(),
			opts.Normals[2].Normalize(),
		}
		t.normals = &normals
	}
	if opts.UVs != nil {
		uvs := *opts.UVs
		t.uvs = &uvs
		t.texture = opts.Texture
		t.normalMap = opts.NormalMap
	}

	t.computePlane()
	t.computeTangentFrame()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)
	return t
}

// computePlane caches the face normal, plane offset and the Gram matrix
func (t *Triangle) computePlane() {
	t.edge1 = t.V1.Subtract(t.V0)
	t.edge2 = t.V2.Subtract(t.V0)
	t.normal = t.edge1.Cross(t.edge2).Normalize()
	t.planeD = -t.normal.Dot(t.V0)

	t.d11 = t.edge1.Dot(t.edge1)
	t.d22 = t.edge2.Dot(t.edge2)
	t.d12 = t.edge1.Dot(t.edge2)
	t.det = t.d11*t.d22 - t.d12*t.d12
}

// computeTangentFrame derives tangent and bitangent from UV deltas.
// A zero UV determinant disables normal mapping.
func (t *Triangle) computeTangentFrame() {
	if t.normalMap == nil {
		return
	}

	du1 := t.uvs[1].X - t.uvs[0].X
	du2 := t.uvs[2].X - t.uvs[0].X
	dv1 := t.uvs[1].Y - t.uvs[0].Y
	dv2 := t.uvs[2].Y - t.uvs[0].Y

	d := -du1*dv2 + du2*dv1
	if math.Abs(d) < degenerateEpsilon {
		t.normalMap = nil
		return
	}

	t.tangent = t.edge1.Multiply(-dv2).Add(t.edge2.Multiply(dv1)).Multiply(1 / d).Normalize()
	t.bitangent = t.edge1.Multiply(-du2).Add(t.edge2.Multiply(du1)).Multiply(1 / d).Normalize()
}

func (t *Triangle) ID() int                      { return t.id }
func (t *Triangle) Material() *material.Material { return t.mat }

// Degenerate reports whether the triangle has (numerically) zero area and can never be hit
func (t *Triangle) Degenerate() bool {
	return t.det <= 1e-12*t.d11*t.d22
}

// Intersect hits the supporting plane, then solves the barycentrics with
// Cramer's rule on the 2x2 normal equations of the edge basis.
func (t *Triangle) Intersect(ray core.Ray, hit *HitRecord) bool {
	if t.Degenerate() {
		return false
	}

	td := t.normal.Dot(ray.Direction)
	if math.Abs(td) < degenerateEpsilon {
		return false
	}
	tHit := -(t.normal.Dot(ray.Origin) + t.planeD) / td
	if !hit.accepts(tHit) {
		return false
	}

	ep := ray.At(tHit).Subtract(t.V0)
	d1p := t.edge1.Dot(ep)
	d2p := t.edge2.Dot(ep)

	beta := (t.d22*d1p - t.d12*d2p) / t.det
	gamma := (t.d11*d2p - t.d12*d1p) / t.det
	alpha := 1 - (beta + gamma)

	if beta < 0 || beta > 1 || gamma < 0 || gamma > 1 || alpha < 0 || alpha > 1 {
		return false
	}

	hit.T = tHit
	hit.Object = t
	hit.Face = t
	hit.Alpha, hit.Beta, hit.Gamma = alpha, beta, gamma
	hit.Region = RegionNone
	return true
}

// Normal returns the face normal, the interpolated vertex normal for smooth
// triangles, or the normal-mapped normal when a normal map is attached.
func (t *Triangle) Normal(point core.Vec3, hit *HitRecord) core.Vec3 {
	n := t.normal
	if t.normals != nil {
		smooth := t.normals[0].Multiply(hit.Alpha).
			Add(t.normals[1].Multiply(hit.Beta)).
			Add(t.normals[2].Multiply(hit.Gamma)).
			Normalize()
		if !smooth.IsZero(1e-12) {
			n = smooth
		}
	}

	if t.normalMap == nil {
		return n
	}

	hit.U, hit.V = t.interpolateUV(hit)
	return t.normalMap.Perturb(hit.U, hit.V, t.tangent, t.bitangent, n)
}

// Diffuse returns the texture color at the interpolated UV, or the material color
func (t *Triangle) Diffuse(point core.Vec3, hit *HitRecord) core.Vec3 {
	if t.texture == nil {
		return t.mat.Diffuse
	}
	hit.U, hit.V = t.interpolateUV(hit)
	return t.texture.Evaluate(hit.U, hit.V)
}

func (t *Triangle) Specular(hit *HitRecord) core.Vec3 {
	return t.mat.Specular
}

func (t *Triangle) interpolateUV(hit *HitRecord) (u, v float64) {
	uv := t.uvs[0].Multiply(hit.Alpha).
		Add(t.uvs[1].Multiply(hit.Beta)).
		Add(t.uvs[2].Multiply(hit.Gamma))
	return uv.X, uv.Y
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// FaceNormal returns the triangle's unit geometric normal
func (t *Triangle) FaceNormal() core.Vec3 {
	return t.normal
}

// Centroid returns the average of the three vertices
func (t *Triangle) Centroid() core.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Multiply(1.0 / 3.0)
}

// touches reports whether any vertex or the centroid lies inside box
func (t *Triangle) touches(box core.AABB) bool {
	return box.Contains(t.V0) || box.Contains(t.V1) || box.Contains(t.V2) || box.Contains(t.Centroid())
}
