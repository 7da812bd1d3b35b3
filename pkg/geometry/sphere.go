package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center    core.Vec3
	Radius    float64
	Texture   *material.ImageTexture // Optional, replaces the diffuse color
	NormalMap *material.NormalMap    // Optional

	id  int
	mat *material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat *material.Material) *Sphere {
	return &Sphere{
		Center: center,
		Radius: radius,
		id:     nextID(),
		mat:    mat,
	}
}

func (s *Sphere) ID() int                      { return s.id }
func (s *Sphere) Material() *material.Material { return s.mat }

// Intersect solves |O + tD - C|² = r² and keeps the smaller root in range
func (s *Sphere) Intersect(ray core.Ray, hit *HitRecord) bool {
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	a := ray.Direction.LengthSquared()
	if a == 0 {
		return false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first; from inside the sphere only the far one is valid
	root := (-halfB - sqrtD) / a
	if !hit.accepts(root) {
		root = (-halfB + sqrtD) / a
		if !hit.accepts(root) {
			return false
		}
	}

	hit.T = root
	hit.Object = s
	hit.Face = s
	hit.Region = RegionNone
	return true
}

// Normal returns the outward normal at point, perturbed by the normal map if present
func (s *Sphere) Normal(point core.Vec3, hit *HitRecord) core.Vec3 {
	n := point.Subtract(s.Center).Normalize()
	if s.NormalMap == nil {
		return n
	}

	hit.U, hit.V = sphereUV(n)

	// Tangent follows increasing longitude, bitangent completes the frame.
	// At the poles the longitude direction is undefined.
	snxy := math.Sqrt(n.X*n.X + n.Y*n.Y)
	var tangent core.Vec3
	if snxy < 1e-9 {
		tangent = n.Orthogonal()
	} else {
		tangent = core.NewVec3(-n.Y/snxy, n.X/snxy, 0)
	}
	bitangent := core.NewVec3(-n.Z*tangent.Y, n.Z*tangent.X, snxy)
	if bitangent.IsZero(1e-12) {
		bitangent = n.Cross(tangent)
	}

	return s.NormalMap.Perturb(hit.U, hit.V, tangent, bitangent.Normalize(), n)
}

// Diffuse returns the texture color at point, or the material's diffuse color
func (s *Sphere) Diffuse(point core.Vec3, hit *HitRecord) core.Vec3 {
	if s.Texture == nil {
		return s.mat.Diffuse
	}
	hit.U, hit.V = sphereUV(point.Subtract(s.Center).Normalize())
	return s.Texture.Evaluate(hit.U, hit.V)
}

func (s *Sphere) Specular(hit *HitRecord) core.Vec3 {
	return s.mat.Specular
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}

// sphereUV maps a unit normal to longitude u in [0,1) and colatitude v in [0,1]
func sphereUV(n core.Vec3) (u, v float64) {
	theta := math.Atan2(n.Y, n.X)
	u = theta / (2 * math.Pi)
	if u < 0 {
		u += 1
	}
	v = math.Acos(max(-1, min(1, n.Z))) / math.Pi
	return u, v
}
