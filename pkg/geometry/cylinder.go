package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

const parallelEpsilon = 1e-9

// Cylinder represents a finite cylinder closed by two cap disks.
// Center is the midpoint of the axis segment.
type Cylinder struct {
	Center    core.Vec3
	Radius    float64
	Length    float64
	Texture   *material.ImageTexture // Optional, lateral surface only
	NormalMap *material.NormalMap    // Optional, lateral surface only

	id  int
	mat *material.Material

	// Cached derived values
	axis core.Vec3 // Unit vector from base to top
	base core.Vec3 // Center of the base cap
	top  core.Vec3 // Center of the top cap
	refU core.Vec3 // Reference directions perpendicular to axis for texture u
	refV core.Vec3
}

// NewCylinder creates a cylinder centered at center with the given axis direction
func NewCylinder(center, direction core.Vec3, radius, length float64, mat *material.Material) *Cylinder {
	axis := direction.Normalize()
	half := axis.Multiply(length * 0.5)
	refU := axis.Orthogonal()

	return &Cylinder{
		Center: center,
		Radius: radius,
		Length: length,
		id:     nextID(),
		mat:    mat,
		axis:   axis,
		base:   center.Subtract(half),
		top:    center.Add(half),
		refU:   refU,
		refV:   axis.Cross(refU),
	}
}

func (c *Cylinder) ID() int                      { return c.id }
func (c *Cylinder) Material() *material.Material { return c.mat }

// Axis returns the unit axis direction from base to top
func (c *Cylinder) Axis() core.Vec3 { return c.axis }

// Intersect tests the lateral surface and both caps and keeps the nearest candidate.
// A ray parallel to the axis has no lateral solution and can only hit a cap.
func (c *Cylinder) Intersect(ray core.Ray, hit *HitRecord) bool {
	bestT := hit.T
	bestRegion := RegionNone

	consider := func(t float64, region Region) {
		if t >= hit.TMin && t < bestT {
			bestT = t
			bestRegion = region
		}
	}

	// Lateral surface: ||w + tD||² - ((w + tD)·h)² = r²
	w := ray.Origin.Subtract(c.base)
	dh := ray.Direction.Dot(c.axis)
	wh := w.Dot(c.axis)

	a := ray.Direction.LengthSquared() - dh*dh
	b := 2.0 * (ray.Direction.Dot(w) - dh*wh)
	cc := w.LengthSquared() - wh*wh - c.Radius*c.Radius

	if math.Abs(a) > parallelEpsilon {
		discriminant := b*b - 4*a*cc
		if discriminant >= 0 {
			sqrtD := math.Sqrt(discriminant)
			for _, t := range [2]float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
				proj := wh + t*dh
				if proj >= 0 && proj <= c.Length {
					consider(t, RegionSide)
				}
			}
		}
	}

	// Caps: plane (P - cap)·h = 0 clipped to the disk
	if math.Abs(dh) > parallelEpsilon {
		for _, disk := range [2]struct {
			center core.Vec3
			region Region
		}{{c.base, RegionBase}, {c.top, RegionTop}} {
			t := disk.center.Subtract(ray.Origin).Dot(c.axis) / dh
			if t < hit.TMin || t >= bestT {
				continue
			}
			if ray.At(t).Subtract(disk.center).LengthSquared() <= c.Radius*c.Radius {
				consider(t, disk.region)
			}
		}
	}

	if bestRegion == RegionNone {
		return false
	}

	hit.T = bestT
	hit.Object = c
	hit.Face = c
	hit.Region = bestRegion
	return true
}

// Normal returns the outward normal for the region recorded in hit
func (c *Cylinder) Normal(point core.Vec3, hit *HitRecord) core.Vec3 {
	switch hit.Region {
	case RegionBase:
		return c.axis.Negate()
	case RegionTop:
		return c.axis
	}

	proj := point.Subtract(c.base).Dot(c.axis)
	n := point.Subtract(c.base.Add(c.axis.Multiply(proj))).Normalize()
	if c.NormalMap == nil {
		return n
	}

	hit.U, hit.V = c.lateralUV(point)
	tangent := c.axis.Cross(n).Normalize()
	return c.NormalMap.Perturb(hit.U, hit.V, tangent, c.axis, n)
}

// Diffuse samples the texture on the lateral surface; caps use the material color
func (c *Cylinder) Diffuse(point core.Vec3, hit *HitRecord) core.Vec3 {
	if c.Texture == nil || hit.Region != RegionSide {
		return c.mat.Diffuse
	}
	hit.U, hit.V = c.lateralUV(point)
	return c.Texture.Evaluate(hit.U, hit.V)
}

func (c *Cylinder) Specular(hit *HitRecord) core.Vec3 {
	return c.mat.Specular
}

// lateralUV maps the angle around the axis to u and the height from the base to v
func (c *Cylinder) lateralUV(point core.Vec3) (u, v float64) {
	d := point.Subtract(c.base)
	u = math.Atan2(d.Dot(c.refV), d.Dot(c.refU)) / (2 * math.Pi)
	if u < 0 {
		u += 1
	}
	if c.Length > 0 {
		v = d.Dot(c.axis) / c.Length
	}
	return u, v
}

// BoundingBox bounds both cap disks. A disk with normal h extends
// r·sqrt(1 - h_i²) along axis i.
func (c *Cylinder) BoundingBox() core.AABB {
	extent := core.NewVec3(
		c.Radius*math.Sqrt(max(0, 1-c.axis.X*c.axis.X)),
		c.Radius*math.Sqrt(max(0, 1-c.axis.Y*c.axis.Y)),
		c.Radius*math.Sqrt(max(0, 1-c.axis.Z*c.axis.Z)),
	)
	return core.NewAABB(
		core.MinVec(c.base, c.top).Subtract(extent),
		core.MaxVec(c.base, c.top).Add(extent),
	)
}
