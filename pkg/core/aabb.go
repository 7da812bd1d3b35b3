package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that any Union or Extend will replace
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box = box.Extend(point)
	}
	return box
}

// Extend returns the box grown to include point
func (aabb AABB) Extend(point Vec3) AABB {
	return AABB{Min: MinVec(aabb.Min, point), Max: MaxVec(aabb.Max, point)}
}

// Slab returns the entry and exit distances of the ray through the box using
// the slab method with the ray's precomputed inverse direction. The ray misses
// when exit < max(entry, 0).
func (aabb AABB) Slab(ray Ray) (entry, exit float64) {
	entry = math.Inf(-1)
	exit = math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Axis(axis)
		inv := ray.InvDirection.Axis(axis)

		t1 := (aabb.Min.Axis(axis) - origin) * inv
		t2 := (aabb.Max.Axis(axis) - origin) * inv

		// A parallel ray starting on a slab plane yields 0*Inf = NaN
		if math.IsNaN(t1) {
			t1 = math.Inf(-1)
		}
		if math.IsNaN(t2) {
			t2 = math.Inf(1)
		}

		if t1 > t2 {
			t1, t2 = t2, t1
		}

		entry = math.Max(entry, t1)
		exit = math.Min(exit, t2)
	}

	return entry, exit
}

// Hit tests if a ray intersects with this AABB within [tMin, tMax]
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	entry, exit := aabb.Slab(ray)
	return exit >= math.Max(entry, tMin) && entry <= tMax
}

// Contains reports whether the point lies inside the box (boundary inclusive)
func (aabb AABB) Contains(point Vec3) bool {
	return point.X >= aabb.Min.X && point.X <= aabb.Max.X &&
		point.Y >= aabb.Min.Y && point.Y <= aabb.Max.Y &&
		point.Z >= aabb.Min.Z && point.Z <= aabb.Max.Z
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: MinVec(aabb.Min, other.Min), Max: MaxVec(aabb.Max, other.Max)}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent.
// Ties prefer X, then Y.
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X >= size.Y && size.X >= size.Z {
		return 0
	}
	if size.Y >= size.Z {
		return 1
	}
	return 2
}

// Split bisects the box at the midpoint of axis, returning the lower and upper halves
func (aabb AABB) Split(axis int) (lower, upper AABB) {
	lower, upper = aabb, aabb
	mid := aabb.Center()
	switch axis {
	case 0:
		lower.Max.X, upper.Min.X = mid.X, mid.X
	case 1:
		lower.Max.Y, upper.Min.Y = mid.Y, mid.Y
	default:
		lower.Max.Z, upper.Min.Z = mid.Z, mid.Z
	}
	return lower, upper
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}
