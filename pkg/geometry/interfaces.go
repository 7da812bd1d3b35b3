package geometry

import (
	"math"
	"sync/atomic"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Region identifies which part of a multi-surface primitive was hit
type Region int

const (
	RegionNone Region = iota
	RegionSide
	RegionBase
	RegionTop
)

// HitRecord is the nearest-hit state of a single traversal.
// Intersect only overwrites it when a candidate is strictly closer than T.
type HitRecord struct {
	T    float64 // Nearest hit distance so far
	TMin float64 // Candidates closer than this are rejected

	Object Object // Top-level object that reported the hit
	Face   Object // Primitive that owns shading (the triangle for meshes)

	Alpha, Beta, Gamma float64 // Triangle barycentrics
	U, V               float64 // Texture coordinates, filled by Normal or Diffuse
	Region             Region
}

// NewHitRecord starts a traversal accepting hits in [tMin, tMax)
func NewHitRecord(tMin, tMax float64) HitRecord {
	return HitRecord{T: tMax, TMin: tMin}
}

// Hit reports whether any object has been recorded
func (h *HitRecord) Hit() bool {
	return h.Face != nil
}

// accepts reports whether t lies in the currently valid range
func (h *HitRecord) accepts(t float64) bool {
	return t >= h.TMin && t < h.T && !math.IsNaN(t)
}

// Object is anything that can be placed in a scene and shaded
type Object interface {
	ID() int
	Intersect(ray core.Ray, hit *HitRecord) bool
	Normal(point core.Vec3, hit *HitRecord) core.Vec3
	Diffuse(point core.Vec3, hit *HitRecord) core.Vec3
	Specular(hit *HitRecord) core.Vec3
	Material() *material.Material
	BoundingBox() core.AABB
}

// OccluderCollector is implemented by composite objects that can report
// every distinct primitive along a shadow ray, not only the nearest.
type OccluderCollector interface {
	CollectOccluders(ray core.Ray, tMin, tMax float64, exclude Object, visit func(Object))
}

var lastID atomic.Int64

// nextID hands out process-unique object identities
func nextID() int {
	return int(lastID.Add(1))
}
