package renderer

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// shadowFactor returns the per-channel fraction of a light's color reaching
// point. It averages the transmittance of the ray aimed at the light along
// l and of the rays in the surrounding cone, clamped to at most 1.
func (rt *Raytracer) shadowFactor(point, l core.Vec3, reach float64, exclude geometry.Object) core.Vec3 {
	cfg := rt.config.Shadow
	sum := rt.transmittance(core.NewRay(point, l), reach, exclude)
	if cfg.Hard || cfg.Rings <= 0 || cfg.SamplesPerRing <= 0 {
		return sum.Clamp(0, 1)
	}

	up := l.Orthogonal()
	right := l.Cross(up).Normalize()
	step := 2 * math.Pi / float64(cfg.SamplesPerRing)

	for ring := 0; ring < cfg.Rings; ring++ {
		modifier := cfg.RingBase + float64(ring)*cfg.RingStep
		for i := 0; i < cfg.SamplesPerRing; i++ {
			theta := float64(i) * step
			dir := l.
				Add(up.Multiply(math.Cos(theta) * cfg.Radius)).
				Add(right.Multiply(modifier * math.Sin(theta) * cfg.Radius)).
				Normalize()
			sum = sum.Add(rt.transmittance(core.NewRay(point, dir), reach, exclude))
		}
	}

	return sum.Multiply(1 / float64(cfg.Samples())).Clamp(0, 1)
}

// transmittance multiplies (1 - alpha) over every distinct object the ray
// passes through before reach. Meshes contribute each triangle once.
func (rt *Raytracer) transmittance(ray core.Ray, reach float64, exclude geometry.Object) core.Vec3 {
	rt.counts.Shadow++

	result := core.NewVec3(1, 1, 1)
	occlude := func(obj geometry.Object) {
		result = result.MultiplyVec(obj.Material().Transmittance())
	}

	tMin := rt.config.ShadowEpsilon
	for _, obj := range rt.scene.Objects {
		if obj == exclude {
			continue
		}
		if collector, ok := obj.(geometry.OccluderCollector); ok {
			collector.CollectOccluders(ray, tMin, reach, exclude, occlude)
			continue
		}
		hit := geometry.NewHitRecord(tMin, reach)
		if obj.Intersect(ray, &hit) {
			occlude(obj)
		}
	}
	return result
}
