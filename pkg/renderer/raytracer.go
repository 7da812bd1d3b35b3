package renderer

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// ShadowConfig controls the cone of shadow rays cast towards each light.
// Besides the ray aimed straight at the light, Rings rings of
// SamplesPerRing rays are spread around it. Ring r is an ellipse with
// radius Radius along one axis and (RingBase + r*RingStep)*Radius along
// the other.
type ShadowConfig struct {
	Hard           bool // Cast only the central ray
	Rings          int
	SamplesPerRing int
	Radius         float64
	RingBase       float64
	RingStep       float64
}

// DefaultShadowConfig returns the soft shadow pattern: 8 rings of 10 rays
func DefaultShadowConfig() ShadowConfig {
	return ShadowConfig{
		Rings:          8,
		SamplesPerRing: 10,
		Radius:         0.03,
		RingBase:       0.1,
		RingStep:       0.2,
	}
}

// Samples returns the number of shadow rays cast per light
func (c ShadowConfig) Samples() int {
	if c.Hard {
		return 1
	}
	return 1 + c.Rings*c.SamplesPerRing
}

// Config contains rendering configuration
type Config struct {
	MaxDepth        int     // Recursion depth at which rays return the background
	Workers         int     // Parallel bands; <= 0 uses the scene hint or the CPU count
	Shadow          ShadowConfig
	SecondaryOffset float64 // Distance secondary rays start along their direction
	ShadowEpsilon   float64 // Near clip for shadow rays
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		MaxDepth:        10,
		Shadow:          DefaultShadowConfig(),
		SecondaryOffset: 0.001,
		ShadowEpsilon:   1e-4,
	}
}

// MergeConfig returns base with every non-zero field of override applied
func MergeConfig(base, override Config) Config {
	result := base
	if override.MaxDepth > 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.Workers > 0 {
		result.Workers = override.Workers
	}
	if override.SecondaryOffset > 0 {
		result.SecondaryOffset = override.SecondaryOffset
	}
	if override.ShadowEpsilon > 0 {
		result.ShadowEpsilon = override.ShadowEpsilon
	}

	s := override.Shadow
	if s.Hard {
		result.Shadow.Hard = true
	}
	if s.Rings > 0 {
		result.Shadow.Rings = s.Rings
	}
	if s.SamplesPerRing > 0 {
		result.Shadow.SamplesPerRing = s.SamplesPerRing
	}
	if s.Radius > 0 {
		result.Shadow.Radius = s.Radius
	}
	if s.RingBase > 0 {
		result.Shadow.RingBase = s.RingBase
	}
	if s.RingStep > 0 {
		result.Shadow.RingStep = s.RingStep
	}
	return result
}

// RayCounts tallies the rays traced by one worker
type RayCounts struct {
	Primary   int64
	Secondary int64
	Shadow    int64
}

// Add accumulates other into c
func (c *RayCounts) Add(other RayCounts) {
	c.Primary += other.Primary
	c.Secondary += other.Secondary
	c.Shadow += other.Shadow
}

// Total returns the number of rays of every kind
func (c RayCounts) Total() int64 {
	return c.Primary + c.Secondary + c.Shadow
}

// Raytracer shades rays against a read-only scene. It keeps per-instance ray
// counters, so each worker owns its own Raytracer.
type Raytracer struct {
	scene  *scene.Scene
	camera *Camera
	config Config
	counts RayCounts
}

// NewRaytracer creates a new raytracer
func NewRaytracer(s *scene.Scene, camera *Camera, config Config) *Raytracer {
	return &Raytracer{
		scene:  s,
		camera: camera,
		config: MergeConfig(DefaultConfig(), config),
	}
}

// Counts returns the rays traced so far
func (rt *Raytracer) Counts() RayCounts {
	return rt.counts
}

// ResetCounts zeroes the ray counters
func (rt *Raytracer) ResetCounts() {
	rt.counts = RayCounts{}
}

// RenderBand traces every pixel in rows [band.Start, band.End) into frame
func (rt *Raytracer) RenderBand(band Band, frame *FrameBuffer) {
	for j := band.Start; j < band.End; j++ {
		for i := 0; i < frame.Width; i++ {
			color, _ := rt.Trace(rt.camera.GetRay(i, j), 0, MediaStack{})
			frame.Set(i, j, color)
		}
	}
}

// hitWorld finds the nearest object along ray
func (rt *Raytracer) hitWorld(ray core.Ray, hit *geometry.HitRecord) bool {
	hitAnything := false
	for _, obj := range rt.scene.Objects {
		if obj.Intersect(ray, hit) {
			hitAnything = true
		}
	}
	return hitAnything
}

// Trace returns the color seen along ray and the distance to the surface it
// hit (+Inf when it escaped). media holds the objects the ray starts inside.
func (rt *Raytracer) Trace(ray core.Ray, depth int, media MediaStack) (core.Vec3, float64) {
	if depth >= rt.config.MaxDepth {
		return rt.scene.Background(), math.Inf(1)
	}
	if depth == 0 {
		rt.counts.Primary++
	} else {
		rt.counts.Secondary++
	}

	hit := geometry.NewHitRecord(0, math.Inf(1))
	if !rt.hitWorld(ray, &hit) {
		return rt.scene.Background(), math.Inf(1)
	}
	return rt.shade(ray, &hit, depth, media), hit.T
}

// shade computes local Phong lighting at the hit and adds the reflected and
// transmitted contributions
func (rt *Raytracer) shade(ray core.Ray, hit *geometry.HitRecord, depth int, media MediaStack) core.Vec3 {
	face := hit.Face
	mat := face.Material()
	point := ray.At(hit.T)
	v := ray.Direction.Negate()

	// A normal facing away from the viewer means the ray is leaving the object
	n := face.Normal(point, hit)
	exiting := n.Dot(v) < 0
	if exiting {
		n = n.Negate()
	}

	color := rt.direct(point, n, v, hit, exiting)
	if cue := rt.scene.DepthCue; cue != nil {
		color = cue.Apply(color, hit.T)
	}

	ndi := n.Dot(v)
	reflectDir := v.Reflect(n).Normalize()

	var reflected, transmitted core.Vec3
	if mat.Ks > 1e-10 {
		reflected, _ = rt.Trace(rt.secondaryRay(point, reflectDir), depth+1, media)
	}

	tr := media.cross(hit.Object, mat, exiting, rt.scene.BackgroundEta)
	if tr.outEta+tr.inEta < 1e-12 {
		return color.Add(reflected).Clamp(0, 1)
	}
	f0 := (tr.outEta - tr.inEta) / (tr.outEta + tr.inEta)
	f0 *= f0
	fr := f0 + (1-f0)*math.Pow(1-ndi, 5)

	if mat.AverageAlpha() < 1 {
		// Total internal reflection sends the transmitted ray back inside
		dir, next := reflectDir, media
		if refracted, ok := refract(n, v, tr.inEta/tr.outEta); ok {
			dir, next = refracted, tr.next
		}

		if !dir.IsZero(1e-12) {
			var t float64
			transmitted, t = rt.Trace(rt.secondaryRay(point, dir), depth+1, next)
			transmitted = transmitted.MultiplyVec(absorption(mat, next, t))
		}
	}

	color = color.Add(reflected.Multiply(fr)).Add(transmitted.Multiply(1 - fr))
	return color.Clamp(0, 1)
}

// direct returns the ambient term plus the shadowed Phong contribution of
// every light
func (rt *Raytracer) direct(point, n, v core.Vec3, hit *geometry.HitRecord, exiting bool) core.Vec3 {
	face := hit.Face
	mat := face.Material()
	diffuse := face.Diffuse(point, hit)
	specular := face.Specular(hit)

	color := diffuse.Multiply(mat.Ka)

	// A surface cannot shadow itself from the front
	var exclude geometry.Object
	if !exiting {
		exclude = face
	}

	for _, light := range rt.scene.Lights {
		l := light.Direction(point)
		reach := light.MaxDistance(point)

		shadow := rt.shadowFactor(point, l, reach, exclude)
		shadow = shadow.Multiply(light.Attenuation(reach))

		h := v.Add(l).Normalize()
		ndotl := math.Max(0, n.Dot(l))
		ndoth := math.Pow(math.Max(0, n.Dot(h)), mat.Shininess)

		term := diffuse.Multiply(mat.Kd * ndotl).Add(specular.Multiply(mat.Ks * ndoth))
		color = color.Add(term.MultiplyVec(shadow).MultiplyVec(light.Color()))
	}
	return color
}

// refract bends v (pointing away from the surface, on the side n faces)
// through the surface by Snell's law with ratio = eta_in/eta_out. It
// reports false on total internal reflection.
func refract(n, v core.Vec3, ratio float64) (core.Vec3, bool) {
	ndi := n.Dot(v)
	under := 1 - ratio*ratio*(1-ndi*ndi)
	if under < 0 {
		return core.Vec3{}, false
	}
	t := n.Multiply(-math.Sqrt(under)).Add(n.Multiply(ndi).Subtract(v).Multiply(ratio))
	return t.Normalize(), true
}

func (rt *Raytracer) secondaryRay(point, dir core.Vec3) core.Ray {
	return core.NewRay(point.Add(dir.Multiply(rt.config.SecondaryOffset)), dir)
}

// absorption returns the weight of light transmitted through a surface of
// mat that then travelled t through the innermost medium of next.
// Beer materials attenuate by exp(-alpha*t) inside absorbing media; other
// materials scale by a flat (1 - alpha).
func absorption(mat *material.Material, next MediaStack, t float64) core.Vec3 {
	if !mat.Beer {
		return mat.Transmittance()
	}
	m := next.Top()
	if m == nil || !m.Beer {
		return core.NewVec3(1, 1, 1)
	}
	if math.IsInf(t, 1) {
		return m.Transmittance()
	}
	return m.Alpha.Multiply(-t).Exp()
}
