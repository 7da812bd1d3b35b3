package lights

import "github.com/df07/go-whitted-raytracer/pkg/core"

type LightType string

const (
	LightTypeDirectional LightType = "directional"
	LightTypePoint       LightType = "point"
	LightTypeAttenuated  LightType = "attenuated"
)

// Light is a source of direct illumination for Phong shading
type Light interface {
	Type() LightType

	// Direction returns the unit vector from point towards the light
	Direction(point core.Vec3) core.Vec3

	// MaxDistance is how far a shadow ray from point may travel before it
	// reaches the light (+Inf for directional lights)
	MaxDistance(point core.Vec3) float64

	// Attenuation returns the distance falloff factor in [0, 1]
	Attenuation(distance float64) float64

	Color() core.Vec3
}
