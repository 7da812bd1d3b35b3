package lights

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Directional is a light infinitely far away shining along a fixed direction
type Directional struct {
	direction core.Vec3 // Unit direction the light travels
	color     core.Vec3
}

// NewDirectional creates a light travelling along direction
func NewDirectional(direction, color core.Vec3) *Directional {
	return &Directional{direction: direction.Normalize(), color: color}
}

func (d *Directional) Type() LightType { return LightTypeDirectional }

// Direction points against the direction of travel
func (d *Directional) Direction(point core.Vec3) core.Vec3 {
	return d.direction.Negate()
}

func (d *Directional) MaxDistance(point core.Vec3) float64 { return math.Inf(1) }
func (d *Directional) Attenuation(distance float64) float64 { return 1 }
func (d *Directional) Color() core.Vec3                     { return d.color }

// Point is a light at a position with no distance falloff
type Point struct {
	Position core.Vec3
	color    core.Vec3
}

// NewPoint creates a point light
func NewPoint(position, color core.Vec3) *Point {
	return &Point{Position: position, color: color}
}

func (p *Point) Type() LightType { return LightTypePoint }

func (p *Point) Direction(point core.Vec3) core.Vec3 {
	return p.Position.Subtract(point).Normalize()
}

func (p *Point) MaxDistance(point core.Vec3) float64 {
	return p.Position.DistanceTo(point)
}

func (p *Point) Attenuation(distance float64) float64 { return 1 }
func (p *Point) Color() core.Vec3                     { return p.color }

// AttenuatedPoint is a point light whose intensity falls off as
// 1/(c1 + c2·d + c3·d²), never amplified above 1
type AttenuatedPoint struct {
	Point
	C1, C2, C3 float64
}

// NewAttenuatedPoint creates a point light with distance falloff coefficients
func NewAttenuatedPoint(position, color core.Vec3, c1, c2, c3 float64) *AttenuatedPoint {
	return &AttenuatedPoint{
		Point: Point{Position: position, color: color},
		C1:    c1,
		C2:    c2,
		C3:    c3,
	}
}

func (a *AttenuatedPoint) Type() LightType { return LightTypeAttenuated }

// Attenuation returns min(1, 1/f(d)); a near-zero f leaves the light unattenuated
func (a *AttenuatedPoint) Attenuation(distance float64) float64 {
	f := a.C1 + a.C2*distance + a.C3*distance*distance
	if f < 1e-10 {
		return 1
	}
	return math.Min(1, 1/f)
}
