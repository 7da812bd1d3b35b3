package core

import "math"

// Ray represents a ray with an origin and direction.
// InvDirection caches 1/Direction per axis for slab tests; a zero direction
// component maps to +/-Inf, which the slab test handles.
type Ray struct {
	Origin       Vec3
	Direction    Vec3
	InvDirection Vec3
}

// NewRay creates a new ray and precomputes its inverse direction
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		InvDirection: Vec3{
			X: inverse(direction.X),
			Y: inverse(direction.Y),
			Z: inverse(direction.Z),
		},
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

func inverse(x float64) float64 {
	if x == 0 {
		// Keep the sign of negative zero so the slab interval orders correctly
		return math.Copysign(math.Inf(1), x)
	}
	return 1.0 / x
}
