package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

var (
	// ErrInvalidAlpha is returned when an opacity component is outside [0, 1]
	ErrInvalidAlpha = errors.New("alpha must lie in [0, 1]")
	// ErrInvalidEta is returned when the index of refraction is not positive
	ErrInvalidEta = errors.New("index of refraction must be positive")
)

// Material describes a Phong surface with optional transparency.
// Alpha is per-channel opacity (1 = opaque). When Beer is set the alpha
// components are absorption coefficients for light travelling inside the
// medium; otherwise transmission is scaled by a flat (1 - alpha).
type Material struct {
	Diffuse   core.Vec3
	Specular  core.Vec3
	Ka        float64
	Kd        float64
	Ks        float64
	Shininess float64
	Alpha     core.Vec3
	Eta       float64
	Beer      bool
}

// NewPhong creates an opaque Phong material
func NewPhong(diffuse, specular core.Vec3, ka, kd, ks, shininess float64) *Material {
	return &Material{
		Diffuse:   diffuse,
		Specular:  specular,
		Ka:        ka,
		Kd:        kd,
		Ks:        ks,
		Shininess: shininess,
		Alpha:     core.NewVec3(1, 1, 1),
		Eta:       1,
	}
}

// NewTransparent creates a material with uniform opacity and the given index of refraction
func NewTransparent(diffuse, specular core.Vec3, ka, kd, ks, shininess, alpha, eta float64) *Material {
	m := NewPhong(diffuse, specular, ka, kd, ks, shininess)
	m.Alpha = core.NewVec3(alpha, alpha, alpha)
	m.Eta = eta
	return m
}

// NewAbsorbing creates a material whose transmitted light follows Beer-Lambert
// absorption with per-channel coefficients.
func NewAbsorbing(diffuse, specular core.Vec3, ka, kd, ks, shininess float64, alpha core.Vec3, eta float64) *Material {
	m := NewPhong(diffuse, specular, ka, kd, ks, shininess)
	m.Alpha = alpha
	m.Eta = eta
	m.Beer = true
	return m
}

// Validate checks the alpha and eta invariants
func (m *Material) Validate() error {
	for _, a := range []float64{m.Alpha.X, m.Alpha.Y, m.Alpha.Z} {
		if a < 0 || a > 1 {
			return fmt.Errorf("%w: got %v", ErrInvalidAlpha, m.Alpha)
		}
	}
	if m.Eta <= 0 {
		return fmt.Errorf("%w: got %f", ErrInvalidEta, m.Eta)
	}
	return nil
}

// AverageAlpha returns the mean opacity across channels
func (m *Material) AverageAlpha() float64 {
	return m.Alpha.Average()
}

// IsOpaque reports whether no light is transmitted through the surface
func (m *Material) IsOpaque() bool {
	return m.AverageAlpha() >= 1
}

// Transmittance returns the per-channel fraction of light passing through one
// surface of this material: (1 - alpha)
func (m *Material) Transmittance() core.Vec3 {
	return core.NewVec3(1, 1, 1).Subtract(m.Alpha)
}
