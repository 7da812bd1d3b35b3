package material

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// NormalMap stores tangent-space normals with components in [-1, 1]
type NormalMap struct {
	Width   int
	Height  int
	Normals []core.Vec3
}

// NewNormalMap creates a normal map from tangent-space normals
func NewNormalMap(width, height int, normals []core.Vec3) (*NormalMap, error) {
	if err := checkDimensions(width, height, len(normals)); err != nil {
		return nil, err
	}
	return &NormalMap{Width: width, Height: height, Normals: normals}, nil
}

// NewNormalMapFromColors converts colors in [0, 1] to normals in [-1, 1]
func NewNormalMapFromColors(width, height int, colors []core.Vec3) (*NormalMap, error) {
	normals := make([]core.Vec3, len(colors))
	for i, c := range colors {
		normals[i] = c.Multiply(2).Subtract(core.NewVec3(1, 1, 1))
	}
	return NewNormalMap(width, height, normals)
}

// Evaluate returns the bilinearly filtered tangent-space normal at (u, v).
// The result is not normalized.
func (m *NormalMap) Evaluate(u, v float64) core.Vec3 {
	return bilinear(m.Normals, m.Width, m.Height, u, v)
}

// Perturb maps a tangent-space normal at (u, v) into world space using the
// tangent, bitangent and normal frame.
func (m *NormalMap) Perturb(u, v float64, tangent, bitangent, normal core.Vec3) core.Vec3 {
	s := m.Evaluate(u, v)
	perturbed := tangent.Multiply(s.X).
		Add(bitangent.Multiply(s.Y)).
		Add(normal.Multiply(s.Z)).
		Normalize()
	if perturbed.IsZero(1e-12) {
		return normal
	}
	return perturbed
}
