package renderer

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// windowDistance is how far in front of the eye the view window sits
const windowDistance = 5.0

// Camera generates one ray through the center of every pixel of a view
// window placed in front of the eye
type Camera struct {
	eye       core.Vec3
	view      core.Vec3
	upperLeft core.Vec3
	dh        core.Vec3 // Step between horizontally adjacent pixels
	dv        core.Vec3 // Step between vertically adjacent pixels
	parallel  bool
}

// NewCamera builds the viewing window for a width x height image with a
// horizontal field of view of hfov degrees. When parallel is set every ray
// travels along view from its own pixel on the window.
func NewCamera(eye, view, up core.Vec3, hfov float64, width, height int, parallel bool) *Camera {
	view = view.Normalize()
	up = up.Normalize()
	if view.Cross(up).LengthSquared() < 1e-12 {
		up = up.Add(view.Orthogonal().Multiply(1e-3)).Normalize()
	}

	u := view.Cross(up).Normalize()
	v := u.Cross(view).Normalize()

	w := 2 * windowDistance * math.Tan(hfov*math.Pi/360)
	h := w / (float64(width) / float64(height))

	center := eye.Add(view.Multiply(windowDistance))
	halfU := u.Multiply(w / 2)
	halfV := v.Multiply(h / 2)

	ul := center.Subtract(halfU).Add(halfV)
	ur := center.Add(halfU).Add(halfV)
	ll := center.Subtract(halfU).Subtract(halfV)

	c := &Camera{eye: eye, view: view, upperLeft: ul, parallel: parallel}

	if width > 1 {
		c.dh = ur.Subtract(ul).Multiply(1 / float64(width-1))
	} else {
		c.upperLeft = c.upperLeft.Add(halfU)
	}
	if height > 1 {
		c.dv = ll.Subtract(ul).Multiply(1 / float64(height-1))
	} else {
		c.upperLeft = c.upperLeft.Subtract(halfV)
	}

	return c
}

// WindowPoint returns the point on the view window for pixel (i, j), where
// i counts columns from the left and j counts rows from the top
func (c *Camera) WindowPoint(i, j int) core.Vec3 {
	return c.upperLeft.Add(c.dh.Multiply(float64(i))).Add(c.dv.Multiply(float64(j)))
}

// GetRay returns the primary ray for pixel (i, j)
func (c *Camera) GetRay(i, j int) core.Ray {
	p := c.WindowPoint(i, j)
	if c.parallel {
		return core.NewRay(p.Subtract(c.view.Multiply(windowDistance)), c.view)
	}
	return core.NewRay(c.eye, p.Subtract(c.eye).Normalize())
}
