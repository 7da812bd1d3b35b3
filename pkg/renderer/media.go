package renderer

import (
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

type medium struct {
	object   geometry.Object
	material *material.Material
}

// MediaStack records the objects a ray is currently inside, innermost last.
// It is immutable: Push and Remove return modified copies, so a stack can be
// handed to several recursive traces without interference.
type MediaStack struct {
	media []medium
}

// Len returns the number of enclosing media
func (s MediaStack) Len() int {
	return len(s.media)
}

// Top returns the material of the innermost medium, or nil outside every object
func (s MediaStack) Top() *material.Material {
	if len(s.media) == 0 {
		return nil
	}
	return s.media[len(s.media)-1].material
}

// Eta returns the index of refraction of the innermost medium, or
// background when the stack is empty
func (s MediaStack) Eta(background float64) float64 {
	if top := s.Top(); top != nil {
		return top.Eta
	}
	return background
}

// Contains reports whether obj is one of the enclosing media
func (s MediaStack) Contains(obj geometry.Object) bool {
	for _, m := range s.media {
		if m.object == obj {
			return true
		}
	}
	return false
}

// Push returns a copy with obj as the innermost medium
func (s MediaStack) Push(obj geometry.Object, mat *material.Material) MediaStack {
	media := make([]medium, len(s.media), len(s.media)+1)
	copy(media, s.media)
	return MediaStack{media: append(media, medium{object: obj, material: mat})}
}

// Remove returns a copy without the innermost occurrence of obj. The second
// result is false, and the stack unchanged, when obj is not on it.
func (s MediaStack) Remove(obj geometry.Object) (MediaStack, bool) {
	for i := len(s.media) - 1; i >= 0; i-- {
		if s.media[i].object != obj {
			continue
		}
		media := make([]medium, 0, len(s.media)-1)
		media = append(media, s.media[:i]...)
		media = append(media, s.media[i+1:]...)
		return MediaStack{media: media}, true
	}
	return s, false
}

// transition describes the indices of refraction on either side of a surface
// crossing and the stack the transmitted ray continues with
type transition struct {
	inEta, outEta float64
	next          MediaStack
}

// cross computes the transition for a ray entering (exiting=false) or
// leaving obj. A ray leaving an object it never entered is treated as
// passing from the object's material into the background.
func (s MediaStack) cross(obj geometry.Object, mat *material.Material, exiting bool, backgroundEta float64) transition {
	if !exiting {
		return transition{
			inEta:  s.Eta(backgroundEta),
			outEta: mat.Eta,
			next:   s.Push(obj, mat),
		}
	}

	next, ok := s.Remove(obj)
	if !ok {
		return transition{inEta: mat.Eta, outEta: backgroundEta, next: s}
	}
	return transition{
		inEta:  mat.Eta,
		outEta: next.Eta(backgroundEta),
		next:   next,
	}
}
