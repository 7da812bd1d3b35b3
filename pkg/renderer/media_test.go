package renderer

import (
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func glassWithEta(eta float64) *material.Material {
	return material.NewTransparent(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 0, 0, 0.5, 20, 0.1, eta)
}

func TestMediaStack_CopyOnWrite(t *testing.T) {
	a := geometry.NewSphere(core.NewVec3(0, 0, 0), 2, glassWithEta(1.5))
	b := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, glassWithEta(1.33))

	empty := MediaStack{}
	one := empty.Push(a, a.Material())
	two := one.Push(b, b.Material())

	if empty.Len() != 0 || one.Len() != 1 || two.Len() != 2 {
		t.Fatalf("Expected lengths 0/1/2, got %d/%d/%d", empty.Len(), one.Len(), two.Len())
	}
	if two.Top() != b.Material() || one.Top() != a.Material() {
		t.Error("Push must not alter the stack it was called on")
	}

	// Branching from the same parent must not share storage
	other := one.Push(a, a.Material())
	if two.Top() != b.Material() {
		t.Error("A sibling push overwrote an existing stack")
	}
	if other.Len() != 2 || other.Top() != a.Material() {
		t.Errorf("Unexpected sibling stack: len %d", other.Len())
	}

	removed, ok := two.Remove(a)
	if !ok || removed.Len() != 1 || removed.Top() != b.Material() {
		t.Errorf("Expected removing the outer medium to leave the inner one, got len %d ok=%v", removed.Len(), ok)
	}
	if two.Len() != 2 || !two.Contains(a) {
		t.Error("Remove must not alter the stack it was called on")
	}

	if _, ok := empty.Remove(a); ok {
		t.Error("Expected removing from an empty stack to fail")
	}
}

func TestMediaStack_Cross(t *testing.T) {
	glass := geometry.NewSphere(core.NewVec3(0, 0, 0), 2, glassWithEta(1.5))
	water := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, glassWithEta(1.33))
	const background = 1.0

	inGlass := MediaStack{}.Push(glass, glass.Material())
	inBoth := inGlass.Push(water, water.Material())

	tests := []struct {
		name    string
		stack   MediaStack
		obj     geometry.Object
		exiting bool
		wantIn  float64
		wantOut float64
		wantLen int
	}{
		{"enter from background", MediaStack{}, glass, false, 1, 1.5, 1},
		{"enter nested", inGlass, water, false, 1.5, 1.33, 2},
		{"exit nested", inBoth, water, true, 1.33, 1.5, 1},
		{"exit to background", inGlass, glass, true, 1.5, 1, 0},
		{"exit unentered object", inGlass, water, true, 1.33, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.stack.cross(tt.obj, tt.obj.Material(), tt.exiting, background)
			if tr.inEta != tt.wantIn || tr.outEta != tt.wantOut {
				t.Errorf("Expected etas %.2f -> %.2f, got %.2f -> %.2f", tt.wantIn, tt.wantOut, tr.inEta, tr.outEta)
			}
			if tr.next.Len() != tt.wantLen {
				t.Errorf("Expected stack length %d, got %d", tt.wantLen, tr.next.Len())
			}
		})
	}
}
