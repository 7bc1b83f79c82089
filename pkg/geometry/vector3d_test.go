package geometry

import (
	"math"
	"testing"
)

func TestVector3D_Arithmetic(t *testing.T) {
	a := NewVector3D(1, 2, 3)
	b := NewVector3D(4, 5, 6)

	if got, want := a.Add(b), (Vector3D{5, 7, 9}); !got.Eq(want) {
		t.Errorf("Add = %v; want %v", got, want)
	}
	if got, want := b.Sub(a), (Vector3D{3, 3, 3}); !got.Eq(want) {
		t.Errorf("Sub = %v; want %v", got, want)
	}
	if got, want := a.Mul(-1), (Vector3D{-1, -2, -3}); !got.Eq(want) {
		t.Errorf("Mul = %v; want %v", got, want)
	}
}

func TestVector3D_Len(t *testing.T) {
	v := Vector3D{2, 3, 6}
	if got := v.LenSqr(); got != 49 {
		t.Errorf("LenSqr = %v; want 49", got)
	}
	if got := v.Len(); !floatEquals(got, 7) {
		t.Errorf("Len = %v; want 7", got)
	}
}

func TestVector3D_XY(t *testing.T) {
	got := Vector3D{3, 4, 99}.XY()
	if !got.Eq(Vector2D{3, 4}) {
		t.Errorf("XY = %v; want (3, 4)", got)
	}
}

func TestVector3D_IsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vector3D
		want bool
	}{
		{"finite", Vector3D{1, 2, 3}, true},
		{"NaN z", Vector3D{1, 2, math.NaN()}, false},
		{"Inf x", Vector3D{math.Inf(1), 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite(%v) = %v; want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestVector3D_String(t *testing.T) {
	if got, want := (Vector3D{1, 2.5, -3}).String(), "(1.00, 2.50, -3.00)"; got != want {
		t.Errorf("String = %q; want %q", got, want)
	}
}
