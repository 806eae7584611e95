package util

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

func TestLerpAndClamp(t *testing.T) {
	if got := Lerp(0, 10, 0.5); got != 5 {
		t.Errorf("Lerp(0, 10, 0.5) = %v", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15, 0, 10) = %v", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Errorf("Clamp(-3, 0, 10) = %v", got)
	}
}

func TestDistSq(t *testing.T) {
	tests := []struct {
		a, b rl.Vector3
		want float32
	}{
		{rl.Vector3{}, rl.Vector3{X: 3, Y: 4}, 25},
		{rl.Vector3{X: 1, Y: 1, Z: 1}, rl.Vector3{X: 1, Y: 1, Z: 1}, 0},
		{rl.Vector3{X: -1}, rl.Vector3{X: 2}, 9},
	}
	for _, tt := range tests {
		if got := DistSq(tt.a, tt.b); got != tt.want {
			t.Errorf("DistSq(%v, %v) = %v, esperado %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVectorConversionRoundtrip(t *testing.T) {
	v := mgl32.Vec3{1.5, -2, 3.25}
	if got := ToMgl(ToRl(v)); got != v {
		t.Errorf("conversão ida e volta alterou o vetor: %v", got)
	}
}
