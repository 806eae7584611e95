package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func almostEqual(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) <= tol
}

func TestNewRayNormalizesDirection(t *testing.T) {
	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -3, 0})
	if !almostEqual(r.Direction.Len(), 1.0, 1e-5) {
		t.Errorf("direção não normalizada: len = %v", r.Direction.Len())
	}
	if r.Direction.Y() != -1 {
		t.Errorf("direção errada: %v", r.Direction)
	}
}

func TestRayAABB(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	tests := []struct {
		name    string
		origin  mgl32.Vec3
		dir     mgl32.Vec3
		wantHit bool
		wantT   float32
	}{
		{"acerto frontal", mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1}, true, 4},
		{"acerto de cima", mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, -1, 0}, true, 2},
		{"raio para longe", mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, -1}, false, 0},
		{"passa ao lado", mgl32.Vec3{5, 0, -5}, mgl32.Vec3{0, 0, 1}, false, 0},
		{"origem dentro", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, true, 0},
		{"paralelo fora do slab", mgl32.Vec3{0, 5, -5}, mgl32.Vec3{0, 0, 1}, false, 0},
		{"paralelo dentro do slab", mgl32.Vec3{0, 0.5, -5}, mgl32.Vec3{0, 0, 1}, true, 4},
	}

	for _, tt := range tests {
		dist, hit := RayAABB(NewRay(tt.origin, tt.dir), box)
		if hit != tt.wantHit {
			t.Errorf("%s: hit = %v, esperado %v", tt.name, hit, tt.wantHit)
			continue
		}
		if hit && !almostEqual(dist, tt.wantT, 1e-4) {
			t.Errorf("%s: dist = %v, esperado %v", tt.name, dist, tt.wantT)
		}
	}
}

func TestRayTriangle(t *testing.T) {
	v0 := mgl32.Vec3{-1, 0, -1}
	v1 := mgl32.Vec3{1, 0, -1}
	v2 := mgl32.Vec3{0, 0, 1}

	tests := []struct {
		name    string
		origin  mgl32.Vec3
		dir     mgl32.Vec3
		wantHit bool
		wantT   float32
	}{
		{"acerto no meio", mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0}, true, 2},
		{"fora do triângulo", mgl32.Vec3{2, 2, 0}, mgl32.Vec3{0, -1, 0}, false, 0},
		{"atrás da origem", mgl32.Vec3{0, -2, 0}, mgl32.Vec3{0, -1, 0}, false, 0},
		{"paralelo ao plano", mgl32.Vec3{0, 2, 0}, mgl32.Vec3{1, 0, 0}, false, 0},
	}

	for _, tt := range tests {
		dist, hit := RayTriangle(NewRay(tt.origin, tt.dir), v0, v1, v2)
		if hit != tt.wantHit {
			t.Errorf("%s: hit = %v, esperado %v", tt.name, hit, tt.wantHit)
			continue
		}
		if hit && !almostEqual(dist, tt.wantT, 1e-4) {
			t.Errorf("%s: dist = %v, esperado %v", tt.name, dist, tt.wantT)
		}
	}
}

func TestRayPlane(t *testing.T) {
	point := mgl32.Vec3{0, 1, 0}
	normal := mgl32.Vec3{0, 1, 0}

	dist, hit := RayPlane(NewRay(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, -1, 0}), point, normal)
	if !hit || !almostEqual(dist, 2, 1e-4) {
		t.Errorf("acerto vertical: hit=%v dist=%v", hit, dist)
	}

	if _, hit := RayPlane(NewRay(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{1, 0, 0}), point, normal); hit {
		t.Error("raio paralelo não deveria acertar o plano")
	}

	if _, hit := RayPlane(NewRay(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, 1, 0}), point, normal); hit {
		t.Error("plano atrás da origem não deveria acertar")
	}
}

func TestAABBContainsAndInflate(t *testing.T) {
	// Caixa degenerada de um plano horizontal
	box := AABBFromPoints([]mgl32.Vec3{{-1, 0, -1}, {1, 0, 1}})

	if box.Contains(mgl32.Vec3{0, 0.01, 0}) {
		t.Error("ponto acima do plano não deveria estar contido na caixa crua")
	}
	if !box.Inflate(0.02).Contains(mgl32.Vec3{0, 0.01, 0}) {
		t.Error("caixa inflada deveria conter o ponto próximo ao plano")
	}
}

func TestAABBUnionAndIntersects(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := AABB{Min: mgl32.Vec3{2, 2, 2}, Max: mgl32.Vec3{3, 3, 3}}

	if a.Intersects(b) {
		t.Error("caixas disjuntas não deveriam se sobrepor")
	}

	u := a.Union(b)
	if u.Min != (mgl32.Vec3{0, 0, 0}) || u.Max != (mgl32.Vec3{3, 3, 3}) {
		t.Errorf("união errada: %+v", u)
	}
	if !u.Intersects(a) || !u.Intersects(b) {
		t.Error("união deveria sobrepor as duas caixas originais")
	}
}
