package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon para testes de paralelismo e degenerescência.
const Epsilon = 1e-7

// Ray representa um raio no espaço do mundo. Direction deve estar normalizada.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay cria um raio normalizando a direção.
func NewRay(origin, direction mgl32.Vec3) Ray {
	if l := direction.Len(); l > 0 {
		direction = direction.Mul(1.0 / l)
	}
	return Ray{Origin: origin, Direction: direction}
}

// At retorna o ponto do raio na distância t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// AABB é uma caixa delimitadora alinhada aos eixos.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// AABBFromPoints calcula a caixa mínima que contém todos os pontos.
func AABBFromPoints(points []mgl32.Vec3) AABB {
	box := AABB{
		Min: mgl32.Vec3{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))},
		Max: mgl32.Vec3{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))},
	}
	for _, p := range points {
		box = box.ExpandPoint(p)
	}
	return box
}

// ExpandPoint retorna a caixa expandida para conter o ponto.
func (b AABB) ExpandPoint(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union retorna a caixa que contém as duas caixas.
func (b AABB) Union(o AABB) AABB {
	return b.ExpandPoint(o.Min).ExpandPoint(o.Max)
}

// Inflate expande a caixa pela margem dada em todos os eixos.
// Útil para testes de contenção de planos sem espessura.
func (b AABB) Inflate(margin float32) AABB {
	m := mgl32.Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Center retorna o centro geométrico da caixa.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size retorna as dimensões da caixa.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains verifica se o ponto está dentro da caixa (bordas inclusas).
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Intersects verifica sobreposição entre duas caixas.
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

// RayAABB testa interseção raio/caixa pelo método dos slabs.
// Retorna a distância de entrada (>= 0) e se houve interseção.
func RayAABB(ray Ray, box AABB) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))

	for i := 0; i < 3; i++ {
		d := ray.Direction[i]
		if float32(math.Abs(float64(d))) < Epsilon {
			// Raio paralelo ao slab: precisa já estar dentro do intervalo
			if ray.Origin[i] < box.Min[i] || ray.Origin[i] > box.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / d
		t1 := (box.Min[i] - ray.Origin[i]) * inv
		t2 := (box.Max[i] - ray.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false // Caixa inteira atrás da origem
	}
	if tmin < 0 {
		return 0, true // Origem dentro da caixa
	}
	return tmin, true
}

// RayTriangle testa interseção raio/triângulo (Möller–Trumbore).
// Retorna a distância t ao longo do raio e se houve acerto (t >= 0).
func RayTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (float32, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if float32(math.Abs(float64(det))) < Epsilon {
		return 0, false // Raio no plano do triângulo ou paralelo a ele
	}

	invDet := 1.0 / det
	s := ray.Origin.Sub(v0)
	u := s.Dot(h) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := ray.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := edge2.Dot(q) * invDet
	if t < Epsilon {
		return 0, false
	}
	return t, true
}

// RayPlane testa interseção raio/plano analítico definido por um ponto e uma normal.
// Retorna a distância t e se houve acerto à frente da origem.
func RayPlane(ray Ray, point, normal mgl32.Vec3) (float32, bool) {
	denom := normal.Dot(ray.Direction)
	if float32(math.Abs(float64(denom))) < Epsilon {
		return 0, false // Raio paralelo ao plano
	}
	t := point.Sub(ray.Origin).Dot(normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}
