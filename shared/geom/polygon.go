package geom

import "github.com/go-gl/mathgl/mgl32"

// PolygonArea calcula a área de um polígono plano em 3D pela generalização
// da fórmula do cadarço (soma de produtos vetoriais consecutivos).
// Polígonos degenerados (< 3 pontos) têm área zero.
func PolygonArea(points []mgl32.Vec3) float32 {
	if len(points) < 3 {
		return 0
	}
	var sum mgl32.Vec3
	for i := 0; i < len(points); i++ {
		j := (i + 1) % len(points)
		sum = sum.Add(points[i].Cross(points[j]))
	}
	return sum.Len() * 0.5
}

// PolygonCentroid retorna a média aritmética dos vértices.
func PolygonCentroid(points []mgl32.Vec3) mgl32.Vec3 {
	var c mgl32.Vec3
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Mul(1.0 / float32(len(points)))
}

// PlaneTangents deriva dois eixos tangentes ortogonais a partir da normal.
// Usado para projetar grades de pontos de encaixe sobre o plano da superfície.
func PlaneTangents(normal mgl32.Vec3) (u, v mgl32.Vec3) {
	n := normal
	if l := n.Len(); l > Epsilon {
		n = n.Mul(1.0 / l)
	} else {
		n = mgl32.Vec3{0, 1, 0}
	}

	ref := mgl32.Vec3{0, 1, 0}
	if absf(n.Dot(ref)) > 0.99 {
		ref = mgl32.Vec3{1, 0, 0} // Normal quase vertical: usa X como referência
	}
	u = ref.Cross(n).Normalize()
	v = n.Cross(u)
	return u, v
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
