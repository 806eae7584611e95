package geom

import "github.com/go-gl/mathgl/mgl32"

// SnapKind classifica um candidato de encaixe.
type SnapKind int

const (
	SnapCenter SnapKind = iota
	SnapCorner
	SnapGrid
)

// String retorna o nome do tipo de encaixe.
func (k SnapKind) String() string {
	switch k {
	case SnapCenter:
		return "center"
	case SnapCorner:
		return "corner"
	default:
		return "grid"
	}
}

// SnapCandidate é uma posição candidata de fixação sobre uma superfície.
type SnapCandidate struct {
	Position mgl32.Vec3
	Kind     SnapKind
}

// SnapOptions controla a geração de candidatos.
type SnapOptions struct {
	GridSpacing float32 // Espaçamento da grade uniforme (0 = sem grade)
	GridMinArea float32 // Área mínima para a superfície ganhar grade
}

// DefaultSnapOptions retorna os parâmetros usados quando nada foi configurado.
func DefaultSnapOptions() SnapOptions {
	return SnapOptions{
		GridSpacing: 0.5,
		GridMinArea: 2.0,
	}
}

// SnapCandidatesFromPolygon gera centro + cantos (os próprios vértices do
// polígono) e, para superfícies grandes o bastante, uma grade uniforme
// projetada sobre o plano da superfície.
func SnapCandidatesFromPolygon(points []mgl32.Vec3, normal mgl32.Vec3, opt SnapOptions) []SnapCandidate {
	if len(points) < 3 {
		return nil
	}

	centroid := PolygonCentroid(points)
	out := make([]SnapCandidate, 0, len(points)+1)
	out = append(out, SnapCandidate{Position: centroid, Kind: SnapCenter})
	for _, p := range points {
		out = append(out, SnapCandidate{Position: p, Kind: SnapCorner})
	}

	if area := PolygonArea(points); opt.GridSpacing > 0 && opt.GridMinArea > 0 && area >= opt.GridMinArea {
		out = append(out, gridCandidates(AABBFromPoints(points), centroid, normal, opt.GridSpacing)...)
	}
	return out
}

// SnapCandidatesFromBounds gera candidatos a partir da caixa delimitadora de
// uma malha: centro no baricentro, cantos da face alinhada à normal e grade
// opcional. Usado por superfícies de ambiente, cuja geometria real vive no BVH.
func SnapCandidatesFromBounds(bounds AABB, centroid, normal mgl32.Vec3, area float32, opt SnapOptions) []SnapCandidate {
	out := []SnapCandidate{{Position: centroid, Kind: SnapCenter}}

	u, v := PlaneTangents(normal)
	halfU, halfV := planeHalfExtents(bounds, centroid, u, v)

	for _, s := range [4][2]float32{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		p := centroid.Add(u.Mul(s[0] * halfU)).Add(v.Mul(s[1] * halfV))
		out = append(out, SnapCandidate{Position: p, Kind: SnapCorner})
	}

	if opt.GridSpacing > 0 && opt.GridMinArea > 0 && area >= opt.GridMinArea {
		out = append(out, gridCandidates(bounds, centroid, normal, opt.GridSpacing)...)
	}
	return out
}

// gridCandidates distribui pontos em passos regulares sobre o plano da
// superfície, dentro da projeção da caixa delimitadora.
func gridCandidates(bounds AABB, centroid, normal mgl32.Vec3, spacing float32) []SnapCandidate {
	u, v := PlaneTangents(normal)
	halfU, halfV := planeHalfExtents(bounds, centroid, u, v)
	if halfU < spacing || halfV < spacing {
		return nil
	}

	var out []SnapCandidate
	for du := -halfU + spacing; du <= halfU-spacing+Epsilon; du += spacing {
		for dv := -halfV + spacing; dv <= halfV-spacing+Epsilon; dv += spacing {
			if absf(du) < Epsilon && absf(dv) < Epsilon {
				continue // Já coberto pelo candidato central
			}
			out = append(out, SnapCandidate{
				Position: centroid.Add(u.Mul(du)).Add(v.Mul(dv)),
				Kind:     SnapGrid,
			})
		}
	}
	return out
}

// planeHalfExtents mede a extensão da caixa ao longo dos eixos tangentes.
func planeHalfExtents(bounds AABB, centroid, u, v mgl32.Vec3) (float32, float32) {
	var halfU, halfV float32
	for _, sx := range [2]float32{0, 1} {
		for _, sy := range [2]float32{0, 1} {
			for _, sz := range [2]float32{0, 1} {
				corner := mgl32.Vec3{
					bounds.Min.X() + sx*(bounds.Max.X()-bounds.Min.X()),
					bounds.Min.Y() + sy*(bounds.Max.Y()-bounds.Min.Y()),
					bounds.Min.Z() + sz*(bounds.Max.Z()-bounds.Min.Z()),
				}
				d := corner.Sub(centroid)
				if du := absf(d.Dot(u)); du > halfU {
					halfU = du
				}
				if dv := absf(d.Dot(v)); dv > halfV {
					halfV = dv
				}
			}
		}
	}
	return halfU, halfV
}
