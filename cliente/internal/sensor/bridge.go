package sensor

import (
	"log"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/proto/avnet"
	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

// Tabela de rótulos semânticos do entendimento de cena para tipos canônicos.
// Rótulos fora da tabela viram "custom".
var labelTable = map[string]surface.Type{
	"wall":    surface.TypeWall,
	"floor":   surface.TypeFloor,
	"ceiling": surface.TypeCeiling,
	"table":   surface.TypeTable,
	"desk":    surface.TypeTable,
	"couch":   surface.TypeCouch,
	"sofa":    surface.TypeCouch,
	"door":    surface.TypeDoor,
	"window":  surface.TypeWindow,
}

// LabelToType mapeia um rótulo semântico para o tipo canônico.
func LabelToType(label string) surface.Type {
	if t, ok := labelTable[label]; ok {
		return t
	}
	return surface.TypeCustom
}

// NormalForType deriva a normal externa a partir do tipo: para cima em
// pisos e mesas, para baixo no teto, para frente nos tipos verticais.
func NormalForType(t surface.Type) mgl32.Vec3 {
	switch t {
	case surface.TypeFloor, surface.TypeTable, surface.TypeCouch:
		return mgl32.Vec3{0, 1, 0}
	case surface.TypeCeiling:
		return mgl32.Vec3{0, -1, 0}
	default:
		return mgl32.Vec3{0, 0, 1}
	}
}

// Bridge converte as detecções correntes do sensoriamento em superfícies
// canônicas do registro. Mantém o conjunto de ids rastreados entre
// atualizações para desregistrar o que o sensor deixou de ver.
type Bridge struct {
	reg          *surface.Registry
	minPlaneArea float32
	snapOpts     geom.SnapOptions

	tracked map[string]string // id da detecção -> id da superfície
}

// NewBridge cria a ponte de sensores sobre o registro dado.
func NewBridge(reg *surface.Registry, minPlaneArea float32, snapOpts geom.SnapOptions) *Bridge {
	return &Bridge{
		reg:          reg,
		minPlaneArea: minPlaneArea,
		snapOpts:     snapOpts,
		tracked:      make(map[string]string),
	}
}

// ApplyUpdate processa um lote de detecções. Geometria inválida (polígono
// degenerado ou área abaixo do mínimo) é excluída silenciosamente, sem erro.
func (b *Bridge) ApplyUpdate(upd *avnet.SensorUpdate) {
	seen := make(map[string]bool, len(upd.Planes)+len(upd.Meshes))

	for i := range upd.Planes {
		p := &upd.Planes[i]
		s := b.convertPlane(p)
		if s == nil {
			continue // InvalidGeometry: descartado sem registrar
		}
		seen[p.ID] = true
		b.tracked[p.ID] = s.ID
		b.reg.RegisterSurface(s)
	}

	for i := range upd.Meshes {
		m := &upd.Meshes[i]
		s, oldBVH := b.convertMesh(m)
		if s == nil {
			continue
		}
		seen[m.ID] = true
		b.tracked[m.ID] = s.ID
		b.reg.RegisterSurface(s)
		// O BVH antigo só pode ser descartado DEPOIS que o registro trocou
		// a entrada, para nunca haver raycast contra geometria liberada.
		oldBVH.Dispose()
	}

	// Detecções que sumiram nesta atualização são desregistradas
	for detID, surfID := range b.tracked {
		if seen[detID] {
			continue
		}
		old := b.reg.GetSurface(surfID)
		b.reg.UnregisterSurface(surfID)
		if old != nil && old.Geometry.Kind == surface.GeometryMesh {
			old.Geometry.Mesh.Dispose()
		}
		delete(b.tracked, detID)
	}
}

// EndSession encerra a sessão de sensoriamento, removendo todas as
// superfícies de origem sensor-plane e sensor-mesh para evitar acertos
// obsoletos.
func (b *Bridge) EndSession() {
	var orphans []*geom.BVH
	for _, surfID := range b.tracked {
		if old := b.reg.GetSurface(surfID); old != nil && old.Geometry.Kind == surface.GeometryMesh {
			orphans = append(orphans, old.Geometry.Mesh)
		}
	}
	b.reg.ClearSurfacesBySource(surface.SourceSensorPlane)
	b.reg.ClearSurfacesBySource(surface.SourceSensorMesh)
	b.tracked = make(map[string]string)
	for _, bvh := range orphans {
		bvh.Dispose() // Sempre após o desregistro correspondente
	}
	log.Printf("[Sensor] Sessão de sensoriamento encerrada; superfícies de sensor removidas")
}

// TrackedCount retorna quantas detecções estão rastreadas (para o HUD).
func (b *Bridge) TrackedCount() int {
	return len(b.tracked)
}

// convertPlane transforma um plano detectado em superfície canônica.
// Retorna nil para geometria inválida.
func (b *Bridge) convertPlane(p *avnet.DetectedPlane) *surface.CollisionSurface {
	if len(p.Points) < 3 {
		return nil
	}

	points := make([]mgl32.Vec3, len(p.Points))
	for i, pt := range p.Points {
		points[i] = mgl32.Vec3{pt[0], pt[1], pt[2]}
	}

	area := geom.PolygonArea(points)
	if area < b.minPlaneArea {
		return nil
	}

	typ := LabelToType(p.Label)
	normal := NormalForType(typ)
	centroid := geom.PolygonCentroid(points)

	id, ok := b.tracked[p.ID]
	if !ok {
		id = surface.NewSurfaceID(surface.SourceSensorPlane, typ)
	}

	s := &surface.CollisionSurface{
		ID:         id,
		Type:       typ,
		Source:     surface.SourceSensorPlane,
		Geometry:   surface.PolygonGeometry(points),
		Bounds:     geom.AABBFromPoints(points),
		Centroid:   centroid,
		Normal:     normal,
		Area:       area,
		Active:     true,
		Label:      p.Label,
		Confidence: p.Confidence,
	}
	s.SnapPoints = surface.BuildSnapPoints(id, normal,
		geom.SnapCandidatesFromPolygon(points, normal, b.snapOpts))
	return s
}

// convertMesh transforma uma malha detectada em superfície de colisão pura
// (sem pontos de encaixe). Retorna também o BVH substituído, se houver.
func (b *Bridge) convertMesh(m *avnet.DetectedMesh) (*surface.CollisionSurface, *geom.BVH) {
	tris := trianglesFromBuffers(m.Vertices, m.Indices)
	if len(tris) == 0 {
		return nil, nil
	}

	var oldBVH *geom.BVH
	id, ok := b.tracked[m.ID]
	if ok {
		if old := b.reg.GetSurface(id); old != nil && old.Geometry.Kind == surface.GeometryMesh {
			oldBVH = old.Geometry.Mesh
		}
	} else {
		id = surface.NewSurfaceID(surface.SourceSensorMesh, LabelToType(m.Label))
	}

	bvh := geom.BuildBVH(tris)
	bounds := bvh.Bounds()

	return &surface.CollisionSurface{
		ID:       id,
		Type:     LabelToType(m.Label),
		Source:   surface.SourceSensorMesh,
		Geometry: surface.MeshGeometry(bvh),
		Bounds:   bounds,
		Centroid: bounds.Center(),
		Normal:   NormalForType(LabelToType(m.Label)),
		Active:   true,
		Label:    m.Label,
	}, oldBVH
}

// trianglesFromBuffers monta triângulos a partir de buffers XYZ + índices.
// Sem índices, os vértices são lidos em trincas diretas.
func trianglesFromBuffers(vertices []float32, indices []uint32) []geom.Triangle {
	vecAt := func(i uint32) mgl32.Vec3 {
		o := int(i) * 3
		return mgl32.Vec3{vertices[o], vertices[o+1], vertices[o+2]}
	}

	vcount := len(vertices) / 3
	var tris []geom.Triangle
	if len(indices) >= 3 {
		for i := 0; i+2 < len(indices); i += 3 {
			if int(indices[i]) >= vcount || int(indices[i+1]) >= vcount || int(indices[i+2]) >= vcount {
				continue // Índice corrompido: pula o triângulo
			}
			tris = append(tris, geom.Triangle{
				V0: vecAt(indices[i]), V1: vecAt(indices[i+1]), V2: vecAt(indices[i+2]),
			})
		}
		return tris
	}

	for i := 0; i+8 < len(vertices); i += 9 {
		tris = append(tris, geom.Triangle{
			V0: mgl32.Vec3{vertices[i], vertices[i+1], vertices[i+2]},
			V1: mgl32.Vec3{vertices[i+3], vertices[i+4], vertices[i+5]},
			V2: mgl32.Vec3{vertices[i+6], vertices[i+7], vertices[i+8]},
		})
	}
	return tris
}
