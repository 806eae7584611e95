package sensor

import (
	"testing"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/proto/avnet"
	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestBridge() (*Bridge, *surface.Registry) {
	reg := surface.NewRegistry()
	return NewBridge(reg, 0.05, geom.DefaultSnapOptions()), reg
}

func squarePlane(id, label string, half float32) avnet.DetectedPlane {
	return avnet.DetectedPlane{
		ID:         id,
		Label:      label,
		Confidence: 0.9,
		Points: [][3]float32{
			{-half, 0, -half}, {half, 0, -half}, {half, 0, half}, {-half, 0, half},
		},
	}
}

func boxMesh(id string) avnet.DetectedMesh {
	return avnet.DetectedMesh{
		ID:    id,
		Label: "unknown",
		Vertices: []float32{
			0, 0, 0, 1, 0, 0, 1, 1, 0,
			0, 0, 0, 1, 1, 0, 0, 1, 0,
		},
	}
}

func TestLabelToType(t *testing.T) {
	tests := []struct {
		label string
		want  surface.Type
	}{
		{"wall", surface.TypeWall},
		{"floor", surface.TypeFloor},
		{"ceiling", surface.TypeCeiling},
		{"table", surface.TypeTable},
		{"desk", surface.TypeTable},
		{"couch", surface.TypeCouch},
		{"sofa", surface.TypeCouch},
		{"door", surface.TypeDoor},
		{"window", surface.TypeWindow},
		{"plant", surface.TypeCustom},
		{"", surface.TypeCustom},
	}

	for _, tt := range tests {
		if got := LabelToType(tt.label); got != tt.want {
			t.Errorf("LabelToType(%q) = %s, esperado %s", tt.label, got, tt.want)
		}
	}
}

func TestNormalForType(t *testing.T) {
	if NormalForType(surface.TypeFloor) != (mgl32.Vec3{0, 1, 0}) {
		t.Error("chão deveria apontar para cima")
	}
	if NormalForType(surface.TypeCeiling) != (mgl32.Vec3{0, -1, 0}) {
		t.Error("teto deveria apontar para baixo")
	}
	if NormalForType(surface.TypeWall) != (mgl32.Vec3{0, 0, 1}) {
		t.Error("parede deveria apontar para frente")
	}
}

func TestApplyUpdateRegistersPlanes(t *testing.T) {
	b, reg := newTestBridge()

	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 1,
		Planes:   []avnet.DetectedPlane{squarePlane("floor-1", "floor", 2)},
	})

	surfs := reg.GetSurfacesBySource(surface.SourceSensorPlane)
	if len(surfs) != 1 {
		t.Fatalf("superfícies = %d, esperado 1", len(surfs))
	}
	s := surfs[0]
	if s.Type != surface.TypeFloor {
		t.Errorf("tipo = %s, esperado floor", s.Type)
	}
	if !s.Active || s.Confidence != 0.9 || s.Label != "floor" {
		t.Errorf("metadados errados: %+v", s)
	}
	if s.Area < 15.9 || s.Area > 16.1 {
		t.Errorf("área = %v, esperado ~16", s.Area)
	}
	if len(s.SnapPoints) == 0 {
		t.Error("plano deveria ganhar pontos de encaixe")
	}
	if b.TrackedCount() != 1 {
		t.Errorf("tracked = %d, esperado 1", b.TrackedCount())
	}
}

func TestApplyUpdateRejectsInvalidGeometry(t *testing.T) {
	b, reg := newTestBridge()

	degenerate := avnet.DetectedPlane{
		ID: "bad-1", Label: "wall",
		Points: [][3]float32{{0, 0, 0}, {1, 0, 0}},
	}
	tiny := squarePlane("tiny-1", "table", 0.05) // Área 0.01 < mínimo 0.05

	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 1,
		Planes:   []avnet.DetectedPlane{degenerate, tiny},
	})

	if reg.SurfaceCount() != 0 {
		t.Errorf("geometria inválida não deveria registrar nada: count = %d", reg.SurfaceCount())
	}
	if b.TrackedCount() != 0 {
		t.Error("detecções descartadas não deveriam ser rastreadas")
	}
}

func TestApplyUpdateReusesSurfaceID(t *testing.T) {
	b, reg := newTestBridge()

	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 1,
		Planes:   []avnet.DetectedPlane{squarePlane("floor-1", "floor", 2)},
	})
	first := reg.GetSurfacesBySource(surface.SourceSensorPlane)[0].ID

	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 2,
		Planes:   []avnet.DetectedPlane{squarePlane("floor-1", "floor", 3)},
	})
	surfs := reg.GetSurfacesBySource(surface.SourceSensorPlane)
	if len(surfs) != 1 {
		t.Fatalf("refinamento deveria substituir, não acumular: %d", len(surfs))
	}
	if surfs[0].ID != first {
		t.Errorf("id mudou entre refinamentos: %s -> %s", first, surfs[0].ID)
	}
	if surfs[0].Area < 35 {
		t.Errorf("área = %v, esperado a versão refinada (~36)", surfs[0].Area)
	}
}

func TestApplyUpdateUnregistersVanished(t *testing.T) {
	b, reg := newTestBridge()

	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 1,
		Planes: []avnet.DetectedPlane{
			squarePlane("a", "floor", 2),
			squarePlane("b", "table", 1),
		},
	})
	if reg.SurfaceCount() != 2 {
		t.Fatalf("esperado 2 superfícies, veio %d", reg.SurfaceCount())
	}

	// A mesa some do próximo lote: deve ser desregistrada
	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 2,
		Planes:   []avnet.DetectedPlane{squarePlane("a", "floor", 2)},
	})
	surfs := reg.GetSurfacesBySource(surface.SourceSensorPlane)
	if len(surfs) != 1 || surfs[0].Type != surface.TypeFloor {
		t.Errorf("apenas o chão deveria permanecer: %d superfícies", len(surfs))
	}
	if b.TrackedCount() != 1 {
		t.Errorf("tracked = %d, esperado 1", b.TrackedCount())
	}
}

func TestApplyUpdateMeshes(t *testing.T) {
	b, reg := newTestBridge()

	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 1,
		Meshes:   []avnet.DetectedMesh{boxMesh("m1")},
	})

	surfs := reg.GetSurfacesBySource(surface.SourceSensorMesh)
	if len(surfs) != 1 {
		t.Fatalf("malhas = %d, esperado 1", len(surfs))
	}
	s := surfs[0]
	if s.Geometry.Kind != surface.GeometryMesh || s.Geometry.Mesh == nil {
		t.Fatal("superfície de malha deveria carregar um BVH")
	}
	if s.Geometry.Mesh.TriangleCount() != 2 {
		t.Errorf("triângulos = %d, esperado 2", s.Geometry.Mesh.TriangleCount())
	}
	if len(s.SnapPoints) != 0 {
		t.Error("malha bruta não deveria gerar pontos de encaixe")
	}
}

func TestApplyUpdateMeshReplaceDisposesOld(t *testing.T) {
	b, reg := newTestBridge()

	b.ApplyUpdate(&avnet.SensorUpdate{Sequence: 1, Meshes: []avnet.DetectedMesh{boxMesh("m1")}})
	oldBVH := reg.GetSurfacesBySource(surface.SourceSensorMesh)[0].Geometry.Mesh

	b.ApplyUpdate(&avnet.SensorUpdate{Sequence: 2, Meshes: []avnet.DetectedMesh{boxMesh("m1")}})

	if oldBVH.TriangleCount() != 0 {
		t.Error("BVH substituído deveria ter sido descartado")
	}
	newBVH := reg.GetSurfacesBySource(surface.SourceSensorMesh)[0].Geometry.Mesh
	if newBVH.TriangleCount() != 2 {
		t.Error("BVH novo deveria permanecer íntegro")
	}
}

func TestEndSessionClearsSensorSurfaces(t *testing.T) {
	b, reg := newTestBridge()

	// Superfície manual não pode ser afetada pelo fim da sessão
	manual := &surface.CollisionSurface{
		ID:     "manual_1",
		Type:   surface.TypeWall,
		Source: surface.SourceManual,
		Active: true,
	}
	reg.RegisterSurface(manual)

	b.ApplyUpdate(&avnet.SensorUpdate{
		Sequence: 1,
		Planes:   []avnet.DetectedPlane{squarePlane("a", "floor", 2)},
		Meshes:   []avnet.DetectedMesh{boxMesh("m1")},
	})
	meshBVH := reg.GetSurfacesBySource(surface.SourceSensorMesh)[0].Geometry.Mesh

	b.EndSession()

	if len(reg.GetSurfacesBySource(surface.SourceSensorPlane)) != 0 {
		t.Error("planos de sensor deveriam ter sido removidos")
	}
	if len(reg.GetSurfacesBySource(surface.SourceSensorMesh)) != 0 {
		t.Error("malhas de sensor deveriam ter sido removidas")
	}
	if reg.GetSurface("manual_1") == nil {
		t.Error("superfície manual deveria sobreviver ao fim da sessão")
	}
	if b.TrackedCount() != 0 {
		t.Error("rastreamento deveria ser zerado")
	}
	if meshBVH.TriangleCount() != 0 {
		t.Error("BVHs das malhas removidas deveriam ser descartados")
	}
}

func TestTrianglesFromBuffersIndexed(t *testing.T) {
	verts := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0}
	idx := []uint32{0, 1, 2, 1, 3, 2}

	tris := trianglesFromBuffers(verts, idx)
	if len(tris) != 2 {
		t.Fatalf("triângulos = %d, esperado 2", len(tris))
	}

	// Índice corrompido é pulado, não derruba a conversão
	bad := []uint32{0, 1, 99}
	if tris := trianglesFromBuffers(verts, bad); len(tris) != 0 {
		t.Errorf("índice fora do buffer deveria ser pulado: %d", len(tris))
	}
}
