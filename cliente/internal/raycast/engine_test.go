package raycast

import (
	"math"
	"testing"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

func almostEqual(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) <= tol
}

// floorPlane registra um plano de sensor horizontal 10x10 em y=0.
func floorPlane(reg *surface.Registry, id string) *surface.CollisionSurface {
	points := []mgl32.Vec3{{-5, 0, -5}, {5, 0, -5}, {5, 0, 5}, {-5, 0, 5}}
	s := &surface.CollisionSurface{
		ID:       id,
		Type:     surface.TypeFloor,
		Source:   surface.SourceSensorPlane,
		Geometry: surface.PolygonGeometry(points),
		Bounds:   geom.AABBFromPoints(points),
		Centroid: geom.PolygonCentroid(points),
		Normal:   mgl32.Vec3{0, 1, 0},
		Area:     geom.PolygonArea(points),
		Active:   true,
	}
	s.SnapPoints = surface.BuildSnapPoints(id, s.Normal,
		geom.SnapCandidatesFromPolygon(points, s.Normal, geom.DefaultSnapOptions()))
	reg.RegisterSurface(s)
	return s
}

// meshBox registra uma superfície de malha: quadrado horizontal em y.
func meshBox(reg *surface.Registry, id string, y, half float32) *surface.CollisionSurface {
	tris := []geom.Triangle{
		{V0: mgl32.Vec3{-half, y, -half}, V1: mgl32.Vec3{half, y, -half}, V2: mgl32.Vec3{half, y, half}},
		{V0: mgl32.Vec3{-half, y, -half}, V1: mgl32.Vec3{half, y, half}, V2: mgl32.Vec3{-half, y, half}},
	}
	bvh := geom.BuildBVH(tris)
	s := &surface.CollisionSurface{
		ID:       id,
		Type:     surface.TypeTable,
		Source:   surface.SourceSensorMesh,
		Geometry: surface.MeshGeometry(bvh),
		Bounds:   bvh.Bounds(),
		Centroid: bvh.Bounds().Center(),
		Normal:   mgl32.Vec3{0, 1, 0},
		Active:   true,
	}
	reg.RegisterSurface(s)
	return s
}

func TestRaycastHitsFloorPlane(t *testing.T) {
	reg := surface.NewRegistry()
	floorPlane(reg, "floor")
	e := NewEngine(reg)

	res := e.Raycast(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0})
	if !res.Hit {
		t.Fatal("raio vertical deveria acertar o chão")
	}
	if !almostEqual(res.Distance, 2.0, 1e-4) {
		t.Errorf("distância = %v, esperado 2.0", res.Distance)
	}
	if !almostEqual(res.Point.Y(), 0, 1e-4) {
		t.Errorf("ponto = %v, esperado sobre y=0", res.Point)
	}
	if res.Surface == nil || res.Surface.ID != "floor" {
		t.Errorf("superfície errada: %+v", res.Surface)
	}
	if res.FaceIndex != -1 {
		t.Errorf("acerto em plano analítico deveria ter FaceIndex -1, veio %d", res.FaceIndex)
	}
}

func TestRaycastMiss(t *testing.T) {
	reg := surface.NewRegistry()
	floorPlane(reg, "floor")
	e := NewEngine(reg)

	// Raio horizontal acima do plano
	res := e.Raycast(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{1, 0, 0})
	if res.Hit {
		t.Error("raio paralelo ao chão não deveria acertar")
	}

	// Acerto no plano infinito mas fora da caixa da superfície
	res = e.Raycast(mgl32.Vec3{20, 2, 0}, mgl32.Vec3{0, -1, 0})
	if res.Hit {
		t.Error("ponto fora dos limites do plano não deveria contar")
	}

	if e.LastResult().Hit {
		t.Error("LastResult deveria refletir o último erro")
	}
}

func TestRaycastClosestWinsAcrossGeometries(t *testing.T) {
	reg := surface.NewRegistry()
	floorPlane(reg, "floor")        // y=0
	meshBox(reg, "table", 0.75, 1)  // Mesa acima do chão
	e := NewEngine(reg)

	// Raio descendo sobre a mesa: ela vence o chão
	res := e.Raycast(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0})
	if !res.Hit || res.Surface.ID != "table" {
		t.Fatalf("a mesa deveria ser o acerto mais próximo: %+v", res.Surface)
	}
	if !almostEqual(res.Distance, 1.25, 1e-4) {
		t.Errorf("distância = %v, esperado 1.25", res.Distance)
	}
	if res.FaceIndex < 0 {
		t.Error("acerto em malha deveria trazer o índice da face")
	}

	// Fora da mesa, o chão volta a ser atingido
	res = e.Raycast(mgl32.Vec3{3, 2, 3}, mgl32.Vec3{0, -1, 0})
	if !res.Hit || res.Surface.ID != "floor" {
		t.Fatalf("fora da mesa o chão deveria ser atingido: %+v", res.Surface)
	}
}

func TestRaycastSnapPointAttachment(t *testing.T) {
	reg := surface.NewRegistry()
	floorPlane(reg, "floor")
	e := NewEngine(reg)

	// Acerto quase no centro: o ponto central está dentro do raio de encaixe
	res := e.Raycast(mgl32.Vec3{0.1, 2, 0.1}, mgl32.Vec3{0, -1, 0})
	if !res.Hit {
		t.Fatal("deveria acertar o chão")
	}
	if res.SnapPoint == nil {
		t.Fatal("acerto próximo ao centro deveria anexar um ponto de encaixe")
	}
	if res.SnapPoint.SurfaceID != "floor" {
		t.Errorf("ponto de outra superfície: %+v", res.SnapPoint)
	}

	// Com o encaixe desligado, nenhum ponto é anexado
	reg.SetSnapEnabled(false)
	res = e.Raycast(mgl32.Vec3{0.1, 2, 0.1}, mgl32.Vec3{0, -1, 0})
	if !res.Hit {
		t.Fatal("o acerto geométrico não depende do encaixe")
	}
	if res.SnapPoint != nil {
		t.Error("encaixe desligado não deveria anexar pontos")
	}
}

func TestRaycastHitsManualSurface(t *testing.T) {
	reg := surface.NewRegistry()

	// Quadro manual vertical de 1m em z=3, encarando -Z
	points := []mgl32.Vec3{{-0.5, 1, 3}, {0.5, 1, 3}, {0.5, 2, 3}, {-0.5, 2, 3}}
	normal := mgl32.Vec3{0, 0, -1}
	s := &surface.CollisionSurface{
		ID:       "manual_quadro",
		Type:     surface.TypeWall,
		Source:   surface.SourceManual,
		Geometry: surface.PolygonGeometry(points),
		Bounds:   geom.AABBFromPoints(points),
		Centroid: geom.PolygonCentroid(points),
		Normal:   normal,
		Area:     geom.PolygonArea(points),
		Active:   true,
	}
	s.SnapPoints = surface.BuildSnapPoints(s.ID, normal,
		geom.SnapCandidatesFromPolygon(points, normal, geom.DefaultSnapOptions()))
	reg.RegisterSurface(s)

	e := NewEngine(reg)
	res := e.Raycast(mgl32.Vec3{0, 1.5, 0}, mgl32.Vec3{0, 0, 1})
	if !res.Hit {
		t.Fatal("superfície manual deveria ser alvo de raycast")
	}
	if !almostEqual(res.Distance, 3.0, 1e-4) {
		t.Errorf("distância = %v, esperado 3.0", res.Distance)
	}
	if res.Surface.ID != "manual_quadro" {
		t.Errorf("superfície errada: %s", res.Surface.ID)
	}
	if res.SnapPoint == nil {
		t.Error("acerto no centro do quadro deveria anexar o ponto central")
	}
}

func TestRaycastTypeFilter(t *testing.T) {
	reg := surface.NewRegistry()
	floorPlane(reg, "floor")

	cfg := reg.SnapConfig()
	cfg.AllowedTypes = []surface.Type{surface.TypeWall}
	reg.SetSnapConfig(cfg)

	e := NewEngine(reg)
	if res := e.Raycast(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0}); res.Hit {
		t.Error("filtro de tipos deveria excluir o chão do raycast")
	}
}

func TestContinuousRaycastTokens(t *testing.T) {
	reg := surface.NewRegistry()
	floorPlane(reg, "floor")
	e := NewEngine(reg)

	provider := func() (mgl32.Vec3, mgl32.Vec3, bool) {
		return mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0}, true
	}

	// Sem sessão, Tick não faz nada
	if _, ok := e.Tick(); ok {
		t.Error("Tick sem sessão não deveria executar")
	}

	tok1 := e.StartContinuous(provider)
	res, ok := e.Tick()
	if !ok || !res.Hit {
		t.Fatal("Tick com sessão ativa deveria acertar o chão")
	}

	// Nova sessão invalida o token anterior
	tok2 := e.StartContinuous(provider)
	e.StopContinuous(tok1) // Token velho: ignorado
	if _, ok := e.Tick(); !ok {
		t.Error("token antigo não deveria derrubar a sessão nova")
	}

	e.StopContinuous(tok2)
	if _, ok := e.Tick(); ok {
		t.Error("sessão encerrada não deveria mais executar")
	}
}

func TestContinuousProviderSuspension(t *testing.T) {
	reg := surface.NewRegistry()
	e := NewEngine(reg)

	active := false
	tok := e.StartContinuous(func() (mgl32.Vec3, mgl32.Vec3, bool) {
		return mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}, active
	})
	defer e.StopContinuous(tok)

	if _, ok := e.Tick(); ok {
		t.Error("provedor suspenso (ok=false) deveria pular o tick")
	}
	active = true
	if _, ok := e.Tick(); !ok {
		t.Error("provedor reativado deveria voltar a executar")
	}
}

func TestDraggerLifecycle(t *testing.T) {
	reg := surface.NewRegistry()
	floorPlane(reg, "floor")
	e := NewEngine(reg)
	d := NewDragger(e, reg)

	if d.IsDragging() {
		t.Fatal("não deveria haver arrasto antes de StartDrag")
	}

	d.StartDrag("display-1")
	if !d.IsDragging() {
		t.Fatal("StartDrag deveria abrir a sessão")
	}

	// Arrasto sobre o centro do chão: encaixa no ponto central
	st := d.UpdateDrag(mgl32.Vec3{0.05, 2, 0.05}, mgl32.Vec3{0, -1, 0})
	if st.SnapPoint == nil {
		t.Fatal("arrasto sobre o centro deveria encaixar")
	}
	if st.Surface == nil || st.Surface.ID != "floor" {
		t.Error("superfície do encaixe deveria acompanhar o ponto")
	}

	// Arrasto para o vazio: transporte à frente do cursor
	st = d.UpdateDrag(mgl32.Vec3{100, 2, 0}, mgl32.Vec3{0, 1, 0})
	if st.SnapPoint != nil {
		t.Error("sem acerto não deveria haver encaixe")
	}
	if st.PreviewPosition == nil {
		t.Fatal("arrasto livre ainda deveria ter posição de preview")
	}
	want := mgl32.Vec3{100, 4, 0} // origem + direção * carryDistance
	if st.PreviewPosition.Sub(want).Len() > 1e-4 {
		t.Errorf("posição de transporte = %v, esperado %v", *st.PreviewPosition, want)
	}

	final := d.FinishDrag()
	if final.PreviewPosition == nil {
		t.Error("FinishDrag deveria retornar o estado final antes de limpar")
	}
	if d.IsDragging() {
		t.Error("FinishDrag deveria encerrar a sessão")
	}
}
