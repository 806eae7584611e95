package app

import (
	"log"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/surface"
	"AnchorVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

const displayPickRadius = 0.35

// updateCamera atualiza a câmera baseado no input.
func (a *App) updateCamera() {
	dt := rl.GetFrameTime()

	// Órbita/zoom/WASD só quando não há arrasto de display em curso
	if !a.Dragger.IsDragging() {
		a.Cam.HandleInput(dt)
	}
	a.Cam.Update(dt)
}

// updateInput processa entradas de teclado e o arrasto de displays.
func (a *App) updateInput() {
	// Toggle debug info
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}

	// Toggles do overlay de feedback
	if rl.IsKeyPressed(rl.KeyB) {
		a.Feedback.ShowBounds = !a.Feedback.ShowBounds
		a.Config.ShowSurfaces = a.Feedback.ShowBounds
	}
	if rl.IsKeyPressed(rl.KeyN) {
		a.Feedback.ShowSnapPoints = !a.Feedback.ShowSnapPoints
		a.Config.ShowSnapPoints = a.Feedback.ShowSnapPoints
	}
	if rl.IsKeyPressed(rl.KeyV) {
		a.Feedback.ShowNormals = !a.Feedback.ShowNormals
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.Feedback.ShowMeshWires = !a.Feedback.ShowMeshWires
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.Feedback.EnvironmentDebug = !a.Feedback.EnvironmentDebug
		a.Config.EnvironmentDebug = a.Feedback.EnvironmentDebug
		log.Printf("[App] Debug de ambientes: %v", a.Feedback.EnvironmentDebug)
	}

	// Liga/desliga o encaixe sem perder a distância configurada
	if rl.IsKeyPressed(rl.KeyTab) {
		cfg := a.Registry.SnapConfig()
		a.Registry.SetSnapEnabled(!cfg.Enabled)
		a.Config.SnapEnabled = !cfg.Enabled
		log.Printf("[App] Encaixe: %v", !cfg.Enabled)
	}

	// Superfície manual na posição do cursor
	if rl.IsKeyPressed(rl.KeyM) {
		a.placeManualSurface()
	}

	// Remover display sob o cursor
	if rl.IsKeyPressed(rl.KeyX) {
		a.removeHoveredDisplay()
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	// ESC: Alternar Pausa
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StateViewing {
			a.State = StatePaused
			log.Println("[App] Pausado")
		} else if a.State == StatePaused {
			a.State = StateViewing
			log.Println("[App] Retomando")
		}
	}

	if a.State != StateViewing {
		return
	}

	a.updateDrag()
}

// updateDrag gerencia o ciclo de arrasto com o botão esquerdo: pega um
// display existente sob o cursor ou cria um novo, move com preview de
// encaixe e solta na posição final.
func (a *App) updateDrag() {
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		d := a.pickDisplay()
		if d == nil {
			d = a.newDisplay()
		}
		a.dragTarget = d
		a.Dragger.StartDrag("")
	}

	if a.Dragger.IsDragging() && a.dragTarget != nil {
		origin, dir := a.mouseRay()
		state := a.Dragger.UpdateDrag(origin, dir)
		if state.PreviewPosition != nil {
			a.dragTarget.Position = *state.PreviewPosition
			a.dragTarget.Normal = state.PreviewNormal
			a.dragTarget.Billboard = state.SnapPoint != nil && state.SnapPoint.Billboard
		}
	}

	if rl.IsMouseButtonReleased(rl.MouseLeftButton) && a.Dragger.IsDragging() {
		state := a.Dragger.FinishDrag()
		if a.dragTarget != nil {
			if state.PreviewPosition != nil {
				a.dragTarget.Position = *state.PreviewPosition
				a.dragTarget.Normal = state.PreviewNormal
			}
			a.dragTarget.SnapID = ""
			a.dragTarget.Billboard = false
			if state.SnapPoint != nil {
				a.dragTarget.SnapID = state.SnapPoint.ID
				a.dragTarget.Billboard = state.SnapPoint.Billboard
				log.Printf("[App] Display %d encaixado em %s", a.dragTarget.ID, state.SnapPoint.ID)
			}
		}
		a.dragTarget = nil
	}
}

// mouseRay retorna o raio de mundo sob o cursor.
func (a *App) mouseRay() (mgl32.Vec3, mgl32.Vec3) {
	ray := rl.GetMouseRay(rl.GetMousePosition(), a.Cam.RLCamera)
	return util.ToMgl(ray.Position), util.ToMgl(ray.Direction)
}

// pickDisplay retorna o display mais próximo do raio do cursor, ou nil.
func (a *App) pickDisplay() *Display {
	origin, dir := a.mouseRay()
	ray := geom.NewRay(origin, dir)

	var best *Display
	bestDistSq := float32(displayPickRadius * displayPickRadius)
	for _, d := range a.Displays {
		// Distância perpendicular do centro do display ao raio
		toCenter := d.Position.Sub(ray.Origin)
		t := toCenter.Dot(ray.Direction)
		if t < 0 {
			continue
		}
		distSq := util.DistSq(util.ToRl(d.Position), util.ToRl(ray.At(t)))
		if distSq < bestDistSq {
			bestDistSq = distSq
			best = d
		}
	}
	return best
}

// newDisplay cria um display padrão; a posição vem do primeiro update do arrasto.
func (a *App) newDisplay() *Display {
	d := &Display{
		ID:     a.nextDisplay,
		Width:  0.8,
		Height: 0.45,
	}
	a.nextDisplay++
	a.Displays = append(a.Displays, d)
	log.Printf("[App] Display %d criado", d.ID)
	return d
}

// removeHoveredDisplay apaga o display sob o cursor, se houver.
func (a *App) removeHoveredDisplay() {
	d := a.pickDisplay()
	if d == nil {
		return
	}
	for i, other := range a.Displays {
		if other == d {
			a.Displays = append(a.Displays[:i], a.Displays[i+1:]...)
			log.Printf("[App] Display %d removido", d.ID)
			return
		}
	}
}

// placeManualSurface registra um quadrado manual de 1m centrado no ponto
// sob o cursor, alinhado à superfície atingida.
func (a *App) placeManualSurface() {
	origin, dir := a.mouseRay()
	res := a.Engine.Raycast(origin, dir)
	if !res.Hit {
		log.Println("[App] Nenhuma superfície sob o cursor para ancorar")
		return
	}

	u, v := geom.PlaneTangents(res.Normal)
	const half = 0.5
	points := []mgl32.Vec3{
		res.Point.Sub(u.Mul(half)).Sub(v.Mul(half)),
		res.Point.Add(u.Mul(half)).Sub(v.Mul(half)),
		res.Point.Add(u.Mul(half)).Add(v.Mul(half)),
		res.Point.Sub(u.Mul(half)).Add(v.Mul(half)),
	}

	typ := surface.TypeCustom
	if res.Surface != nil {
		typ = res.Surface.Type
	}

	id := surface.NewSurfaceID(surface.SourceManual, typ)
	opts := geom.SnapOptions{
		GridSpacing: a.Config.SnapGridSpacing,
		GridMinArea: a.Config.SnapGridMinArea,
	}

	s := &surface.CollisionSurface{
		ID:       id,
		Type:     typ,
		Source:   surface.SourceManual,
		Geometry: surface.PolygonGeometry(points),
		Bounds:   geom.AABBFromPoints(points),
		Centroid: geom.PolygonCentroid(points),
		Normal:   res.Normal,
		Area:     geom.PolygonArea(points),
		Active:   true,
		Label:    "manual",
	}
	s.SnapPoints = surface.BuildSnapPoints(id, res.Normal,
		geom.SnapCandidatesFromPolygon(points, res.Normal, opts))

	a.Registry.RegisterSurface(s)
	log.Printf("[App] Superfície manual %s registrada", id)
}
