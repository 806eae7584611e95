package feedback

import (
	"fmt"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/surface"
	"AnchorVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Cores por origem da superfície, para leitura rápida no overlay.
var sourceColors = map[surface.Source]rl.Color{
	surface.SourceSensorPlane: rl.NewColor(80, 200, 120, 255),
	surface.SourceSensorMesh:  rl.NewColor(120, 160, 255, 255),
	surface.SourceEnvironment: rl.NewColor(255, 180, 80, 255),
	surface.SourceManual:      rl.NewColor(240, 100, 200, 255),
}

// Renderer desenha o feedback visual do registro: contornos de
// superfícies, pontos de snap e o preview da superfície alvo durante
// um arrasto. Consome apenas o estado do registro, sem mutá-lo.
type Renderer struct {
	reg *surface.Registry

	ShowBounds     bool
	ShowSnapPoints bool
	ShowNormals    bool
	ShowMeshWires  bool

	// EnvironmentDebug revela nós de ambiente marcados como só-colisão,
	// que ficam invisíveis na operação normal
	EnvironmentDebug bool
}

func NewRenderer(reg *surface.Registry) *Renderer {
	cfg := reg.SnapConfig()
	return &Renderer{
		reg:            reg,
		ShowBounds:     cfg.ShowBounds,
		ShowSnapPoints: cfg.ShowGizmos,
	}
}

// visible decide se a superfície aparece no overlay: nós só-colisão só são
// desenhados com o debug de ambientes ligado.
func (r *Renderer) visible(s *surface.CollisionSurface) bool {
	return !s.CollisionOnly || r.EnvironmentDebug
}

// Draw desenha os overlays 3D. Deve ser chamado dentro de BeginMode3D.
func (r *Renderer) Draw() {
	surfaces := r.reg.GetActiveSurfaces()
	state := r.reg.SnapState()

	for _, s := range surfaces {
		if !r.visible(s) {
			continue
		}
		color := sourceColors[s.Source]

		if r.ShowBounds {
			r.drawBounds(s, color)
		}
		if r.ShowNormals {
			r.drawNormal(s, color)
		}
		if s.Geometry.Kind == surface.GeometryPolygon {
			r.drawPolygonOutline(s.Geometry.Polygon, color)
		}
		if r.ShowMeshWires && s.Geometry.Kind == surface.GeometryMesh && s.Geometry.Mesh != nil {
			r.drawMeshBounds(s, color)
		}
		if r.ShowSnapPoints {
			r.drawSnapPoints(s, state)
		}
	}

	r.drawSnapPreview(state)
}

func (r *Renderer) drawBounds(s *surface.CollisionSurface, color rl.Color) {
	center := util.ToRl(s.Bounds.Center())
	size := util.ToRl(s.Bounds.Size())
	// Caixas degeneradas (planos) ainda ganham uma espessura visível
	const minThickness = 0.01
	if size.X < minThickness {
		size.X = minThickness
	}
	if size.Y < minThickness {
		size.Y = minThickness
	}
	if size.Z < minThickness {
		size.Z = minThickness
	}
	rl.DrawCubeWiresV(center, size, rl.Fade(color, 0.6))
}

func (r *Renderer) drawNormal(s *surface.CollisionSurface, color rl.Color) {
	from := util.ToRl(s.Centroid)
	to := util.ToRl(s.Centroid.Add(s.Normal.Mul(0.25)))
	rl.DrawLine3D(from, to, color)
}

func (r *Renderer) drawPolygonOutline(points []mgl32.Vec3, color rl.Color) {
	n := len(points)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		a := util.ToRl(points[i])
		b := util.ToRl(points[(i+1)%n])
		rl.DrawLine3D(a, b, color)
	}
}

func (r *Renderer) drawMeshBounds(s *surface.CollisionSurface, color rl.Color) {
	b := s.Geometry.Mesh.Bounds()
	rl.DrawCubeWiresV(util.ToRl(b.Center()), util.ToRl(b.Size()), rl.Fade(color, 0.3))
}

func (r *Renderer) drawSnapPoints(s *surface.CollisionSurface, state surface.ActiveSnapState) {
	for i := range s.SnapPoints {
		sp := &s.SnapPoints[i]
		pos := util.ToRl(sp.Position)

		// Destaca o ponto que está engatado no arrasto atual
		if state.IsSnapping && state.SnapPoint != nil && state.SnapPoint.ID == sp.ID {
			rl.DrawSphere(pos, 0.05, rl.Yellow)
			continue
		}

		switch sp.Kind {
		case geom.SnapCenter:
			rl.DrawSphere(pos, 0.03, rl.White)
		case geom.SnapCorner:
			rl.DrawCubeV(pos, rl.Vector3{X: 0.04, Y: 0.04, Z: 0.04}, rl.LightGray)
		case geom.SnapGrid:
			rl.DrawSphere(pos, 0.015, rl.Gray)
		}
	}
}

// drawSnapPreview desenha o fantasma do display na posição de preview.
func (r *Renderer) drawSnapPreview(state surface.ActiveSnapState) {
	if !state.IsSnapping || state.PreviewPosition == nil {
		return
	}

	pos := util.ToRl(*state.PreviewPosition)
	color := rl.Fade(rl.SkyBlue, 0.5)
	if state.SnapPoint != nil {
		color = rl.Fade(rl.Green, 0.6)
	}

	// Pontos billboard não deitam o preview sobre o plano: o display final
	// vai encarar a câmera, então o fantasma fica como marcador solto
	billboard := state.SnapPoint != nil && state.SnapPoint.Billboard

	if state.PreviewNormal != nil && !billboard {
		r.drawOrientedQuad(*state.PreviewPosition, *state.PreviewNormal, 0.4, color)
		normalTo := util.ToRl(state.PreviewPosition.Add(state.PreviewNormal.Mul(0.3)))
		rl.DrawLine3D(pos, normalTo, rl.Green)
	} else {
		// Sem superfície embaixo (ou billboard): marcador flutuante
		rl.DrawCubeWiresV(pos, rl.Vector3{X: 0.4, Y: 0.25, Z: 0.02}, color)
	}
}

// drawOrientedQuad desenha um retângulo alinhado à normal da superfície.
func (r *Renderer) drawOrientedQuad(center, normal mgl32.Vec3, half float32, color rl.Color) {
	u, v := tangents(normal)
	u = u.Mul(half)
	v = v.Mul(half * 0.6)

	p0 := util.ToRl(center.Sub(u).Sub(v))
	p1 := util.ToRl(center.Add(u).Sub(v))
	p2 := util.ToRl(center.Add(u).Add(v))
	p3 := util.ToRl(center.Sub(u).Add(v))

	rl.DrawLine3D(p0, p1, color)
	rl.DrawLine3D(p1, p2, color)
	rl.DrawLine3D(p2, p3, color)
	rl.DrawLine3D(p3, p0, color)
	rl.DrawLine3D(p0, p2, rl.Fade(color, 0.4))
}

// DrawHUD desenha textos 2D de estado. Deve ser chamado fora do BeginMode3D.
func (r *Renderer) DrawHUD(x, y int32) {
	state := r.reg.SnapState()
	if !state.IsSnapping {
		return
	}

	text := "Arrastando: livre"
	if state.Surface != nil && state.SnapPoint != nil {
		text = fmt.Sprintf("Snap: %s (%s)", state.Surface.Type, state.SnapPoint.Kind)
	}
	rl.DrawText(text, x, y, 18, rl.Yellow)
}

func tangents(normal mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ref := mgl32.Vec3{0, 1, 0}
	if absf(normal.Y()) > 0.95 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	u := ref.Cross(normal).Normalize()
	v := normal.Cross(u).Normalize()
	return u, v
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
