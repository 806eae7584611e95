package app

import (
	"fmt"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(24, 26, 34, 255))

	a.drawScene()
	a.drawHUD()

	if a.State == StatePaused {
		a.drawPauseOverlay()
	}

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D: grid de referência, overlays do registro
// e os displays colocados.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)

	rl.DrawGrid(20, 1.0)

	a.Feedback.Draw()

	for _, d := range a.Displays {
		a.drawDisplay(d)
	}

	rl.EndMode3D()
}

// drawDisplay desenha um display como um painel fino orientado pela
// normal da superfície onde foi fixado, ou encarando a câmera quando está
// livre ou preso a um ponto billboard (superfícies horizontais).
func (a *App) drawDisplay(d *Display) {
	normal := mgl32.Vec3{0, 0, 1}
	if d.Normal != nil && !d.Billboard {
		normal = *d.Normal
	} else {
		cam := util.ToMgl(a.Cam.RLCamera.Position)
		dir := cam.Sub(d.Position)
		if dir.Len() > 1e-5 {
			normal = dir.Normalize()
		}
	}

	u, v := geom.PlaneTangents(normal)
	u = u.Mul(d.Width / 2)
	v = v.Mul(d.Height / 2)

	color := rl.NewColor(90, 170, 255, 230)
	if d.SnapID != "" {
		color = rl.NewColor(90, 255, 170, 230)
	}
	if a.dragTarget == d {
		color = rl.Fade(color, 0.5)
	}

	p0 := util.ToRl(d.Position.Sub(u).Sub(v))
	p1 := util.ToRl(d.Position.Add(u).Sub(v))
	p2 := util.ToRl(d.Position.Add(u).Add(v))
	p3 := util.ToRl(d.Position.Sub(u).Add(v))

	rl.DrawTriangle3D(p0, p1, p2, rl.Fade(color, 0.35))
	rl.DrawTriangle3D(p0, p2, p3, rl.Fade(color, 0.35))
	rl.DrawLine3D(p0, p1, color)
	rl.DrawLine3D(p1, p2, color)
	rl.DrawLine3D(p2, p3, color)
	rl.DrawLine3D(p3, p0, color)
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	a.Feedback.DrawHUD(10, int32(rl.GetScreenHeight())-30)

	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(330)
	height := int32(210)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	// FPS
	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	// Estado do feed
	feedStr := "Feed: offline"
	feedColor := rl.Gray
	if a.Feed != nil && a.Feed.IsConnected() {
		feedStr = fmt.Sprintf("Feed: conectado (seq %d)", a.lastUpdateSeq)
		feedColor = rl.Green
		if !a.sensingActive {
			feedStr = "Feed: conectado (parado)"
			feedColor = rl.Yellow
		}
	}
	rl.DrawText(feedStr, x+10, y+35, 14, feedColor)

	rl.DrawLine(x+10, y+55, x+width-10, y+55, rl.NewColor(100, 100, 100, 100))

	// Contadores do registro
	rl.DrawText("REGISTRO", x+10, y+62, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Superfícies: %d | Displays: %d",
		a.Registry.SurfaceCount(), len(a.Displays)), x+10, y+77, 14, rl.White)

	snapCfg := a.Registry.SnapConfig()
	snapStr := fmt.Sprintf("Encaixe: OFF (raio %.2fm)", snapCfg.SnapDistance)
	if snapCfg.Enabled {
		snapStr = fmt.Sprintf("Encaixe: ON (raio %.2fm)", snapCfg.SnapDistance)
	}
	rl.DrawText(snapStr, x+10, y+94, 14, rl.LightGray)

	// Últimos eventos do registro
	rl.DrawLine(x+10, y+112, x+width-10, y+112, rl.NewColor(100, 100, 100, 100))
	ey := y + 118
	for _, line := range a.eventLog {
		rl.DrawText(line, x+10, ey, 10, rl.Gray)
		ey += 12
	}

	rl.DrawText("Tab: Encaixe | B/N/V/G/H: Overlay | M: Manual | X: Apagar",
		x+10, y+height-18, 12, rl.SkyBlue)
}

// drawPauseOverlay escurece a tela e mostra o estado de pausa.
func (a *App) drawPauseOverlay() {
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, 0, w, h, rl.NewColor(0, 0, 0, 140))

	text := "PAUSADO (ESC para voltar)"
	tw := rl.MeasureText(text, 28)
	rl.DrawText(text, (w-tw)/2, h/2-14, 28, rl.White)
}
