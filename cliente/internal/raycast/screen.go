package raycast

import (
	"AnchorVision/shared/surface"
	"AnchorVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Wrappers de conveniência que derivam origem/direção da câmera do Raylib.

// RaycastFromScreen dispara um raycast a partir de uma coordenada 2D de tela.
func (e *Engine) RaycastFromScreen(screenPos rl.Vector2, cam rl.Camera3D) surface.RaycastResult {
	ray := rl.GetMouseRay(screenPos, cam)
	return e.Raycast(util.ToMgl(ray.Position), util.ToMgl(ray.Direction))
}

// RaycastFromCamera dispara um raycast ao longo do olhar do observador.
func (e *Engine) RaycastFromCamera(cam rl.Camera3D) surface.RaycastResult {
	origin := util.ToMgl(cam.Position)
	direction := util.ToMgl(cam.Target).Sub(origin)
	if l := direction.Len(); l > 0 {
		direction = direction.Mul(1.0 / l)
	} else {
		direction = mgl32.Vec3{0, 0, 1}
	}
	return e.Raycast(origin, direction)
}

// ScreenRayProvider monta um RayProvider que segue o mouse, para uso com o
// raycast contínuo. camera é consultada a cada tick.
func ScreenRayProvider(camera func() rl.Camera3D) RayProvider {
	return func() (mgl32.Vec3, mgl32.Vec3, bool) {
		ray := rl.GetMouseRay(rl.GetMousePosition(), camera())
		return util.ToMgl(ray.Position), util.ToMgl(ray.Direction), true
	}
}
