package raycast

import (
	"math"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

// Margem de contenção para verificar acertos sobre planos sem espessura.
const planeBoundsMargin = 0.02

// Engine resolve interseções raio/superfície contra o registro: BVH para
// superfícies com malha, interseção analítica para superfícies planas
// (polígonos de sensor ou manuais). O resultado é transitório e recomputado
// a cada chamada.
type Engine struct {
	reg *surface.Registry

	provider  RayProvider
	token     int
	nextToken int

	lastResult surface.RaycastResult // Slot de diagnóstico
}

// RayProvider fornece origem/direção a cada tick do raycast contínuo.
// ok=false suspende o tick sem encerrar a sessão.
type RayProvider func() (origin, direction mgl32.Vec3, ok bool)

// NewEngine cria o motor de raycast sobre o registro dado.
func NewEngine(reg *surface.Registry) *Engine {
	return &Engine{reg: reg, nextToken: 1}
}

// Raycast dispara uma consulta única e retorna o acerto mais próximo.
// A ausência de interseção é um valor normal (Hit=false), nunca um erro.
func (e *Engine) Raycast(origin, direction mgl32.Vec3) surface.RaycastResult {
	ray := geom.NewRay(origin, direction)
	cfg := e.reg.SnapConfig()
	active := e.reg.GetActiveSurfaces()

	best := surface.RaycastResult{Distance: float32(math.Inf(1)), FaceIndex: -1}

	for _, s := range active {
		if !cfg.AllowsType(s.Type) {
			continue
		}

		switch s.Geometry.Kind {
		case surface.GeometryMesh:
			// Poda barata pela caixa antes de descer no BVH
			if _, ok := geom.RayAABB(ray, s.Bounds.Inflate(planeBoundsMargin)); !ok {
				continue
			}
			if hit, ok := s.Geometry.Mesh.Raycast(ray); ok && hit.Distance < best.Distance {
				best = surface.RaycastResult{
					Hit:       true,
					Point:     hit.Point,
					Normal:    hit.Normal,
					Distance:  hit.Distance,
					Surface:   s,
					FaceIndex: hit.FaceIndex,
				}
			}

		case surface.GeometryPolygon:
			// Planos (sensor ou manuais): interseção analítica pelo
			// centroide + normal, contida na caixa da superfície
			e.planeHit(ray, s, &best)

		default:
			// Detecção sem geometria própria só raycasta se ainda for
			// um plano de sensor com centroide/normal válidos
			if s.Source != surface.SourceSensorPlane {
				continue
			}
			e.planeHit(ray, s, &best)
		}
	}

	if !best.Hit {
		e.lastResult = surface.RaycastResult{FaceIndex: -1}
		return e.lastResult
	}

	// Resolve o ponto de encaixe mais próximo dentro do limiar efetivo
	if cfg.Enabled && best.Surface != nil && len(best.Surface.SnapPoints) > 0 {
		best.SnapPoint = nearestSnapPoint(best.Surface, best.Point, cfg.SnapDistance)
	}

	e.lastResult = best
	return best
}

// LastResult expõe o último resultado calculado, para consumidores de
// diagnóstico (HUD, overlays).
func (e *Engine) LastResult() surface.RaycastResult {
	return e.lastResult
}

// StartContinuous registra o provedor de raios do raycast contínuo e
// retorna o token opaco da sessão. Iniciar de novo substitui a sessão
// anterior e invalida o token antigo.
func (e *Engine) StartContinuous(provider RayProvider) int {
	e.provider = provider
	e.token = e.nextToken
	e.nextToken++
	return e.token
}

// StopContinuous encerra a sessão identificada pelo token. Tokens de
// sessões substituídas são ignorados, evitando que um chamador atrasado
// derrube a sessão de outro.
func (e *Engine) StopContinuous(token int) {
	if token != e.token {
		return
	}
	e.provider = nil
	e.token = 0
}

// Tick executa uma rodada do raycast contínuo. Chamado uma vez por frame
// renderizado, na própria thread de render; não há trabalho assíncrono.
func (e *Engine) Tick() (surface.RaycastResult, bool) {
	if e.provider == nil {
		return surface.RaycastResult{}, false
	}
	origin, direction, ok := e.provider()
	if !ok {
		return surface.RaycastResult{}, false
	}
	return e.Raycast(origin, direction), true
}

// planeHit intersecta o raio com o plano da superfície e atualiza best se
// o acerto estiver dentro da caixa e for o mais próximo até agora.
func (e *Engine) planeHit(ray geom.Ray, s *surface.CollisionSurface, best *surface.RaycastResult) {
	t, ok := geom.RayPlane(ray, s.Centroid, s.Normal)
	if !ok || t >= best.Distance {
		return
	}
	point := ray.At(t)
	if !s.Bounds.Inflate(planeBoundsMargin).Contains(point) {
		return
	}
	*best = surface.RaycastResult{
		Hit:       true,
		Point:     point,
		Normal:    s.Normal,
		Distance:  t,
		Surface:   s,
		FaceIndex: -1,
	}
}

// nearestSnapPoint varre os pontos da superfície atingida.
func nearestSnapPoint(s *surface.CollisionSurface, point mgl32.Vec3, maxDistance float32) *surface.SnapPoint {
	var best *surface.SnapPoint
	bestDist := float32(math.Inf(1))
	for i := range s.SnapPoints {
		sp := &s.SnapPoints[i]
		d := sp.Position.Sub(point).Len()
		if d > maxDistance {
			continue
		}
		if d < bestDist {
			best, bestDist = sp, d
		}
	}
	return best
}
