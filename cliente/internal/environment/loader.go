package environment

import (
	"fmt"
	"log"

	"AnchorVision/shared/geom"
	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneNode é a visão interna de um nó do asset carregado: nome, metadados,
// transformação local, triângulos próprios (espaço local) e filhos.
type SceneNode struct {
	Name      string
	Extras    map[string]any
	Transform mgl32.Mat4
	Triangles []geom.Triangle
	Children  []*SceneNode
}

// Loader percorre cenários 3D carregados, classifica nós de colisão e os
// registra como superfícies de ambiente. Guarda os BVHs construídos para
// descartá-los no unload, sempre depois do desregistro.
type Loader struct {
	reg      *surface.Registry
	snapOpts geom.SnapOptions

	owned map[string][]*geom.BVH // envID -> BVHs construídos
}

// NewLoader cria o carregador de ambientes sobre o registro dado.
func NewLoader(reg *surface.Registry, snapOpts geom.SnapOptions) *Loader {
	return &Loader{
		reg:      reg,
		snapOpts: snapOpts,
		owned:    make(map[string][]*geom.BVH),
	}
}

// Load carrega um asset glTF e registra suas superfícies de colisão.
// Falha de carga fica gravada no próprio ambiente (loadState=error) e não
// derruba outros ambientes; o erro retornado serve só para log do chamador.
func (l *Loader) Load(envID, name, path string, transform mgl32.Mat4) error {
	l.reg.RegisterEnvironment(&surface.CollisionEnvironment{
		ID:        envID,
		Name:      name,
		Source:    path,
		Transform: transform,
		LoadState: surface.LoadStateLoading,
	})

	roots, err := openScene(path)
	if err != nil {
		l.reg.UpdateEnvironmentLoadState(envID, surface.LoadStateError, err.Error())
		return fmt.Errorf("ambiente %s: %w", envID, err)
	}

	count := l.RegisterScene(envID, roots, transform)
	l.reg.UpdateEnvironmentLoadState(envID, surface.LoadStateLoaded, "")
	log.Printf("[Environment] %s carregado: %d superfícies de colisão", name, count)
	return nil
}

// RegisterScene percorre a árvore de nós, classifica e registra as
// superfícies encontradas. Retorna quantas foram registradas.
func (l *Loader) RegisterScene(envID string, roots []*SceneNode, transform mgl32.Mat4) int {
	var surfaces []*surface.CollisionSurface
	for _, root := range roots {
		l.walk(root, transform, &surfaces)
	}

	if len(surfaces) > 0 {
		l.reg.RegisterEnvironmentSurfaces(envID, surfaces)
		for _, s := range surfaces {
			if s.Geometry.Kind == surface.GeometryMesh {
				l.owned[envID] = append(l.owned[envID], s.Geometry.Mesh)
			}
		}
	}
	return len(surfaces)
}

func (l *Loader) walk(node *SceneNode, parent mgl32.Mat4, out *[]*surface.CollisionSurface) {
	world := parent.Mul4(node.Transform)

	if c := ClassifyNode(node.Name, node.Extras); c.IsCollision && len(node.Triangles) > 0 {
		if s := l.buildSurface(node, world, c); s != nil {
			*out = append(*out, s)
		}
	}

	for _, child := range node.Children {
		l.walk(child, world, out)
	}
}

// buildSurface constrói o BVH do nó no espaço do mundo e monta a superfície.
func (l *Loader) buildSurface(node *SceneNode, world mgl32.Mat4, c Classification) *surface.CollisionSurface {
	tris := make([]geom.Triangle, 0, len(node.Triangles))
	for _, t := range node.Triangles {
		tris = append(tris, geom.Triangle{
			V0: transformPoint(world, t.V0),
			V1: transformPoint(world, t.V1),
			V2: transformPoint(world, t.V2),
		})
	}

	bvh := geom.BuildBVH(tris)
	if bvh == nil {
		return nil
	}
	bounds := bvh.Bounds()
	centroid := bounds.Center()
	normal := surfaceNormal(c.Type, world)
	area := surfaceArea(bounds, normal)

	id := surface.NewSurfaceID(surface.SourceEnvironment, c.Type)
	s := &surface.CollisionSurface{
		ID:            id,
		Type:          c.Type,
		Source:        surface.SourceEnvironment,
		Geometry:      surface.MeshGeometry(bvh),
		Bounds:        bounds,
		Centroid:      centroid,
		Normal:        normal,
		Area:          area,
		Active:        true,
		Label:         node.Name,
		CollisionOnly: c.CollisionOnly,
	}
	// Pontos de encaixe vêm da geometria real (caixa do BVH), não de polígono
	s.SnapPoints = surface.BuildSnapPoints(id, normal,
		geom.SnapCandidatesFromBounds(bounds, centroid, normal, area, l.snapOpts))
	return s
}

// Unload remove o ambiente e todas as suas superfícies do registro, e só
// então descarta os BVHs — nunca antes, para não haver raycast contra
// geometria liberada.
func (l *Loader) Unload(envID string) {
	l.reg.RemoveEnvironment(envID)

	for _, bvh := range l.owned[envID] {
		bvh.Dispose()
	}
	delete(l.owned, envID)
	log.Printf("[Environment] Ambiente %s descarregado", envID)
}

// surfaceNormal deriva a normal pelo tipo; tipos verticais usam a orientação
// do nó (eixo +Z transformado para o mundo).
func surfaceNormal(t surface.Type, world mgl32.Mat4) mgl32.Vec3 {
	switch t {
	case surface.TypeFloor, surface.TypeTable, surface.TypeCouch:
		return mgl32.Vec3{0, 1, 0}
	case surface.TypeCeiling:
		return mgl32.Vec3{0, -1, 0}
	default:
		fwd := world.Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
		if l := fwd.Len(); l > geom.Epsilon {
			return fwd.Mul(1.0 / l)
		}
		return mgl32.Vec3{0, 0, 1}
	}
}

// surfaceArea estima a área útil pela face da caixa alinhada à normal.
func surfaceArea(bounds geom.AABB, normal mgl32.Vec3) float32 {
	u, v := geom.PlaneTangents(normal)
	size := bounds.Size()
	du := absf(size.X()*u.X()) + absf(size.Y()*u.Y()) + absf(size.Z()*u.Z())
	dv := absf(size.X()*v.X()) + absf(size.Y()*v.Y()) + absf(size.Z()*v.Z())
	return du * dv
}

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
