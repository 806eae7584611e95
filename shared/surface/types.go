package surface

import (
	"fmt"
	"sync/atomic"
	"time"

	"AnchorVision/shared/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// Type classifica a região à qual um display pode ser fixado.
type Type string

const (
	TypeWall    Type = "wall"
	TypeFloor   Type = "floor"
	TypeCeiling Type = "ceiling"
	TypeTable   Type = "table"
	TypeCouch   Type = "couch"
	TypeDoor    Type = "door"
	TypeWindow  Type = "window"
	TypeCustom  Type = "custom"
)

// Source identifica a origem de uma superfície registrada.
type Source string

const (
	SourceSensorPlane Source = "sensor-plane"
	SourceSensorMesh  Source = "sensor-mesh"
	SourceEnvironment Source = "environment"
	SourceManual      Source = "manual"
)

// Tabela fixa de prioridades por origem. Superfícies manuais vencem as
// detectadas; planos de sensor vencem malhas brutas; ambientes ficam abaixo
// pois tendem a cobrir tudo.
var sourcePriority = map[Source]int{
	SourceManual:      40,
	SourceSensorPlane: 30,
	SourceSensorMesh:  20,
	SourceEnvironment: 10,
}

// PriorityFor retorna a prioridade canônica da origem.
func PriorityFor(source Source) int {
	return sourcePriority[source]
}

// GeometryKind distingue as variantes da união de geometria.
type GeometryKind int

const (
	GeometryNone GeometryKind = iota
	GeometryMesh
	GeometryPolygon
)

// Geometry é a união explícita de geometrias possíveis de uma superfície:
// uma malha indexada por BVH, uma lista de pontos de polígono, ou nada.
type Geometry struct {
	Kind    GeometryKind
	Mesh    *geom.BVH    // válido quando Kind == GeometryMesh
	Polygon []mgl32.Vec3 // válido quando Kind == GeometryPolygon
}

// MeshGeometry embrulha um BVH como geometria de malha.
func MeshGeometry(bvh *geom.BVH) Geometry {
	return Geometry{Kind: GeometryMesh, Mesh: bvh}
}

// PolygonGeometry embrulha uma lista de pontos como geometria de polígono.
func PolygonGeometry(points []mgl32.Vec3) Geometry {
	return Geometry{Kind: GeometryPolygon, Polygon: points}
}

// SnapPoint é um candidato pré-computado de fixação sobre uma superfície.
// Pertence a exatamente uma superfície e nunca sobrevive a ela.
type SnapPoint struct {
	ID        string
	SurfaceID string
	Position  mgl32.Vec3
	Normal    mgl32.Vec3 // Orientação derivada da normal da superfície
	Billboard bool       // Quando true, o display encara a câmera
	Kind      geom.SnapKind
}

// CollisionSurface é uma região registrada elegível para fixação de displays.
type CollisionSurface struct {
	ID       string
	Type     Type
	Source   Source
	Priority int

	Geometry Geometry
	Bounds   geom.AABB
	Centroid mgl32.Vec3
	Normal   mgl32.Vec3
	Area     float32

	SnapPoints []SnapPoint
	Active     bool

	// Proveniência
	Label         string
	Confidence    float32
	EnvironmentID string
	CollisionOnly bool // Nó marcado como só-colisão no asset de ambiente

	UpdatedAt int64 // UnixNano da última mutação
}

// LoadState descreve o ciclo de vida de um ambiente carregado.
type LoadState string

const (
	LoadStateLoading LoadState = "loading"
	LoadStateLoaded  LoadState = "loaded"
	LoadStateError   LoadState = "error"
)

// CollisionEnvironment é um cenário 3D carregado que contribui superfícies.
type CollisionEnvironment struct {
	ID        string
	Name      string
	Source    string // Referência externa do asset (caminho/URI opaco)
	Transform mgl32.Mat4

	SurfaceIDs []string
	LoadState  LoadState
	Error      string

	Anchors []mgl32.Vec3 // Âncoras opcionais de alinhamento
}

// RaycastResult é a saída transitória de uma consulta de raio.
// Nunca é persistido; recomputado a cada chamada.
type RaycastResult struct {
	Hit       bool
	Point     mgl32.Vec3
	Normal    mgl32.Vec3
	Distance  float32
	Surface   *CollisionSurface
	SnapPoint *SnapPoint
	FaceIndex int32
}

// SnapConfig são os ajustes globais de encaixe, mutáveis pela UI.
type SnapConfig struct {
	Enabled      bool
	SnapDistance float32
	AllowedTypes []Type // nil = todos os tipos
	ShowGizmos   bool   // Indicadores de encaixe
	ShowBounds   bool   // Caixas das superfícies (debug)
}

// DefaultSnapConfig retorna os ajustes iniciais de encaixe.
func DefaultSnapConfig() SnapConfig {
	return SnapConfig{
		Enabled:      true,
		SnapDistance: 0.35,
		ShowGizmos:   true,
	}
}

// AllowsType verifica o filtro de tipos permitidos.
func (c SnapConfig) AllowsType(t Type) bool {
	if len(c.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range c.AllowedTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// ActiveSnapState é o estado efêmero de uma sessão de arrasto.
// Criado no início do arrasto, mutado a cada tick, descartado no fim.
type ActiveSnapState struct {
	IsSnapping bool
	TargetID   string
	SnapPoint  *SnapPoint
	Surface    *CollisionSurface

	PreviewPosition *mgl32.Vec3
	PreviewNormal   *mgl32.Vec3
}

var idCounter atomic.Int64

// NewSurfaceID gera um id globalmente único codificando origem, tipo e um
// contador monotônico. Adaptadores distintos nunca colidem entre frames.
func NewSurfaceID(source Source, typ Type) string {
	return fmt.Sprintf("%s_%s_%d", source, typ, idCounter.Add(1))
}

// NewSnapPointID gera o id de um ponto de encaixe derivado da superfície dona.
func NewSnapPointID(surfaceID string, index int) string {
	return fmt.Sprintf("%s_snap_%d", surfaceID, index)
}

// BuildSnapPoints converte candidatos geométricos em pontos de encaixe
// pertencentes à superfície dada. Pontos sobre superfícies horizontais
// (normal para cima: chão, mesa) viram billboards — o display encaixado
// neles encara a câmera em vez de deitar sobre o plano.
func BuildSnapPoints(surfaceID string, normal mgl32.Vec3, candidates []geom.SnapCandidate) []SnapPoint {
	if len(candidates) == 0 {
		return nil
	}
	billboard := normal.Y() > 0.5
	points := make([]SnapPoint, 0, len(candidates))
	for i, c := range candidates {
		points = append(points, SnapPoint{
			ID:        NewSnapPointID(surfaceID, i),
			SurfaceID: surfaceID,
			Position:  c.Position,
			Normal:    normal,
			Billboard: billboard,
			Kind:      c.Kind,
		})
	}
	return points
}

func nowNano() int64 {
	return time.Now().UnixNano()
}
