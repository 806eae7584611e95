package geom

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Triangle é um triângulo no espaço do mundo.
type Triangle struct {
	V0, V1, V2 mgl32.Vec3
}

// Centroid retorna o baricentro do triângulo.
func (t Triangle) Centroid() mgl32.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// Normal retorna a normal geométrica (não normalizada se degenerado).
func (t Triangle) Normal() mgl32.Vec3 {
	n := t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0))
	if l := n.Len(); l > Epsilon {
		return n.Mul(1.0 / l)
	}
	return mgl32.Vec3{0, 1, 0}
}

// Bounds retorna a AABB do triângulo.
func (t Triangle) Bounds() AABB {
	return AABBFromPoints([]mgl32.Vec3{t.V0, t.V1, t.V2})
}

// maxTrisPerLeaf é o limite de triângulos por folha antes de dividir o nó.
const maxTrisPerLeaf = 4

// bvhNode é um nó da hierarquia. Nós internos têm dois filhos;
// folhas carregam índices de triângulos.
type bvhNode struct {
	bounds AABB
	left   *bvhNode
	right  *bvhNode
	tris   []int32 // índices em BVH.tris (apenas folhas)
}

// BVH é o índice espacial de uma malha para consultas de raio em tempo
// logarítmico. Construído no registro da superfície, descartado no cancelamento.
type BVH struct {
	root *bvhNode
	tris []Triangle
}

// BVHHit é o resultado de uma travessia bem sucedida.
type BVHHit struct {
	Point     mgl32.Vec3
	Normal    mgl32.Vec3
	Distance  float32
	FaceIndex int32
}

// BuildBVH constrói a hierarquia para a lista de triângulos.
// Retorna nil para malhas vazias.
func BuildBVH(tris []Triangle) *BVH {
	if len(tris) == 0 {
		return nil
	}
	b := &BVH{tris: tris}
	idx := make([]int32, len(tris))
	for i := range idx {
		idx[i] = int32(i)
	}
	b.root = b.buildNode(idx)
	return b
}

func (b *BVH) buildNode(idx []int32) *bvhNode {
	node := &bvhNode{bounds: b.boundsOf(idx)}

	if len(idx) <= maxTrisPerLeaf {
		node.tris = idx
		return node
	}

	// Divide no eixo mais longo, na mediana dos baricentros
	extent := node.bounds.Size()
	axis := 0
	if extent.Y() > extent.X() && extent.Y() > extent.Z() {
		axis = 1
	} else if extent.Z() > extent.X() && extent.Z() > extent.Y() {
		axis = 2
	}

	sort.Slice(idx, func(i, j int) bool {
		return b.tris[idx[i]].Centroid()[axis] < b.tris[idx[j]].Centroid()[axis]
	})

	mid := len(idx) / 2
	node.left = b.buildNode(idx[:mid])
	node.right = b.buildNode(idx[mid:])
	return node
}

func (b *BVH) boundsOf(idx []int32) AABB {
	box := AABB{
		Min: mgl32.Vec3{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))},
		Max: mgl32.Vec3{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))},
	}
	for _, i := range idx {
		t := b.tris[i]
		box = box.ExpandPoint(t.V0).ExpandPoint(t.V1).ExpandPoint(t.V2)
	}
	return box
}

// Bounds retorna a AABB da raiz.
func (b *BVH) Bounds() AABB {
	if b == nil || b.root == nil {
		return AABB{}
	}
	return b.root.bounds
}

// TriangleCount retorna o total de triângulos indexados.
func (b *BVH) TriangleCount() int {
	if b == nil {
		return 0
	}
	return len(b.tris)
}

// Triangles expõe os triângulos indexados (somente leitura).
func (b *BVH) Triangles() []Triangle {
	if b == nil {
		return nil
	}
	return b.tris
}

// Raycast percorre a hierarquia e retorna o acerto mais próximo.
func (b *BVH) Raycast(ray Ray) (BVHHit, bool) {
	if b == nil || b.root == nil {
		return BVHHit{}, false
	}

	best := BVHHit{Distance: float32(math.Inf(1)), FaceIndex: -1}
	b.traverse(b.root, ray, &best)

	if best.FaceIndex < 0 {
		return BVHHit{}, false
	}
	best.Point = ray.At(best.Distance)
	tri := b.tris[best.FaceIndex]
	best.Normal = tri.Normal()
	// Normal sempre voltada contra o raio
	if best.Normal.Dot(ray.Direction) > 0 {
		best.Normal = best.Normal.Mul(-1)
	}
	return best, true
}

func (b *BVH) traverse(node *bvhNode, ray Ray, best *BVHHit) {
	entry, hit := RayAABB(ray, node.bounds)
	if !hit || entry >= best.Distance {
		return
	}

	if node.tris != nil {
		for _, i := range node.tris {
			tri := b.tris[i]
			if t, ok := RayTriangle(ray, tri.V0, tri.V1, tri.V2); ok && t < best.Distance {
				best.Distance = t
				best.FaceIndex = i
			}
		}
		return
	}

	// Visita primeiro o filho com entrada mais próxima para podar o outro
	lEntry, lHit := RayAABB(ray, node.left.bounds)
	rEntry, rHit := RayAABB(ray, node.right.bounds)
	if lHit && rHit && rEntry < lEntry {
		b.traverse(node.right, ray, best)
		b.traverse(node.left, ray, best)
		return
	}
	if lHit {
		b.traverse(node.left, ray, best)
	}
	if rHit {
		b.traverse(node.right, ray, best)
	}
}

// Dispose libera as referências internas. A superfície dona deve ser
// desregistrada ANTES desta chamada; nunca depois.
func (b *BVH) Dispose() {
	if b == nil {
		return
	}
	b.root = nil
	b.tris = nil
}
