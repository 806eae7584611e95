package environment

import (
	"fmt"

	"AnchorVision/shared/geom"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// openScene abre um asset glTF/GLB e converte a cena padrão para a árvore
// interna de nós usada pelo Loader.
func openScene(path string) ([]*SceneNode, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir asset: %w", err)
	}
	return sceneRoots(doc)
}

func sceneRoots(doc *gltf.Document) ([]*SceneNode, error) {
	nodes := make([]*SceneNode, len(doc.Nodes))
	for i, n := range doc.Nodes {
		tris, err := meshTriangles(doc, n)
		if err != nil {
			return nil, fmt.Errorf("nó %q: %w", n.Name, err)
		}
		nodes[i] = &SceneNode{
			Name:      n.Name,
			Extras:    nodeExtras(n),
			Transform: localMatrix(n),
			Triangles: tris,
		}
	}

	// Segunda passada: liga filhos
	for i, n := range doc.Nodes {
		for _, childIdx := range n.Children {
			if int(childIdx) < len(nodes) {
				nodes[i].Children = append(nodes[i].Children, nodes[childIdx])
			}
		}
	}

	scene := defaultScene(doc)
	if scene == nil {
		return nil, fmt.Errorf("asset sem cena")
	}
	roots := make([]*SceneNode, 0, len(scene.Nodes))
	for _, idx := range scene.Nodes {
		if int(idx) < len(nodes) {
			roots = append(roots, nodes[idx])
		}
	}
	return roots, nil
}

func defaultScene(doc *gltf.Document) *gltf.Scene {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene]
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0]
	}
	return nil
}

// nodeExtras expõe os metadados livres do nó (collision, surfaceType,
// collisionOnly) gravados pelo exportador. O decoder do glTF entrega extras
// JSON como map[string]any; qualquer outra forma é ignorada.
func nodeExtras(n *gltf.Node) map[string]any {
	m, ok := n.Extras.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	return m
}

// localMatrix monta a transformação local do nó: matriz explícita quando
// presente, senão TRS.
func localMatrix(n *gltf.Node) mgl32.Mat4 {
	if n.Matrix != gltf.DefaultMatrix {
		// glTF grava column-major, igual ao mgl32
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = v
		}
		return m
	}

	t := mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	q := mgl32.Quat{
		W: n.Rotation[3],
		V: mgl32.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]},
	}
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(q.Mat4()).Mul4(s)
}

// meshTriangles extrai os triângulos (espaço local) da malha do nó.
func meshTriangles(doc *gltf.Document, n *gltf.Node) ([]geom.Triangle, error) {
	if n.Mesh == nil || int(*n.Mesh) >= len(doc.Meshes) {
		return nil, nil
	}

	var tris []geom.Triangle
	for _, prim := range doc.Meshes[*n.Mesh].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue // Linhas e pontos não contribuem colisão
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("falha ao ler posições: %w", err)
		}

		vec := func(i uint32) mgl32.Vec3 {
			p := positions[i]
			return mgl32.Vec3{p[0], p[1], p[2]}
		}

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("falha ao ler índices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				tris = append(tris, geom.Triangle{
					V0: vec(indices[i]), V1: vec(indices[i+1]), V2: vec(indices[i+2]),
				})
			}
			continue
		}

		for i := 0; i+2 < len(positions); i += 3 {
			tris = append(tris, geom.Triangle{
				V0: vec(uint32(i)), V1: vec(uint32(i + 1)), V2: vec(uint32(i + 2)),
			})
		}
	}
	return tris, nil
}
