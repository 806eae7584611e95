package surface

import "github.com/go-gl/mathgl/mgl32"

// Máquina de estados da sessão de encaixe: idle -> snapping -> idle.
// Existe exatamente uma sessão viva por gesto de arrasto; iniciar uma nova
// descarta implicitamente o estado da anterior.

// StartSnapping inicia uma sessão de arrasto para a entidade alvo,
// zerando ponto de encaixe, superfície e preview.
func (r *Registry) StartSnapping(targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapState = ActiveSnapState{
		IsSnapping: true,
		TargetID:   targetID,
	}
}

// UpdateSnapState é chamado a cada tick de raycast enquanto a sessão está
// ativa. Com um ponto de encaixe resolvido, o preview assume posição e
// orientação do ponto; sem ele, a posição crua do arrasto é usada e a
// orientação fica nula (o objeto segue o cursor sem travar).
func (r *Registry) UpdateSnapState(position mgl32.Vec3, snapPoint *SnapPoint, surf *CollisionSurface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.snapState.IsSnapping {
		return
	}

	r.snapState.SnapPoint = snapPoint
	r.snapState.Surface = surf

	if snapPoint != nil {
		pos := snapPoint.Position
		normal := snapPoint.Normal
		r.snapState.PreviewPosition = &pos
		r.snapState.PreviewNormal = &normal
		return
	}

	pos := position
	r.snapState.PreviewPosition = &pos
	r.snapState.PreviewNormal = nil
}

// EndSnapping encerra a sessão e limpa todos os campos.
func (r *Registry) EndSnapping() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapState = ActiveSnapState{}
}

// SnapState retorna uma cópia do estado vigente da sessão.
func (r *Registry) SnapState() ActiveSnapState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapState
}
