package raycast

import (
	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

// Distância de transporte quando o raio não atinge nenhuma superfície:
// o objeto flutua à frente do cursor.
const carryDistance = 2.0

// Dragger correlaciona os acertos do raycast com a sessão de encaixe do
// registro durante um gesto de arrastar-e-soltar. Uma sessão por gesto.
type Dragger struct {
	engine *Engine
	reg    *surface.Registry
}

// NewDragger cria o controlador de arrasto.
func NewDragger(engine *Engine, reg *surface.Registry) *Dragger {
	return &Dragger{engine: engine, reg: reg}
}

// StartDrag abre a sessão de encaixe para a entidade alvo.
func (d *Dragger) StartDrag(targetID string) {
	d.reg.StartSnapping(targetID)
}

// UpdateDrag processa um tick do arrasto: dispara o raycast e alimenta a
// máquina de estados com o ponto de encaixe resolvido (ou a posição crua).
// Retorna o estado atualizado para o preview.
func (d *Dragger) UpdateDrag(origin, direction mgl32.Vec3) surface.ActiveSnapState {
	res := d.engine.Raycast(origin, direction)

	if res.Hit {
		var surf *surface.CollisionSurface
		if res.SnapPoint != nil {
			surf = res.Surface
		}
		d.reg.UpdateSnapState(res.Point, res.SnapPoint, surf)
	} else {
		// Sem acerto: o objeto segue o cursor a uma distância fixa
		carry := origin.Add(direction.Normalize().Mul(carryDistance))
		d.reg.UpdateSnapState(carry, nil, nil)
	}

	return d.reg.SnapState()
}

// FinishDrag encerra a sessão e retorna o estado final, com o qual o
// chamador decide a pose de colocação do display.
func (d *Dragger) FinishDrag() surface.ActiveSnapState {
	final := d.reg.SnapState()
	d.reg.EndSnapping()
	return final
}

// IsDragging informa se há sessão ativa.
func (d *Dragger) IsDragging() bool {
	return d.reg.SnapState().IsSnapping
}
