package feedback

import (
	"testing"

	"AnchorVision/shared/surface"
)

func TestVisibleHidesCollisionOnlyNodes(t *testing.T) {
	reg := surface.NewRegistry()
	r := NewRenderer(reg)

	normal := &surface.CollisionSurface{ID: "chao", Type: surface.TypeFloor}
	barrier := &surface.CollisionSurface{ID: "barreira", Type: surface.TypeCustom, CollisionOnly: true}

	if !r.visible(normal) {
		t.Error("superfície comum deveria ser visível")
	}
	if r.visible(barrier) {
		t.Error("nó só-colisão deveria ficar oculto fora do debug")
	}

	r.EnvironmentDebug = true
	if !r.visible(barrier) {
		t.Error("debug de ambientes deveria revelar nós só-colisão")
	}
	if !r.visible(normal) {
		t.Error("superfície comum continua visível no debug")
	}
}
