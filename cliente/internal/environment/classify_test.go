package environment

import (
	"testing"

	"AnchorVision/shared/surface"
)

func TestClassifyNodeByName(t *testing.T) {
	tests := []struct {
		name      string
		collision bool
		typ       surface.Type
	}{
		{"sala_wall_norte", true, surface.TypeWall},
		{"PISO_FLOOR", true, surface.TypeFloor},
		{"forro_ceiling", true, surface.TypeCeiling},
		{"mesa_table_01", true, surface.TypeTable},
		{"caixa_collision", true, surface.TypeCustom},
		{"prop_collider", true, surface.TypeCustom},
		{"balcao_surface", true, surface.TypeCustom},
		{"decorativo", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		c := ClassifyNode(tt.name, nil)
		if c.IsCollision != tt.collision {
			t.Errorf("ClassifyNode(%q): IsCollision = %v, esperado %v", tt.name, c.IsCollision, tt.collision)
			continue
		}
		if c.IsCollision && c.Type != tt.typ {
			t.Errorf("ClassifyNode(%q): tipo = %s, esperado %s", tt.name, c.Type, tt.typ)
		}
	}
}

func TestClassifyNodeExtrasOverrideName(t *testing.T) {
	// O nome diz "wall", mas os extras declaram mesa: extras vencem.
	c := ClassifyNode("sala_wall", map[string]any{
		"collision":   true,
		"surfaceType": "table",
	})
	if !c.IsCollision || c.Type != surface.TypeTable {
		t.Errorf("extras deveriam ter precedência: %+v", c)
	}
}

func TestClassifyNodeExtrasVariants(t *testing.T) {
	tests := []struct {
		desc      string
		extras    map[string]any
		collision bool
		only      bool
		typ       surface.Type
	}{
		{"collision bool", map[string]any{"collision": true}, true, false, surface.TypeCustom},
		{"collider bool", map[string]any{"collider": true}, true, false, surface.TypeCustom},
		{"collisionOnly implica colisão", map[string]any{"collisionOnly": true}, true, true, surface.TypeCustom},
		{"surfaceType sozinho", map[string]any{"surfaceType": "floor"}, true, false, surface.TypeFloor},
		{"string true", map[string]any{"collision": "true"}, true, false, surface.TypeCustom},
		{"string 1", map[string]any{"collision": "1"}, true, false, surface.TypeCustom},
		{"número JSON", map[string]any{"collision": float64(1)}, true, false, surface.TypeCustom},
		{"número zero", map[string]any{"collision": float64(0)}, false, false, ""},
		{"string falsa", map[string]any{"collision": "no"}, false, false, ""},
		{"tipo desconhecido vira custom", map[string]any{"surfaceType": "aquário"}, true, false, surface.TypeCustom},
		{"maiúsculas aceitas", map[string]any{"surfaceType": "WALL"}, true, false, surface.TypeWall},
		{"extras vazios", map[string]any{}, false, false, ""},
	}

	for _, tt := range tests {
		c := ClassifyNode("node", tt.extras)
		if c.IsCollision != tt.collision || c.CollisionOnly != tt.only {
			t.Errorf("%s: %+v", tt.desc, c)
			continue
		}
		if c.IsCollision && c.Type != tt.typ {
			t.Errorf("%s: tipo = %s, esperado %s", tt.desc, c.Type, tt.typ)
		}
	}
}

func TestClassifyNodeExtrasFallbackToName(t *testing.T) {
	// Extras presentes mas sem marcação de colisão: cai na convenção de nome.
	c := ClassifyNode("chao_floor", map[string]any{"material": "madeira"})
	if !c.IsCollision || c.Type != surface.TypeFloor {
		t.Errorf("deveria cair na convenção de nome: %+v", c)
	}
}
