package environment

import (
	"strings"

	"AnchorVision/shared/surface"
)

// Classification é o veredito sobre um nó do asset: se ele contribui uma
// superfície de colisão, de que tipo, e se deve sumir da renderização.
type Classification struct {
	IsCollision   bool
	Type          surface.Type
	CollisionOnly bool
}

// Convenções de nomenclatura reconhecidas em nós de assets.
var nameConventions = []struct {
	marker string
	typ    surface.Type
}{
	{"_wall", surface.TypeWall},
	{"_floor", surface.TypeFloor},
	{"_ceiling", surface.TypeCeiling},
	{"_table", surface.TypeTable},
	{"_collision", surface.TypeCustom},
	{"_collider", surface.TypeCustom},
	{"_surface", surface.TypeCustom},
}

// ClassifyNode decide se um nó é superfície de colisão. Metadados explícitos
// (extras) têm precedência sobre a convenção de nome.
func ClassifyNode(name string, extras map[string]any) Classification {
	if c, ok := classifyByExtras(extras); ok {
		return c
	}
	return classifyByName(name)
}

func classifyByExtras(extras map[string]any) (Classification, bool) {
	if extras == nil {
		return Classification{}, false
	}

	collisionOnly := truthy(extras["collisionOnly"])
	collision := truthy(extras["collision"]) || truthy(extras["collider"]) || collisionOnly

	typ := surface.TypeCustom
	declared := false
	if raw, ok := extras["surfaceType"].(string); ok && raw != "" {
		typ = parseSurfaceType(raw)
		declared = true
	}

	if !collision && !declared {
		return Classification{}, false
	}
	return Classification{
		IsCollision:   true,
		Type:          typ,
		CollisionOnly: collisionOnly,
	}, true
}

func classifyByName(name string) Classification {
	lower := strings.ToLower(name)
	for _, conv := range nameConventions {
		if strings.Contains(lower, conv.marker) {
			return Classification{IsCollision: true, Type: conv.typ}
		}
	}
	return Classification{}
}

// parseSurfaceType valida o enum declarado nos metadados do nó.
func parseSurfaceType(raw string) surface.Type {
	switch surface.Type(strings.ToLower(raw)) {
	case surface.TypeWall:
		return surface.TypeWall
	case surface.TypeFloor:
		return surface.TypeFloor
	case surface.TypeCeiling:
		return surface.TypeCeiling
	case surface.TypeTable:
		return surface.TypeTable
	case surface.TypeCouch:
		return surface.TypeCouch
	case surface.TypeDoor:
		return surface.TypeDoor
	case surface.TypeWindow:
		return surface.TypeWindow
	default:
		return surface.TypeCustom
	}
}

// truthy aceita bool ou as strings "true"/"1" vindas de exportadores que
// gravam extras como texto.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case float64:
		return t != 0 // JSON numérico
	default:
		return false
	}
}
