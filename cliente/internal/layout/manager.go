package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

// Placement é a forma persistida de um display colocado pelo usuário.
type Placement struct {
	ID       int        `json:"id"`
	Position [3]float32 `json:"position"`
	Normal   []float32  `json:"normal,omitempty"` // 3 valores, ausente = livre
	Width    float32    `json:"width"`
	Height   float32    `json:"height"`
	SnapID   string     `json:"snap_id,omitempty"`
}

// File é o root do layout.json.
type File struct {
	Version    int         `json:"version"`
	Placements []Placement `json:"placements"`
}

const formatVersion = 1

// Manager persiste o layout de displays entre sessões em JSON.
type Manager struct {
	path string
}

// NewManager cria o gerenciador sobre o caminho dado.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load lê o layout salvo. Arquivo ausente não é erro: retorna lista vazia.
func (m *Manager) Load() ([]Placement, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("falha ao ler %s: %w", m.path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("falha ao parsear %s: %w", m.path, err)
	}
	if f.Version > formatVersion {
		return nil, fmt.Errorf("versão de layout desconhecida: %d", f.Version)
	}
	return f.Placements, nil
}

// Save grava o layout atual, criando o diretório se necessário.
func (m *Manager) Save(placements []Placement) error {
	f := File{Version: formatVersion, Placements: placements}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(m.path, data, 0644)
}

// Resolve reconcilia um placement com o registro atual: se o ponto de snap
// salvo ainda existe, a posição, a normal e o modo billboard voltam a ser os
// do ponto (a superfície pode ter sido re-registrada em pose ligeiramente
// diferente). Retorna a posição, a normal (nil = livre), o snap id efetivo e
// se o display encara a câmera.
func Resolve(p Placement, reg *surface.Registry) (mgl32.Vec3, *mgl32.Vec3, string, bool) {
	pos := mgl32.Vec3{p.Position[0], p.Position[1], p.Position[2]}
	var normal *mgl32.Vec3
	if len(p.Normal) == 3 {
		n := mgl32.Vec3{p.Normal[0], p.Normal[1], p.Normal[2]}
		normal = &n
	}

	if p.SnapID == "" {
		return pos, normal, "", false
	}

	if sp := findSnapPoint(reg, p.SnapID); sp != nil {
		n := sp.Normal
		return sp.Position, &n, sp.ID, sp.Billboard
	}

	// Ponto de snap sumiu (superfície desregistrada): vira display livre
	return pos, normal, "", false
}

// findSnapPoint procura um ponto de snap pelo id entre as superfícies ativas.
func findSnapPoint(reg *surface.Registry, id string) *surface.SnapPoint {
	for _, s := range reg.GetActiveSurfaces() {
		for i := range s.SnapPoints {
			if s.SnapPoints[i].ID == id {
				return &s.SnapPoints[i]
			}
		}
	}
	return nil
}
