package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config armazena as configurações do AnchorVision.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Feed de sensores (Usado pelo Cliente)
	FeedURL string `json:"feed_url"`

	// Encaixe
	SnapEnabled      bool    `json:"snap_enabled"`
	SnapDistance     float32 `json:"snap_distance"`      // Raio de atração em metros
	SnapGridSpacing  float32 `json:"snap_grid_spacing"`  // Passo da grade de pontos
	SnapGridMinArea  float32 `json:"snap_grid_min_area"` // Área mínima para grade
	MinPlaneArea     float32 `json:"min_plane_area"`     // Planos menores são descartados
	CatalogPath      string  `json:"catalog_path"`       // Banco SQLite do catálogo de ambientes
	LayoutPath       string  `json:"layout_path"`        // Layout de displays persistido (JSON)
	EnvironmentDebug bool    `json:"environment_debug"`  // Mostra nós collision-only

	// Câmera
	CameraSpeed       float32 `json:"camera_speed"`
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`

	// Debug
	ShowDebugInfo  bool `json:"show_debug_info"`
	ShowSurfaces   bool `json:"show_surfaces"` // Caixas e normais das superfícies
	ShowSnapPoints bool `json:"show_snap_points"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "AnchorVision",
		Fullscreen:   false,
		TargetFPS:    60,

		FeedURL: "ws://127.0.0.1:8080/ws",

		SnapEnabled:     true,
		SnapDistance:    0.35,
		SnapGridSpacing: 0.5,
		SnapGridMinArea: 2.0,
		MinPlaneArea:    0.05,
		CatalogPath:     "saves/catalog.av",
		LayoutPath:      "saves/layout.json",

		CameraSpeed:       10.0,
		CameraSensitivity: 0.3,
		ZoomSpeed:         5.0,

		ShowDebugInfo:  true,
		ShowSurfaces:   false,
		ShowSnapPoints: true,
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações de um arquivo JSON.
// Se o arquivo não existir, retorna as configurações padrão.
func Load() *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}
