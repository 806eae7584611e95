package environment

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AssetModel é o esquema do catálogo de ambientes no SQLite: quais assets o
// usuário já montou e com que transformação de posicionamento.
type AssetModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Path      string
	Transform []byte // mgl32.Mat4 serializada em GOB
	AutoLoad  bool
	UpdatedAt time.Time
}

// CatalogMetadata guarda informações globais do catálogo.
type CatalogMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const catalogFormatVersion = 1

// CatalogEntry é a visão decodificada de um asset catalogado.
type CatalogEntry struct {
	ID        string
	Name      string
	Path      string
	Transform mgl32.Mat4
	AutoLoad  bool
}

// Catalog persiste o catálogo de ambientes conhecidos.
type Catalog struct {
	db *gorm.DB
}

// OpenCatalog abre (ou cria) o banco SQLite do catálogo e roda migrações.
func OpenCatalog(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// Logger silencioso em produção
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&AssetModel{}, &CatalogMetadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do catálogo: %w", err)
	}

	db.Save(&CatalogMetadata{Key: "FormatVersion", Value: fmt.Sprint(catalogFormatVersion)})

	log.Printf("[Catalog] Catálogo de ambientes aberto: %s", path)
	return &Catalog{db: db}, nil
}

// Upsert grava (ou atualiza) a entrada do ambiente no catálogo.
func (c *Catalog) Upsert(env *surface.CollisionEnvironment, autoLoad bool) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("catálogo não inicializado")
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env.Transform); err != nil {
		return err
	}

	model := AssetModel{
		ID:        env.ID,
		Name:      env.Name,
		Path:      env.Source,
		Transform: buf.Bytes(),
		AutoLoad:  autoLoad,
	}
	if err := c.db.Save(&model).Error; err != nil {
		log.Printf("[Catalog] ERRO ao salvar asset %s: %v", env.ID, err)
		return err
	}
	return nil
}

// Entries lista todos os assets catalogados com transformação decodificada.
func (c *Catalog) Entries() ([]CatalogEntry, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("catálogo não inicializado")
	}

	var models []AssetModel
	if err := c.db.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(models))
	for _, m := range models {
		transform := mgl32.Ident4()
		if len(m.Transform) > 0 {
			if err := gob.NewDecoder(bytes.NewReader(m.Transform)).Decode(&transform); err != nil {
				log.Printf("[Catalog] Transformação corrompida para %s: %v", m.ID, err)
				transform = mgl32.Ident4()
			}
		}
		entries = append(entries, CatalogEntry{
			ID:        m.ID,
			Name:      m.Name,
			Path:      m.Path,
			Transform: transform,
			AutoLoad:  m.AutoLoad,
		})
	}
	return entries, nil
}

// Remove apaga a entrada do catálogo.
func (c *Catalog) Remove(id string) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("catálogo não inicializado")
	}
	return c.db.Delete(&AssetModel{}, "id = ?", id).Error
}
