package layout

import (
	"os"
	"path/filepath"
	"testing"

	"AnchorVision/shared/surface"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "layout.json")
	m := NewManager(path)

	want := []Placement{
		{ID: 1, Position: [3]float32{1, 2, 3}, Normal: []float32{0, 1, 0}, Width: 0.8, Height: 0.45, SnapID: "sp_mesa_center"},
		{ID: 2, Position: [3]float32{-4, 0.5, 2}, Width: 1.2, Height: 0.7},
	}
	if err := m.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("placements = %d, esperado 2", len(got))
	}
	if got[0].SnapID != "sp_mesa_center" || got[0].Position != want[0].Position {
		t.Errorf("placement 1 corrompido: %+v", got[0])
	}
	if got[1].Normal != nil {
		t.Errorf("display livre não deveria persistir normal: %v", got[1].Normal)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "inexistente.json"))
	got, err := m.Load()
	if err != nil {
		t.Fatalf("arquivo ausente deveria ser tratado como layout vazio: %v", err)
	}
	if got != nil {
		t.Errorf("esperado nil, veio %v", got)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "placements": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewManager(path).Load(); err == nil {
		t.Error("versão futura deveria ser rejeitada")
	}
}

func TestLoadRejectsCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := os.WriteFile(path, []byte("{nada disso"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewManager(path).Load(); err == nil {
		t.Error("JSON inválido deveria falhar o Load")
	}
}

func TestResolveRepinsToExistingSnapPoint(t *testing.T) {
	reg := surface.NewRegistry()
	reg.RegisterSurface(&surface.CollisionSurface{
		ID:     "surf_mesa",
		Type:   surface.TypeTable,
		Source: surface.SourceManual,
		Active: true,
		SnapPoints: []surface.SnapPoint{{
			ID:        "sp_mesa_center",
			SurfaceID: "surf_mesa",
			Position:  mgl32.Vec3{2, 0.75, 0},
			Normal:    mgl32.Vec3{0, 1, 0},
			Billboard: true,
		}},
	})

	// Pose salva desatualizada: o ponto atual vence.
	p := Placement{
		ID:       1,
		Position: [3]float32{2.1, 0.7, 0.1},
		Normal:   []float32{0, 0, 1},
		SnapID:   "sp_mesa_center",
	}
	pos, normal, snapID, billboard := Resolve(p, reg)

	if pos != (mgl32.Vec3{2, 0.75, 0}) {
		t.Errorf("posição = %v, deveria voltar ao ponto de snap", pos)
	}
	if normal == nil || *normal != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("normal = %v, deveria vir do ponto de snap", normal)
	}
	if snapID != "sp_mesa_center" {
		t.Errorf("snapID = %q", snapID)
	}
	if !billboard {
		t.Error("ponto billboard de mesa deveria restaurar o modo billboard")
	}
}

func TestResolveFallsBackWhenSnapGone(t *testing.T) {
	reg := surface.NewRegistry()

	p := Placement{
		ID:       1,
		Position: [3]float32{1, 2, 3},
		Normal:   []float32{0, 1, 0},
		SnapID:   "sp_que_sumiu",
	}
	pos, normal, snapID, billboard := Resolve(p, reg)

	if pos != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("posição = %v, deveria manter a pose salva", pos)
	}
	if normal == nil || *normal != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("normal = %v, deveria manter a salva", normal)
	}
	if snapID != "" {
		t.Errorf("snapID = %q, display deveria virar livre", snapID)
	}
	if billboard {
		t.Error("display livre não deveria ficar em modo billboard")
	}
}

func TestResolveFreePlacement(t *testing.T) {
	reg := surface.NewRegistry()

	pos, normal, snapID, billboard := Resolve(Placement{ID: 3, Position: [3]float32{0, 1, 0}}, reg)
	if pos != (mgl32.Vec3{0, 1, 0}) || normal != nil || snapID != "" || billboard {
		t.Errorf("placement livre alterado: pos=%v normal=%v snap=%q", pos, normal, snapID)
	}
}
