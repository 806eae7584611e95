package app

import (
	"log"

	"AnchorVision/cliente/internal/camera"
	"AnchorVision/cliente/internal/environment"
	"AnchorVision/cliente/internal/feedback"
	"AnchorVision/cliente/internal/layout"
	"AnchorVision/cliente/internal/raycast"
	"AnchorVision/cliente/internal/sensor"
	"AnchorVision/shared/config"
	"AnchorVision/shared/geom"
	"AnchorVision/shared/surface"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Conectando ao feed / carregando ambientes
	StateViewing                 // Sessão ativa
	StatePaused                  // Pausado
)

// Display é um painel virtual colocado pelo usuário no espaço.
type Display struct {
	ID        int
	Position  mgl32.Vec3
	Normal    *mgl32.Vec3 // nil quando flutuando sem superfície
	Width     float32
	Height    float32
	SnapID    string // ID do ponto de snap engatado, vazio se livre
	Billboard bool   // Encaixado num ponto billboard: encara a câmera
}

// App é a aplicação principal do AnchorVision.
type App struct {
	Config *config.Config
	State  AppState

	// Controlador de câmera orbital
	Cam *camera.Controller

	// Registro de superfícies e sistemas derivados
	Registry *surface.Registry
	Engine   *raycast.Engine
	Dragger  *raycast.Dragger
	Feedback *feedback.Renderer

	// Fontes de superfícies
	Feed    *sensor.Feed
	Bridge  *sensor.Bridge
	Loader  *environment.Loader
	Catalog *environment.Catalog
	Layout  *layout.Manager

	// Displays colocados pelo usuário
	Displays    []*Display
	nextDisplay int
	dragTarget  *Display

	// Raycast contínuo do olhar (depuração)
	gazeToken int

	// Informações de sessão
	frameCount    int
	sensingActive bool
	statusLine    string
	lastUpdateSeq int64
	unsubscribe   func()
	eventLog      []string

	// Paths de ambientes pedidos na linha de comando
	PendingEnvPaths []string
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	reg := surface.NewRegistry()
	reg.SetSnapConfig(surface.SnapConfig{
		Enabled:      cfg.SnapEnabled,
		SnapDistance: cfg.SnapDistance,
		ShowGizmos:   cfg.ShowSnapPoints,
		ShowBounds:   cfg.ShowSurfaces,
	})

	snapOpts := geom.SnapOptions{
		GridSpacing: cfg.SnapGridSpacing,
		GridMinArea: cfg.SnapGridMinArea,
	}

	engine := raycast.NewEngine(reg)

	app := &App{
		Config:      cfg,
		State:       StateLoading,
		Registry:    reg,
		Engine:      engine,
		Dragger:     raycast.NewDragger(engine, reg),
		Bridge:      sensor.NewBridge(reg, cfg.MinPlaneArea, snapOpts),
		Loader:      environment.NewLoader(reg, snapOpts),
		Layout:      layout.NewManager(cfg.LayoutPath),
		nextDisplay: 1,
		statusLine:  "Conectando ao feed de sensores...",
	}
	return app
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	a.Cam = camera.New()
	a.Feedback = feedback.NewRenderer(a.Registry)
	a.Feedback.ShowBounds = a.Config.ShowSurfaces
	a.Feedback.ShowSnapPoints = a.Config.ShowSnapPoints
	a.Feedback.EnvironmentDebug = a.Config.EnvironmentDebug

	log.Println("[AnchorVision] Janela inicializada com sucesso")
	log.Printf("[AnchorVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	// Observa o registro para o log de eventos do HUD
	a.unsubscribe = a.Registry.Subscribe(nil, func(ev surface.Event) {
		a.pushEvent(ev)
	})

	// Catálogo de ambientes (SQLite) e cargas pendentes
	a.openCatalog()
	a.loadEnvironments()

	// Layout de displays da sessão anterior. Pontos de snap que não
	// existem mais viram displays livres na posição salva.
	a.loadLayout()

	// Raycast contínuo do olhar: um por sessão, parado no shutdown
	a.gazeToken = a.Engine.StartContinuous(raycast.ScreenRayProvider(func() rl.Camera3D {
		return a.Cam.RLCamera
	}))

	// Conexão com o feed em background; eventos são drenados por frame
	a.Feed = sensor.NewFeed(a.Config.FeedURL)
	go func() {
		if err := a.Feed.Connect(); err != nil {
			log.Printf("[App] Feed indisponível: %v", err)
		}
	}()

	a.State = StateViewing

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++

	switch a.State {
	case StateViewing:
		a.processFeedEvents()
		a.updateCamera()
		a.updateInput()
		a.Engine.Tick()
	case StatePaused:
		a.updateInput() // Permite detectar ESC para despausar
	}
}

// processFeedEvents drena os eventos do feed acumulados desde o último
// frame e os aplica ao registro. Roda na thread de render.
func (a *App) processFeedEvents() {
	if a.Feed == nil {
		return
	}
	for _, ev := range a.Feed.Poll() {
		switch {
		case ev.Status != nil:
			a.sensingActive = ev.Status.SensingActive
			a.statusLine = ev.Status.Message
			log.Printf("[App] Status do feed: %s (ativo=%v)", ev.Status.Message, ev.Status.SensingActive)
		case ev.Update != nil:
			a.lastUpdateSeq = ev.Update.Sequence
			a.Bridge.ApplyUpdate(ev.Update)
		case ev.SessionEnd:
			log.Println("[App] Sessão de sensoriamento encerrada")
			a.sensingActive = false
			a.Bridge.EndSession()
		}
	}
}

// openCatalog abre o catálogo persistente de ambientes.
func (a *App) openCatalog() {
	cat, err := environment.OpenCatalog(a.Config.CatalogPath)
	if err != nil {
		log.Printf("[App] Catálogo indisponível: %v", err)
		return
	}
	a.Catalog = cat
}

// loadEnvironments carrega os ambientes pedidos na linha de comando e os
// marcados como auto-load no catálogo.
func (a *App) loadEnvironments() {
	for _, path := range a.PendingEnvPaths {
		envID := surface.NewSurfaceID(surface.SourceEnvironment, "scene")
		if err := a.Loader.Load(envID, path, path, mgl32.Ident4()); err != nil {
			log.Printf("[App] Falha ao carregar ambiente %s: %v", path, err)
			continue
		}
		if a.Catalog != nil {
			if env := a.Registry.GetEnvironment(envID); env != nil {
				if err := a.Catalog.Upsert(env, true); err != nil {
					log.Printf("[App] Falha ao catalogar ambiente: %v", err)
				}
			}
		}
	}

	if a.Catalog == nil {
		return
	}
	entries, err := a.Catalog.Entries()
	if err != nil {
		log.Printf("[App] Falha ao ler catálogo: %v", err)
		return
	}
	for _, e := range entries {
		if !e.AutoLoad {
			continue
		}
		if a.Registry.GetEnvironment(e.ID) != nil {
			continue // Já carregado nesta sessão
		}
		if err := a.Loader.Load(e.ID, e.Name, e.Path, e.Transform); err != nil {
			log.Printf("[App] Falha ao recarregar ambiente %s: %v", e.Name, err)
		}
	}
}

// loadLayout restaura os displays colocados na sessão anterior.
func (a *App) loadLayout() {
	placements, err := a.Layout.Load()
	if err != nil {
		log.Printf("[App] Falha ao carregar layout: %v", err)
		return
	}
	for _, p := range placements {
		pos, normal, snapID, billboard := layout.Resolve(p, a.Registry)
		d := &Display{
			ID:        p.ID,
			Position:  pos,
			Normal:    normal,
			Width:     p.Width,
			Height:    p.Height,
			SnapID:    snapID,
			Billboard: billboard,
		}
		a.Displays = append(a.Displays, d)
		if d.ID >= a.nextDisplay {
			a.nextDisplay = d.ID + 1
		}
	}
	if len(placements) > 0 {
		log.Printf("[App] %d displays restaurados do layout", len(placements))
	}
}

// saveLayout persiste os displays atuais.
func (a *App) saveLayout() {
	placements := make([]layout.Placement, 0, len(a.Displays))
	for _, d := range a.Displays {
		p := layout.Placement{
			ID:       d.ID,
			Position: [3]float32{d.Position.X(), d.Position.Y(), d.Position.Z()},
			Width:    d.Width,
			Height:   d.Height,
			SnapID:   d.SnapID,
		}
		if d.Normal != nil {
			p.Normal = []float32{d.Normal.X(), d.Normal.Y(), d.Normal.Z()}
		}
		placements = append(placements, p)
	}
	if err := a.Layout.Save(placements); err != nil {
		log.Printf("[App] Falha ao salvar layout: %v", err)
	}
}

// pushEvent acumula eventos do registro para exibição no HUD.
func (a *App) pushEvent(ev surface.Event) {
	var verb string
	switch ev.Kind {
	case surface.EventRegistered:
		verb = "registrada"
	case surface.EventUnregistered:
		verb = "removida"
	case surface.EventUpdated:
		verb = "atualizada"
	}
	line := ev.Surface.ID + " " + verb
	a.eventLog = append(a.eventLog, line)
	if len(a.eventLog) > 6 {
		a.eventLog = a.eventLog[len(a.eventLog)-6:]
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	a.saveLayout()

	a.Engine.StopContinuous(a.gazeToken)
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.Feed != nil {
		a.Feed.Close()
	}

	// Sensores primeiro (desregistra e descarta BVHs), depois ambientes
	a.Bridge.EndSession()
	for _, env := range a.Registry.Environments() {
		a.Loader.Unload(env.ID)
	}

	if err := a.Config.Save(); err != nil {
		log.Printf("[AnchorVision] Erro ao salvar configurações: %v", err)
	}
}
