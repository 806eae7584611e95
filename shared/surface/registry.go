package surface

import (
	"log"
	"math"
	"sort"
	"sync"

	"AnchorVision/shared/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// Registry é o dono exclusivo das coleções de superfícies e ambientes.
// Adaptadores apenas submetem registros; consumidores recebem snapshots de
// leitura e devem tratá-los como imutáveis.
//
// Toda mutação substitui a coleção inteira (copy-on-write): um leitor
// concorrente observa o estado totalmente antigo ou totalmente novo,
// nunca um intermediário rasgado.
type Registry struct {
	mu sync.RWMutex

	surfaces     map[string]*CollisionSurface
	activeIDs    map[string]struct{}
	environments map[string]*CollisionEnvironment

	snapConfig SnapConfig
	snapState  ActiveSnapState

	observers map[int]observer
	nextObsID int
}

// NewRegistry cria um registro vazio com a configuração de encaixe padrão.
// Deve existir uma única instância, criada pela raiz da aplicação e passada
// por referência a cada consumidor.
func NewRegistry() *Registry {
	return &Registry{
		surfaces:     make(map[string]*CollisionSurface),
		activeIDs:    make(map[string]struct{}),
		environments: make(map[string]*CollisionEnvironment),
		snapConfig:   DefaultSnapConfig(),
		observers:    make(map[int]observer),
	}
}

// --- Mutação de superfícies ---

// RegisterSurface insere ou substitui a superfície pelo id (idempotente).
// A prioridade é sempre rederivada da tabela canônica da origem.
func (r *Registry) RegisterSurface(s *CollisionSurface) {
	if s == nil || s.ID == "" {
		return
	}
	r.mu.Lock()
	s.Priority = PriorityFor(s.Source)
	s.UpdatedAt = nowNano()

	surfaces := cloneSurfaces(r.surfaces)
	surfaces[s.ID] = s
	active := cloneIDSet(r.activeIDs)
	if s.Active {
		active[s.ID] = struct{}{}
	} else {
		delete(active, s.ID)
	}
	r.surfaces = surfaces
	r.activeIDs = active
	r.mu.Unlock()

	r.notify(Event{Kind: EventRegistered, Surface: s})
}

// RegisterSurfaces registra uma lista em lote.
func (r *Registry) RegisterSurfaces(list []*CollisionSurface) {
	for _, s := range list {
		r.RegisterSurface(s)
	}
}

// UnregisterSurface remove a superfície e seu id do índice de ativas.
// Silencioso se o id não existir.
func (r *Registry) UnregisterSurface(id string) {
	r.mu.Lock()
	s, ok := r.surfaces[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	surfaces := cloneSurfaces(r.surfaces)
	delete(surfaces, id)
	active := cloneIDSet(r.activeIDs)
	delete(active, id)
	r.surfaces = surfaces
	r.activeIDs = active
	r.mu.Unlock()

	r.notify(Event{Kind: EventUnregistered, Surface: s})
}

// SurfaceUpdate descreve uma atualização parcial; campos nil são mantidos.
type SurfaceUpdate struct {
	Type       *Type
	Geometry   *Geometry
	Bounds     *geom.AABB
	Centroid   *mgl32.Vec3
	Normal     *mgl32.Vec3
	Area       *float32
	SnapPoints *[]SnapPoint
	Active     *bool
	Label      *string
	Confidence *float32
}

// UpdateSurface mescla os campos presentes e renova o timestamp.
// Silencioso se o id não existir.
func (r *Registry) UpdateSurface(id string, upd SurfaceUpdate) {
	r.mu.Lock()
	old, ok := r.surfaces[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	s := *old // Cópia: o registro antigo permanece válido para leitores
	if upd.Type != nil {
		s.Type = *upd.Type
	}
	if upd.Geometry != nil {
		s.Geometry = *upd.Geometry
	}
	if upd.Bounds != nil {
		s.Bounds = *upd.Bounds
	}
	if upd.Centroid != nil {
		s.Centroid = *upd.Centroid
	}
	if upd.Normal != nil {
		s.Normal = *upd.Normal
	}
	if upd.Area != nil {
		s.Area = *upd.Area
	}
	if upd.SnapPoints != nil {
		s.SnapPoints = *upd.SnapPoints
	}
	if upd.Active != nil {
		s.Active = *upd.Active
	}
	if upd.Label != nil {
		s.Label = *upd.Label
	}
	if upd.Confidence != nil {
		s.Confidence = *upd.Confidence
	}
	s.Priority = PriorityFor(s.Source)
	s.UpdatedAt = nowNano()

	surfaces := cloneSurfaces(r.surfaces)
	surfaces[id] = &s
	active := cloneIDSet(r.activeIDs)
	if s.Active {
		active[id] = struct{}{}
	} else {
		delete(active, id)
	}
	r.surfaces = surfaces
	r.activeIDs = active
	r.mu.Unlock()

	r.notify(Event{Kind: EventUpdated, Surface: &s})
}

// ClearSurfacesBySource remove todas as superfícies da origem dada. Usado ao
// encerrar uma sessão de sensoriamento para evitar acertos obsoletos.
func (r *Registry) ClearSurfacesBySource(source Source) {
	r.mu.Lock()
	var removed []*CollisionSurface
	surfaces := cloneSurfaces(r.surfaces)
	active := cloneIDSet(r.activeIDs)
	for id, s := range r.surfaces {
		if s.Source == source {
			removed = append(removed, s)
			delete(surfaces, id)
			delete(active, id)
		}
	}
	r.surfaces = surfaces
	r.activeIDs = active
	r.mu.Unlock()

	if len(removed) > 0 {
		log.Printf("[Registry] %d superfícies removidas (origem=%s)", len(removed), source)
	}
	for _, s := range removed {
		r.notify(Event{Kind: EventUnregistered, Surface: s})
	}
}

// --- Ciclo de vida de ambientes ---

// RegisterEnvironment insere ou substitui o ambiente pelo id. Substituir um
// ambiente existente remove antes as superfícies que ele possuía: o registro
// novo nunca nasce com superfícies órfãs do anterior.
func (r *Registry) RegisterEnvironment(env *CollisionEnvironment) {
	if env == nil || env.ID == "" {
		return
	}
	r.ClearEnvironmentSurfaces(env.ID)

	r.mu.Lock()
	envs := cloneEnvironments(r.environments)
	envs[env.ID] = env
	r.environments = envs
	r.mu.Unlock()
}

// RegisterEnvironmentSurfaces registra superfícies pertencentes ao ambiente,
// mantendo SurfaceIDs sincronizado com a coleção de superfícies.
func (r *Registry) RegisterEnvironmentSurfaces(envID string, list []*CollisionSurface) {
	r.mu.RLock()
	_, ok := r.environments[envID]
	r.mu.RUnlock()
	if !ok {
		log.Printf("[Registry] RegisterEnvironmentSurfaces ignorado: ambiente %q desconhecido", envID)
		return
	}

	for _, s := range list {
		s.EnvironmentID = envID
		r.RegisterSurface(s)
	}

	r.mu.Lock()
	if env, ok := r.environments[envID]; ok {
		e := *env
		// Re-registro da mesma lista não duplica ids: SurfaceIDs espelha
		// exatamente a coleção de superfícies do ambiente
		known := make(map[string]struct{}, len(e.SurfaceIDs))
		ids := append([]string{}, e.SurfaceIDs...)
		for _, id := range e.SurfaceIDs {
			known[id] = struct{}{}
		}
		for _, s := range list {
			if _, dup := known[s.ID]; dup {
				continue
			}
			known[s.ID] = struct{}{}
			ids = append(ids, s.ID)
		}
		e.SurfaceIDs = ids
		envs := cloneEnvironments(r.environments)
		envs[envID] = &e
		r.environments = envs
	}
	r.mu.Unlock()
}

// ClearEnvironmentSurfaces remove do registro todas as superfícies do
// ambiente, zerando SurfaceIDs (sem órfãos após a limpeza).
func (r *Registry) ClearEnvironmentSurfaces(envID string) {
	r.mu.Lock()
	env, ok := r.environments[envID]
	if !ok {
		r.mu.Unlock()
		return
	}

	var removed []*CollisionSurface
	surfaces := cloneSurfaces(r.surfaces)
	active := cloneIDSet(r.activeIDs)
	for _, id := range env.SurfaceIDs {
		if s, ok := surfaces[id]; ok {
			removed = append(removed, s)
			delete(surfaces, id)
			delete(active, id)
		}
	}
	e := *env
	e.SurfaceIDs = nil
	envs := cloneEnvironments(r.environments)
	envs[envID] = &e

	r.surfaces = surfaces
	r.activeIDs = active
	r.environments = envs
	r.mu.Unlock()

	for _, s := range removed {
		r.notify(Event{Kind: EventUnregistered, Surface: s})
	}
}

// UpdateEnvironmentLoadState registra o novo estado de carga do ambiente.
// Falhas de carga ficam gravadas no próprio ambiente para diagnóstico e não
// afetam outros ambientes.
func (r *Registry) UpdateEnvironmentLoadState(envID string, state LoadState, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	env, ok := r.environments[envID]
	if !ok {
		return
	}
	e := *env
	e.LoadState = state
	e.Error = errMsg
	envs := cloneEnvironments(r.environments)
	envs[envID] = &e
	r.environments = envs
}

// RemoveEnvironment limpa as superfícies do ambiente e o remove do registro.
func (r *Registry) RemoveEnvironment(envID string) {
	r.ClearEnvironmentSurfaces(envID)

	r.mu.Lock()
	envs := cloneEnvironments(r.environments)
	delete(envs, envID)
	r.environments = envs
	r.mu.Unlock()
}

// GetEnvironment retorna o ambiente pelo id, ou nil.
func (r *Registry) GetEnvironment(envID string) *CollisionEnvironment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.environments[envID]
}

// Environments retorna um snapshot de todos os ambientes.
func (r *Registry) Environments() []*CollisionEnvironment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CollisionEnvironment, 0, len(r.environments))
	for _, e := range r.environments {
		out = append(out, e)
	}
	return out
}

// --- Consultas ---

// GetSurface retorna a superfície pelo id, ou nil.
func (r *Registry) GetSurface(id string) *CollisionSurface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.surfaces[id]
}

// SurfaceCount retorna o total de superfícies registradas.
func (r *Registry) SurfaceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}

// GetSurfacesByType retorna as superfícies do tipo dado.
func (r *Registry) GetSurfacesByType(t Type) []*CollisionSurface {
	return r.collect(func(s *CollisionSurface) bool { return s.Type == t })
}

// GetSurfacesBySource retorna as superfícies da origem dada.
func (r *Registry) GetSurfacesBySource(source Source) []*CollisionSurface {
	return r.collect(func(s *CollisionSurface) bool { return s.Source == source })
}

// GetActiveSurfaces retorna as superfícies marcadas como ativas.
func (r *Registry) GetActiveSurfaces() []*CollisionSurface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CollisionSurface, 0, len(r.activeIDs))
	for id := range r.activeIDs {
		if s, ok := r.surfaces[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// GetSurfacesInBounds retorna as superfícies ativas cuja caixa intersecta a
// caixa de consulta.
func (r *Registry) GetSurfacesInBounds(box geom.AABB) []*CollisionSurface {
	return r.collect(func(s *CollisionSurface) bool {
		return s.Active && s.Bounds.Intersects(box)
	})
}

// NearestOptions filtra a busca de superfície mais próxima.
type NearestOptions struct {
	MaxDistance float32 // 0 = sem limite
	Types       []Type
	Sources     []Source
}

// GetNearestSurface retorna a superfície ativa de centroide mais próximo do
// ponto, sob o limite de distância. Empates exatos são resolvidos de forma
// determinística: maior prioridade primeiro, depois menor id.
func (r *Registry) GetNearestSurface(point mgl32.Vec3, opt NearestOptions) *CollisionSurface {
	r.mu.RLock()
	candidates := make([]*CollisionSurface, 0, len(r.activeIDs))
	for id := range r.activeIDs {
		if s, ok := r.surfaces[id]; ok {
			candidates = append(candidates, s)
		}
	}
	r.mu.RUnlock()

	// Ordena por id para que a varredura seja determinística
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	var best *CollisionSurface
	bestDist := float32(math.Inf(1))
	for _, s := range candidates {
		if !matchTypes(s.Type, opt.Types) || !matchSources(s.Source, opt.Sources) {
			continue
		}
		d := s.Centroid.Sub(point).Len()
		if opt.MaxDistance > 0 && d > opt.MaxDistance {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist = s, d
		case d == bestDist && best != nil:
			if s.Priority > best.Priority || (s.Priority == best.Priority && s.ID < best.ID) {
				best = s
			}
		}
	}
	return best
}

// GetNearestSnapPoint varre os pontos de encaixe de toda superfície ativa
// (filtrada por tipo) e retorna o de menor distância euclidiana sob o limite.
func (r *Registry) GetNearestSnapPoint(point mgl32.Vec3, maxDistance float32, types []Type) *SnapPoint {
	active := r.GetActiveSurfaces()
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	var best *SnapPoint
	bestDist := float32(math.Inf(1))
	for _, s := range active {
		if !matchTypes(s.Type, types) {
			continue
		}
		for i := range s.SnapPoints {
			sp := &s.SnapPoints[i]
			d := sp.Position.Sub(point).Len()
			if maxDistance > 0 && d > maxDistance {
				continue
			}
			if d < bestDist {
				best, bestDist = sp, d
			}
		}
	}
	return best
}

// --- Configuração de encaixe ---

// SnapConfig retorna uma cópia da configuração vigente.
func (r *Registry) SnapConfig() SnapConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapConfig
}

// SetSnapConfig substitui a configuração de encaixe.
func (r *Registry) SetSnapConfig(cfg SnapConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapConfig = cfg
}

// SetSnapEnabled liga/desliga o encaixe sem tocar nos demais ajustes.
func (r *Registry) SetSnapEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapConfig.Enabled = enabled
}

// --- Auxiliares internos ---

func (r *Registry) collect(keep func(*CollisionSurface) bool) []*CollisionSurface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*CollisionSurface
	for _, s := range r.surfaces {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func matchTypes(t Type, filter []Type) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == t {
			return true
		}
	}
	return false
}

func matchSources(s Source, filter []Source) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == s {
			return true
		}
	}
	return false
}

func cloneSurfaces(m map[string]*CollisionSurface) map[string]*CollisionSurface {
	out := make(map[string]*CollisionSurface, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIDSet(m map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(m)+1)
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func cloneEnvironments(m map[string]*CollisionEnvironment) map[string]*CollisionEnvironment {
	out := make(map[string]*CollisionEnvironment, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
