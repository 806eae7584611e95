package surface

// EventKind classifica uma mutação observável do registro.
type EventKind int

const (
	EventRegistered EventKind = iota
	EventUnregistered
	EventUpdated
)

// Event descreve uma mutação sobre uma superfície.
type Event struct {
	Kind    EventKind
	Surface *CollisionSurface
}

type observer struct {
	pred func(*CollisionSurface) bool
	call func(Event)
}

// Subscribe registra um observador notificado de forma síncrona a cada
// mutação cuja superfície satisfaça o predicado (nil = todas). Retorna a
// função de cancelamento da inscrição.
func (r *Registry) Subscribe(pred func(*CollisionSurface) bool, call func(Event)) func() {
	r.mu.Lock()
	id := r.nextObsID
	r.nextObsID++
	r.observers[id] = observer{pred: pred, call: call}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

// notify dispara os observadores interessados. Executa fora do lock de
// escrita: callbacks podem consultar o registro livremente.
func (r *Registry) notify(ev Event) {
	r.mu.RLock()
	interested := make([]func(Event), 0, len(r.observers))
	for _, obs := range r.observers {
		if obs.pred == nil || obs.pred(ev.Surface) {
			interested = append(interested, obs.call)
		}
	}
	r.mu.RUnlock()

	for _, call := range interested {
		call(ev)
	}
}
