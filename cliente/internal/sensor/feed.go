package sensor

import (
	"log"
	"sync"
	"time"

	"AnchorVision/shared/proto/avnet"
	"AnchorVision/shared/util"

	"github.com/gorilla/websocket"
)

// FeedEvent é um evento entregue pelo feed de sensoriamento.
// Exatamente um dos campos está preenchido.
type FeedEvent struct {
	Status     *avnet.ServerStatus
	Update     *avnet.SensorUpdate
	SessionEnd bool
}

// Feed lida com a comunicação com o serviço de entendimento de cena.
// A leitura acontece em goroutine própria, mas os eventos são enfileirados
// e consumidos pelo loop de render (uma vez por frame), mantendo toda a
// mutação do registro na thread principal.
type Feed struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex

	// SPSC: o readLoop produz, a thread de render consome via Poll
	events *util.RingBuffer[FeedEvent]
}

// NewFeed cria o cliente do feed para a URL dada.
func NewFeed(url string) *Feed {
	return &Feed{
		url:    url,
		events: util.NewRingBuffer[FeedEvent](64),
	}
}

// Connect disca para o serviço com novas tentativas e inicia o loop de leitura.
func (f *Feed) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		log.Printf("[Feed] Tentativa de conexão %d/%d em %s...", i+1, maxRetries, f.url)
		f.conn, _, err = dialer.Dial(f.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Feed] Serviço ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Printf("[Feed] ERRO após %d tentativas: %v", maxRetries, err)
		return err
	}

	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()

	go f.readLoop()
	return nil
}

// IsConnected informa se o feed está ativo.
func (f *Feed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

// Poll drena os eventos pendentes sem bloquear. Chamado uma vez por frame.
func (f *Feed) Poll() []FeedEvent {
	var out []FeedEvent
	for {
		ev, err := f.events.Dequeue()
		if err != nil {
			return out
		}
		out = append(out, ev)
	}
}

// Close encerra a conexão.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	if f.conn != nil {
		f.conn.Close()
	}
}

func (f *Feed) readLoop() {
	defer func() {
		f.mu.Lock()
		f.connected = false
		f.mu.Unlock()
		if f.conn != nil {
			f.conn.Close()
		}
		// Conexão perdida equivale ao fim da sessão de sensoriamento
		f.push(FeedEvent{SessionEnd: true})
	}()

	for {
		_, message, err := f.conn.ReadMessage()
		if err != nil {
			log.Printf("[Feed] Conexão perdida: %v", err)
			return
		}

		env, err := avnet.Unpack(message)
		if err != nil {
			log.Printf("[Feed] Erro ao desempacotar envelope: %v", err)
			continue
		}

		switch env.Type {
		case avnet.TypeServerStatus:
			var status avnet.ServerStatus
			if err := env.Decode(&status); err == nil {
				f.push(FeedEvent{Status: &status})
			}
		case avnet.TypeSensorUpdate:
			var upd avnet.SensorUpdate
			if err := env.Decode(&upd); err == nil {
				f.push(FeedEvent{Update: &upd})
			} else {
				log.Printf("[Feed] SensorUpdate inválido: %v", err)
			}
		case avnet.TypeSessionEnd:
			f.push(FeedEvent{SessionEnd: true})
		}
	}
}

// push enfileira sem bloquear; sob pressão, descarta o evento novo (a
// próxima atualização de sensor traz o estado completo de qualquer forma).
func (f *Feed) push(ev FeedEvent) {
	if err := f.events.Enqueue(ev); err != nil {
		log.Printf("[Feed] Fila cheia, evento descartado")
	}
}
