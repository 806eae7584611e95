package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"AnchorVision/shared/proto/avnet"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas.
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case client, ok := <-h.register:
			if !ok {
				return
			}
			h.mu.Lock()
			h.clients[client] = &sync.Mutex{}
			h.mu.Unlock()
			log.Printf("Cliente registrado: %s", client.RemoteAddr())
		case client, ok := <-h.unregister:
			if !ok {
				return
			}
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message, ok := <-h.broadcast:
			if !ok {
				return
			}
			h.mu.Lock()
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			var targets []clientEntry
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				target.lock.Lock()
				err := target.conn.WriteMessage(websocket.TextMessage, message)
				if err != nil {
					log.Printf("Erro ao enviar para cliente %s: %v", target.conn.RemoteAddr(), err)
					target.conn.Close()
					h.mu.Lock()
					delete(h.clients, target.conn)
					h.mu.Unlock()
				}
				target.lock.Unlock()
			}
		}
	}
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez.
func (h *Hub) WriteSafe(conn *websocket.Conn, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("cliente não encontrado no hub")
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// safeSend envia para o canal de broadcast protegendo contra pânicos de canal fechado.
func (h *Hub) safeSend(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Aviso: Falha ao enviar broadcast (canal fechado?): %v", r)
		}
	}()
	h.broadcast <- data
}

// BroadcastStatus envia uma mensagem de status para todos os clientes.
func (h *Hub) BroadcastStatus(message string, active bool) {
	data, err := avnet.Pack(avnet.TypeServerStatus, avnet.ServerStatus{
		Message:       message,
		SensingActive: active,
	})
	if err != nil {
		log.Printf("[Hub] Erro ao serializar status: %v", err)
		return
	}
	h.safeSend(data)
}

// BroadcastUpdate envia o lote corrente de detecções para todos os clientes.
func (h *Hub) BroadcastUpdate(upd *avnet.SensorUpdate) {
	data, err := avnet.Pack(avnet.TypeSensorUpdate, upd)
	if err != nil {
		log.Printf("[Hub] Erro ao serializar atualização: %v", err)
		return
	}
	h.safeSend(data)
}

// BroadcastSessionEnd avisa o fim da sessão de sensoriamento.
func (h *Hub) BroadcastSessionEnd() {
	data, err := avnet.Pack(avnet.TypeSessionEnd, nil)
	if err != nil {
		return
	}
	h.safeSend(data)
}

// handleWS registra a conexão e entrega o estado inicial.
func handleWS(hub *Hub, sim *Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Erro no upgrade WebSocket: %v", err)
			return
		}
		hub.register <- conn

		// Estado inicial direto para o recém-chegado: status + snapshot da sala
		status, _ := avnet.Pack(avnet.TypeServerStatus, avnet.ServerStatus{
			Message:       "Simulador de sensoriamento ativo",
			SensingActive: true,
		})
		hub.WriteSafe(conn, status)
		if snap := sim.Snapshot(); snap != nil {
			if data, err := avnet.Pack(avnet.TypeSensorUpdate, snap); err == nil {
				hub.WriteSafe(conn, data)
			}
		}

		// Loop de leitura apenas para detectar desconexão
		go func() {
			defer func() { hub.unregister <- conn }()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func main() {
	// Working directory no diretório do executável, para caminhos relativos
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log em console e arquivo simultaneamente
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║     AnchorVision FEED v0.1.0         ║")
	log.Println("║  Simulador de sensoriamento de sala  ║")
	log.Println("╚══════════════════════════════════════╝")

	hub := newHub()
	go hub.run()

	sim := NewSimulator(hub)
	go sim.Run(500 * time.Millisecond)

	// Encerramento limpo: avisa os clientes antes de cair
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("Encerrando sessão de sensoriamento...")
		sim.Stop()
		hub.BroadcastSessionEnd()
		time.Sleep(200 * time.Millisecond)
		os.Exit(0)
	}()

	addr := "0.0.0.0:8080"
	if a := os.Getenv("AV_FEED_ADDR"); a != "" {
		addr = a
	}

	http.HandleFunc("/ws", handleWS(hub, sim))
	log.Printf("Feed WebSocket escutando em ws://%s/ws", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}
