package main

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"AnchorVision/shared/proto/avnet"
)

// Simulator reproduz o comportamento de um serviço de entendimento de cena:
// publica periodicamente o estado corrente de uma sala sintética, com jitter
// de confiança e detecções que aparecem e somem entre atualizações.
type Simulator struct {
	hub *Hub

	mu       sync.Mutex
	sequence int64
	last     *avnet.SensorUpdate
	stop     chan struct{}
	once     sync.Once
}

func NewSimulator(hub *Hub) *Simulator {
	return &Simulator{
		hub:  hub,
		stop: make(chan struct{}),
	}
}

// Run publica atualizações no intervalo dado até Stop ser chamado.
func (s *Simulator) Run(interval time.Duration) {
	log.Println("[Simulator] Iniciando publicação da sala sintética...")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			log.Println("[Simulator] Loop encerrado")
			return
		case <-ticker.C:
			upd := s.nextUpdate()
			s.hub.BroadcastUpdate(upd)
		}
	}
}

// Stop encerra o loop de publicação.
func (s *Simulator) Stop() {
	s.once.Do(func() { close(s.stop) })
}

// Snapshot retorna a última atualização publicada, para entrega imediata a
// clientes recém-conectados.
func (s *Simulator) Snapshot() *avnet.SensorUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// nextUpdate monta o próximo lote: a sala fixa mais detecções transientes.
func (s *Simulator) nextUpdate() *avnet.SensorUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence++

	upd := &avnet.SensorUpdate{
		Sequence: s.sequence,
		Planes:   roomPlanes(),
		Meshes:   []avnet.DetectedMesh{clutterMesh()},
	}

	// A porta aparece e some em ciclos, exercitando o desregistro no cliente
	if (s.sequence/20)%2 == 0 {
		upd.Planes = append(upd.Planes, avnet.DetectedPlane{
			ID:         "door-1",
			Label:      "door",
			Confidence: jitter(0.72),
			Points: [][3]float32{
				{2.0, 0.0, -0.45}, {2.0, 0.0, 0.45},
				{2.0, 2.0, 0.45}, {2.0, 2.0, -0.45},
			},
		})
	}

	s.last = upd
	return upd
}

// roomPlanes devolve as superfícies estáveis da sala: chão, teto, quatro
// paredes, uma mesa e um sofá. Dimensões em metros, Y para cima.
func roomPlanes() []avnet.DetectedPlane {
	const (
		hw = 2.0 // Meia largura (X)
		hd = 2.5 // Meia profundidade (Z)
		h  = 2.6 // Altura do teto
	)

	return []avnet.DetectedPlane{
		{
			ID: "floor-1", Label: "floor", Confidence: jitter(0.97),
			Points: [][3]float32{{-hw, 0, -hd}, {hw, 0, -hd}, {hw, 0, hd}, {-hw, 0, hd}},
		},
		{
			ID: "ceiling-1", Label: "ceiling", Confidence: jitter(0.93),
			Points: [][3]float32{{-hw, h, -hd}, {-hw, h, hd}, {hw, h, hd}, {hw, h, -hd}},
		},
		{
			ID: "wall-n", Label: "wall", Confidence: jitter(0.91),
			Points: [][3]float32{{-hw, 0, -hd}, {-hw, h, -hd}, {hw, h, -hd}, {hw, 0, -hd}},
		},
		{
			ID: "wall-s", Label: "wall", Confidence: jitter(0.90),
			Points: [][3]float32{{-hw, 0, hd}, {hw, 0, hd}, {hw, h, hd}, {-hw, h, hd}},
		},
		{
			ID: "wall-e", Label: "wall", Confidence: jitter(0.88),
			Points: [][3]float32{{hw, 0, -hd}, {hw, h, -hd}, {hw, h, hd}, {hw, 0, hd}},
		},
		{
			ID: "wall-w", Label: "wall", Confidence: jitter(0.89),
			Points: [][3]float32{{-hw, 0, -hd}, {-hw, 0, hd}, {-hw, h, hd}, {-hw, h, -hd}},
		},
		{
			ID: "table-1", Label: "table", Confidence: jitter(0.84),
			Points: [][3]float32{
				{-0.6, 0.75, -0.4}, {0.6, 0.75, -0.4},
				{0.6, 0.75, 0.4}, {-0.6, 0.75, 0.4},
			},
		},
		{
			ID: "couch-1", Label: "couch", Confidence: jitter(0.78),
			Points: [][3]float32{
				{-1.0, 0.45, 1.8}, {1.0, 0.45, 1.8},
				{1.0, 0.45, 2.3}, {-1.0, 0.45, 2.3},
			},
		},
	}
}

// clutterMesh devolve uma caixa triangulada simulando um objeto não
// classificado no canto da sala (malha bruta, sem pontos de encaixe).
func clutterMesh() avnet.DetectedMesh {
	const (
		x0, x1 = 1.3, 1.8
		y0, y1 = 0.0, 0.6
		z0, z1 = -2.2, -1.7
	)

	return avnet.DetectedMesh{
		ID:    "clutter-1",
		Label: "unknown",
		Vertices: []float32{
			x0, y0, z0, x1, y0, z0, x1, y1, z0, x0, y1, z0, // Face -Z
			x0, y0, z1, x1, y0, z1, x1, y1, z1, x0, y1, z1, // Face +Z
		},
		Indices: []uint32{
			0, 2, 1, 0, 3, 2, // -Z
			4, 5, 6, 4, 6, 7, // +Z
			0, 1, 5, 0, 5, 4, // Base
			3, 7, 6, 3, 6, 2, // Topo
			0, 4, 7, 0, 7, 3, // -X
			1, 2, 6, 1, 6, 5, // +X
		},
	}
}

// jitter perturba levemente uma confiança, simulando re-classificação.
func jitter(base float32) float32 {
	v := base + (rand.Float32()-0.5)*0.04
	if v > 1.0 {
		v = 1.0
	}
	if v < 0.0 {
		v = 0.0
	}
	return v
}
