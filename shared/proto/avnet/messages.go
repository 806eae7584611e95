// Package avnet define o protocolo de rede entre o simulador de sensores
// (servidor) e o cliente AnchorVision. Mensagens JSON dentro de um envelope
// tipado, enviadas como frames de texto WebSocket.
package avnet

import (
	"encoding/json"
	"fmt"
)

// Tipos de envelope.
const (
	TypeServerStatus = "server_status"
	TypeSensorUpdate = "sensor_update"
	TypeSessionEnd   = "session_end"
)

// Envelope embrulha qualquer mensagem do protocolo.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerStatus informa o estado do simulador ao cliente.
type ServerStatus struct {
	Message       string `json:"message"`
	SensingActive bool   `json:"sensing_active"`
}

// DetectedPlane é um plano detectado pelo entendimento de cena: polígono de
// contorno, rótulo semântico e confiança da classificação.
type DetectedPlane struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	Confidence float32      `json:"confidence"`
	Points     [][3]float32 `json:"points"`
}

// DetectedMesh é uma malha bruta detectada: geometria pura de colisão.
type DetectedMesh struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Vertices []float32 `json:"vertices"` // Trincas XYZ
	Indices  []uint32  `json:"indices"`  // Triângulos indexados
}

// SensorUpdate é o lote completo de detecções de uma atualização de
// sensoriamento. O conjunto é sempre o estado corrente: ids ausentes em
// relação ao lote anterior devem ser desregistrados pelo cliente.
type SensorUpdate struct {
	Sequence int64           `json:"sequence"`
	Planes   []DetectedPlane `json:"planes"`
	Meshes   []DetectedMesh  `json:"meshes"`
}

// Pack serializa a mensagem dentro de um envelope pronto para envio.
func Pack(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("avnet: falha ao serializar payload %s: %w", msgType, err)
		}
		raw = data
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// Unpack decodifica um envelope cru recebido da rede.
func Unpack(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("avnet: envelope inválido: %w", err)
	}
	return &env, nil
}

// Decode desempacota o payload do envelope na estrutura destino.
func (e *Envelope) Decode(dst any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("avnet: envelope %s sem payload", e.Type)
	}
	return json.Unmarshal(e.Payload, dst)
}
