package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// DetectionPayload describes a completed detection, broadcast as soon as
// Detector.Step produces a frame.
type DetectionPayload struct {
	Seq          uint32  `json:"seq"`
	Samples      int     `json:"samples"`
	CFOEstimate  float64 `json:"cfoEstimateHz"`
	TotalSeen    uint64  `json:"totalDetections"`
}

// StateChangePayload describes a detector state transition.
type StateChangePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WSHub manages WebSocket connections and broadcasts.
type WSHub struct {
	clients map[*websocket.Conn]bool
	metrics *Metrics
	mu      sync.RWMutex
}

// NewWSHub creates a new WebSocket hub. metrics may be nil.
func NewWSHub(metrics *Metrics) *WSHub {
	return &WSHub{
		clients: make(map[*websocket.Conn]bool),
		metrics: metrics,
	}
}

// AddClient registers a new WebSocket connection.
func (h *WSHub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	h.updateClientGauge()
	log.Printf("WebSocket client connected (%d total)", len(h.clients))
}

// RemoveClient removes a WebSocket connection.
func (h *WSHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
	h.updateClientGauge()
	log.Printf("WebSocket client disconnected (%d remaining)", len(h.clients))
}

func (h *WSHub) updateClientGauge() {
	if h.metrics != nil {
		h.metrics.SetActiveClients(len(h.clients))
	}
}

// Broadcast sends a message to all connected clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WebSocket marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		err := conn.WriteMessage(websocket.TextMessage, data)
		if err != nil {
			log.Printf("WebSocket write error: %v", err)
			go h.RemoveClient(conn)
		}
	}
}

// BroadcastDetection sends a detected-frame event to all clients.
func (h *WSHub) BroadcastDetection(p DetectionPayload) {
	h.Broadcast(WSMessage{Type: "detected", Payload: p})
}

// BroadcastStateChange sends a detector state transition to all clients.
func (h *WSHub) BroadcastStateChange(from, to string) {
	h.Broadcast(WSMessage{
		Type:    "state",
		Payload: StateChangePayload{From: from, To: to},
	})
}

// BroadcastLog sends a log message to all clients.
func (h *WSHub) BroadcastLog(level, message string) {
	h.Broadcast(WSMessage{
		Type: "log",
		Payload: map[string]string{
			"level":   level,
			"message": message,
		},
	})
}
