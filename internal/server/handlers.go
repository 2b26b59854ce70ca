package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/kazawai/lorasniff/internal/audio"
	"github.com/kazawai/lorasniff/internal/lora"
	"github.com/kazawai/lorasniff/internal/wire"
)

const defaultMaxExportFrames = 64

// Handlers holds the HTTP API handlers for a running detector.
type Handlers struct {
	cfg     *lora.Config
	wsHub   *WSHub
	metrics *Metrics

	mu         sync.Mutex
	seq        uint32
	running    bool
	frames     map[uint32]*wire.DetectionFrame
	frameOrder []uint32
	maxFrames  int
}

// NewHandlers creates new API handlers bound to cfg. metrics may be nil.
func NewHandlers(cfg *lora.Config, wsHub *WSHub, metrics *Metrics) *Handlers {
	return &Handlers{
		cfg:       cfg,
		wsHub:     wsHub,
		metrics:   metrics,
		frames:    make(map[uint32]*wire.DetectionFrame),
		maxFrames: defaultMaxExportFrames,
	}
}

// RecordDetection stores a captured frame for export and broadcasts it
// to connected WebSocket clients and Prometheus. The capture loop calls
// this each time Detector.Step produces a frame.
func (h *Handlers) RecordDetection(samples []complex64, cfoHz float64) uint32 {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.frames[seq] = wire.NewDetectionFrame(seq, samples)
	h.frameOrder = append(h.frameOrder, seq)
	if len(h.frameOrder) > h.maxFrames {
		evict := h.frameOrder[0]
		h.frameOrder = h.frameOrder[1:]
		delete(h.frames, evict)
	}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordDetection(cfoHz)
	}
	h.wsHub.BroadcastDetection(DetectionPayload{
		Seq:         seq,
		Samples:     len(samples),
		CFOEstimate: cfoHz,
		TotalSeen:   lora.TotalDetections(),
	})
	return seq
}

// RecordStateChange forwards a detector state transition to metrics and
// WebSocket subscribers, logging an SFD-recovery timeout as a warning.
func (h *Handlers) RecordStateChange(from, to string) {
	if h.metrics != nil {
		h.metrics.RecordTransition(from, to)
	}
	h.wsHub.BroadcastStateChange(from, to)
	if from == "sfd_search" && to == "idle" {
		h.wsHub.BroadcastLog("warn", "SFD search timed out, recovery bound exceeded")
	}
}

// RecordConsumed forwards the number of input samples a Step call
// consumed to the sample-throughput counter.
func (h *Handlers) RecordConsumed(n int) {
	if h.metrics != nil {
		h.metrics.RecordConsumed(n)
	}
}

// SetRunning updates the running flag reported by HandleStatus.
func (h *Handlers) SetRunning(running bool) {
	h.mu.Lock()
	h.running = running
	h.mu.Unlock()
}

// HandleWebSocket upgrades a request to a WebSocket connection.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.wsHub.AddClient(conn)

	go func() {
		defer h.wsHub.RemoveClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// HandleStatus reports the detector's configuration and running state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"running":          running,
		"spreadingFactor":  h.cfg.SF,
		"bandwidthHz":      h.cfg.BW,
		"method":           h.cfg.Method.String(),
		"samplesPerSymbol": h.cfg.SN,
		"totalDetections":  lora.TotalDetections(),
	})
}

// HandleDevices lists available audio devices.
func (h *Handlers) HandleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := audio.ListDevices()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"devices":  devices,
		"hasInput": audio.HasInputDevice(),
	})
}

// HandleExport serves a previously captured detection as a binary
// wire.DetectionFrame under /api/export/{seq}.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	seqStr := strings.TrimPrefix(r.URL.Path, "/api/export/")
	seq, err := strconv.ParseUint(seqStr, 10, 32)
	if err != nil {
		http.Error(w, "invalid sequence number", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	frame, ok := h.frames[uint32(seq)]
	h.mu.Unlock()
	if !ok {
		http.Error(w, "detection not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=detection-%d.bin", seq))
	w.Write(frame.Encode())
}
