// Command lorasniff runs a LoRa preamble/SFD detector against a stereo
// I/Q capture device (or a synthetic signal, with -simulate) and exposes
// its live state over HTTP, WebSocket, and Prometheus.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kazawai/lorasniff/internal/audio"
	"github.com/kazawai/lorasniff/internal/lora"
	"github.com/kazawai/lorasniff/internal/server"
)

func main() {
	addr := flag.String("addr", "0.0.0.0:8080", "Server address")
	staticDir := flag.String("static-dir", "./web/static", "Static file directory")
	listDevices := flag.Bool("list-devices", false, "List audio devices and exit")
	sf := flag.Int("sf", 7, "LoRa spreading factor (6-12)")
	bw := flag.Int("bw", 125000, "Signal bandwidth in Hz")
	threshold := flag.Float64("threshold", 10.0, "Detection amplitude threshold")
	method := flag.String("method", "chirp", "Detection method: amplitude, chirp, diagnostic")
	simulate := flag.Bool("simulate", false, "Feed a synthetic LoRa signal instead of opening an audio device")
	flag.Parse()

	if err := audio.Init(); err != nil {
		log.Fatalf("init portaudio: %v", err)
	}
	defer audio.Terminate()

	if *listDevices {
		if err := audio.PrintDevices(); err != nil {
			log.Fatalf("list devices: %v", err)
		}
		return
	}

	m, err := parseMethod(*method)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := lora.NewConfig(float32(*threshold), uint8(*sf), uint32(*bw), m)
	if err != nil {
		log.Fatalf("build config: %v", err)
	}

	metrics := server.NewMetrics()
	wsHub := server.NewWSHub(metrics)
	handlers := server.NewHandlers(cfg, wsHub, metrics)
	srv := server.NewServer(*addr, handlers, *staticDir)

	var source audio.Source
	if *simulate {
		source = newSimulatedSource(cfg)
		log.Println("simulate mode: feeding a synthetic LoRa signal, no audio device opened")
	} else {
		stream, err := audio.NewStream(float64(cfg.FS), cfg.SN)
		if err != nil {
			log.Fatalf("open audio stream: %v", err)
		}
		if err := stream.Start(); err != nil {
			log.Fatalf("start audio stream: %v", err)
		}
		defer stream.Stop()
		source = stream
	}

	detector := lora.NewDetector(cfg, lora.WithStateChangeCallback(func(from, to lora.State) {
		handlers.RecordStateChange(from.String(), to.String())
	}))

	go runCaptureLoop(source, detector, handlers, cfg)
	handlers.SetRunning(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		log.Printf("Detected LoRa symbols: %d", lora.TotalDetections())
		source.Close()
		audio.Terminate()
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func parseMethod(s string) (lora.Method, error) {
	switch strings.ToLower(s) {
	case "amplitude":
		return lora.MethodAmplitude, nil
	case "chirp":
		return lora.MethodChirp, nil
	case "diagnostic":
		return lora.MethodDiagnostic, nil
	default:
		return 0, fmt.Errorf("unknown detection method %q", s)
	}
}

// runCaptureLoop keeps at least cfg.HistoryLength() samples buffered and
// drives the detector one Step call at a time, mirroring the history-
// buffer contract a streaming runtime would honor.
func runCaptureLoop(source audio.Source, d *lora.Detector, handlers *server.Handlers, cfg *lora.Config) {
	buf := make([]complex64, 0, cfg.HistoryLength()*2)
	output := make([]complex64, cfg.FrameLength())

	for {
		for len(buf) < cfg.HistoryLength() {
			chunk, err := source.Read(cfg.SN)
			if err != nil {
				log.Printf("capture read error: %v", err)
				return
			}
			buf = append(buf, chunk...)
		}

		consumed, produced := d.Step(buf, output)
		handlers.RecordConsumed(consumed)
		if produced > 0 {
			frame := make([]complex64, produced)
			copy(frame, output[:produced])
			handlers.RecordDetection(frame, d.CFOEstimate())
		}
		if consumed > len(buf) {
			consumed = len(buf)
		}
		buf = buf[consumed:]
	}
}

// simulatedSource loops a pre-generated synthetic capture so -simulate
// can run without any audio hardware.
type simulatedSource struct {
	data []complex64
	pos  int
}

func newSimulatedSource(cfg *lora.Config) *simulatedSource {
	rng := rand.New(rand.NewSource(1))
	data := lora.SyntheticFrame(cfg, 12, 8, 3.0, cfg.HistoryLength()*4, 0, rng)
	return &simulatedSource{data: data}
}

func (s *simulatedSource) Read(n int) ([]complex64, error) {
	out := make([]complex64, n)
	for i := range out {
		if s.pos >= len(s.data) {
			s.pos = 0
		}
		out[i] = s.data[s.pos]
		s.pos++
	}
	return out, nil
}

func (s *simulatedSource) Close() error { return nil }
