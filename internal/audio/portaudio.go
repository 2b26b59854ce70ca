// Package audio captures baseband IQ samples from a stereo sound device,
// treating the left/right channels as in-phase/quadrature components: a
// standard low-cost "soundcard SDR" quadrature-sampling technique.
package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const SampleFormat = 32 // float32

// Source streams baseband complex samples. Implementations need not be
// safe for concurrent Read calls.
type Source interface {
	Read(n int) ([]complex64, error)
	Close() error
}

// Init initializes PortAudio. Must be called once before opening a
// Stream, and Terminate must be called on shutdown.
func Init() error {
	return portaudio.Initialize()
}

// Terminate cleans up PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// Stream is a PortAudio-backed Source reading a stereo input device as
// one complex-valued IQ channel.
type Stream struct {
	stream       *portaudio.Stream
	buf          []float32 // interleaved L(I)/R(Q)
	framesPerBuf int
	mu           sync.Mutex
}

// NewStream opens the default stereo input device at sampleRate,
// delivering framesPerBuf complex samples per blocking read of the device.
func NewStream(sampleRate float64, framesPerBuf int) (*Stream, error) {
	s := &Stream{
		buf:          make([]float32, framesPerBuf*2),
		framesPerBuf: framesPerBuf,
	}
	stream, err := portaudio.OpenDefaultStream(2, 0, sampleRate, framesPerBuf, s.buf)
	if err != nil {
		return nil, fmt.Errorf("open IQ input stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

// Start begins capture.
func (s *Stream) Start() error { return s.stream.Start() }

// Stop pauses capture without releasing the device.
func (s *Stream) Stop() error { return s.stream.Stop() }

// Close releases the underlying device.
func (s *Stream) Close() error { return s.stream.Close() }

func (s *Stream) readChunk() ([]complex64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	out := make([]complex64, s.framesPerBuf)
	for i := range out {
		out[i] = complex(s.buf[2*i], s.buf[2*i+1])
	}
	return out, nil
}

// Read accumulates hardware-sized chunks until n complex samples have
// been captured.
func (s *Stream) Read(n int) ([]complex64, error) {
	result := make([]complex64, 0, n)
	for len(result) < n {
		chunk, err := s.readChunk()
		if err != nil {
			return nil, err
		}
		result = append(result, chunk...)
	}
	return result[:n], nil
}
