// Package wire defines the binary envelope used to hand a captured
// detection window to an offline consumer (the HTTP export endpoint, or
// a saved capture file).
package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kazawai/lorasniff/internal/fec"
)

// TypeDetection is the only frame type this module emits: a captured
// window plus its sequence number. There is no two-way link to negotiate
// ACK/NACK/control frames over, so unlike a transport protocol's framing
// this carries a single type.
const TypeDetection byte = 0x01

// Frame size limits.
const (
	HeaderSize = 1 + 4 + 4 // Type(1B) + Seq(4B) + PayloadLen(4B)
	CRCSize    = 4
)

// DetectionFrame is a serialized detection window.
// Format: [Type(1B)][Seq(4B)][PayloadLen(4B)][Samples][CRC-32(4B)], where
// each sample is two big-endian float32s (real, imag).
type DetectionFrame struct {
	Type    byte
	Seq     uint32
	Samples []complex64
}

// NewDetectionFrame wraps samples (typically a FrameLength()-sized
// capture) with a sequence number for export.
func NewDetectionFrame(seq uint32, samples []complex64) *DetectionFrame {
	return &DetectionFrame{Type: TypeDetection, Seq: seq, Samples: samples}
}

// Encode serializes the frame to bytes with a CRC-32 trailer.
func (f *DetectionFrame) Encode() []byte {
	payloadLen := len(f.Samples) * 8
	totalLen := HeaderSize + payloadLen + CRCSize
	buf := make([]byte, totalLen)

	buf[0] = f.Type
	binary.BigEndian.PutUint32(buf[1:5], f.Seq)
	binary.BigEndian.PutUint32(buf[5:9], uint32(payloadLen))

	off := HeaderSize
	for _, s := range f.Samples {
		binary.BigEndian.PutUint32(buf[off:off+4], math.Float32bits(real(s)))
		binary.BigEndian.PutUint32(buf[off+4:off+8], math.Float32bits(imag(s)))
		off += 8
	}

	checksum := fec.Checksum(buf[:HeaderSize+payloadLen])
	binary.BigEndian.PutUint32(buf[totalLen-CRCSize:], checksum)
	return buf
}

// DecodeDetectionFrame deserializes bytes into a DetectionFrame, verifying
// the CRC-32 trailer.
func DecodeDetectionFrame(data []byte) (*DetectionFrame, error) {
	if len(data) < HeaderSize+CRCSize {
		return nil, fmt.Errorf("wire: frame too short: %d bytes", len(data))
	}

	f := &DetectionFrame{
		Type: data[0],
		Seq:  binary.BigEndian.Uint32(data[1:5]),
	}
	payloadLen := binary.BigEndian.Uint32(data[5:9])

	expectedLen := HeaderSize + int(payloadLen) + CRCSize
	if len(data) < expectedLen {
		return nil, fmt.Errorf("wire: frame truncated: have %d, need %d", len(data), expectedLen)
	}

	body, ok := fec.Verify(data[:expectedLen])
	if !ok {
		return nil, fmt.Errorf("wire: CRC mismatch")
	}

	payload := body[HeaderSize:]
	if len(payload)%8 != 0 {
		return nil, fmt.Errorf("wire: payload length %d not a multiple of 8", len(payload))
	}
	f.Samples = make([]complex64, len(payload)/8)
	for i := range f.Samples {
		off := i * 8
		re := math.Float32frombits(binary.BigEndian.Uint32(payload[off : off+4]))
		im := math.Float32frombits(binary.BigEndian.Uint32(payload[off+4 : off+8]))
		f.Samples[i] = complex(re, im)
	}

	return f, nil
}
