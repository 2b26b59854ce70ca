package wire

import "testing"

func TestDetectionFrame_EncodeDecode(t *testing.T) {
	samples := []complex64{1 + 2i, -0.5 + 0.25i, 0, 3.14159 - 2.71828i}
	frame := NewDetectionFrame(42, samples)

	encoded := frame.Encode()
	decoded, err := DecodeDetectionFrame(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if decoded.Type != frame.Type {
		t.Errorf("Type: 0x%02x != 0x%02x", decoded.Type, frame.Type)
	}
	if decoded.Seq != frame.Seq {
		t.Errorf("Seq: %d != %d", decoded.Seq, frame.Seq)
	}
	if len(decoded.Samples) != len(samples) {
		t.Fatalf("Samples length: %d != %d", len(decoded.Samples), len(samples))
	}
	for i, s := range samples {
		if decoded.Samples[i] != s {
			t.Errorf("Samples[%d]: %v != %v", i, decoded.Samples[i], s)
		}
	}
}

func TestDetectionFrame_EmptyPayload(t *testing.T) {
	frame := NewDetectionFrame(1, nil)
	encoded := frame.Encode()

	decoded, err := DecodeDetectionFrame(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(decoded.Samples) != 0 {
		t.Errorf("expected empty Samples, got %d", len(decoded.Samples))
	}
}

func TestDetectionFrame_CRCDetectsCorruption(t *testing.T) {
	frame := NewDetectionFrame(7, []complex64{1 + 1i, 2 + 2i})
	encoded := frame.Encode()

	encoded[HeaderSize] ^= 0xFF

	if _, err := DecodeDetectionFrame(encoded); err == nil {
		t.Error("expected CRC error for corrupted frame")
	}
}

func TestDetectionFrame_TooShort(t *testing.T) {
	if _, err := DecodeDetectionFrame([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error for short frame")
	}
}

func TestDetectionFrame_Truncated(t *testing.T) {
	frame := NewDetectionFrame(1, []complex64{1 + 1i, 2 + 2i})
	encoded := frame.Encode()

	if _, err := DecodeDetectionFrame(encoded[:len(encoded)-2]); err == nil {
		t.Error("expected error for truncated frame")
	}
}
