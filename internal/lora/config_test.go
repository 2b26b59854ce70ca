package lora

import "testing"

func TestNewConfig_DerivedSizes(t *testing.T) {
	for sf := uint8(6); sf <= 12; sf++ {
		cfg, err := NewConfig(10.0, sf, 125000, MethodChirp)
		if err != nil {
			t.Fatalf("sf=%d: unexpected error: %v", sf, err)
		}
		if cfg.SPS != 1<<sf {
			t.Errorf("sf=%d: SPS = %d, want %d", sf, cfg.SPS, 1<<sf)
		}
		if cfg.SN != 2*cfg.SPS {
			t.Errorf("sf=%d: SN = %d, want %d", sf, cfg.SN, 2*cfg.SPS)
		}
		if cfg.FS != 2*cfg.BW {
			t.Errorf("sf=%d: FS = %d, want %d", sf, cfg.FS, 2*cfg.BW)
		}
		if cfg.FFTSize != 2*cfg.BinSize {
			t.Errorf("sf=%d: FFTSize = %d, want 2*BinSize = %d", sf, cfg.FFTSize, 2*cfg.BinSize)
		}
		if cfg.FFTSize != 10*cfg.SN {
			t.Errorf("sf=%d: FFTSize = %d, want 10*SN = %d", sf, cfg.FFTSize, 10*cfg.SN)
		}
		if cfg.FrameLength() != 13*cfg.SN {
			t.Errorf("sf=%d: FrameLength = %d, want 13*SN = %d", sf, cfg.FrameLength(), 13*cfg.SN)
		}
		if cfg.HistoryLength() != 13*cfg.SN {
			t.Errorf("sf=%d: HistoryLength = %d, want 13*SN = %d", sf, cfg.HistoryLength(), 13*cfg.SN)
		}
	}
}

func TestNewConfig_RejectsOutOfRangeSF(t *testing.T) {
	for _, sf := range []uint8{0, 1, 5, 13, 20} {
		if _, err := NewConfig(10.0, sf, 125000, MethodChirp); err == nil {
			t.Errorf("sf=%d: expected error, got nil", sf)
		}
	}
}

func TestNewConfig_RejectsUnknownMethod(t *testing.T) {
	if _, err := NewConfig(10.0, 7, 125000, Method(99)); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestNewConfig_RejectsZeroBandwidth(t *testing.T) {
	if _, err := NewConfig(10.0, 7, 0, MethodChirp); err == nil {
		t.Fatal("expected error for zero bandwidth")
	}
}
