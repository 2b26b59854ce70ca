package lora

import "testing"

func TestPeakHistory_PushAndEvict(t *testing.T) {
	h := NewPeakHistory(6)

	for i := 0; i < 6; i++ {
		h.Push(i)
		if h.Len() != i+1 {
			t.Fatalf("after push %d: Len() = %d, want %d", i, h.Len(), i+1)
		}
		if h.At(0) != i {
			t.Fatalf("after push %d: At(0) = %d, want %d (newest)", i, h.At(0), i)
		}
	}

	h.Push(100)
	if h.Len() != 6 {
		t.Fatalf("Len() = %d, want 6 (capacity)", h.Len())
	}
	if h.At(0) != 100 {
		t.Fatalf("At(0) = %d, want 100", h.At(0))
	}
	for i, want := range []int{100, 5, 4, 3, 2, 1} {
		if h.At(i) != want {
			t.Errorf("At(%d) = %d, want %d", i, h.At(i), want)
		}
	}
}

func TestPeakHistory_Clear(t *testing.T) {
	h := NewPeakHistory(6)
	h.Push(1)
	h.Push(2)
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", h.Len())
	}
	h.Push(42)
	if h.Len() != 1 || h.At(0) != 42 {
		t.Fatalf("post-clear push failed: Len=%d At(0)=%d", h.Len(), h.At(0))
	}
}
