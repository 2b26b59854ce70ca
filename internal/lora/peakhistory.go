package lora

// PeakHistory is a bounded, front-insert history of dechirped peak bin
// indices used to test preamble consistency. Index 0 is always the most
// recently pushed value; once full, pushing evicts the oldest (tail)
// entry.
type PeakHistory struct {
	bins []int
	cap  int
}

// NewPeakHistory returns an empty PeakHistory of the given capacity.
func NewPeakHistory(capacity int) *PeakHistory {
	return &PeakHistory{bins: make([]int, 0, capacity), cap: capacity}
}

// Push inserts bin at the front, evicting the tail if at capacity. The
// shift is bounded by cap, a small compile-time constant, so this is O(1)
// in practice despite not being a ring buffer.
func (h *PeakHistory) Push(bin int) {
	if len(h.bins) < h.cap {
		h.bins = append(h.bins, 0)
	}
	copy(h.bins[1:], h.bins[:len(h.bins)-1])
	h.bins[0] = bin
}

// Len returns the number of entries currently held, in [0, capacity].
func (h *PeakHistory) Len() int { return len(h.bins) }

// Clear empties the history.
func (h *PeakHistory) Clear() { h.bins = h.bins[:0] }

// At returns the entry at index i, with 0 being the newest.
func (h *PeakHistory) At(i int) int { return h.bins[i] }
