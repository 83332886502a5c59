package engine

// history keeps the final multipliers of past rounds, newest first, bounded
// by a fixed capacity. Display data, not authoritative state.
type history struct {
	entries  []float64
	capacity int
}

func newHistory(capacity int) *history {
	return &history{
		entries:  make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push prepends a final multiplier, evicting the oldest entry on overflow.
func (h *history) Push(multiplier float64) {
	h.entries = append([]float64{multiplier}, h.entries...)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[:h.capacity]
	}
}

// List returns a copy, newest first.
func (h *history) List() []float64 {
	out := make([]float64, len(h.entries))
	copy(out, h.entries)
	return out
}
