package market

// DefaultWindowCap is the number of samples each per-coin rolling window keeps.
const DefaultWindowCap = 120

// RollingWindow is a fixed-capacity FIFO buffer of float64 samples, backed
// by a ring so Push never allocates.
// It is not safe for concurrent use; the owning CoinState serializes access.
type RollingWindow struct {
	values []float64
	head   int // next write position; oldest sample when full
	count  int
}

// NewRollingWindow creates a window with the given capacity.
// Capacity is fixed for the lifetime of the window.
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = DefaultWindowCap
	}
	return &RollingWindow{values: make([]float64, capacity)}
}

// Push appends the newest sample, evicting the oldest once the window is full.
func (w *RollingWindow) Push(x float64) {
	w.values[w.head] = x
	w.head = (w.head + 1) % len(w.values)
	if w.count < len(w.values) {
		w.count++
	}
}

// Len returns the number of buffered samples (<= capacity).
func (w *RollingWindow) Len() int {
	return w.count
}

// Cap returns the fixed capacity.
func (w *RollingWindow) Cap() int {
	return len(w.values)
}

// Snapshot returns the buffered samples in push order (oldest first)
// as a freshly allocated slice.
func (w *RollingWindow) Snapshot() []float64 {
	out := make([]float64, w.count)
	if w.count < len(w.values) {
		copy(out, w.values[:w.count])
		return out
	}
	n := copy(out, w.values[w.head:])
	copy(out[n:], w.values[:w.head])
	return out
}
