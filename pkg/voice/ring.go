package voice

// RingBuffer keeps the most recent samples up to a fixed capacity, evicting
// the oldest first. It backs the pre-trigger window: audio heard just
// before a wake phrase that should be included in the recording.
type RingBuffer struct {
	buf   []float32
	start int
	size  int
}

// NewRingBuffer creates a buffer holding up to capacity samples.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{buf: make([]float32, capacity)}
}

// Write appends samples, evicting the oldest when full. Writing a slice
// larger than the capacity keeps only its tail.
func (r *RingBuffer) Write(samples []float32) {
	if len(samples) >= len(r.buf) {
		copy(r.buf, samples[len(samples)-len(r.buf):])
		r.start = 0
		r.size = len(r.buf)
		return
	}

	for _, s := range samples {
		idx := (r.start + r.size) % len(r.buf)
		r.buf[idx] = s
		if r.size < len(r.buf) {
			r.size++
		} else {
			r.start = (r.start + 1) % len(r.buf)
		}
	}
}

// Len returns the number of buffered samples.
func (r *RingBuffer) Len() int {
	return r.size
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// Snapshot returns the buffered samples oldest-first as a fresh slice.
func (r *RingBuffer) Snapshot() []float32 {
	out := make([]float32, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Reset empties the buffer.
func (r *RingBuffer) Reset() {
	r.start = 0
	r.size = 0
}
