package player

import "sync"

// RingBuffer keeps the most recently played PCM bytes. Writes come from the
// audio goroutine, reads from the frame loop.
type RingBuffer struct {
	buf  []byte
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

// NewRingBuffer creates a ring buffer with the given capacity in bytes.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		buf:  make([]byte, size),
		size: size,
	}
}

// Write appends p, overwriting the oldest bytes once full.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if n >= rb.size {
		copy(rb.buf, p[n-rb.size:])
		rb.w = 0
		rb.len = rb.size
		return n, nil
	}
	first := copy(rb.buf[rb.w:], p)
	copy(rb.buf, p[first:])
	rb.w = (rb.w + n) % rb.size
	rb.len = min(rb.len+n, rb.size)
	return n, nil
}

// Latest copies up to len(dst) of the most recent bytes into dst, oldest
// first, and returns how many were copied.
func (rb *RingBuffer) Latest(dst []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := min(len(dst), rb.len)
	start := (rb.w - n + rb.size) % rb.size
	first := copy(dst[:n], rb.buf[start:])
	copy(dst[first:n], rb.buf)
	return n
}

// Len returns the number of buffered bytes.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.len
}

// Clear drops everything buffered.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.len = 0
}
