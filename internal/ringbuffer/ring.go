// Package ringbuffer provides a fixed-capacity FIFO that drops its oldest
// element on overflow.
package ringbuffer

type Ring[T any] struct {
	buf   []T
	start int
	size  int
}

// New panics if capacity is not positive.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ringbuffer: capacity must be positive")
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the ring is full.
func (r *Ring[T]) Push(v T) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

func (r *Ring[T]) Len() int   { return r.size }
func (r *Ring[T]) Cap() int   { return len(r.buf) }
func (r *Ring[T]) Full() bool { return r.size == len(r.buf) }

// At returns the i-th element, 0 being the oldest.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("ringbuffer: index out of range")
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

func (r *Ring[T]) Oldest() T { return r.At(0) }
func (r *Ring[T]) Newest() T { return r.At(r.size - 1) }

// Values copies the contents oldest first.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}
