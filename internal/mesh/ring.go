package mesh

// Ring tracks which slot of a fixed pool holds each of the most recent
// frames. Pushing into a full ring reuses the slot of the oldest frame.
type Ring struct {
	counts []int // vertex count per slot
	head   int   // slot the next push writes
	size   int   // live slots
}

// NewRing returns an empty ring of n slots. n must be positive.
func NewRing(n int) *Ring {
	if n <= 0 {
		panic("mesh: ring needs at least one slot")
	}
	return &Ring{counts: make([]int, n)}
}

// Push records a frame of count vertices and returns the slot it occupies.
func (r *Ring) Push(count int) int {
	slot := r.head
	r.counts[slot] = count
	r.head = (r.head + 1) % len(r.counts)
	r.size = min(r.size+1, len(r.counts))
	return slot
}

// Len returns the number of live slots.
func (r *Ring) Len() int { return r.size }

// Cap returns the number of slots.
func (r *Ring) Cap() int { return len(r.counts) }

// Count returns the vertex count recorded for the slot.
func (r *Ring) Count(slot int) int { return r.counts[slot] }

// Vertices returns the total vertex count across live slots.
func (r *Ring) Vertices() int {
	n := 0
	for _, s := range r.Order() {
		n += r.counts[s]
	}
	return n
}

// Order returns the live slots from oldest to newest.
func (r *Ring) Order() []int {
	order := make([]int, r.size)
	start := r.head - r.size
	for i := range order {
		order[i] = ((start+i)%len(r.counts) + len(r.counts)) % len(r.counts)
	}
	return order
}

// Reset forgets all frames.
func (r *Ring) Reset() {
	clear(r.counts)
	r.head, r.size = 0, 0
}
