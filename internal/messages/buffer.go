package messages

import "sync"

// DefaultCapacity is the number of messages the console keeps.
const DefaultCapacity = 100

// Buffer is a fixed-capacity, newest-first ring of messages. Order is
// insertion order, not CreatedAt. The oldest entry is evicted when a
// Prepend overflows the capacity.
type Buffer struct {
	mu   sync.RWMutex
	ring []ChatMessage
	head int // index of the newest message
	n    int
}

// NewBuffer creates an empty buffer holding at most capacity messages.
// Non-positive capacities use DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{ring: make([]ChatMessage, capacity)}
}

// ReplaceAll discards the contents and loads msgs (newest first), keeping
// only the first Cap() of them.
func (b *Buffer) ReplaceAll(msgs []ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.ring)
	n := min(len(msgs), len(b.ring))
	copy(b.ring, msgs[:n])
	b.head = 0
	b.n = n
}

// Prepend inserts msg as the newest entry.
func (b *Buffer) Prepend(msg ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.ring)
	b.head = (b.head - 1 + capacity) % capacity
	b.ring[b.head] = msg
	if b.n < capacity {
		b.n++
	}
}

// Snapshot returns a newest-first copy of the buffer.
func (b *Buffer) Snapshot() []ChatMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]ChatMessage, b.n)
	for i := range b.n {
		out[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	return out
}

// Newest returns the most recent message.
func (b *Buffer) Newest() (ChatMessage, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.n == 0 {
		return ChatMessage{}, false
	}
	return b.ring[b.head], true
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.n
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.ring)
}
