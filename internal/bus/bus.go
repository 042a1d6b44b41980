// Package bus carries console state changes to observers: the TUI router,
// the CLI tail command and tests.
package bus

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Bus fans events out to subscribers by kind prefix. Publish never blocks;
// an event that does not fit a subscriber's buffer is counted and dropped
// for that subscriber.
type Bus struct {
	mu      sync.Mutex // serializes writers of subs
	subs    atomic.Pointer[[]*subscriber]
	dropped atomic.Uint64
}

type subscriber struct {
	prefix string
	ch     chan Event
}

// New creates a bus with no subscribers.
func New() *Bus {
	b := &Bus{}
	b.subs.Store(&[]*subscriber{})
	return b
}

// Publish delivers evt to every subscriber whose prefix matches evt.Kind.
// A nil bus discards the event.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	for _, s := range *b.subs.Load() {
		if !strings.HasPrefix(evt.Kind, s.prefix) {
			continue
		}
		select {
		case s.ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Emit publishes an event of kind stamped with the current time.
func (b *Bus) Emit(kind string, payload any) {
	b.Publish(NewEvent(kind, payload))
}

// Subscribe registers interest in kinds starting with prefix ("" for all)
// and returns the event channel and a cancel func. Cancel is idempotent and
// does not close the channel.
func (b *Bus) Subscribe(prefix string, bufSize int) (<-chan Event, func()) {
	s := &subscriber{prefix: prefix, ch: make(chan Event, bufSize)}
	b.update(func(subs []*subscriber) []*subscriber {
		return append(subs, s)
	})

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			b.update(func(subs []*subscriber) []*subscriber {
				return slices.DeleteFunc(subs, func(x *subscriber) bool { return x == s })
			})
		})
	}
}

// update swaps in a modified copy of the subscriber list so Publish can
// iterate without locking.
func (b *Bus) update(fn func([]*subscriber) []*subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := fn(slices.Clone(*b.subs.Load()))
	b.subs.Store(&next)
}

// Subscribers reports how many subscriptions are registered.
func (b *Bus) Subscribers() int {
	return len(*b.subs.Load())
}

// Dropped reports how many deliveries were skipped because a subscriber's
// buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
