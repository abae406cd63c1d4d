// Package bus is a process-wide broadcast signal. Subscribers get a
// payload-less callback after each publish and are expected to re-read
// authoritative state themselves: several mutations may have collapsed
// into the store by the time a callback runs.
package bus

import "sync"

type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func New() *Bus {
	return &Bus{subs: make(map[int]func())}
}

// Subscribe registers fn and returns its deregistration func. Callers
// deregister on unmount; a dropped subscription keeps firing.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish invokes every subscriber synchronously. Delivery is best-effort
// and in-process only; nothing survives a restart.
func (b *Bus) Publish() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
