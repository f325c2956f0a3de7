package pubsub

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus. Publish is a broadcast: every handler
// subscribed to the channel at the time of the call receives the payload.
type MemoryBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
	closed bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[uint64]Handler)}
}

// Publish delivers data to every handler of channel.
func (b *MemoryBus) Publish(ctx context.Context, channel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]Handler, 0, len(b.subs[channel]))
	for _, h := range b.subs[channel] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(channel, data)
	}
	return nil
}

// Subscribe registers h for channel.
func (b *MemoryBus) Subscribe(channel string, h Handler) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	b.nextID++
	id := b.nextID
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[uint64]Handler)
	}
	b.subs[channel][id] = h

	return &Subscription{cancel: func() { b.remove(channel, id) }}, nil
}

// Channels returns the number of channels with at least one subscriber.
func (b *MemoryBus) Channels() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops all subscriptions. Further calls return ErrClosed.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subs = make(map[string]map[uint64]Handler)
	return nil
}

func (b *MemoryBus) remove(channel string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subs[channel]
	delete(handlers, id)
	if len(handlers) == 0 {
		delete(b.subs, channel)
	}
}
