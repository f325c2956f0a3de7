// Package pubsub implements the group channel bus that fans encoded gateway
// frames out to every subscriber of a channel, within one process
// (MemoryBus) or across processes (PostgresBus).
package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("pubsub: bus closed")

// Handler receives every payload published to a subscribed channel.
// Handlers run on the publishing goroutine and must not block.
type Handler func(channel string, data []byte)

// Bus delivers payloads to every current subscriber of a channel. Delivery
// is best effort: a subscriber that is not listening at publish time never
// sees the payload.
type Bus interface {
	Publish(ctx context.Context, channel string, data []byte) error
	Subscribe(channel string, h Handler) (*Subscription, error)
	Close() error
}

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery to the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}
