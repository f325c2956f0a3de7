package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/soundrise-gateway/internal/domain"
	"github.com/heartmarshall/soundrise-gateway/internal/pubsub"
)

// channelSub is the single bus subscription a process holds for a channel,
// shared by every local connection on it.
type channelSub struct {
	sub   *pubsub.Subscription
	conns map[*Conn]struct{}
}

// Registry tracks live connections and their channel memberships. It also
// publishes domain events on the bus for the services.
type Registry struct {
	log *slog.Logger
	bus pubsub.Bus

	mu       sync.RWMutex
	conns    map[*Conn]map[domain.Channel]struct{}
	channels map[domain.Channel]*channelSub
	byUser   map[uuid.UUID]map[*Conn]struct{}
}

// NewRegistry creates a Registry on top of bus.
func NewRegistry(logger *slog.Logger, bus pubsub.Bus) *Registry {
	return &Registry{
		log:      logger.With("component", "registry"),
		bus:      bus,
		conns:    make(map[*Conn]map[domain.Channel]struct{}),
		channels: make(map[domain.Channel]*channelSub),
		byUser:   make(map[uuid.UUID]map[*Conn]struct{}),
	}
}

// Register adds conn and subscribes it to its user's personal channel.
// It returns the channels the connection is subscribed to.
func (r *Registry) Register(ctx context.Context, conn *Conn) ([]domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; !ok {
		r.conns[conn] = make(map[domain.Channel]struct{})
		if r.byUser[conn.UserID()] == nil {
			r.byUser[conn.UserID()] = make(map[*Conn]struct{})
		}
		r.byUser[conn.UserID()][conn] = struct{}{}
	}

	if err := r.subscribeLocked(conn, domain.UserChannel(conn.UserID())); err != nil {
		r.unregisterLocked(conn)
		return nil, err
	}

	r.log.DebugContext(ctx, "connection registered",
		slog.String("conn_id", conn.ID().String()),
		slog.String("user_id", conn.UserID().String()),
	)
	return r.channelsOfLocked(conn), nil
}

// Subscribe adds a registered connection to channel.
func (r *Registry) Subscribe(ctx context.Context, conn *Conn, channel domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; !ok {
		return fmt.Errorf("subscribe %s: connection %s not registered", channel, conn.ID())
	}
	return r.subscribeLocked(conn, channel)
}

// Unsubscribe removes conn from channel. Unknown memberships are ignored.
func (r *Registry) Unsubscribe(conn *Conn, channel domain.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unsubscribeLocked(conn, channel)
}

// Unregister removes conn from every channel. Calling it for an unknown or
// already removed connection does nothing.
func (r *Registry) Unregister(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(conn)
}

// ConnectionsFor returns the number of local connections of a user.
func (r *Registry) ConnectionsFor(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

// Count returns the number of local connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Channels returns the channels conn is subscribed to.
func (r *Registry) Channels(conn *Conn) []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channelsOfLocked(conn)
}

// CloseAll asks every live connection to close with code and returns how
// many were signalled. http.Server.Shutdown does not track hijacked
// connections, so the gateway calls this on shutdown.
func (r *Registry) CloseAll(code int) int {
	r.mu.RLock()
	conns := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		c.closeWith(code)
	}
	return len(conns)
}

// Publish encodes event once and publishes it on every channel. A channel
// listed twice is published once.
func (r *Registry) Publish(ctx context.Context, event domain.Event, channels ...domain.Channel) error {
	data, err := encodeEvent(uuid.New(), event)
	if err != nil {
		return err
	}

	var errs []error
	done := make(map[domain.Channel]struct{}, len(channels))
	for _, ch := range channels {
		if _, ok := done[ch]; ok {
			continue
		}
		done[ch] = struct{}{}
		if err := r.bus.Publish(ctx, ch.String(), data); err != nil {
			errs = append(errs, fmt.Errorf("publish %s to %s: %w", event.EventType(), ch, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) subscribeLocked(conn *Conn, channel domain.Channel) error {
	if _, ok := r.conns[conn][channel]; ok {
		return nil
	}

	cs, ok := r.channels[channel]
	if !ok {
		sub, err := r.bus.Subscribe(channel.String(), r.dispatch)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", channel, err)
		}
		cs = &channelSub{sub: sub, conns: make(map[*Conn]struct{})}
		r.channels[channel] = cs
	}

	cs.conns[conn] = struct{}{}
	r.conns[conn][channel] = struct{}{}
	return nil
}

func (r *Registry) unsubscribeLocked(conn *Conn, channel domain.Channel) {
	memberships, ok := r.conns[conn]
	if !ok {
		return
	}
	if _, ok := memberships[channel]; !ok {
		return
	}
	delete(memberships, channel)

	cs := r.channels[channel]
	delete(cs.conns, conn)
	if len(cs.conns) == 0 {
		cs.sub.Unsubscribe()
		delete(r.channels, channel)
	}
}

func (r *Registry) unregisterLocked(conn *Conn) {
	memberships, ok := r.conns[conn]
	if !ok {
		return
	}
	for ch := range memberships {
		r.unsubscribeLocked(conn, ch)
	}
	delete(r.conns, conn)

	if users := r.byUser[conn.UserID()]; users != nil {
		delete(users, conn)
		if len(users) == 0 {
			delete(r.byUser, conn.UserID())
		}
	}
}

func (r *Registry) channelsOfLocked(conn *Conn) []domain.Channel {
	out := make([]domain.Channel, 0, len(r.conns[conn]))
	for ch := range r.conns[conn] {
		out = append(out, ch)
	}
	return out
}

// dispatch is the bus handler for every channel the process listens on. It
// broadcasts a frame to each local connection on the channel.
func (r *Registry) dispatch(channel string, data []byte) {
	id, hasID := eventID(data)

	r.mu.RLock()
	cs, ok := r.channels[domain.Channel(channel)]
	var targets []*Conn
	if ok {
		targets = make([]*Conn, 0, len(cs.conns))
		for c := range cs.conns {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range targets {
		c.deliver(id, hasID, data)
	}
}
