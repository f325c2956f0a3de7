package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MaxPayloadBytes is PostgreSQL's NOTIFY payload limit, minus one byte.
const MaxPayloadBytes = 7999

// ErrPayloadTooLarge is returned when an envelope does not fit in a NOTIFY.
var ErrPayloadTooLarge = errors.New("pubsub: payload exceeds notify limit")

// Execer is the subset of a pgx pool used to publish.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// envelope is the NOTIFY payload. A single PostgreSQL channel carries every
// gateway channel.
type envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// PostgresBus is a Bus shared by every gateway process connected to the same
// database. Publish issues pg_notify; a dedicated LISTEN connection started
// by Run feeds received payloads into a local MemoryBus, so a process also
// receives its own publishes through the database.
type PostgresBus struct {
	exec           Execer
	connConfig     *pgx.ConnConfig
	pgChannel      string
	reconnectDelay time.Duration
	local          *MemoryBus
	listening      atomic.Bool
	log            *slog.Logger
}

// NewPostgresBus creates a bus that publishes through exec and listens on a
// dedicated connection built from connConfig. Payload data must be JSON.
func NewPostgresBus(log *slog.Logger, exec Execer, connConfig *pgx.ConnConfig, pgChannel string, reconnectDelay time.Duration) *PostgresBus {
	return &PostgresBus{
		exec:           exec,
		connConfig:     connConfig,
		pgChannel:      pgChannel,
		reconnectDelay: reconnectDelay,
		local:          NewMemoryBus(),
		log:            log.With("component", "pg_bus", "pg_channel", pgChannel),
	}
}

// Publish sends data to every process listening on the bus.
func (b *PostgresBus) Publish(ctx context.Context, channel string, data []byte) error {
	payload, err := encodeEnvelope(envelope{Channel: channel, Data: data})
	if err != nil {
		return fmt.Errorf("pubsub: encode envelope: %w", err)
	}
	if len(payload) > MaxPayloadBytes {
		return fmt.Errorf("pubsub: %s: %d bytes: %w", channel, len(payload), ErrPayloadTooLarge)
	}

	if _, err := b.exec.Exec(ctx, "SELECT pg_notify($1, $2)", b.pgChannel, string(payload)); err != nil {
		return fmt.Errorf("pubsub: notify %s: %w", channel, err)
	}
	return nil
}

// encodeEnvelope keeps data as published: the envelope must not re-escape
// characters the producer left unescaped.
func encodeEnvelope(e envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Subscribe registers h for payloads received on channel.
func (b *PostgresBus) Subscribe(channel string, h Handler) (*Subscription, error) {
	return b.local.Subscribe(channel, h)
}

// Close drops local subscriptions. The listener stops when Run's context
// is cancelled.
func (b *PostgresBus) Close() error {
	return b.local.Close()
}

// Listening reports whether the LISTEN connection is currently up.
func (b *PostgresBus) Listening() bool {
	return b.listening.Load()
}

// Run keeps a LISTEN connection open until ctx is cancelled, reconnecting
// after reconnectDelay when the connection drops. Payloads published while
// disconnected are lost.
func (b *PostgresBus) Run(ctx context.Context) error {
	for {
		err := b.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		b.log.WarnContext(ctx, "bus listener disconnected", slog.String("error", err.Error()), slog.Duration("retry_in", b.reconnectDelay))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.reconnectDelay):
		}
	}
}

func (b *PostgresBus) listen(ctx context.Context) error {
	conn, err := pgx.ConnectConfig(ctx, b.connConfig)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.pgChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	b.listening.Store(true)
	defer b.listening.Store(false)
	b.log.InfoContext(ctx, "bus listener connected")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		b.dispatch(ctx, n.Payload)
	}
}

func (b *PostgresBus) dispatch(ctx context.Context, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.WarnContext(ctx, "bus: malformed envelope dropped", slog.String("error", err.Error()))
		return
	}
	if err := b.local.Publish(ctx, env.Channel, env.Data); err != nil && !errors.Is(err, ErrClosed) {
		b.log.WarnContext(ctx, "bus: local fan-out failed", slog.String("error", err.Error()))
	}
}
