package ws

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/heartmarshall/soundrise-gateway/internal/config"
	"github.com/heartmarshall/soundrise-gateway/internal/domain"
)

// recentEvents is how many event ids a connection remembers for dedup.
const recentEvents = 64

// Conn is one authenticated WebSocket connection. A single writer goroutine
// owns the socket for writing; the handler goroutine owns it for reading.
type Conn struct {
	id   uuid.UUID
	user *domain.User
	ws   *websocket.Conn
	log  *slog.Logger
	cfg  config.GatewayConfig

	send      chan []byte
	done      chan struct{}
	stopped   chan struct{}
	once      sync.Once
	closeCode int // written once, before done is closed

	mu      sync.Mutex
	ready   bool
	pending [][]byte
	seen    [recentEvents]uuid.UUID
	seenPos int
}

func newConn(ws *websocket.Conn, user *domain.User, log *slog.Logger, cfg config.GatewayConfig) *Conn {
	id := uuid.New()
	return &Conn{
		id:      id,
		user:    user,
		ws:      ws,
		log:     log.With(slog.String("conn_id", id.String()), slog.String("user_id", user.ID.String())),
		cfg:     cfg,
		send:    make(chan []byte, cfg.SendQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// ID returns the connection id.
func (c *Conn) ID() uuid.UUID { return c.id }

// UserID returns the authenticated user of the connection.
func (c *Conn) UserID() uuid.UUID { return c.user.ID }

// Done is closed once the connection is shutting down.
func (c *Conn) Done() <-chan struct{} { return c.done }

// deliver queues a live event. Until the backlog snapshot is written events
// are held back; afterwards a full queue drops the event.
func (c *Conn) deliver(id uuid.UUID, hasID bool, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
	}

	if hasID {
		if c.recentlySeen(id) {
			return
		}
		c.seen[c.seenPos] = id
		c.seenPos = (c.seenPos + 1) % recentEvents
	}

	if !c.ready {
		if len(c.pending) >= c.cfg.SendQueueSize {
			c.log.Warn("pending queue full, dropping event")
			return
		}
		c.pending = append(c.pending, data)
		return
	}
	c.enqueueLocked(data)
}

func (c *Conn) recentlySeen(id uuid.UUID) bool {
	for _, s := range c.seen {
		if s == id {
			return true
		}
	}
	return false
}

func (c *Conn) enqueueLocked(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Warn("send queue full, dropping event")
	}
}

// markReady flushes events held during the snapshot and lets live events
// through from now on.
func (c *Conn) markReady() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, data := range c.pending {
		c.enqueueLocked(data)
	}
	c.pending = nil
	c.ready = true
}

// reply queues a direct response. It waits for queue space rather than
// dropping, since the client is waiting for it.
func (c *Conn) reply(frame any) {
	data, err := marshalFrame(frame)
	if err != nil {
		c.log.Error("encode frame", slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}

// writePump drains the send queue and keeps the connection alive with
// pings. It returns when the connection is closed or a write fails.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		if r := recover(); r != nil {
			c.log.Error("panic recovered in write pump",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
		c.close()
		c.ws.Close()
		close(c.stopped)
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.log.Debug("write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("ping failed", slog.String("error", err.Error()))
				return
			}
		case <-c.done:
			c.drain()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, ""))
			return
		}
	}
}

// drain writes whatever is already queued so that a reply issued right
// before close still reaches the client.
func (c *Conn) drain() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

// close marks the connection as shutting down with a normal closure.
// Safe to call many times; the first code wins.
func (c *Conn) close() {
	c.closeWith(websocket.CloseNormalClosure)
}

func (c *Conn) closeWith(code int) {
	c.once.Do(func() {
		c.closeCode = code
		close(c.done)
	})
}
