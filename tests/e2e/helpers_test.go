//go:build e2e

package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/conversation"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/invitation"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/message"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/notification"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/user"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/work"
	authpkg "github.com/heartmarshall/soundrise-gateway/internal/auth"
	"github.com/heartmarshall/soundrise-gateway/internal/config"
	"github.com/heartmarshall/soundrise-gateway/internal/pubsub"
	authsvc "github.com/heartmarshall/soundrise-gateway/internal/service/auth"
	chatsvc "github.com/heartmarshall/soundrise-gateway/internal/service/chat"
	invitationsvc "github.com/heartmarshall/soundrise-gateway/internal/service/invitation"
	notificationsvc "github.com/heartmarshall/soundrise-gateway/internal/service/notification"
	"github.com/heartmarshall/soundrise-gateway/internal/transport/middleware"
	"github.com/heartmarshall/soundrise-gateway/internal/transport/rest"
	"github.com/heartmarshall/soundrise-gateway/internal/transport/ws"
)

const (
	testJWTSecret = "test-secret-at-least-32-chars-long!!"
	testJWTIssuer = "test-issuer"
	testPGChannel = "gateway_events_e2e"
)

// ---------------------------------------------------------------------------
// testServer wraps one full-stack gateway process for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL      string
	Client   *http.Client
	Pool     *pgxpool.Pool
	Registry *ws.Registry
	pgBus    *pubsub.PostgresBus
	jwt      *authpkg.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps a gateway backed by a real PostgreSQL
// container (shared via testhelper) and the in-process bus.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServer(t, testhelper.SetupTestDB(t), false)
}

// setupCluster starts n gateway processes sharing one database and the
// LISTEN/NOTIFY bus, and waits until every listener is connected.
func setupCluster(t *testing.T, n int) []*testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	servers := make([]*testServer, n)
	for i := range servers {
		servers[i] = newTestServer(t, pool, true)
	}
	for _, s := range servers {
		require.Eventually(t, s.pgBus.Listening, 10*time.Second, 20*time.Millisecond, "bus listener did not connect")
	}
	return servers
}

func newTestServer(t *testing.T, pool *pgxpool.Pool, sharedBus bool) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))

	// 1. Bus.
	ts := &testServer{Pool: pool}
	var bus pubsub.Bus = pubsub.NewMemoryBus()
	if sharedBus {
		ts.pgBus = pubsub.NewPostgresBus(logger, pool, postgres.ListenConnConfig(pool), testPGChannel, 100*time.Millisecond)
		bus = ts.pgBus

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = ts.pgBus.Run(ctx)
		}()
		t.Cleanup(func() {
			cancel()
			<-done
		})
	}
	t.Cleanup(func() { _ = bus.Close() })
	ts.Registry = ws.NewRegistry(logger, bus)

	// 2. Repositories.
	users := user.New(pool)
	works := work.New(pool)
	invitations := invitation.New(pool)
	conversations := conversation.New(pool)
	messages := message.New(pool)
	notifications := notification.New(pool)
	txm := postgres.NewTxManager(pool)

	// 3. Services.
	ts.jwt = authpkg.NewJWTManager(testJWTSecret, testJWTIssuer, 15*time.Minute)
	notificationService := notificationsvc.NewService(logger, notifications, ts.Registry)
	chatService := chatsvc.NewService(logger, conversations, messages, users, notificationService, ts.Registry, config.ChatConfig{
		MaxContentRunes: config.MaxBusTextRunes,
		DefaultPageSize: 50,
		MaxPageSize:     200,
	})
	invitationService := invitationsvc.NewService(
		logger, invitations, users, works, chatService, notificationService, ts.Registry, txm,
		config.InvitationConfig{ExpireAfter: 720 * time.Hour, MaxMessageLen: 500},
	)
	verifier := authsvc.NewVerifier(logger, ts.jwt, users)

	// 4. Gateway + mux.
	gateway := ws.NewHandler(logger, verifier, ts.Registry, invitationService, chatService, notificationService, config.GatewayConfig{
		SendQueueSize:   64,
		MaxMessageBytes: 65536,
		WriteWait:       5 * time.Second,
		PongWait:        60 * time.Second,
		PingPeriod:      50 * time.Second,
		AllowedOrigins:  "*",
	})

	var health *rest.HealthHandler
	if ts.pgBus != nil {
		health = rest.NewHealthHandler(pool, ts.pgBus, ts.Registry, "test-version")
	} else {
		health = rest.NewHealthHandler(pool, nil, ts.Registry, "test-version")
	}

	mux := http.NewServeMux()
	mux.Handle("GET /ws/collaboration", gateway.Serve(ws.SurfaceCollaboration))
	mux.Handle("GET /ws/chat", gateway.Serve(ws.SurfaceChat))
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
	)(mux)

	// 5. httptest server.
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Registry.CloseAll(websocket.CloseGoingAway)
		srv.Close()
	})

	ts.URL = srv.URL
	ts.Client = srv.Client()
	return ts
}

// token mints an access token for userID.
func (ts *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	tok, err := ts.jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return tok
}

// ---------------------------------------------------------------------------
// wsClient is one WebSocket client connection.
// ---------------------------------------------------------------------------

type frame map[string]any

type wsClient struct {
	conn *websocket.Conn
}

// dial opens a connection without consuming the backlog snapshot.
func (ts *testServer) dial(t *testing.T, path, token string) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path + "?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return &wsClient{conn: conn}
}

// connect opens a connection and consumes the two backlog snapshot frames.
func (ts *testServer) connect(t *testing.T, path, token string) *wsClient {
	t.Helper()

	c := ts.dial(t, path, token)
	c.expect(t, "unread_notifications")
	c.expect(t, "unread_invitations")
	return c
}

func (c *wsClient) send(t *testing.T, action string, fields map[string]any) {
	t.Helper()

	msg := map[string]any{"action": action}
	for k, v := range fields {
		msg[k] = v
	}
	require.NoError(t, c.conn.WriteJSON(msg))
}

func (c *wsClient) read(t *testing.T) frame {
	t.Helper()

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(t, err)

	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

// expect reads the next frame and requires its type.
func (c *wsClient) expect(t *testing.T, typ string) frame {
	t.Helper()

	f := c.read(t)
	require.Equal(t, typ, f["type"], "unexpected frame: %v", f)
	return f
}

// await skips frames until one of type typ arrives.
func (c *wsClient) await(t *testing.T, typ string) frame {
	t.Helper()

	for {
		f := c.read(t)
		if f["type"] == typ {
			return f
		}
	}
}

// call sends action and waits for its ack, failing on an error frame.
func (c *wsClient) call(t *testing.T, action string, fields map[string]any) frame {
	t.Helper()

	c.send(t, action, fields)
	for {
		f := c.read(t)
		switch f["type"] {
		case "ack":
			require.Equal(t, action, f["action"])
			return f
		case "error":
			t.Fatalf("%s failed: %v", action, f)
		}
	}
}

func object(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object, got %T", v)
	return m
}
