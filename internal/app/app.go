package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/conversation"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/invitation"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/message"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/notification"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/user"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/work"
	"github.com/heartmarshall/soundrise-gateway/internal/auth"
	"github.com/heartmarshall/soundrise-gateway/internal/config"
	"github.com/heartmarshall/soundrise-gateway/internal/pubsub"
	authsvc "github.com/heartmarshall/soundrise-gateway/internal/service/auth"
	chatsvc "github.com/heartmarshall/soundrise-gateway/internal/service/chat"
	invitationsvc "github.com/heartmarshall/soundrise-gateway/internal/service/invitation"
	notificationsvc "github.com/heartmarshall/soundrise-gateway/internal/service/notification"
	"github.com/heartmarshall/soundrise-gateway/internal/transport/middleware"
	"github.com/heartmarshall/soundrise-gateway/internal/transport/rest"
	"github.com/heartmarshall/soundrise-gateway/internal/transport/ws"
	"github.com/heartmarshall/soundrise-gateway/migrations"
)

// Run is the application entry point. It wires the database, the bus, the
// services and the gateway, then serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting gateway",
		slog.String("build", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("bus", cfg.Bus.Backend),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		applied, err := postgres.Migrate(ctx, cfg.Database.DSN, migrations.FS)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", slog.Int("count", applied))
	}

	bus, pgBus := newBus(cfg.Bus, logger, pool)
	defer bus.Close()

	registry := ws.NewRegistry(logger, bus)

	// Repositories
	users := user.New(pool)
	works := work.New(pool)
	invitations := invitation.New(pool)
	conversations := conversation.New(pool)
	messages := message.New(pool)
	notifications := notification.New(pool)
	txm := postgres.NewTxManager(pool)

	// Services
	notificationService := notificationsvc.NewService(logger, notifications, registry)
	chatService := chatsvc.NewService(logger, conversations, messages, users, notificationService, registry, cfg.Chat)
	invitationService := invitationsvc.NewService(
		logger, invitations, users, works, chatService, notificationService, registry, txm, cfg.Invitation,
	)
	verifier := authsvc.NewVerifier(logger, auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, 0), users)

	gateway := ws.NewHandler(logger, verifier, registry, invitationService, chatService, notificationService, cfg.Gateway)

	var health *rest.HealthHandler
	if pgBus != nil {
		health = rest.NewHealthHandler(pool, pgBus, registry, BuildVersion())
	} else {
		health = rest.NewHealthHandler(pool, nil, registry, BuildVersion())
	}

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           newRouter(logger, gateway, health, limiter.Limit(cfg.Gateway.HandshakesPerMinute)),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listenAndServe(gctx, logger, srv, registry, cfg.Server.ShutdownTimeout)
	})

	if pgBus != nil {
		g.Go(func() error { return pgBus.Run(gctx) })
	}

	if cfg.Invitation.SweepInterval > 0 {
		g.Go(func() error { return invitationService.RunExpirySweep(gctx, cfg.Invitation.SweepInterval) })
	}

	err = g.Wait()
	logger.Info("gateway stopped")
	return err
}

// newBus returns the configured bus. The second result is non-nil only for
// the postgres backend, whose listener must be run and probed.
func newBus(cfg config.BusConfig, logger *slog.Logger, pool *pgxpool.Pool) (pubsub.Bus, *pubsub.PostgresBus) {
	if cfg.Backend != "postgres" {
		return pubsub.NewMemoryBus(), nil
	}
	pg := pubsub.NewPostgresBus(logger, pool, postgres.ListenConnConfig(pool), cfg.PGChannel, cfg.ReconnectDelay)
	return pg, pg
}

// newRouter mounts the two gateway surfaces behind the handshake limit and
// the probe endpoints around them.
func newRouter(logger *slog.Logger, gateway *ws.Handler, health *rest.HealthHandler, handshakeLimit middleware.Middleware) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws/collaboration", handshakeLimit(gateway.Serve(ws.SurfaceCollaboration)))
	mux.Handle("GET /ws/chat", handshakeLimit(gateway.Serve(ws.SurfaceChat)))
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
	)(mux)
}

// listenAndServe runs srv until ctx ends. On shutdown open WebSocket
// connections are told the server is going away, since Shutdown does not
// wait for hijacked connections.
func listenAndServe(ctx context.Context, logger *slog.Logger, srv *http.Server, registry *ws.Registry, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	logger.Info("gateway listening", slog.String("addr", srv.Addr))
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		closed := registry.CloseAll(websocket.CloseGoingAway)
		logger.Info("shutting down", slog.Int("connections", closed))

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
