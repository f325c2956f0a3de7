// Command expire-invitations moves pending invitations older than the
// configured age to expired. It is intended to be invoked by an external
// cron job when the in-process sweep is disabled.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres"
	"github.com/heartmarshall/soundrise-gateway/internal/adapter/postgres/invitation"
	"github.com/heartmarshall/soundrise-gateway/internal/app"
	"github.com/heartmarshall/soundrise-gateway/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	now := time.Now().UTC()
	threshold := now.Add(-cfg.Invitation.ExpireAfter)

	expired, err := invitation.New(pool).ExpirePending(ctx, threshold, now)
	if err != nil {
		logger.Error("expire invitations failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("expire invitations completed",
		slog.Int64("expired", expired),
		slog.Time("threshold", threshold),
	)
}
