package invitation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Expire moves every pending invitation created more than olderThan ago to
// expired and returns how many changed. It has no other side effects.
func (s *Service) Expire(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("expire invitations: non-positive age %s", olderThan)
	}

	now := s.now()
	n, err := s.invitations.ExpirePending(ctx, now.Add(-olderThan), now)
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}

	if n > 0 {
		s.log.InfoContext(ctx, "invitations expired", slog.Int64("count", n))
	}
	return n, nil
}

// RunExpirySweep calls Expire with the configured age every interval until
// ctx is cancelled. Failures are logged and retried on the next tick.
func (s *Service) RunExpirySweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Expire(ctx, s.cfg.ExpireAfter); err != nil && ctx.Err() == nil {
				s.log.ErrorContext(ctx, "expiry sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
