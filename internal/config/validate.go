package config

import (
	"fmt"
)

// A frame fanned out over the postgres bus must fit in one NOTIFY payload
// (pubsub.MaxPayloadBytes). JSON writes a rune in at most six bytes, as
// for \u2028 or a control character. Everything in a frame besides the
// user-written text stays under frameOverheadBytes.
const (
	notifyPayloadBytes  = 7999
	frameOverheadBytes  = 1999
	maxEncodedRuneBytes = 6
)

// MaxBusTextRunes is the longest user-written text (chat content or an
// invitation message) whose frame always fits on the postgres bus.
const MaxBusTextRunes = (notifyPayloadBytes - frameOverheadBytes) / maxEncodedRuneBytes

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Gateway.validate(); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	switch c.Bus.Backend {
	case "memory":
	case "postgres":
		if c.Bus.PGChannel == "" {
			return fmt.Errorf("bus.pg_channel is required for the postgres backend")
		}
		if c.Chat.MaxContentRunes > MaxBusTextRunes {
			return fmt.Errorf("chat.max_content_runes must be <= %d with the postgres bus (got %d)", MaxBusTextRunes, c.Chat.MaxContentRunes)
		}
		if c.Invitation.MaxMessageLen > MaxBusTextRunes {
			return fmt.Errorf("invitation.max_message_len must be <= %d with the postgres bus (got %d)", MaxBusTextRunes, c.Invitation.MaxMessageLen)
		}
	default:
		return fmt.Errorf("bus.backend must be memory or postgres (got %q)", c.Bus.Backend)
	}

	if c.Invitation.ExpireAfter <= 0 {
		return fmt.Errorf("invitation.expire_after must be > 0 (got %v)", c.Invitation.ExpireAfter)
	}
	if c.Invitation.SweepInterval < 0 {
		return fmt.Errorf("invitation.sweep_interval must be >= 0 (got %v)", c.Invitation.SweepInterval)
	}

	if c.Chat.MaxContentRunes <= 0 {
		return fmt.Errorf("chat.max_content_runes must be > 0 (got %d)", c.Chat.MaxContentRunes)
	}
	if c.Chat.DefaultPageSize <= 0 || c.Chat.DefaultPageSize > c.Chat.MaxPageSize {
		return fmt.Errorf("chat.default_page_size must be in 1..%d (got %d)", c.Chat.MaxPageSize, c.Chat.DefaultPageSize)
	}

	return nil
}

func (g *GatewayConfig) validate() error {
	if g.SendQueueSize <= 0 {
		return fmt.Errorf("send_queue_size must be > 0 (got %d)", g.SendQueueSize)
	}
	if g.MaxMessageBytes <= 0 {
		return fmt.Errorf("max_message_bytes must be > 0 (got %d)", g.MaxMessageBytes)
	}
	if g.PingPeriod >= g.PongWait {
		return fmt.Errorf("ping_period (%v) must be shorter than pong_wait (%v)", g.PingPeriod, g.PongWait)
	}
	if g.MaxDecodeErrors < 0 {
		return fmt.Errorf("max_decode_errors must be >= 0 (got %d)", g.MaxDecodeErrors)
	}
	if g.HandshakesPerMinute < 0 {
		return fmt.Errorf("handshakes_per_minute must be >= 0 (got %d)", g.HandshakesPerMinute)
	}
	return nil
}
