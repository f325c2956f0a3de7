package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Bus        BusConfig        `yaml:"bus"`
	Invitation InvitationConfig `yaml:"invitation"`
	Chat       ChatConfig       `yaml:"chat"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
}

// AuthConfig holds access token verification settings. Tokens are issued
// elsewhere; the gateway only verifies them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"soundrise"`
}

// GatewayConfig holds per-connection WebSocket settings.
type GatewayConfig struct {
	SendQueueSize       int           `yaml:"send_queue_size"       env:"GATEWAY_SEND_QUEUE_SIZE"       env-default:"64"`
	MaxMessageBytes     int64         `yaml:"max_message_bytes"     env:"GATEWAY_MAX_MESSAGE_BYTES"     env-default:"65536"`
	WriteWait           time.Duration `yaml:"write_wait"            env:"GATEWAY_WRITE_WAIT"            env-default:"10s"`
	PongWait            time.Duration `yaml:"pong_wait"             env:"GATEWAY_PONG_WAIT"             env-default:"60s"`
	PingPeriod          time.Duration `yaml:"ping_period"           env:"GATEWAY_PING_PERIOD"           env-default:"50s"`
	MaxDecodeErrors     int           `yaml:"max_decode_errors"     env:"GATEWAY_MAX_DECODE_ERRORS"     env-default:"0"`
	AllowedOrigins      string        `yaml:"allowed_origins"       env:"GATEWAY_ALLOWED_ORIGINS"       env-default:"*"`
	// HandshakesPerMinute caps connection attempts per client IP; 0 disables it.
	HandshakesPerMinute int           `yaml:"handshakes_per_minute" env:"GATEWAY_HANDSHAKES_PER_MINUTE" env-default:"60"`
}

// Origins returns the allowed origins as a trimmed list. A single "*" allows
// every origin.
func (c GatewayConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// BusConfig selects the pub/sub backend used for fan-out.
// "memory" serves a single process; "postgres" uses LISTEN/NOTIFY so several
// gateway processes share channels.
type BusConfig struct {
	Backend        string        `yaml:"backend"         env:"BUS_BACKEND"         env-default:"memory"`
	PGChannel      string        `yaml:"pg_channel"      env:"BUS_PG_CHANNEL"      env-default:"gateway_events"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" env:"BUS_RECONNECT_DELAY" env-default:"2s"`
}

// InvitationConfig holds invitation life-cycle settings.
type InvitationConfig struct {
	ExpireAfter   time.Duration `yaml:"expire_after"    env:"INVITATION_EXPIRE_AFTER"    env-default:"720h"`
	SweepInterval time.Duration `yaml:"sweep_interval"  env:"INVITATION_SWEEP_INTERVAL"  env-default:"0s"`
	MaxMessageLen int           `yaml:"max_message_len" env:"INVITATION_MAX_MESSAGE_LEN" env-default:"500"`
}

// ChatConfig holds chat message limits.
type ChatConfig struct {
	MaxContentRunes int `yaml:"max_content_runes" env:"CHAT_MAX_CONTENT_RUNES" env-default:"1000"`
	DefaultPageSize int `yaml:"default_page_size" env:"CHAT_DEFAULT_PAGE_SIZE" env-default:"50"`
	MaxPageSize     int `yaml:"max_page_size"     env:"CHAT_MAX_PAGE_SIZE"     env-default:"200"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
