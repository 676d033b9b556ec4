package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string `env:"JWT_SECRET"`
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:3000"`

	// AccessTokenTTL is the lifetime of signed access tokens.
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL, default=15m"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=queue_manager"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`

	// MailDedupTTL is the window inside which a repeated mail of the same
	// kind to the same recipient is suppressed.
	MailDedupTTL time.Duration `env:"MAIL_DEDUP_TTL, default=2m"`
}

// SMTPConfig configures outbound mail. An empty Host switches the service
// to the log-only mailer.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM, default=no-reply@queue-manager.local"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
