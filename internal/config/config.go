package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	DBDriver       string        `env:"DB_DRIVER" envDefault:"mysql"`
	MySQLDSN       string        `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/armory?charset=utf8mb4&parseTime=True&loc=Local"`
	PostgresDSN    string        `env:"POSTGRES_DSN" envDefault:"host=localhost user=armory password=armory dbname=armory port=5432 sslmode=disable"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"armory.db"`
	ResetDB        bool          `env:"RESET_DB" envDefault:"false"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisPass      string        `env:"REDIS_PASSWORD"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	AMQPURL        string        `env:"AMQP_URL"`
	AMQPExchange   string        `env:"AMQP_EXCHANGE" envDefault:"armory.inventory"`
	SwaggerHost    string        `env:"SWAGGER_HOST"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}
