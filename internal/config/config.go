package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env            string        `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath    string        `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr      string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	CORSOrigin     string        `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"http://localhost:5173"`
	Timezone       string        `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"IDEMPOTENCY_TTL" env-default:"10s"`
	HTTPServer     `yaml:"http_server"`
	Auth           Auth `yaml:"auth"`
	Meet           Meet `yaml:"meet"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Auth struct {
	JWTSecret    string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	CookieSecure bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
}

type Meet struct {
	BaseURL    string `yaml:"base_url" env:"MEET_BASE_URL" env-default:"https://meet.jit.si"`
	RoomPrefix string `yaml:"room_prefix" env:"MEET_ROOM_PREFIX" env-default:"qanda-"`
}

// Location resolves the configured timezone used to combine slot dates and start times.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func MustLoad() *Config {
	// optional: variables from .env feed the env overrides below
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env file: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("%s: invalid timezone %q: %w", op, cfg.Timezone, err)
	}

	return &cfg, nil
}
