package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultPath    = "configs/config.toml"
	DefaultEnvFile = ".env"
)

type Config struct {
	Server struct {
		Host                 string
		JWTSecret            string `toml:"jwt_secret"`
		LoginURL             string `toml:"login_url"`
		LogFile              string `toml:"log_file"`
		ReadTimeout          time.Duration
		WriteTimeout         time.Duration
		ReadHeaderTimeout    time.Duration
		StrReadTimeout       string `toml:"read_timeout"`
		StrWriteTimeout      string `toml:"write_timeout"`
		StrReadHeaderTimeout string `toml:"read_header_timeout"`
	}
	Backend struct {
		BaseURL    string `toml:"base_url"`
		Timeout    time.Duration
		StrTimeout string `toml:"timeout"`
	}
	Database struct {
		Host     string
		User     string
		Password string
		Database string
	}
	Redis struct {
		RedisAddr      string `toml:"redis_addr"`
		RedisPassword  string `toml:"redis_password"`
		RedisDB        int    `toml:"redis_db"`
		SessionTTL     time.Duration
		SnapshotTTL    time.Duration
		StrSessionTTL  string `toml:"session_ttl"`
		StrSnapshotTTL string `toml:"snapshot_ttl"`
	}
}

// GetConfig reads the TOML file at path and applies overrides from the
// environment (optionally seeded from a .env file).
func GetConfig(path string, logger *slog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error read config file", slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}

	if envErr := godotenv.Load(DefaultEnvFile); envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("Error loading .env file", slog.String("error", envErr.Error()))
	}

	cfg, err := Parse(string(data))
	if err != nil {
		logger.Error("Error decode config file", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Config is loaded", slog.String("backend", cfg.Backend.BaseURL))
	return cfg, nil
}

// Parse decodes TOML text, applies environment overrides and validates.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
		def  time.Duration
	}{
		{"read_timeout", cfg.Server.StrReadTimeout, &cfg.Server.ReadTimeout, 10 * time.Second},
		{"write_timeout", cfg.Server.StrWriteTimeout, &cfg.Server.WriteTimeout, 30 * time.Second},
		{"read_header_timeout", cfg.Server.StrReadHeaderTimeout, &cfg.Server.ReadHeaderTimeout, 5 * time.Second},
		{"backend timeout", cfg.Backend.StrTimeout, &cfg.Backend.Timeout, 15 * time.Second},
		{"session_ttl", cfg.Redis.StrSessionTTL, &cfg.Redis.SessionTTL, 12 * time.Hour},
		{"snapshot_ttl", cfg.Redis.StrSnapshotTTL, &cfg.Redis.SnapshotTTL, 5 * time.Minute},
	}
	for _, d := range durations {
		if d.raw == "" {
			*d.dst = d.def
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = v
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = ":8080"
	}
	if cfg.Server.LogFile == "" {
		cfg.Server.LogFile = "console.log"
	}

	if cfg.Server.JWTSecret == "" {
		return nil, errors.New("jwt_secret is required")
	}
	if cfg.Backend.BaseURL == "" {
		return nil, errors.New("backend base_url is required")
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CONSOLE_JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("CONSOLE_API_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("CONSOLE_LOGIN_URL"); v != "" {
		cfg.Server.LoginURL = v
	}
	if v := os.Getenv("CONSOLE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("CONSOLE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.RedisPassword = v
	}
	if v := os.Getenv("CONSOLE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.RedisDB = db
		}
	}
}
