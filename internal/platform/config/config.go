package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr     string
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Log      LogConfig
	Seed     SeedConfig
}

// DatabaseConfig selects the relational store. An empty URL keeps every
// store in memory.
type DatabaseConfig struct {
	URL             string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the token revocation list. An empty URL falls back
// to the in-memory list.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	Lockout       LockoutConfig
}

// LockoutConfig throttles failed sign-ins per email and client address.
type LockoutConfig struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// SeedConfig bootstraps the first SUPER account on an empty roster.
type SeedConfig struct {
	SuperEmail    string
	SuperPassword string
	Places        []string
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads an optional .env file and then builds the config from the
// environment. Variables already set win over the file.
func Load(envFiles ...string) (Server, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Server{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr: getString("ROSTER_ADDR", ":8080"),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSigningKey: getString("JWT_SIGNING_KEY", devSigningKey),
			JWTIssuer:     getString("JWT_ISSUER", "roster"),
		},
		Log: LogConfig{
			Level:  getString("LOG_LEVEL", "info"),
			Format: getString("LOG_FORMAT", "json"),
		},
		Seed: SeedConfig{
			SuperEmail:    os.Getenv("SEED_SUPER_EMAIL"),
			SuperPassword: os.Getenv("SEED_SUPER_PASSWORD"),
			Places:        getList("SEED_PLACES"),
		},
	}

	var err error
	if cfg.Database.AutoMigrate, err = getBool("DB_AUTO_MIGRATE", true); err != nil {
		return Server{}, err
	}
	if cfg.Database.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = getDuration("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.WriteTimeout, err = getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Auth.TokenTTL, err = getDuration("TOKEN_TTL", 8*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.Auth.TokenTTL <= 0 {
		return Server{}, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.Auth.Lockout.MaxAttempts, err = getInt("SIGNIN_MAX_ATTEMPTS", 5); err != nil {
		return Server{}, err
	}
	if cfg.Auth.Lockout.Window, err = getDuration("SIGNIN_WINDOW", 15*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Auth.Lockout.LockDuration, err = getDuration("SIGNIN_LOCK_DURATION", 15*time.Minute); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// UsesDevSigningKey reports whether JWT_SIGNING_KEY was left unset.
func (s Server) UsesDevSigningKey() bool {
	return s.Auth.JWTSigningKey == devSigningKey
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
