// Package config читает настройки из окружения (и .env, если он есть).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	Storage     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret           string
	GithubWebhookSecret string

	QuestTaxonomyFile string
	CommitXPPerCommit bool // устаревшее поведение: XP за push умножается на число коммитов

	WebhookDedupeTTL   time.Duration
	IdentityCacheSize  int
	IdentityCacheTTL   time.Duration
	RateLimitPerMinute int

	LogLevel  string
	LogFormat string
}

// Load загружает .env (если есть) и читает переменные окружения
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv собирает конфиг из произвольного источника переменных
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	cfg := &Config{
		AppPort:             e.str("APP_PORT", "8080"),
		DatabaseURL:         e.str("DATABASE_URL", ""),
		Storage:             strings.ToLower(e.str("STORAGE", StoragePostgres)),
		RedisAddr:           e.str("REDIS_ADDR", ""),
		RedisPassword:       e.str("REDIS_PASSWORD", ""),
		RedisDB:             e.integer("REDIS_DB", 0),
		JWTSecret:           e.str("JWT_SECRET", ""),
		GithubWebhookSecret: e.str("GITHUB_WEBHOOK_SECRET", ""),
		QuestTaxonomyFile:   e.str("QUEST_TAXONOMY_FILE", ""),
		CommitXPPerCommit:   e.boolean("COMMIT_XP_PER_COMMIT", false),
		WebhookDedupeTTL:    e.duration("WEBHOOK_DEDUPE_TTL", 24*time.Hour),
		IdentityCacheSize:   e.integer("IDENTITY_CACHE_SIZE", 1024),
		IdentityCacheTTL:    e.duration("IDENTITY_CACHE_TTL", 5*time.Minute),
		RateLimitPerMinute:  e.integer("RATE_LIMIT_PER_MINUTE", 30),
		LogLevel:            e.str("LOG_LEVEL", "info"),
		LogFormat:           e.str("LOG_FORMAT", "text"),
	}

	if e.err != nil {
		return nil, e.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IdentityCacheSize <= 0 {
		return fmt.Errorf("IDENTITY_CACHE_SIZE must be positive")
	}
	return nil
}

type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n
}

func (e *env) boolean(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d
}
