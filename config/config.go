package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends accepted by DASH_STORAGE.
const (
	StorageBadger   = "badger"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds runtime configuration sourced from DASH_* env vars.
type Config struct {
	Port        string
	Storage     string
	BadgerDir   string
	DatabaseURL string
	DBTimeout   time.Duration

	APIBaseURL   string
	APITimeout   time.Duration
	WriteLatency time.Duration

	ItemsPerPage    int
	SearchDebounce  time.Duration
	NotificationTTL time.Duration

	TokenSecret string
	TokenIssuer string
	TokenTTL    time.Duration

	HashPasswords bool
	BcryptCost    int
	AdminEmail    string
	AdminPassword string

	CORSOrigins []string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:            fallback(os.Getenv("DASH_PORT"), "8080"),
		Storage:         strings.ToLower(fallback(os.Getenv("DASH_STORAGE"), StorageBadger)),
		BadgerDir:       fallback(os.Getenv("DASH_BADGER_DIR"), "data"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DASH_DATABASE_URL")),
		DBTimeout:       duration(os.Getenv("DASH_DB_TIMEOUT"), 5*time.Second),
		APIBaseURL:      fallback(os.Getenv("DASH_API_BASE_URL"), "https://jsonplaceholder.typicode.com"),
		APITimeout:      duration(os.Getenv("DASH_API_TIMEOUT"), 10*time.Second),
		WriteLatency:    duration(os.Getenv("DASH_WRITE_LATENCY"), time.Second),
		ItemsPerPage:    integer(os.Getenv("DASH_ITEMS_PER_PAGE"), 10),
		SearchDebounce:  duration(os.Getenv("DASH_SEARCH_DEBOUNCE"), 300*time.Millisecond),
		NotificationTTL: duration(os.Getenv("DASH_NOTIFICATION_TTL"), 5*time.Second),
		TokenSecret:     fallback(os.Getenv("DASH_TOKEN_SECRET"), "bizdash-dev-secret"),
		TokenIssuer:     fallback(os.Getenv("DASH_TOKEN_ISSUER"), "bizdash"),
		TokenTTL:        duration(os.Getenv("DASH_TOKEN_TTL"), 24*time.Hour),
		HashPasswords:   boolean(os.Getenv("DASH_HASH_PASSWORDS"), false),
		BcryptCost:      integer(os.Getenv("DASH_BCRYPT_COST"), 10),
		AdminEmail:      fallback(os.Getenv("DASH_ADMIN_EMAIL"), "admin@bod.com"),
		AdminPassword:   fallback(os.Getenv("DASH_ADMIN_PASSWORD"), "password"),
		CORSOrigins:     parseCSV(fallback(os.Getenv("DASH_CORS_ORIGINS"), "*")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the storage selection and page size.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageBadger, StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DASH_DATABASE_URL is required for %s storage", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown DASH_STORAGE %q (want badger, postgres or memory)", c.Storage)
	}
	if c.ItemsPerPage < 1 {
		return fmt.Errorf("DASH_ITEMS_PER_PAGE must be positive, got %d", c.ItemsPerPage)
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

// duration accepts Go duration syntax or a bare number of milliseconds.
func duration(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	return def
}

func integer(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return n
	}
	return def
}

func boolean(value string, def bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
		return b
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
