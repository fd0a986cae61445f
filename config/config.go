// Package config loads application configuration and opens the database.
// Precedence: config/config.json, then built-in defaults, then environment
// variable overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// DatabaseConfig selects the MySQL instance. URI, when set, wins over the
// individual fields.
type DatabaseConfig struct {
	URI      string `json:"uri"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RedisConfig selects the cache instance and the TTL for analytics reads.
type RedisConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	DB          int    `json:"db"`
	Password    string `json:"password"`
	CacheTTLSec int    `json:"cache_ttl_sec"`
}

// LogConfig controls the zap logger and its rolling file sink.
type LogConfig struct {
	Level      string `json:"level"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// AppConfig is the full application configuration. Secrets have no code
// defaults; they come from the file or the environment.
type AppConfig struct {
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Log      LogConfig      `json:"log"`
}

var (
	cfg    AppConfig
	loaded bool
)

// Load reads the configuration once and caches it for later Get calls.
func Load() AppConfig {
	if loaded {
		return cfg
	}
	readFile(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnv(&cfg)
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it on first use.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// readFile decodes the JSON config file into out. A missing file is fine;
// malformed JSON leaves out untouched.
func readFile(path string, out *AppConfig) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_ = json.NewDecoder(f).Decode(out)
}

func applyDefaults(c *AppConfig) {
	def := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	defInt := func(n *int, v int) {
		if *n == 0 {
			*n = v
		}
	}

	def(&c.Database.Host, "127.0.0.1")
	def(&c.Database.Port, "3306")
	def(&c.Database.User, "root")
	def(&c.Database.Name, "habitflow")

	def(&c.Redis.Host, "127.0.0.1")
	defInt(&c.Redis.Port, 6379)
	defInt(&c.Redis.CacheTTLSec, 3600)

	def(&c.Log.Level, "info")
	defInt(&c.Log.MaxSizeMB, 100)
	defInt(&c.Log.MaxBackups, 3)
	defInt(&c.Log.MaxAgeDays, 7)
}

func applyEnv(c *AppConfig) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("DATABASE_URI", &c.Database.URI)
	str("DB_HOST", &c.Database.Host)
	str("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)

	str("REDIS_HOST", &c.Redis.Host)
	num("REDIS_PORT", &c.Redis.Port)
	num("REDIS_DB", &c.Redis.DB)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("CACHE_TTL_SEC", &c.Redis.CacheTTLSec)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_PATH", &c.Log.Path)
	num("LOG_MAX_SIZE_MB", &c.Log.MaxSizeMB)
	num("LOG_MAX_BACKUPS", &c.Log.MaxBackups)
	num("LOG_MAX_AGE_DAYS", &c.Log.MaxAgeDays)
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.Log.Compress = v == "true"
	}
}
