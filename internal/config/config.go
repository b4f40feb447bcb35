package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string          `yaml:"discord_token"`
	LogLevel     string          `yaml:"log_level"`
	Database     DatabaseConfig  `yaml:"database"`
	Defaults     Defaults        `yaml:"defaults"`
	Presence     PresenceConfig  `yaml:"presence"`
	Heartbeat    HeartbeatConfig `yaml:"heartbeat"`
	Lookup       LookupConfig    `yaml:"lookup"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Defaults are the global cosmetic values a server falls back to when it has
// not customized them.
type Defaults struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color"`
	EmbedSearch string `yaml:"embed_search"`
	EmbedFinal  string `yaml:"embed_final"`
	Animation   string `yaml:"animation"`
	Country     string `yaml:"country"`
}

type PresenceConfig struct {
	Starting  string `yaml:"starting"`
	Online    string `yaml:"online"`
	Analyzing string `yaml:"analyzing"`
}

type HeartbeatConfig struct {
	URL             string `yaml:"url"`
	IntervalMinutes int    `yaml:"interval_minutes"`
}

type LookupConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			Name: "tunebridge",
			User: "tunebridge",
		},
		Defaults: Defaults{
			Name:        "Tunebridge",
			Color:       "#A7C7E7",
			EmbedSearch: "Looking that song up...",
			EmbedFinal:  "Listen on your platform",
			Animation:   "https://raw.githubusercontent.com/tunebridge/assets/main/notes.gif",
			Country:     "DE",
		},
		Presence: PresenceConfig{
			Starting:  "Tuning the instruments",
			Online:    "Listening for music links",
			Analyzing: "Matching a song across platforms",
		},
		Heartbeat: HeartbeatConfig{IntervalMinutes: 10},
		Lookup:    LookupConfig{BaseURL: "https://api.song.link/v1-alpha.1", TimeoutSeconds: 10},
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.DatabaseURL() == "" {
		return Config{}, errors.New("database connection parameters are required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Database.URL = envString("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = envString("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = envInt("DB_PORT", cfg.Database.Port)
	cfg.Database.Name = envString("DB_NAME", cfg.Database.Name)
	cfg.Database.User = envString("DB_USER", cfg.Database.User)
	cfg.Database.Password = envString("DB_PASSWORD", cfg.Database.Password)
	cfg.Defaults.Name = envString("DEFAULT_NAME", cfg.Defaults.Name)
	cfg.Defaults.Color = envString("DEFAULT_COLOR", cfg.Defaults.Color)
	cfg.Defaults.Country = envString("DEFAULT_COUNTRY", cfg.Defaults.Country)
	cfg.Heartbeat.URL = envString("HEALTHCHECK_URL", cfg.Heartbeat.URL)
	cfg.Heartbeat.IntervalMinutes = envInt("HEALTHCHECK_INTERVAL_MINUTES", cfg.Heartbeat.IntervalMinutes)
	cfg.Lookup.BaseURL = envString("LOOKUP_BASE_URL", cfg.Lookup.BaseURL)
	cfg.Lookup.TimeoutSeconds = envInt("LOOKUP_TIMEOUT_SECONDS", cfg.Lookup.TimeoutSeconds)
}

// DatabaseURL returns the configured connection string, preferring an explicit
// URL over discrete host parameters. sslmode=disable is appended when the URL
// does not pin one.
func (c Config) DatabaseURL() string {
	raw := c.Database.URL
	if raw == "" {
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return ""
		}
		raw = fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
	}
	if !strings.Contains(raw, "sslmode=") {
		separator := "?"
		if strings.Contains(raw, "?") {
			separator = "&"
		}
		raw += separator + "sslmode=disable"
	}
	return raw
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
