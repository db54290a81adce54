package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort      = 3000
	DefaultTick      = 8 * time.Second
	DefaultGRPCPort  = 9000
	DefaultStaticDir = "./web/static"
)

// DefaultAllowedOrigins are the dashboard dev-server origins.
var DefaultAllowedOrigins = []string{
	"http://127.0.0.1:5500",
	"http://localhost:5500",
	"http://localhost:3000",
}

// Config holds all application configuration.
type Config struct {
	Port           int
	Addr           string
	MapsAPIKey     *string // nil when unset
	TickInterval   time.Duration
	SeedPath       string // empty selects the embedded seed
	RandomSeed     int64  // 0 seeds from the clock
	DBPath         string // empty keeps sessions in memory
	GRPCPort       int    // 0 disables the gRPC health server
	StaticDir      string
	AllowedOrigins []string
	Trace          bool
	Debug          bool
	LogLevel       slog.Level
}

// Load reads an optional .env file, then environment variables, then command
// line flags. Flags take precedence over environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse builds a Config from the environment and args using fs.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Port = getEnvInt("PORT", DefaultPort)
	if key, ok := os.LookupEnv("MAPS_API_KEY"); ok && key != "" {
		cfg.MapsAPIKey = &key
	}
	cfg.TickInterval = getEnvDuration("NAVIFY_TICK", DefaultTick)
	cfg.SeedPath = getEnv("NAVIFY_SEED", "")
	cfg.RandomSeed = int64(getEnvInt("NAVIFY_RANDOM_SEED", 0))
	cfg.DBPath = getEnv("NAVIFY_DB", "")
	cfg.GRPCPort = getEnvInt("NAVIFY_GRPC", DefaultGRPCPort)
	cfg.StaticDir = getEnv("NAVIFY_STATIC_DIR", DefaultStaticDir)
	originStr := getEnv("NAVIFY_ALLOWED_ORIGINS", strings.Join(DefaultAllowedOrigins, ","))
	cfg.Trace = getEnvBool("NAVIFY_TRACE", false)
	cfg.Debug = getEnvBool("NAVIFY_DEBUG", false)
	levelStr := getEnv("LOG_LEVEL", "info")

	// Command Line Flags (Override Env)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Traffic mutation interval")
	fs.StringVar(&cfg.SeedPath, "seed", cfg.SeedPath, "Path to an area seed JSON file (empty for built-in areas)")
	fs.Int64Var(&cfg.RandomSeed, "rand-seed", cfg.RandomSeed, "Random walk seed (0 for time-based)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite session database (empty for in-memory)")
	fs.IntVar(&cfg.GRPCPort, "grpc", cfg.GRPCPort, "gRPC health server port (0 to disable)")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Dashboard static files directory")
	fs.StringVar(&originStr, "origins", originStr, "Allowed CORS/WebSocket origins (comma separated)")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Export OpenTelemetry traces to stdout")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable colored debug logging")
	fs.StringVar(&levelStr, "log-level", levelStr, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Addr = fmt.Sprintf(":%d", cfg.Port)
	cfg.AllowedOrigins = parseList(originStr)

	level, err := ParseLogLevel(levelStr)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	if cfg.Debug && cfg.LogLevel > slog.LevelDebug {
		cfg.LogLevel = slog.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid gRPC port %d", c.GRPCPort))
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.Port {
		errs = append(errs, fmt.Errorf("gRPC port %d collides with HTTP port", c.GRPCPort))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	return errors.Join(errs...)
}

// ParseLogLevel maps debug|info|warn|error (case-insensitive) to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
		slog.Warn("Ignoring malformed integer setting", "key", key, "value", value)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
		slog.Warn("Ignoring malformed duration setting", "key", key, "value", value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
