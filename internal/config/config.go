package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"rust-rush/server/internal/telemetry"
	"rust-rush/server/logging"
)

// Config is the process configuration assembled from the environment.
// Zero or out-of-range fields are repaired by Normalized.
type Config struct {
	Port        int
	TickRate    int
	IdleRoomTTL time.Duration

	LogSinks    []string
	LogLevel    logging.Severity
	LogJSONPath string

	BalancePath  string
	BalanceWatch bool

	EnablePprofTrace bool
}

// Default returns the configuration the server runs with when the
// environment says nothing.
func Default() Config {
	return Config{
		Port:        8080,
		TickRate:    60,
		IdleRoomTTL: 2 * time.Minute,
		LogSinks:    []string{"console"},
		LogLevel:    logging.SeverityInfo,
	}
}

// FromEnv reads the process environment over the defaults. Unparseable
// values are logged and skipped so a typo never takes the server down.
func FromEnv(logger telemetry.Logger) Config {
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	cfg := Default()

	if raw := os.Getenv("PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.Port = value
		} else {
			logger.Printf("invalid PORT=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("TICK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.TickRate = value
		} else {
			logger.Printf("invalid TICK_RATE=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("IDLE_ROOM_TTL"); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil {
			cfg.IdleRoomTTL = value
		} else {
			logger.Printf("invalid IDLE_ROOM_TTL=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("LOG_SINKS"); raw != "" {
		if sinks, err := parseSinkList(raw); err == nil {
			cfg.LogSinks = sinks
		} else {
			logger.Printf("invalid LOG_SINKS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if level, ok := parseSeverity(raw); ok {
			cfg.LogLevel = level
		} else {
			logger.Printf("invalid LOG_LEVEL=%q", raw)
		}
	}
	cfg.LogJSONPath = os.Getenv("LOG_JSON_PATH")
	cfg.BalancePath = os.Getenv("BALANCE_PATH")
	if raw := os.Getenv("BALANCE_WATCH"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.BalanceWatch = value
		} else {
			logger.Printf("invalid BALANCE_WATCH=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("ENABLE_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.EnablePprofTrace = value
		} else {
			logger.Printf("invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
	}
	return cfg
}

// Normalized clamps every field back into its usable range.
func (c Config) Normalized() Config {
	out := c
	if out.Port <= 0 || out.Port > 65535 {
		out.Port = 8080
	}
	if out.TickRate <= 0 {
		out.TickRate = 60
	}
	if out.IdleRoomTTL <= 0 {
		out.IdleRoomTTL = 2 * time.Minute
	}
	if len(out.LogSinks) == 0 {
		out.LogSinks = []string{"console"}
	}
	if out.LogLevel < logging.SeverityDebug || out.LogLevel > logging.SeverityError {
		out.LogLevel = logging.SeverityInfo
	}
	return out
}

// Addr formats the listen address for http.Server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoggingConfig translates the env fields into the router's config.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string(nil), c.LogSinks...)
	cfg.MinimumSeverity = c.LogLevel
	cfg.JSON.FilePath = c.LogJSONPath
	return cfg
}

func parseSinkList(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	sinks := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		switch name {
		case "console", "json", "memory":
			sinks = append(sinks, name)
		default:
			return nil, fmt.Errorf("unknown sink %q", name)
		}
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("no sinks listed")
	}
	return sinks, nil
}

func parseSeverity(raw string) (logging.Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return logging.SeverityDebug, true
	case "info":
		return logging.SeverityInfo, true
	case "warn", "warning":
		return logging.SeverityWarn, true
	case "error":
		return logging.SeverityError, true
	}
	return 0, false
}
