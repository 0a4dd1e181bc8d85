package config

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"rust-rush/server/internal/telemetry"
	"rust-rush/server/logging"
)

var configEnvVars = []string{
	"PORT",
	"TICK_RATE",
	"IDLE_ROOM_TTL",
	"LOG_SINKS",
	"LOG_LEVEL",
	"LOG_JSON_PATH",
	"BALANCE_PATH",
	"BALANCE_WATCH",
	"ENABLE_PPROF_TRACE",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := FromEnv(nil)
	want := Default()
	if !reflect.DeepEqual(cfg, want) {
		t.Fatalf("expected defaults %+v, got %+v", want, cfg)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.Addr())
	}
}

func TestFromEnvReadsEverything(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TICK_RATE", "30")
	t.Setenv("IDLE_ROOM_TTL", "90s")
	t.Setenv("LOG_SINKS", "console, json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_JSON_PATH", "/tmp/events.jsonl")
	t.Setenv("BALANCE_PATH", "/etc/rush/balance.yaml")
	t.Setenv("BALANCE_WATCH", "true")
	t.Setenv("ENABLE_PPROF_TRACE", "1")

	cfg := FromEnv(nil)
	if cfg.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("expected tick rate 30, got %d", cfg.TickRate)
	}
	if cfg.IdleRoomTTL != 90*time.Second {
		t.Fatalf("expected idle TTL 90s, got %s", cfg.IdleRoomTTL)
	}
	if !reflect.DeepEqual(cfg.LogSinks, []string{"console", "json"}) {
		t.Fatalf("expected sinks [console json], got %v", cfg.LogSinks)
	}
	if cfg.LogLevel != logging.SeverityDebug {
		t.Fatalf("expected debug severity, got %d", cfg.LogLevel)
	}
	if cfg.LogJSONPath != "/tmp/events.jsonl" {
		t.Fatalf("unexpected json path %q", cfg.LogJSONPath)
	}
	if cfg.BalancePath != "/etc/rush/balance.yaml" {
		t.Fatalf("unexpected balance path %q", cfg.BalancePath)
	}
	if !cfg.BalanceWatch {
		t.Fatalf("expected balance watch enabled")
	}
	if !cfg.EnablePprofTrace {
		t.Fatalf("expected pprof trace enabled")
	}
}

func TestFromEnvLogsAndSkipsBadValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "not-a-port")
	t.Setenv("TICK_RATE", "fast")
	t.Setenv("IDLE_ROOM_TTL", "soon")
	t.Setenv("LOG_SINKS", "console,syslog")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("BALANCE_WATCH", "maybe")

	var warnings []string
	logger := telemetry.LoggerFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	cfg := FromEnv(logger)
	want := Default()
	if !reflect.DeepEqual(cfg, want) {
		t.Fatalf("expected bad values to fall back to defaults %+v, got %+v", want, cfg)
	}
	if len(warnings) != 6 {
		t.Fatalf("expected 6 warnings, got %d: %v", len(warnings), warnings)
	}
	for _, warning := range warnings {
		if !strings.Contains(warning, "invalid") {
			t.Fatalf("expected warning to name the invalid value, got %q", warning)
		}
	}
}

func TestNormalizedRepairsRanges(t *testing.T) {
	cfg := Config{
		Port:        -1,
		TickRate:    0,
		IdleRoomTTL: -time.Second,
		LogLevel:    logging.Severity(99),
	}

	out := cfg.Normalized()
	if out.Port != 8080 {
		t.Fatalf("expected port repaired to 8080, got %d", out.Port)
	}
	if out.TickRate != 60 {
		t.Fatalf("expected tick rate repaired to 60, got %d", out.TickRate)
	}
	if out.IdleRoomTTL != 2*time.Minute {
		t.Fatalf("expected idle TTL repaired to 2m, got %s", out.IdleRoomTTL)
	}
	if !reflect.DeepEqual(out.LogSinks, []string{"console"}) {
		t.Fatalf("expected console sink fallback, got %v", out.LogSinks)
	}
	if out.LogLevel != logging.SeverityInfo {
		t.Fatalf("expected severity repaired to info, got %d", out.LogLevel)
	}
}

func TestNormalizedKeepsValidConfig(t *testing.T) {
	cfg := Config{
		Port:        3000,
		TickRate:    120,
		IdleRoomTTL: time.Minute,
		LogSinks:    []string{"json"},
		LogLevel:    logging.SeverityWarn,
	}
	if out := cfg.Normalized(); !reflect.DeepEqual(out, cfg) {
		t.Fatalf("expected valid config untouched, got %+v", out)
	}
}

func TestLoggingConfigTranslation(t *testing.T) {
	cfg := Default()
	cfg.LogSinks = []string{"console", "json"}
	cfg.LogLevel = logging.SeverityError
	cfg.LogJSONPath = "/var/log/rush.jsonl"

	logCfg := cfg.LoggingConfig()
	if !reflect.DeepEqual(logCfg.EnabledSinks, []string{"console", "json"}) {
		t.Fatalf("expected enabled sinks carried over, got %v", logCfg.EnabledSinks)
	}
	if logCfg.MinimumSeverity != logging.SeverityError {
		t.Fatalf("expected error severity, got %d", logCfg.MinimumSeverity)
	}
	if logCfg.JSON.FilePath != "/var/log/rush.jsonl" {
		t.Fatalf("expected json path carried over, got %q", logCfg.JSON.FilePath)
	}
	if logCfg.BufferSize != logging.DefaultConfig().BufferSize {
		t.Fatalf("expected router buffer size untouched, got %d", logCfg.BufferSize)
	}
}

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		raw  string
		want logging.Severity
		ok   bool
	}{
		{"debug", logging.SeverityDebug, true},
		{"INFO", logging.SeverityInfo, true},
		{" warn ", logging.SeverityWarn, true},
		{"warning", logging.SeverityWarn, true},
		{"error", logging.SeverityError, true},
		{"verbose", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := parseSeverity(tc.raw)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("parseSeverity(%q) = %d,%v want %d,%v", tc.raw, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestParseSinkListRejectsUnknownSink(t *testing.T) {
	if _, err := parseSinkList("console,syslog"); err == nil {
		t.Fatalf("expected unknown sink to be rejected")
	}
	if _, err := parseSinkList(" , "); err == nil {
		t.Fatalf("expected empty list to be rejected")
	}
	sinks, err := parseSinkList("Memory,console")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(sinks, []string{"memory", "console"}) {
		t.Fatalf("expected lowercased sinks, got %v", sinks)
	}
}
