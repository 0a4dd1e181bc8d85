package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"rust-rush/server/internal/observability"
	"rust-rush/server/internal/registry"
	"rust-rush/server/internal/telemetry"
)

// HTTPHandlerConfig tunes the HTTP surface around the websocket gateway.
type HTTPHandlerConfig struct {
	Logger        *log.Logger
	TickRate      int
	Version       string
	Observability observability.Config
}

// NewHTTPHandler assembles the server mux: the banner route, health and
// diagnostics probes, the websocket entry point, and optional debug handlers.
func NewHTTPHandler(reg *registry.Registry, gateway nethttp.Handler, counters *telemetry.Counters, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}
		payload := struct {
			Message string `json:"message"`
			Version string `json:"version"`
		}{
			Message: "Rust Rush WebSocket Server",
			Version: version,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string                     `json:"status"`
			ServerTime int64                      `json:"serverTime"`
			TickRate   int                        `json:"tickRate"`
			Rooms      []registry.RoomDiagnostics `json:"rooms"`
			Telemetry  telemetry.CountersSnapshot `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   cfg.TickRate,
		}
		if reg != nil {
			payload.Rooms = reg.DiagnosticsSnapshot()
		}
		if payload.Rooms == nil {
			payload.Rooms = []registry.RoomDiagnostics{}
		}
		if counters != nil {
			payload.Telemetry = counters.Snapshot()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			logger.Printf("failed to marshal diagnostics: %v", err)
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	if gateway != nil {
		mux.Handle("/ws", gateway)
	}

	cfg.Observability.Mount(mux)

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
