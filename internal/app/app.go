package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"rust-rush/server/internal/config"
	servernet "rust-rush/server/internal/net"
	"rust-rush/server/internal/net/ws"
	"rust-rush/server/internal/observability"
	"rust-rush/server/internal/registry"
	"rust-rush/server/internal/sim"
	"rust-rush/server/internal/telemetry"
	"rust-rush/server/internal/world"
	"rust-rush/server/logging"
	loggingSinks "rust-rush/server/logging/sinks"
)

// Config carries the process configuration into the composition root.
type Config struct {
	Logger telemetry.Logger
	Env    config.Config
}

// Run assembles the server and blocks until ctx is cancelled or the
// listener fails. Shutdown drains in dependency order: sessions close
// before room loops stop, and the logging router closes last so
// lifecycle events from the teardown still reach the sinks.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	envCfg := cfg.Env.Normalized()

	logConfig := envCfg.LoggingConfig()
	namedSinks, jsonFile, err := buildSinks(logConfig)
	if err != nil {
		return fmt.Errorf("failed to open log sinks: %w", err)
	}
	if jsonFile != nil {
		defer jsonFile.Close()
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, namedSinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	balance := world.DefaultBalance()
	if envCfg.BalancePath != "" {
		loaded, lerr := config.LoadBalance(envCfg.BalancePath)
		if lerr != nil {
			return fmt.Errorf("failed to load balance tables: %w", lerr)
		}
		balance = loaded
		telemetryLogger.Printf("balance tables loaded from %s", envCfg.BalancePath)
	}

	counters := telemetry.NewCounters()
	metrics := &logging.Metrics{}

	fanout := ws.NewFanout(router, counters, fallbackLogger)
	stop := make(chan struct{})
	defer close(stop)
	go fanout.Run(stop)

	loopCfg := sim.DefaultLoopConfig()
	loopCfg.TickRate = envCfg.TickRate

	reg := registry.New(registry.Options{
		Config: registry.Config{
			Loop:          loopCfg,
			IdleTTL:       envCfg.IdleRoomTTL,
			SweepInterval: registry.DefaultConfig().SweepInterval,
		},
		Deps: sim.Deps{
			Logger:  telemetryLogger,
			Metrics: telemetry.WrapMetrics(metrics),
			Clock:   logging.SystemClock{},
		},
		Publisher: router,
		Sink:      fanout,
		Counters:  counters,
		Balance:   balance,
	})
	defer reg.Shutdown()
	go reg.RunJanitor(stop)

	gateway := ws.NewGateway(reg, fanout, router, counters, fallbackLogger)
	defer gateway.CloseAll()

	if envCfg.BalanceWatch && envCfg.BalancePath != "" {
		watcher, werr := config.NewWatcher(envCfg.BalancePath)
		if werr != nil {
			return fmt.Errorf("failed to watch balance file: %w", werr)
		}
		defer watcher.Close()
		go reloadBalance(watcher.Events, watcher.Errors, envCfg.BalancePath, reg, telemetryLogger)
		telemetryLogger.Printf("watching balance file %s", envCfg.BalancePath)
	}

	handler := servernet.NewHTTPHandler(reg, gateway, counters, servernet.HTTPHandlerConfig{
		Logger:   fallbackLogger,
		TickRate: envCfg.TickRate,
		Observability: observability.Config{
			EnablePprofTrace: envCfg.EnablePprofTrace,
		},
	})

	srv := &http.Server{Addr: envCfg.Addr(), Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			telemetryLogger.Printf("http shutdown: %v", serr)
		}
		return nil
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// buildSinks opens one sink per enabled name. The returned file, when not
// nil, backs the json sink and must outlive the router.
func buildSinks(cfg logging.Config) ([]logging.NamedSink, *os.File, error) {
	var jsonFile *os.File
	named := make([]logging.NamedSink, 0, len(cfg.EnabledSinks))
	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			named = append(named, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewConsoleSink(os.Stdout, cfg.Console),
			})
		case "json":
			writer := io.Writer(os.Stdout)
			if cfg.JSON.FilePath != "" {
				file, err := os.OpenFile(cfg.JSON.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return nil, nil, fmt.Errorf("open %s: %w", cfg.JSON.FilePath, err)
				}
				jsonFile = file
				writer = file
			}
			named = append(named, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewJSON(writer, cfg.JSON.FlushInterval),
			})
		case "memory":
			named = append(named, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewMemorySink(),
			})
		}
	}
	return named, jsonFile, nil
}

// reloadBalance applies balance file changes to the registry until the
// watcher channels close. A file that fails to load or validate leaves the
// running tables untouched.
func reloadBalance(events <-chan string, errs <-chan error, path string, reg *registry.Registry, logger telemetry.Logger) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			balance, err := config.LoadBalance(path)
			if err != nil {
				logger.Printf("balance reload failed: %v", err)
				continue
			}
			if err := reg.UpdateBalance(balance); err != nil {
				logger.Printf("balance rollout failed: %v", err)
				continue
			}
			logger.Printf("balance tables reloaded from %s", path)
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Printf("balance watcher error: %v", err)
		}
	}
}
