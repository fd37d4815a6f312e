// Command kvstored runs the key-value reactor server: three in-memory
// engines (array, red-black tree, hash table) behind a single epoll loop
// speaking a line-oriented wire protocol, with HTTP and WebSocket echo
// fallbacks on the same ports and an ambient HTTP surface for operability
// (grounded on cmd/main.go and internal/server/server.go's wiring style).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"kvstore-reactor/internal/config"
	"kvstore-reactor/internal/dispatcher"
	"kvstore-reactor/internal/eventbus"
	"kvstore-reactor/internal/handlers"
	"kvstore-reactor/internal/logging"
	"kvstore-reactor/internal/metrics"
	"kvstore-reactor/internal/protocol"
	"kvstore-reactor/internal/ratelimit"
	"kvstore-reactor/internal/reactor"
	"kvstore-reactor/internal/store"
)

const defaultStartPort = 2000

func main() {
	startPort := defaultStartPort
	if len(os.Args) > 1 {
		p, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "kvstored: invalid starting port %q\n", os.Args[1])
			os.Exit(1)
		}
		startPort = p
	}

	log := logging.New("info", "console")
	log.Info().Int("gomaxprocs", runtime.GOMAXPROCS(0)).Msg("starting kvstored")

	cfg, err := config.Load(&log)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	log = logging.New(cfg.LogLevel, cfg.LogFormat)

	st, err := store.New(cfg.ArrayCapacity, cfg.HashSlots)
	if err != nil {
		log.Fatal().Err(err).Msg("create engines")
	}
	defer st.Close()

	m := metrics.New()

	bus, err := eventbus.Connect(cfg.NATSURL, m, log)
	if err != nil {
		log.Warn().Err(err).Msg("event bus disabled: connect failed")
	}
	defer bus.Close()

	pipeline := protocol.New(st, cfg.BufferSize)
	pipeline.OnMutation = func(engine, op, key string, ok bool) {
		m.CommandsTotal.WithLabelValues(op).Inc()
		if !ok {
			m.CommandErrors.WithLabelValues(op, "error").Inc()
		}
		bus.Publish(engine, op, key, ok)
	}

	d := dispatcher.New(
		handlers.KV{Pipeline: pipeline},
		handlers.HTTP{},
		handlers.WS{},
	)

	guard := ratelimit.New(ratelimit.Config{
		IPRate:      cfg.RateLimitIPRate,
		IPBurst:     cfg.RateLimitIPBurst,
		GlobalRate:  cfg.RateLimitGlobalRate,
		GlobalBurst: cfg.RateLimitGlobalBurst,
	}, m, log)
	defer guard.Stop()

	rx, err := reactor.New(cfg.MaxConnections, cfg.BufferSize, d.Dispatch, guard.Allow)
	if err != nil {
		log.Fatal().Err(err).Msg("create reactor")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.NewCollector(m, &rx.Stats, time.Duration(cfg.MetricsInterval)*time.Second)
	go collector.Run(ctx)

	httpSrv := newAmbientHTTPServer(cfg.MetricsAddr, rx, m, collector.Sampler())
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("ambient HTTP surface listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ambient HTTP server error")
		}
	}()

	go func() {
		log.Info().Int("start_port", startPort).Int("port_count", cfg.PortCount).Msg("reactor listening")
		if err := rx.Run(startPort, cfg.PortCount); err != nil {
			log.Fatal().Err(err).Msg("reactor run")
		}
	}()

	waitForShutdown(log)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("ambient HTTP server shutdown")
	}
	if err := rx.Close(); err != nil {
		log.Warn().Err(err).Msg("reactor close")
	}
}

// waitForShutdown blocks until SIGINT or SIGTERM arrives, in the teacher's
// waitForShutdown style (internal/server/server.go).
func waitForShutdown(log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
}

func newAmbientHTTPServer(addr string, rx *reactor.Reactor, m *metrics.Metrics, sampler *metrics.SystemSampler) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		snap := rx.Stats.Snapshot()
		health := map[string]any{
			"status":             "healthy",
			"timestamp":          time.Now().Unix(),
			"uptime_seconds":     m.Uptime().Seconds(),
			"active_connections": snap.ActiveConnections,
			"total_connections":  snap.TotalConnections,
			"total_requests":     snap.TotalRequests,
			"goroutines":         runtime.NumGoroutine(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/metrics/system", func(w http.ResponseWriter, r *http.Request) {
		system := map[string]any{
			"timestamp":        time.Now().Unix(),
			"cpu_percent":      sampler.CPUPercent(),
			"heap_alloc_bytes": sampler.HeapAllocBytes(),
			"goroutines":       runtime.NumGoroutine(),
			"uptime_seconds":   m.Uptime().Seconds(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(system)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func init() {
	signal.Ignore(syscall.SIGPIPE)
}
