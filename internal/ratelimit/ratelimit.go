// Package ratelimit provides connection admission control, adapted from
// ws/internal/shared/limits/connection_rate_limiter.go: two-level token
// bucket limiting (per-IP and global) via golang.org/x/time/rate, guarding
// the reactor's accept path instead of an HTTP upgrade handler.
package ratelimit

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"kvstore-reactor/internal/metrics"
)

// ipLimiterEntry pairs a per-IP limiter with its last-use time so the
// cleanup loop can evict IPs that stopped connecting.
type ipLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Config holds the rate-limit parameters read from internal/config.
type Config struct {
	IPRate      float64
	IPBurst     int
	IPTTL       time.Duration
	GlobalRate  float64
	GlobalBurst int
}

// ConnectionGuard decides whether to admit an incoming connection attempt.
// It satisfies the reactor.AcceptGuard function signature via Allow.
type ConnectionGuard struct {
	ipLimiters map[string]*ipLimiterEntry
	ipMu       sync.Mutex
	ipRate     float64
	ipBurst    int
	ipTTL      time.Duration

	global *rate.Limiter

	metrics *metrics.Metrics
	log     zerolog.Logger

	stopCleanup chan struct{}
}

// New builds a ConnectionGuard and starts its background cleanup loop.
// Call Stop when shutting down.
func New(cfg Config, m *metrics.Metrics, log zerolog.Logger) *ConnectionGuard {
	if cfg.IPTTL == 0 {
		cfg.IPTTL = 5 * time.Minute
	}
	g := &ConnectionGuard{
		ipLimiters:  make(map[string]*ipLimiterEntry),
		ipRate:      cfg.IPRate,
		ipBurst:     cfg.IPBurst,
		ipTTL:       cfg.IPTTL,
		global:      rate.NewLimiter(rate.Limit(cfg.GlobalRate), cfg.GlobalBurst),
		metrics:     m,
		log:         log.With().Str("component", "ratelimit").Logger(),
		stopCleanup: make(chan struct{}),
	}
	go g.cleanupLoop()
	return g
}

// Allow reports whether a new connection from remoteAddr should be
// accepted. The global limit is checked first since it is a single atomic
// operation with no map lookup.
func (g *ConnectionGuard) Allow(remoteAddr string) bool {
	if !g.global.Allow() {
		g.log.Debug().Str("remote", remoteAddr).Msg("connection rejected: global rate limit")
		if g.metrics != nil {
			g.metrics.ConnectionErrors.Inc()
		}
		return false
	}

	ip := hostOf(remoteAddr)
	if !g.ipLimiter(ip).Allow() {
		g.log.Debug().Str("remote", remoteAddr).Msg("connection rejected: per-IP rate limit")
		if g.metrics != nil {
			g.metrics.ConnectionErrors.Inc()
		}
		return false
	}
	return true
}

func (g *ConnectionGuard) ipLimiter(ip string) *rate.Limiter {
	g.ipMu.Lock()
	defer g.ipMu.Unlock()

	entry, ok := g.ipLimiters[ip]
	if ok {
		entry.lastAccess = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(g.ipRate), g.ipBurst)
	g.ipLimiters[ip] = &ipLimiterEntry{limiter: limiter, lastAccess: time.Now()}
	return limiter
}

func (g *ConnectionGuard) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.cleanup()
		case <-g.stopCleanup:
			return
		}
	}
}

func (g *ConnectionGuard) cleanup() {
	g.ipMu.Lock()
	defer g.ipMu.Unlock()
	now := time.Now()
	for ip, entry := range g.ipLimiters {
		if now.Sub(entry.lastAccess) > g.ipTTL {
			delete(g.ipLimiters, ip)
		}
	}
}

// Stop halts the cleanup goroutine.
func (g *ConnectionGuard) Stop() {
	close(g.stopCleanup)
}

// hostOf strips the port from a "host:port" remote address, falling back
// to the whole string if no colon is present.
func hostOf(remoteAddr string) string {
	for i := len(remoteAddr) - 1; i >= 0; i-- {
		if remoteAddr[i] == ':' {
			return remoteAddr[:i]
		}
	}
	return remoteAddr
}
