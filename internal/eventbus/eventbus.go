// Package eventbus publishes mutation events to NATS for observability,
// grounded on pkg/nats/client.go's connection-handling and publish pattern
// but reduced to the single publish-only direction the store needs: it has
// no subscribers, no request-reply, and no message-type registry, since
// nothing downstream reads these events back into the store (spec.md is
// explicit this is fan-out, not replication).
package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"kvstore-reactor/internal/metrics"
)

// MutationSubject is the single subject every mutation event is published
// under; the originating engine ("array", "rbtree", "hash") is carried in
// the event's Engine field.
const MutationSubject = "kvstore.mutations"

// MutationEvent describes a single Set/Mod/Del applied to one of the three
// engines, published as soon as the engine call returns, before the reply
// is handed back to the reactor — publication failures never affect the KV
// response.
type MutationEvent struct {
	Engine    string    `json:"engine"`
	Op        string    `json:"op"`
	Key       string    `json:"key"`
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher wraps a NATS connection. A nil *Publisher is valid and silently
// drops every Publish call, so callers do not need to branch on whether the
// event bus is configured.
type Publisher struct {
	conn    *nats.Conn
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// Connect dials url and returns a Publisher. Pass an empty url to disable
// the event bus entirely (Connect returns (nil, nil) in that case).
func Connect(url string, m *metrics.Metrics, log zerolog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	p := &Publisher{metrics: m, log: log}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ConnectHandler(func(c *nats.Conn) {
			p.log.Info().Str("url", c.ConnectedUrl()).Msg("eventbus connected")
		}),
		nats.DisconnectErrHandler(func(c *nats.Conn, err error) {
			if err != nil {
				p.log.Warn().Err(err).Msg("eventbus disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			p.log.Info().Str("url", c.ConnectedUrl()).Msg("eventbus reconnected")
		}),
		nats.ErrorHandler(func(c *nats.Conn, s *nats.Subscription, err error) {
			p.log.Error().Err(err).Msg("eventbus error")
		}),
	)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// Publish fires a mutation event. Errors are logged, not returned: a
// publish failure must never surface as a KV command failure.
func (p *Publisher) Publish(engine, op, key string, ok bool) {
	if p == nil {
		return
	}
	data, err := json.Marshal(MutationEvent{
		Engine:    engine,
		Op:        op,
		Key:       key,
		OK:        ok,
		Timestamp: time.Now(),
	})
	if err != nil {
		p.log.Error().Err(err).Msg("eventbus marshal mutation event")
		return
	}
	if err := p.conn.Publish(MutationSubject, data); err != nil {
		if p.metrics != nil {
			p.metrics.EventbusPublishErrors.Inc()
		}
		p.log.Error().Err(err).Msg("eventbus publish mutation event")
	}
}

// Close closes the underlying connection without draining it.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
