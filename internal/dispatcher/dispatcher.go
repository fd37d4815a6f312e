// Package dispatcher implements the sticky content-type classification the
// reactor's single installed handler performs on first contact with a
// connection, grounded on original_source's src/dispatcher.c.
package dispatcher

import (
	"bytes"

	"kvstore-reactor/internal/reactor"
)

// maxSniffLen bounds how much of the buffer first_line_is_http inspects,
// matching dispatcher.c's 512-byte cap on the first line.
const maxSniffLen = 512

// Handler is implemented by each content-type's handler (KV, HTTP, WS,
// echo). It follows the same contract as reactor.Handler.
type Handler interface {
	Handle(c *reactor.Conn) int
}

// Dispatcher routes a connection's first read to protocol sniffing, then
// sticks to whatever it decides for the rest of the connection's life.
type Dispatcher struct {
	KV   Handler
	HTTP Handler
	WS   Handler
}

// New builds a Dispatcher. Any handler left nil is simply never reached —
// useful for tests that only exercise one protocol.
func New(kv, http, ws Handler) *Dispatcher {
	return &Dispatcher{KV: kv, HTTP: http, WS: ws}
}

// Dispatch is installed as the reactor's Handler.
func (d *Dispatcher) Dispatch(c *reactor.Conn) int {
	if c.Protocol == reactor.ProtoUnknown {
		d.classify(c)
	}
	switch c.Protocol {
	case reactor.ProtoHTTP:
		if d.HTTP == nil {
			return -1
		}
		return d.HTTP.Handle(c)
	case reactor.ProtoWS:
		if d.WS == nil {
			return -1
		}
		return d.WS.Handle(c)
	default:
		if d.KV == nil {
			return -1
		}
		return d.KV.Handle(c)
	}
}

func (d *Dispatcher) classify(c *reactor.Conn) {
	buf := c.ReadBuf[:c.ReadLen]
	if !firstLineIsHTTP(buf) {
		c.Protocol = reactor.ProtoKV
		return
	}
	if isWebSocketUpgrade(buf) {
		c.Protocol = reactor.ProtoWS
		return
	}
	c.Protocol = reactor.ProtoHTTP
}

// firstLineIsHTTP reports whether the first line of buf (up to
// maxSniffLen bytes, or all of buf if no newline appears within that
// bound) looks like an HTTP request line — grounded on dispatcher.c's
// first_line_is_http.
func firstLineIsHTTP(buf []byte) bool {
	limit := len(buf)
	if limit > maxSniffLen {
		limit = maxSniffLen
	}
	line := buf[:limit]
	if idx := bytes.IndexByte(line, '\n'); idx != -1 {
		line = line[:idx]
	}
	return bytes.Contains(line, []byte("HTTP/1."))
}

// isWebSocketUpgrade reports whether an HTTP request carries both an
// Upgrade: websocket header and a Connection header whose value includes
// the "upgrade" token, per spec.md §4.2's refinement on top of
// dispatcher.c's plain HTTP/non-HTTP split. Header matching is
// case-insensitive, since RFC 7230 treats field names and these field
// values case-insensitively.
func isWebSocketUpgrade(buf []byte) bool {
	hasUpgradeHeader := false
	hasConnectionUpgrade := false
	for _, line := range bytes.Split(buf, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		name, value, ok := splitHeader(line)
		if !ok {
			continue
		}
		switch {
		case bytes.EqualFold(name, []byte("upgrade")) && bytes.EqualFold(bytes.TrimSpace(value), []byte("websocket")):
			hasUpgradeHeader = true
		case bytes.EqualFold(name, []byte("connection")) && containsToken(value, "upgrade"):
			hasConnectionUpgrade = true
		}
	}
	return hasUpgradeHeader && hasConnectionUpgrade
}

func splitHeader(line []byte) (name, value []byte, ok bool) {
	idx := bytes.IndexByte(line, ':')
	if idx == -1 {
		return nil, nil, false
	}
	return line[:idx], line[idx+1:], true
}

// containsToken reports whether value is a comma-separated list containing
// token, case-insensitively, e.g. "keep-alive, Upgrade".
func containsToken(value []byte, token string) bool {
	for _, part := range bytes.Split(value, []byte(",")) {
		if bytes.EqualFold(bytes.TrimSpace(part), []byte(token)) {
			return true
		}
	}
	return false
}
