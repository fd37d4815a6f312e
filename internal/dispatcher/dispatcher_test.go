package dispatcher

import (
	"testing"

	"kvstore-reactor/internal/reactor"
)

type stubHandler struct {
	n     int
	calls int
}

func (s *stubHandler) Handle(c *reactor.Conn) int {
	s.calls++
	return s.n
}

func conn(data string) *reactor.Conn {
	c := &reactor.Conn{ReadBuf: make([]byte, 2048)}
	n := copy(c.ReadBuf, data)
	c.ReadLen = n
	return c
}

func TestClassifiesPlainKVTraffic(t *testing.T) {
	kv, http, ws := &stubHandler{n: 2}, &stubHandler{}, &stubHandler{}
	d := New(kv, http, ws)
	c := conn("SET a 1\r\n")
	d.Dispatch(c)
	if c.Protocol != reactor.ProtoKV || kv.calls != 1 {
		t.Fatalf("protocol=%v kv.calls=%d, want ProtoKV/1", c.Protocol, kv.calls)
	}
}

func TestClassifiesPlainHTTP(t *testing.T) {
	kv, http, ws := &stubHandler{}, &stubHandler{n: 5}, &stubHandler{}
	d := New(kv, http, ws)
	c := conn("GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	d.Dispatch(c)
	if c.Protocol != reactor.ProtoHTTP || http.calls != 1 {
		t.Fatalf("protocol=%v http.calls=%d, want ProtoHTTP/1", c.Protocol, http.calls)
	}
}

func TestClassifiesWebSocketUpgrade(t *testing.T) {
	kv, http, ws := &stubHandler{}, &stubHandler{}, &stubHandler{n: 7}
	d := New(kv, http, ws)
	req := "GET /ws HTTP/1.1\r\nHost: x\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n\r\n"
	c := conn(req)
	d.Dispatch(c)
	if c.Protocol != reactor.ProtoWS || ws.calls != 1 {
		t.Fatalf("protocol=%v ws.calls=%d, want ProtoWS/1", c.Protocol, ws.calls)
	}
}

func TestHTTPWithoutUpgradeHeadersStaysHTTP(t *testing.T) {
	kv, http, ws := &stubHandler{}, &stubHandler{n: 1}, &stubHandler{}
	d := New(kv, http, ws)
	c := conn("GET /ws HTTP/1.1\r\nUpgrade: websocket\r\n\r\n")
	d.Dispatch(c)
	if c.Protocol != reactor.ProtoHTTP {
		t.Fatalf("protocol=%v, want ProtoHTTP when Connection header is missing", c.Protocol)
	}
}

func TestProtocolIsSticky(t *testing.T) {
	kv, http, ws := &stubHandler{n: 2}, &stubHandler{}, &stubHandler{}
	d := New(kv, http, ws)
	c := conn("SET a 1\r\n")
	d.Dispatch(c)
	// Second call with different-looking bytes must not be reclassified.
	copy(c.ReadBuf, "GET / HTTP/1.1\r\n\r\n")
	c.ReadLen = len("GET / HTTP/1.1\r\n\r\n")
	d.Dispatch(c)
	if c.Protocol != reactor.ProtoKV || kv.calls != 2 {
		t.Fatalf("protocol=%v kv.calls=%d, want sticky ProtoKV/2", c.Protocol, kv.calls)
	}
}
