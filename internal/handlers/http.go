package handlers

import (
	"fmt"

	"kvstore-reactor/internal/reactor"
)

const helloBody = "<html><body>Hello</body></html>"

// HTTP serves the single fixed response original_source's src/http.c
// returns for every request: a 200 OK with a static HTML body, then closes
// the connection.
type HTTP struct{}

func (HTTP) Handle(c *reactor.Conn) int {
	header := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: text/html; charset=utf-8\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		len(helloBody),
	)
	total := len(header) + len(helloBody)
	if total >= len(c.WriteBuf) {
		return -1
	}
	n := copy(c.WriteBuf, header)
	n += copy(c.WriteBuf[n:], helloBody)
	c.CloseAfterFlush = true
	if c.Protocol == reactor.ProtoUnknown {
		c.Protocol = reactor.ProtoHTTP
	}
	return n
}
