package handlers

import "kvstore-reactor/internal/reactor"

// Echo copies a connection's read buffer straight back into its write
// buffer, unchanged. Grounded on original_source's src/echo.c.
type Echo struct{}

func (Echo) Handle(c *reactor.Conn) int {
	n := c.ReadLen
	if n <= 0 {
		return 0
	}
	if n > len(c.WriteBuf) {
		return -1
	}
	copy(c.WriteBuf, c.ReadBuf[:n])
	return n
}
