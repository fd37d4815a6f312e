package handlers

import (
	"kvstore-reactor/internal/protocol"
	"kvstore-reactor/internal/reactor"
)

// KV adapts a *protocol.Pipeline to the reactor.Handler/dispatcher.Handler
// contract.
type KV struct {
	Pipeline *protocol.Pipeline
}

func (h KV) Handle(c *reactor.Conn) int {
	reply := h.Pipeline.Handle(c.ReadBuf[:c.ReadLen])
	if len(reply) > len(c.WriteBuf) {
		return -1
	}
	return copy(c.WriteBuf, reply)
}
