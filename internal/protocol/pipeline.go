// Package protocol implements the request pipeline: tokenize, classify,
// execute, format reply — grounded on original_source's kvs_protocol.c.
package protocol

import (
	"bytes"

	"kvstore-reactor/internal/store"
)

// mutatingCommands marks every verb that changes engine state, for the
// optional mutation hook used by the event bus. Fetch and existence checks
// never fire it.
var mutatingCommands = map[Command]string{
	CmdSet: "set", CmdDel: "del", CmdMod: "mod",
	CmdRSet: "set", CmdRDel: "del", CmdRMod: "mod",
	CmdHSet: "set", CmdHDel: "del", CmdHMod: "mod",
}

var engineOf = map[Command]string{
	CmdSet: "array", CmdGet: "array", CmdDel: "array", CmdMod: "array", CmdExist: "array",
	CmdRSet: "rbtree", CmdRGet: "rbtree", CmdRDel: "rbtree", CmdRMod: "rbtree", CmdRExist: "rbtree",
	CmdHSet: "hash", CmdHGet: "hash", CmdHDel: "hash", CmdHMod: "hash", CmdHExist: "hash",
}

// MutationFunc is notified after a mutating command completes, whether or
// not it succeeded. It must not block the reactor; implementations are
// expected to hand off asynchronously (see internal/eventbus).
type MutationFunc func(engine, op, key string, ok bool)

// Pipeline ties a Store to the wire protocol. It is safe to use only from
// the single reactor goroutine.
type Pipeline struct {
	store      *store.Store
	bufSize    int
	scratch    []byte
	OnMutation MutationFunc
}

// New returns a pipeline bound to store, formatting replies that fit within
// bufSize bytes including the trailing CRLF.
func New(s *store.Store, bufSize int) *Pipeline {
	return &Pipeline{
		store:   s,
		bufSize: bufSize,
		scratch: make([]byte, bufSize),
	}
}

// Handle runs one request through tokenize -> classify -> execute and
// returns the CRLF-terminated reply. request is never mutated: Handle
// copies it into an internal scratch buffer before tokenizing, since
// tokenize's bound-splitting would otherwise need to rewrite the caller's
// buffer the way strtok does in kvs_tokenizer.
func (p *Pipeline) Handle(request []byte) []byte {
	if len(request) > len(p.scratch) {
		p.scratch = make([]byte, len(request))
	}
	n := copy(p.scratch, request)
	tokens := tokenize(p.scratch[:n])

	var body string
	switch {
	case len(tokens) == 0:
		body = "ERROR: Unknown command"
	default:
		verb := string(tokens[0])
		info, ok := classify(verb)
		switch {
		case !ok:
			body = "ERROR: Unknown command"
		case len(tokens) < info.arity:
			body = "ERROR Missing arguments"
		default:
			body = execute(p.store, info.cmd, tokens)
			p.notifyMutation(info.cmd, tokens, body)
		}
	}

	out := make([]byte, 0, len(body)+2)
	out = append(out, body...)
	out = append(out, '\r', '\n')
	if len(out) > p.bufSize {
		return []byte("ERROR: Internal error\r\n")
	}
	return out
}

func (p *Pipeline) notifyMutation(cmd Command, tokens [][]byte, body string) {
	if p.OnMutation == nil {
		return
	}
	op, mutating := mutatingCommands[cmd]
	if !mutating {
		return
	}
	ok := bytes.HasPrefix([]byte(body), []byte("OK"))
	p.OnMutation(engineOf[cmd], op, string(tokens[1]), ok)
}
