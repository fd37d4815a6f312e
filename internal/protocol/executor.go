package protocol

import "kvstore-reactor/internal/store"

// execute dispatches a classified, arity-checked command against the
// store's engines and returns the reply body (without the trailing CRLF —
// the pipeline appends that). Reply bodies follow kvs_base.c's
// kvs_strerror mapping exactly: "OK" on a plain success, "OK <value>" on a
// successful fetch, and the fixed error string for anything else.
func execute(s *store.Store, cmd Command, tokens [][]byte) string {
	switch cmd {
	case CmdSet:
		return reply(s.Array.Set(string(tokens[1]), string(tokens[2])))
	case CmdGet:
		v, err := s.Array.Get(string(tokens[1]))
		return replyValue(err, v)
	case CmdDel:
		return reply(s.Array.Del(string(tokens[1])))
	case CmdMod:
		return reply(s.Array.Mod(string(tokens[1]), string(tokens[2])))
	case CmdExist:
		return reply(s.Array.Exist(string(tokens[1])))

	case CmdRSet:
		return reply(s.Tree.Set(string(tokens[1]), string(tokens[2])))
	case CmdRGet:
		v, err := s.Tree.Get(string(tokens[1]))
		return replyValue(err, v)
	case CmdRDel:
		return reply(s.Tree.Del(string(tokens[1])))
	case CmdRMod:
		return reply(s.Tree.Mod(string(tokens[1]), string(tokens[2])))
	case CmdRExist:
		return reply(s.Tree.Exist(string(tokens[1])))

	case CmdHSet:
		return reply(s.Hash.Set(string(tokens[1]), string(tokens[2])))
	case CmdHGet:
		v, err := s.Hash.Get(string(tokens[1]))
		return replyValue(err, v)
	case CmdHDel:
		return reply(s.Hash.Del(string(tokens[1])))
	case CmdHMod:
		return reply(s.Hash.Mod(string(tokens[1]), string(tokens[2])))
	case CmdHExist:
		return reply(s.Hash.Exist(string(tokens[1])))

	default:
		return "ERROR: Unknown command"
	}
}

// reply formats a plain (no-payload) success as "OK", or a failure as its
// fixed error string.
func reply(err error) string {
	if err == nil {
		return "OK"
	}
	return err.Error()
}

// replyValue formats a successful fetch as "OK <value>", including an
// empty value, or a failure as its fixed error string.
func replyValue(err error, value string) string {
	if err == nil {
		return "OK " + value
	}
	return err.Error()
}
