package protocol

// Command enumerates the 15 verbs, grounded on original_source's
// kvs_protocol.h command enum and preserving its exact ordering: array,
// then ordered-tree, then hash, each in set/get/del/mod/exist order.
type Command int

const (
	CmdSet Command = iota
	CmdGet
	CmdDel
	CmdMod
	CmdExist
	CmdRSet
	CmdRGet
	CmdRDel
	CmdRMod
	CmdRExist
	CmdHSet
	CmdHGet
	CmdHDel
	CmdHMod
	CmdHExist
)

type verbInfo struct {
	cmd Command
	// arity is the total token count required, including the verb itself.
	arity int
}

// vocabulary mirrors kvs_protocol.c's command[] string table.
var vocabulary = map[string]verbInfo{
	"SET":    {CmdSet, 3},
	"GET":    {CmdGet, 2},
	"DEL":    {CmdDel, 2},
	"MOD":    {CmdMod, 3},
	"EXIST":  {CmdExist, 2},
	"RSET":   {CmdRSet, 3},
	"RGET":   {CmdRGet, 2},
	"RDEL":   {CmdRDel, 2},
	"RMOD":   {CmdRMod, 3},
	"REXIST": {CmdRExist, 2},
	"HSET":   {CmdHSet, 3},
	"HGET":   {CmdHGet, 2},
	"HDEL":   {CmdHDel, 2},
	"HMOD":   {CmdHMod, 3},
	"HEXIST": {CmdHExist, 2},
}

// classify looks up the verb named by the first token. ok is false if the
// verb is unknown.
func classify(verb string) (verbInfo, bool) {
	info, ok := vocabulary[verb]
	return info, ok
}
