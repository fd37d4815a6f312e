package protocol

// tokenize splits a request line on ASCII spaces, trimming a trailing
// CR/LF first. The caller must already have copied the bytes it passes in —
// original_source's kvs_tokenizer uses strtok, which rewrites the input in
// place; rather than carry that destructive behavior into Go, the pipeline
// copies the wire buffer into a scratch slice before calling tokenize, so
// the reactor's own read buffer is never mutated by the protocol layer.
func tokenize(line []byte) [][]byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	var tokens [][]byte
	start := -1
	for i := 0; i <= len(line); i++ {
		if i < len(line) && line[i] != ' ' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			tokens = append(tokens, line[start:i])
			start = -1
		}
	}
	return tokens
}
