package shell

import "strings"

// DefaultMaxArgs is the default capacity of an argument vector, counting the
// terminator slot.
const DefaultMaxArgs = 64

// Tokenize splits line on ASCII spaces into at most maxArgs-1 non-empty
// tokens. Tokens past the limit are dropped. Quotes and backslashes have no
// special meaning.
func Tokenize(line string, maxArgs int) []string {
	if maxArgs < 2 {
		maxArgs = DefaultMaxArgs
	}

	var tokens []string
	for len(line) > 0 && len(tokens) < maxArgs-1 {
		line = strings.TrimLeft(line, " ")
		if line == "" {
			break
		}

		end := strings.IndexByte(line, ' ')
		if end < 0 {
			end = len(line)
		}
		tokens = append(tokens, line[:end])
		line = line[end:]
	}

	return tokens
}
