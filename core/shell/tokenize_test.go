package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestTokenize(t *testing.T) {
	cases := map[string]struct {
		line     string
		expected []string
	}{
		"empty":                   {"", nil},
		"only spaces":             {"     ", nil},
		"single":                  {"ls", []string{"ls"}},
		"repeated spaces":         {"  ls   -l  /tmp ", []string{"ls", "-l", "/tmp"}},
		"quotes are literal":      {`echo "a b"`, []string{"echo", `"a`, `b"`}},
		"backslash literal":       {`echo a\ b`, []string{"echo", `a\`, "b"}},
		"tabs are not separators": {"echo\ta b", []string{"echo\ta", "b"}},
		"operators need spaces":   {"echo a>b | wc", []string{"echo", "a>b", "|", "wc"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.line, DefaultMaxArgs))
		})
	}
}

func TestTokenize_truncates(t *testing.T) {
	line := strings.TrimSpace(strings.Repeat("x ", 100))

	tokens := Tokenize(line, DefaultMaxArgs)
	assert.Len(t, tokens, DefaultMaxArgs-1)

	assert.Equal(t, []string{"a"}, Tokenize("a b c", 2))
}

func TestTokenize_properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOf(rapid.StringMatching(`[a-z$|<>"\\-]{1,6}`)).Draw(t, "words")
		gaps := rapid.SliceOfN(rapid.IntRange(1, 3), len(words)+1, len(words)+1).Draw(t, "gaps")
		maxArgs := rapid.IntRange(2, 80).Draw(t, "maxArgs")

		var sb strings.Builder
		for i, w := range words {
			sb.WriteString(strings.Repeat(" ", gaps[i]))
			sb.WriteString(w)
		}
		sb.WriteString(strings.Repeat(" ", gaps[len(words)]))

		tokens := Tokenize(sb.String(), maxArgs)

		want := words
		if len(want) > maxArgs-1 {
			want = want[:maxArgs-1]
		}
		if len(want) == 0 {
			want = nil
		}
		if len(tokens) != len(want) {
			t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
		}
		for i := range want {
			if tokens[i] != want[i] {
				t.Fatalf("token %d: got %q want %q", i, tokens[i], want[i])
			}
		}
	})
}
