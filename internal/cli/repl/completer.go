package repl

import (
	"sort"
	"strings"
)

// Shell commands, prefixed with ':' so they never collide with program
// names.
var shellCommands = []string{":complete", ":help", ":hex", ":history", ":raw", "exit", "quit"}

// Completer suggests shell commands and known program names.
type Completer struct {
	words []string
}

// NewCompleter creates a completer that also knows programs.
func NewCompleter(programs ...string) *Completer {
	words := append([]string(nil), shellCommands...)
	for _, p := range programs {
		words = append(words, strings.ToUpper(p))
	}
	sort.Strings(words)
	return &Completer{words: words}
}

// Complete returns the words starting with prefix. Program names match
// case-insensitively.
func (c *Completer) Complete(prefix string) []string {
	var out []string
	upper := strings.ToUpper(prefix)
	for _, w := range c.words {
		if strings.HasPrefix(w, prefix) || strings.HasPrefix(w, upper) {
			out = append(out, w)
		}
	}
	return out
}
