package repl

import (
	"sort"
	"strings"
)

// Completer suggests command lines for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a completer over the given command lines, e.g.
// "login", "session show". The shell builtins are always included.
func NewCompleter(commands ...string) *Completer {
	seen := make(map[string]bool)
	var all []string
	for _, cmd := range append(commands, builtins...) {
		if cmd != "" && !seen[cmd] {
			seen[cmd] = true
			all = append(all, cmd)
		}
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns the command lines starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether name is a top-level command.
func (c *Completer) Known(name string) bool {
	for _, cmd := range c.commands {
		top, _, _ := strings.Cut(cmd, " ")
		if top == name {
			return true
		}
	}
	return false
}

// Suggest returns top-level commands sharing a prefix with an unknown
// name, dropping up to two trailing letters, for "did you mean" hints.
func (c *Completer) Suggest(name string) []string {
	var out []string
	for n := len(name); n >= 1 && n >= len(name)-2 && len(out) == 0; n-- {
		seen := make(map[string]bool)
		for _, cmd := range c.commands {
			top, _, _ := strings.Cut(cmd, " ")
			if strings.HasPrefix(top, name[:n]) && !seen[top] {
				seen[top] = true
				out = append(out, top)
			}
		}
	}
	return out
}
