package repl

import (
	"reflect"
	"testing"
)

func testCompleter() *Completer {
	return NewCompleter("login", "logout", "keep", "session show", "session forget", "session", "versions")
}

func TestCompleter_Complete(t *testing.T) {
	c := testCompleter()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"log", []string{"login", "logout"}},
		{"session ", []string{"session forget", "session show"}},
		{"ex", []string{"exit"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestCompleter_Known(t *testing.T) {
	c := testCompleter()
	for _, name := range []string{"login", "session", "help", "quit"} {
		if !c.Known(name) {
			t.Errorf("Known(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"show", "log", ""} {
		if c.Known(name) {
			t.Errorf("Known(%q) = true, want false", name)
		}
	}
}

func TestCompleter_Suggest(t *testing.T) {
	c := testCompleter()

	tests := []struct {
		name string
		want []string
	}{
		{"logn", []string{"login", "logout"}},
		{"sesson", []string{"session"}},
		{"verions", nil},
		{"", nil},
	}

	for _, tt := range tests {
		if got := c.Suggest(tt.name); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Suggest(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCompleter_Dedup(t *testing.T) {
	c := NewCompleter("exit", "login", "login")
	if got := c.Complete("login"); len(got) != 1 {
		t.Errorf("Complete(login) = %v, want one entry", got)
	}
}
