package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer SetLevel("warn")

	FromContext(WithLogger(context.Background(), l)).Info("attached")
	if !strings.Contains(buf.String(), "attached") {
		t.Errorf("attached logger not used: %q", buf.String())
	}

	if FromContext(context.Background()) != Default() {
		t.Error("FromContext without a logger should return Default()")
	}
}

func TestCommandAndCallID(t *testing.T) {
	ctx := context.Background()
	if CommandFromContext(ctx) != "" || CallIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no command or call ID")
	}

	ctx = WithCommand(ctx, "versions")
	ctx = WithCallID(ctx, "01JCALL")
	if got := CommandFromContext(ctx); got != "versions" {
		t.Errorf("CommandFromContext() = %q", got)
	}
	if got := CallIDFromContext(ctx); got != "01JCALL" {
		t.Errorf("CallIDFromContext() = %q", got)
	}

	if WithCommand(ctx, "") != ctx {
		t.Error("WithCommand with an empty name should return ctx unchanged")
	}
}

func TestL(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Output: &buf})
	defer SetLevel("warn")

	ctx := WithLogger(context.Background(), l)
	ctx = WithCallID(WithCommand(ctx, "login"), "c-1")
	L(ctx).Info("hello")

	out := buf.String()
	for _, want := range []string{"cmd=login", "call_id=c-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}
