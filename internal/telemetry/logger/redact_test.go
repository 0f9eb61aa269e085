package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestRedactSensitive_KeyNames(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "text", Output: &buf})
	defer SetLevel("warn")

	l.Info("login", "userId", "alice", "password", "hunter2", "token", "abcdef0123456789")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked: %q", out)
	}
	if strings.Contains(out, "abcdef0123456789") {
		t.Errorf("token leaked: %q", out)
	}
	if !strings.Contains(out, "userId=alice") {
		t.Errorf("non-sensitive value should be kept: %q", out)
	}
}

func TestRedactSensitive_URLValue(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "text", Output: &buf})
	defer SetLevel("warn")

	l.Info("request", "url", "https://as.wiz.cn/as/user/keep?clientType=macos&token=abcdef0123456789")

	out := buf.String()
	if strings.Contains(out, "abcdef0123456789") {
		t.Errorf("token in URL leaked: %q", out)
	}
	if !strings.Contains(out, "clientType=macos") {
		t.Errorf("other query params should be kept: %q", out)
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "token masked",
			in:   "https://as.wiz.cn/as/user/keep?apiVersion=10&token=abcdef0123456789",
			want: "https://as.wiz.cn/as/user/keep?apiVersion=10&token=abc...789",
		},
		{
			name: "no sensitive params",
			in:   "https://as.wiz.cn/as/user/login?clientType=macos",
			want: "https://as.wiz.cn/as/user/login?clientType=macos",
		},
		{
			name: "unparsable",
			in:   "https://bad host%zz?token=x",
			want: "https://bad host%zz?token=x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactURL(tt.in); got != tt.want {
				t.Errorf("RedactURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcdef0123456789", "abc...789"},
		{"short", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		if got := RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"Token", true},
		{"client_secret", true},
		{"userId", false},
		{"url", false},
	}
	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
