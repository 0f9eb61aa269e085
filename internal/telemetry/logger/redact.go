package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// Key patterns whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
}

// Query parameters masked inside URL values.
var sensitiveQueryParams = []string{"token", "password"}

const redactedValue = "***REDACTED***"

// redactSensitive redacts sensitive keys and token query parameters.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		if IsSensitiveKey(a.Key) {
			if strVal != "" {
				return slog.String(a.Key, redactedValue)
			}
			return a
		}

		if strings.Contains(strVal, "://") && strings.Contains(strVal, "?") {
			return slog.String(a.Key, RedactURL(strVal))
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// RedactURL masks sensitive query parameters of a URL string.
// Unparsable input is returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	changed := false
	for _, p := range sensitiveQueryParams {
		if v := q.Get(p); v != "" {
			q.Set(p, RedactString(v))
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedactString partially masks a secret, keeping 3 leading and trailing
// characters as a hint. Short values are fully masked.
func RedactString(value string) string {
	if len(value) <= 10 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
