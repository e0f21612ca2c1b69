package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces credentials in log output.
const RedactedValue = "[REDACTED]"

// sensitiveKeys are matched as case-insensitive substrings of attribute keys.
var sensitiveKeys = []string{"secret", "password", "dsn", "token", "authorization"}

// IsSensitive reports whether an attribute named key carries a credential.
func IsSensitive(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return false
	}
	for _, marker := range sensitiveKeys {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// MaskToken keeps the first four characters of a bearer token so rejected
// requests can be correlated. Short values are hidden entirely.
func MaskToken(value string) string {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return value
	case len(trimmed) <= 8:
		return RedactedValue
	case strings.HasSuffix(trimmed, RedactedValue):
		return trimmed
	}
	return trimmed[:4] + "..." + RedactedValue
}

// redactAttr masks string values of sensitive attributes. Tokens keep a
// prefix; every other credential is replaced outright.
func redactAttr(attr slog.Attr) slog.Attr {
	if !IsSensitive(attr.Key) || attr.Value.Kind() == slog.KindGroup {
		return attr
	}
	value := attr.Value.String()
	if strings.TrimSpace(value) == "" {
		return attr
	}
	key := strings.ToLower(attr.Key)
	if strings.Contains(key, "token") || strings.Contains(key, "authorization") {
		return slog.String(attr.Key, MaskToken(value))
	}
	return slog.String(attr.Key, RedactedValue)
}
