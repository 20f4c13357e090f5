// Package logutil keeps credentials and other sensitive fixture values out
// of log output.
package logutil

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const redacted = "[REDACTED]"

// IsSensitiveLogField returns true when a key likely contains sensitive data.
func IsSensitiveLogField(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch {
	case normalized == "authorization":
		return true
	case strings.Contains(normalized, "token"):
		return true
	case strings.Contains(normalized, "secret"):
		return true
	case strings.Contains(normalized, "password"):
		return true
	case strings.Contains(normalized, "passwd"):
		return true
	case strings.Contains(normalized, "cookie"):
		return true
	default:
		return false
	}
}

// RedactValue returns value, or a redaction marker when key looks sensitive.
func RedactValue(key, value string) string {
	if IsSensitiveLogField(key) && value != "" {
		return redacted
	}
	return value
}

// Attr builds a string slog attribute with sensitive values redacted.
func Attr(key, value string) slog.Attr {
	return slog.String(key, RedactValue(key, value))
}

// FormatFieldsForLog renders a field map in stable key order with
// sensitive values redacted.
func FormatFieldsForLog(fields map[string]string) string {
	if len(fields) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if v == "" {
			parts = append(parts, fmt.Sprintf("%s=<empty>", k))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%q", k, RedactValue(k, v)))
	}
	return strings.Join(parts, "; ")
}

// TruncateForLog returns a single-line truncated preview for unstructured values.
func TruncateForLog(value string, maxChars int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ReplaceAll(trimmed, "\n", "\\n")
	if maxChars <= 0 || len(normalized) <= maxChars {
		return normalized
	}
	return normalized[:maxChars] + "... [truncated]"
}
