package util

import "strings"

// DefaultString returns fallback when v is empty or whitespace-only.
//
//	DefaultString("hello", "world") → "hello"
//	DefaultString("  ",    "world") → "world"
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash renders optional table cells (such as an unset alias) as "-".
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}
