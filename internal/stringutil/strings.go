// Package stringutil provides common string manipulation utilities.
package stringutil

import "unicode/utf8"

// IsNumeric checks if a string contains only ASCII digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TruncateRunes returns at most n runes of s, never splitting a multi-byte
// character. n <= 0 yields "".
//
// Example:
//
//	TruncateRunes("programación", 9) returns "programac"
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
