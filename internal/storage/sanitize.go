package storage

import "strings"

// sanitizeSearchTerm escapes SQLite LIKE wildcards. Use with ESCAPE '\'.
func sanitizeSearchTerm(term string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"%", "\\%",
		"_", "\\_",
	)
	return replacer.Replace(term)
}
