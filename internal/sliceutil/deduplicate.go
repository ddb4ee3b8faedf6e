// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes items whose key was already seen, preserving order.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	programs := []storage.Program{{Code: 1}, {Code: 2}, {Code: 1}}
//	unique := sliceutil.Deduplicate(programs, func(p storage.Program) int { return p.Code })
//	// Result: [{Code: 1}, {Code: 2}]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		key := keyFunc(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}
	return result
}
