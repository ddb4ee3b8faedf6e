package assistant

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s into the comparison form used by every matcher:
// lowercase, diacritics removed, ASCII only, surrounding whitespace trimmed.
// Runes without an ASCII base (and invalid UTF-8) are dropped.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r < ' ' || r == 0x7f:
			// Tabs, newlines and other controls separate words.
			b.WriteByte(' ')
		case r <= unicode.MaxASCII:
			b.WriteByte(byte(r))
		}
	}
	return strings.TrimSpace(b.String())
}

func isWordRune(r rune) bool {
	return ('a' <= r && r <= 'z') || ('0' <= r && r <= '9')
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// tokens splits normalized text into lowercase alphanumeric words. Letters
// and digits written together are separate words: "codigo2" is "codigo", "2".
func tokens(normalized string) []string {
	fields := strings.FieldsFunc(normalized, func(r rune) bool { return !isWordRune(r) })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		start := 0
		for i := 1; i < len(f); i++ {
			if isDigit(f[i]) != isDigit(f[i-1]) {
				out = append(out, f[start:i])
				start = i
			}
		}
		out = append(out, f[start:])
	}
	return out
}

// tokenSet supports whole-word and whole-phrase membership tests.
type tokenSet struct {
	words  map[string]struct{}
	joined string // " w1 w2 ... wn "
}

func newTokenSet(normalized string) tokenSet {
	toks := tokens(normalized)
	ts := tokenSet{words: make(map[string]struct{}, len(toks))}
	for _, t := range toks {
		ts.words[t] = struct{}{}
	}
	ts.joined = " " + strings.Join(toks, " ") + " "
	return ts
}

// has reports whether any keyword is present. Keywords containing a space
// are matched as consecutive words.
func (ts tokenSet) has(keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(ts.joined, " "+kw+" ") {
				return true
			}
			continue
		}
		if _, ok := ts.words[kw]; ok {
			return true
		}
	}
	return false
}

func (ts tokenSet) empty() bool {
	return len(ts.words) == 0
}
