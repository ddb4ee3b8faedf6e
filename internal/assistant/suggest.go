package assistant

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sisemasexp/portal/internal/sliceutil"
	"github.com/sisemasexp/portal/internal/storage"
)

const (
	// SimilarityCutoff is the minimum Ratcliff/Obershelp ratio for a fuzzy match.
	SimilarityCutoff = 0.5
	// MaxSuggestions caps both single-keyword and combined results.
	MaxSuggestions = 3
	// minKeywordLen excludes short words (articles, "de", "la") from search.
	minKeywordLen = 3
)

// searchStopWords are dropped before searching: search verbs, program nouns,
// common prepositions and filler words.
var searchStopWords = func() map[string]struct{} {
	words := slices.Concat(searchKeywords, programNounKeywords, []string{
		"sobre", "para", "desde", "hasta", "entre", "hacia", "segun", "durante",
		"algun", "alguna", "alguno", "algunos", "algunas",
		"nombre", "quiero", "quisiera", "ustedes", "donde", "cual", "cuales",
		"tiene", "ofrece", "estudiar",
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// Candidate pairs a program with its normalized name.
type Candidate struct {
	Program    storage.Program
	normalized string
}

// NewCandidates normalizes every program name once, keeping directory order.
func NewCandidates(programs []storage.Program) []Candidate {
	out := make([]Candidate, len(programs))
	for i, p := range programs {
		out[i] = Candidate{Program: p, normalized: Normalize(p.Name)}
	}
	return out
}

// similarity returns the difflib ratio between keyword and name, compared rune by rune.
func similarity(keyword, name string) float64 {
	m := difflib.NewMatcher(splitChars(name), splitChars(keyword))
	if m.RealQuickRatio() < SimilarityCutoff || m.QuickRatio() < SimilarityCutoff {
		return 0
	}
	return m.Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Suggest ranks candidates by similarity to the normalized keyword and returns
// at most n programs scoring at least SimilarityCutoff, best first; equal
// scores keep directory order. When nothing clears the cutoff it falls back to
// candidates whose normalized name contains keyword, in directory order.
func Suggest(keyword string, candidates []Candidate, n int) []storage.Program {
	if n <= 0 {
		n = MaxSuggestions
	}
	if keyword == "" || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i, c := range candidates {
		if s := similarity(keyword, c.normalized); s >= SimilarityCutoff {
			hits = append(hits, scored{idx: i, score: s})
		}
	}

	var out []storage.Program
	if len(hits) > 0 {
		slices.SortStableFunc(hits, func(a, b scored) int { return cmp.Compare(b.score, a.score) })
		for _, h := range hits[:min(n, len(hits))] {
			out = append(out, candidates[h.idx].Program)
		}
		return out
	}

	for _, c := range candidates {
		if strings.Contains(c.normalized, keyword) {
			out = append(out, c.Program)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// ExtractKeywords returns the searchable words of a normalized query:
// words longer than three characters that are not stop words, in order.
func ExtractKeywords(normalized string) []string {
	var out []string
	for _, t := range tokens(normalized) {
		if len(t) <= minKeywordLen {
			continue
		}
		if _, stop := searchStopWords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return sliceutil.Deduplicate(out, func(s string) string { return s })
}

// SuggestMany runs Suggest for each keyword, concatenates the results,
// removes repeated programs keeping the first occurrence and caps the
// total at MaxSuggestions.
func SuggestMany(keywords []string, candidates []Candidate) []storage.Program {
	var all []storage.Program
	for _, kw := range keywords {
		all = append(all, Suggest(kw, candidates, MaxSuggestions)...)
	}
	all = sliceutil.Deduplicate(all, func(p storage.Program) int { return p.Code })
	if len(all) > MaxSuggestions {
		all = all[:MaxSuggestions]
	}
	return all
}
