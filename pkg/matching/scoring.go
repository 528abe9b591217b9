package matching

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Aggregate selects how the two name similarity signals are combined.
type Aggregate string

const (
	// AggregateAverage averages token set and partial token sort ratios.
	AggregateAverage Aggregate = "average"
	// AggregateMax takes the higher of the two ratios.
	AggregateMax Aggregate = "max"
)

// Scorer provides string similarity scoring on the 0..100 scale.
// Inputs are compared as-is; callers normalize first.
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Ratio is the Levenshtein similarity of two strings: 100 for identical
// strings, scaled down by edit distance over the longer length.
func (s *Scorer) Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (1 - float64(dist)/float64(maxLen)) * 100
}

// TokenSetRatio compares the token sets of two strings, ignoring word
// order and duplicate words. A string whose tokens are a subset of the
// other's scores 100.
func (s *Scorer) TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var sect, diffA, diffB []string
	for _, t := range ta {
		if containsToken(tb, t) {
			sect = append(sect, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	for _, t := range tb {
		if !containsToken(ta, t) {
			diffB = append(diffB, t)
		}
	}

	joined := strings.Join(sect, " ")
	combinedA := strings.TrimSpace(joined + " " + strings.Join(diffA, " "))
	combinedB := strings.TrimSpace(joined + " " + strings.Join(diffB, " "))

	best := s.Ratio(joined, combinedA)
	if r := s.Ratio(joined, combinedB); r > best {
		best = r
	}
	if r := s.Ratio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

// PartialRatio slides the shorter string across the longer one and
// returns the best window ratio, so "oasis" inside "oasis rural" is 100.
func (s *Scorer) PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := s.Ratio(string(short), string(long[i:i+len(short)]))
		if r > best {
			best = r
		}
		if best == 100 {
			break
		}
	}
	return best
}

// TokenSortRatio compares the two strings with their tokens sorted.
func (s *Scorer) TokenSortRatio(a, b string) float64 {
	return s.Ratio(sortedTokens(a), sortedTokens(b))
}

// PartialTokenSortRatio sorts the tokens of both strings and then takes
// the best sliding-window ratio.
func (s *Scorer) PartialTokenSortRatio(a, b string) float64 {
	return s.PartialRatio(sortedTokens(a), sortedTokens(b))
}

// NameScore combines TokenSetRatio and PartialTokenSortRatio per the
// configured aggregate.
func (s *Scorer) NameScore(a, b string, agg Aggregate) float64 {
	set := s.TokenSetRatio(a, b)
	partial := s.PartialTokenSortRatio(a, b)
	if agg == AggregateMax {
		if set > partial {
			return set
		}
		return partial
	}
	return (set + partial) / 2
}

func tokenSet(s string) []string {
	tokens := strings.Fields(s)
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func containsToken(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
