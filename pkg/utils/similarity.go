package utils

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMatchThreshold is the minimum Jaro-Winkler similarity accepted
	// for a fuzzy airline match.
	DefaultMatchThreshold = 0.88
	// MinFuzzyLength is the shortest normalized mention that is fuzzy matched.
	// Shorter mentions ("ai", "air") only match exactly.
	MinFuzzyLength = 4
	// MaxLengthGap bounds the rune length difference of a fuzzy match, so a
	// word that merely starts like a name ("thailand", "thai") is not one.
	MaxLengthGap = 2

	jaroBoostThreshold = 0.7
	jaroPrefixSize     = 4
)

// NormalizeMention folds case, strips diacritics and removes separators so
// "Air-India", "air_india" and "AIR INDIA" all become "airindia".
func NormalizeMention(s string) string {
	// transformers and casers are stateful, build them per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	t, _, err := transform.String(stripMarks, s)
	if err != nil {
		t = s
	}
	t = cases.Fold().String(t)

	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '-', '_', '\'', '.', ',', '&', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Similarity returns the Jaro-Winkler similarity of two normalized strings
// in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, jaroBoostThreshold, jaroPrefixSize)
}

// Matches reports whether a normalized mention is close enough to a
// normalized candidate under threshold. The plain Jaro score must reach the
// threshold too: the Winkler prefix boost ranks matches but never carries
// one on its own ("india" is not "indigo").
func Matches(mention, candidate string, threshold float64) (float64, bool) {
	if mention == candidate {
		return 1, true
	}
	m, c := len([]rune(mention)), len([]rune(candidate))
	if m < MinFuzzyLength || m-c > MaxLengthGap || c-m > MaxLengthGap {
		return 0, false
	}
	if smetrics.Jaro(mention, candidate) < threshold {
		return 0, false
	}
	score := Similarity(mention, candidate)
	return score, score >= threshold
}
