package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxWordCandidates    = 5
	maxBigramCandidates  = 5
	maxTrigramCandidates = 3
	minWordLen           = 4
)

// normalizeTitle strips punctuation, collapses whitespace and lower-cases.
func normalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// candidates generates the lookup keys for a title: individual words longer
// than three characters (deduplicated, capped, in lower-case and capitalized
// form), then two- and three-word phrases drawn from the normalized token
// sequence in order.
func candidates(title string) []string {
	tokens := strings.Fields(normalizeTitle(title))

	var out []string
	seen := make(map[string]bool)

	words := 0
	for _, tok := range tokens {
		// Rune count, not byte count: accented short words must not qualify.
		if utf8.RuneCountInString(tok) < minWordLen || seen[tok] {
			continue
		}
		if words == maxWordCandidates {
			break
		}
		seen[tok] = true
		out = append(out, tok, capitalize(tok))
		words++
	}

	bigrams := 0
	for i := 0; i+1 < len(tokens) && bigrams < maxBigramCandidates; i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
		bigrams++
	}

	trigrams := 0
	for i := 0; i+2 < len(tokens) && trigrams < maxTrigramCandidates; i++ {
		out = append(out, tokens[i]+" "+tokens[i+1]+" "+tokens[i+2])
		trigrams++
	}

	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
