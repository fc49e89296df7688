package event

import (
	"strings"
)

// stopWords are dropped during normalization so that semantic overlap
// compares content-bearing words only.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "i": true, "in": true, "inside": true,
	"is": true, "it": true, "my": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "this": true, "to": true, "was": true,
	"when": true, "while": true, "with": true, "you": true, "your": true,
}

// Normalize lowercases text, strips punctuation, and removes stop words
// and very short tokens. The result is sorted and deduplicated so equal
// texts always produce equal fingerprints.
func Normalize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	seen := make(map[string]bool)
	for _, w := range strings.Fields(b.String()) {
		if len(w) < 3 || stopWords[w] {
			continue
		}
		seen[w] = true
	}
	return sortedKeys(seen)
}
