package nlu

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalizer collapses whitespace and maps characters outside the model
// vocabulary to a fallback symbol. Normalize is total and idempotent.
type Normalizer struct {
	vocab    map[rune]struct{}
	fallback rune
}

func NewNormalizer(mappings *Mappings, fallback rune) *Normalizer {
	vocab := make(map[rune]struct{}, len(mappings.Vocab))
	for k := range mappings.Vocab {
		runes := []rune(k)
		if len(runes) == 1 {
			vocab[runes[0]] = struct{}{}
		}
	}
	return &Normalizer{vocab: vocab, fallback: fallback}
}

func (n *Normalizer) Normalize(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if _, ok := n.vocab[r]; ok {
			b.WriteRune(r)
		} else {
			b.WriteRune(n.fallback)
		}
	}
	return b.String()
}
