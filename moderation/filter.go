// Package moderation masks banned words in outgoing messages before they
// are submitted. The school product cannot rely on the server alone for
// this: a masked message must already look masked in the sender's own
// optimistic view.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Filter struct {
	matcher *goahocorasick.Machine
	mask    rune
}

// runeMap links the normalized search text back to rune positions in the
// original content so masking preserves spacing and punctuation.
type runeMap struct {
	normalized []rune
	origIdx    []int
}

// NewFilter builds the Aho-Corasick automaton over the normalized banned
// word list. Normalization folds case, strips noise, and undoes common
// leet-speak substitutions, so "h3llo" matches a banned "hello".
func NewFilter(bannedWords []string, mask rune) (*Filter, error) {
	patterns := make([][]rune, len(bannedWords))
	for i, word := range bannedWords {
		patterns[i] = normalizeWord([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{matcher: m, mask: mask}, nil
}

// Apply replaces every rune of each matched banned word with the mask
// character and returns the filtered content. Content without a match is
// returned unchanged.
func (f *Filter) Apply(content string) string {
	mapping := f.normalize(content)
	if len(mapping.normalized) == 0 {
		return content
	}

	spans := f.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return content
	}

	origRunes := []rune(content)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			origRunes[i] = f.mask
		}
	}
	return string(origRunes)
}

func (f *Filter) normalize(content string) runeMap {
	origRunes := []rune(content)
	mapping := runeMap{
		normalized: make([]rune, 0, len(origRunes)),
		origIdx:    make([]int, 0, len(origRunes)),
	}
	for i, r := range origRunes {
		clean := unleet(r)
		if isNoise(clean) {
			continue
		}
		mapping.normalized = append(mapping.normalized, unicode.ToLower(clean))
		mapping.origIdx = append(mapping.origIdx, i)
	}
	return mapping
}

func normalizeWord(word []rune) []rune {
	out := make([]rune, 0, len(word))
	for _, r := range word {
		clean := unleet(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// unleet maps common leet-speak characters back to their standard
// alphabet counterparts.
func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
