package search

import (
	"strings"
	"unicode"
)

// Match scores, highest first. A score of zero means no match.
const (
	ScoreExact            = 100
	ScorePrefix           = 90
	ScoreContains         = 70
	ScoreSkeletonExact    = 60
	ScoreSkeletonPrefix   = 50
	ScoreSkeletonContains = 40
	ScoreWordPrefix       = 30
	ScoreNone             = 0
)

const (
	hangulBase     = 0xAC00
	hangulLast     = 0xD7A3
	jungJongCycles = 21 * 28
)

var choseong = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

// Score rates how well text matches query. Rules are checked in a fixed
// order and the first one that holds decides the score.
func Score(text, query string) int {
	nq := normalize(query)
	// A query made only of separators matches nothing, so Score(a, a) is
	// ScoreExact only for strings that survive normalization.
	if nq == "" {
		return ScoreNone
	}
	nt := normalize(text)
	switch {
	case nt == nq:
		return ScoreExact
	case strings.HasPrefix(nt, nq):
		return ScorePrefix
	case strings.Contains(nt, nq):
		return ScoreContains
	}

	st, sq := skeleton(text), skeleton(query)
	if sq != "" {
		switch {
		case st == sq:
			return ScoreSkeletonExact
		case strings.HasPrefix(st, sq):
			return ScoreSkeletonPrefix
		case strings.Contains(st, sq):
			return ScoreSkeletonContains
		}
	}

	for _, word := range strings.FieldsFunc(strings.ToLower(text), isWordSeparator) {
		if strings.HasPrefix(normalize(word), nq) {
			return ScoreWordPrefix
		}
	}
	return ScoreNone
}

// normalize lowercases s and drops whitespace, hyphens, underscores and
// parentheses.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '-', '_', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// skeleton maps every precomposed Hangul syllable to its leading consonant
// and leaves all other runes alone.
func skeleton(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= hangulBase && r <= hangulLast {
			b.WriteRune(choseong[(r-hangulBase)/jungJongCycles])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWordSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_'
}
