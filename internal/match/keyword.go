package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeywordScore returns the fraction of distinct keywords that occur in text
// as whole words, compared case-insensitively. It is 0 when keywords is empty.
func KeywordScore(keywords []string, text string) float64 {
	return newWordIndex(text).score(keywords)
}

// wordIndex holds a lowercased task description prepared for repeated
// whole-word lookups.
type wordIndex struct {
	text  string
	words map[string]struct{}
}

// newWordIndex lowercases text and collapses whitespace runs to single
// spaces, so "scroll\nanimation" and "scroll animation" match alike.
func newWordIndex(text string) wordIndex {
	lower := collapseSpace(strings.ToLower(text))
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(lower, notWordRune) {
		words[w] = struct{}{}
	}
	return wordIndex{text: lower, words: words}
}

func (w wordIndex) score(keywords []string) float64 {
	seen := make(map[string]struct{}, len(keywords))
	found := 0
	for _, kw := range keywords {
		kw = collapseSpace(strings.ToLower(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		if w.contains(kw) {
			found++
		}
	}
	if len(seen) == 0 {
		return 0
	}
	return float64(found) / float64(len(seen))
}

// contains reports whether kw occurs in the text bounded by non-word runes
// on both sides. Single words use the precomputed word set; phrases and
// hyphenated keywords fall back to a bounded substring scan.
func (w wordIndex) contains(kw string) bool {
	if !strings.ContainsFunc(kw, notWordRune) {
		_, ok := w.words[kw]
		return ok
	}
	for from := 0; from < len(w.text); {
		i := strings.Index(w.text[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		if boundaryBefore(w.text, start) && boundaryAfter(w.text, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return notWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return notWordRune(r)
}
