package corpus

import "unicode/utf8"

// DefaultCharsPerToken is the character-to-token ratio used when a file does
// not declare its cost.
const DefaultCharsPerToken = 4

// Estimator approximates token counts from text length.
type Estimator struct {
	CharsPerToken int
}

// Estimate returns ceil(runes / CharsPerToken). Empty text costs 0.
func (e Estimator) Estimate(text string) int {
	cpt := e.CharsPerToken
	if cpt <= 0 {
		cpt = DefaultCharsPerToken
	}
	n := utf8.RuneCountInString(text)
	return (n + cpt - 1) / cpt
}
