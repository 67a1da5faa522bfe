package textproc

import (
	"strings"
	"unicode"
)

// frenchStopwords covers the high-frequency function words whose share of a
// document is a cheap signal of running prose versus tables or boilerplate.
var frenchStopwords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {},
	"de": {}, "du": {}, "en": {}, "et": {}, "ou": {}, "mais": {},
	"que": {}, "qui": {}, "quoi": {}, "dans": {}, "sur": {}, "sous": {},
	"avec": {}, "sans": {}, "pour": {}, "par": {}, "pas": {}, "ne": {},
	"se": {}, "ce": {}, "cette": {}, "ces": {}, "son": {}, "sa": {},
	"ses": {}, "leur": {}, "leurs": {}, "il": {}, "elle": {}, "ils": {},
	"elles": {}, "je": {}, "tu": {}, "nous": {}, "vous": {}, "on": {},
	"au": {}, "aux": {}, "est": {}, "sont": {}, "était": {}, "être": {},
	"avoir": {}, "plus": {}, "comme": {}, "tout": {}, "si": {}, "y": {},
	"a": {}, "à": {}, "d": {}, "l": {}, "s": {}, "n": {}, "c": {}, "qu": {},
	"j": {}, "m": {}, "t": {},
}

// TextStats holds the statistics computed for one text.
type TextStats struct {
	Sentences      int
	Tokens         int
	TypeTokenRatio float64
	StopwordRatio  float64
}

// Annotate computes sentence and token statistics for a text.
func Annotate(text string) *TextStats {
	tokens := Tokenize(text)

	types := make(map[string]struct{}, len(tokens))
	stopwords := 0
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		types[lower] = struct{}{}
		if _, ok := frenchStopwords[lower]; ok {
			stopwords++
		}
	}

	stats := &TextStats{
		Sentences: countSentences(text),
		Tokens:    len(tokens),
	}
	if len(tokens) > 0 {
		stats.TypeTokenRatio = float64(len(types)) / float64(len(tokens))
		stats.StopwordRatio = float64(stopwords) / float64(len(tokens))
	}
	return stats
}

// Tokenize splits text into word tokens. Apostrophes split the clitic from
// its host (l'homme -> l, homme) which matches how the stopword list is keyed.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		case r == '-' && current.Len() > 0:
			// Keep intra-word hyphens (peut-être)
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	// Drop trailing hyphens left by line-broken words
	for i, tok := range tokens {
		tokens[i] = strings.TrimRight(tok, "-")
	}
	out := tokens[:0]
	for _, tok := range tokens {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// countSentences counts sentence-final punctuation runs. An ellipsis or a
// "?!" combination counts once.
func countSentences(text string) int {
	count := 0
	inTerminator := false
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '…' {
			if !inTerminator {
				count++
				inTerminator = true
			}
		} else if !unicode.IsSpace(r) && r != '"' && r != '\'' && r != '»' && r != ')' {
			inTerminator = false
		}
	}
	return count
}
