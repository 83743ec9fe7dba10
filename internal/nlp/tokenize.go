package nlp

import (
	"strings"
	"unicode"
)

// Fields splits text into lowercase word tokens, stripping punctuation.
// Stopwords are kept; use Tokenize for stopword-filtered tokens.
func Fields(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Tokenize returns lowercase word tokens with the language's stopwords
// removed, in input order (duplicates preserved).
func Tokenize(text, lang string) []string {
	stop := Stopwords(lang)
	fields := Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stop[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// TokenSet returns the set of distinct stopword-filtered tokens.
func TokenSet(text, lang string) map[string]struct{} {
	tokens := Tokenize(text, lang)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// OverlapScore is the recall-weighted token overlap between an answer and a
// candidate question text: |answer ∩ question| / |question|. Favors questions
// whose full vocabulary appears in the answer; not symmetric.
func OverlapScore(answerSet map[string]struct{}, questionSet map[string]struct{}) float64 {
	if len(questionSet) == 0 {
		return 0
	}
	common := 0
	for t := range questionSet {
		if _, ok := answerSet[t]; ok {
			common++
		}
	}
	return float64(common) / float64(len(questionSet))
}
