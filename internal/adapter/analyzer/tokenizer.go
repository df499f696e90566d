package analyzer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits text into lowercase terms with optional Snowball stemming.
type Tokenizer struct {
	useStem bool
}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer(useStemming bool) *Tokenizer {
	return &Tokenizer{
		useStem: useStemming,
	}
}

// Tokenize cleans text and splits it into terms. Every rune that is not a
// letter or whitespace is dropped before splitting, so "hello-world" yields
// the single term "helloworld".
func (t *Tokenizer) Tokenize(text string) []string {
	words := strings.Fields(clean(text))
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		if t.useStem {
			word = english.Stem(word, true)
		}
		if word == "" {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// clean decomposes accented characters, strips everything except letters and
// whitespace, and lowercases the result.
func clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range norm.NFD.String(text) {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return b.String()
}
