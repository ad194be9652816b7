// Package featuretest provides a deterministic part-of-speech tagger for tests.
package featuretest

import (
	"strings"
	"unicode"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
)

// Lexicon maps lowercase words to universal POS tags.
type Lexicon map[string]string

// DefaultLexicon covers the vocabulary used across the package tests.
var DefaultLexicon = Lexicon{
	"red": "ADJ", "round": "ADJ", "long": "ADJ", "black": "ADJ", "blue": "ADJ",
	"white": "ADJ", "green": "ADJ", "short": "ADJ", "small": "ADJ", "large": "ADJ",
	"big": "ADJ", "striped": "ADJ", "shiny": "ADJ", "curly": "ADJ", "dark": "ADJ",
	"light": "ADJ", "wooden": "ADJ", "old": "ADJ", "young": "ADJ", "pink": "ADJ",
	"very": "ADV", "brightly": "ADV",
	"holding": "VERB", "running": "VERB", "smiling": "VERB", "sitting": "VERB",
	"and": "CCONJ", "or": "CCONJ",
	"with": "ADP", "of": "ADP", "on": "ADP", "in": "ADP",
	"the": "DET", "a": "DET", "an": "DET",
	"paris": "PROPN", "tokyo": "PROPN",
}

// Tagger tags by dictionary lookup. Unknown words are nouns, digit runs are numbers.
type Tagger struct {
	Lexicon Lexicon
}

// NewTagger returns a Tagger over DefaultLexicon.
func NewTagger() *Tagger {
	return &Tagger{Lexicon: DefaultLexicon}
}

func (t *Tagger) Name() string { return "lexicon" }

// Tag splits words on spaces and emits every punctuation rune as its own token.
func (t *Tagger) Tag(text string) []repository.Token {
	var tokens []repository.Token
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		tokens = append(tokens, repository.Token{Text: w, POS: t.lookup(w)})
		word.Reset()
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			word.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, repository.Token{Text: string(r), POS: repository.POSPunct})
		}
	}
	flush()
	return tokens
}

func (t *Tagger) lookup(w string) string {
	if pos, ok := t.Lexicon[strings.ToLower(w)]; ok {
		return pos
	}
	isNum := true
	for _, r := range w {
		if !unicode.IsDigit(r) {
			isNum = false
			break
		}
	}
	if isNum {
		return repository.POSNum
	}
	return repository.POSNoun
}
