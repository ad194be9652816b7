// Package prose tags feature text with the prose averaged perceptron model.
package prose

import (
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
)

// Tagger wraps prose and maps Penn Treebank tags to universal tags.
type Tagger struct {
	cache  sync.Map // string -> []repository.Token
	logger *zap.Logger
}

func NewTagger(logger *zap.Logger) *Tagger {
	return &Tagger{logger: logger}
}

func (t *Tagger) Name() string {
	return "prose"
}

// Tag tokenizes and tags text. Results are cached per input since the
// same descriptions recur across a dataset.
func (t *Tagger) Tag(text string) []repository.Token {
	if v, ok := t.cache.Load(text); ok {
		return v.([]repository.Token)
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		t.logger.Warn("POS tagging failed", zap.String("text", text), zap.Error(err))
		return fallbackTokens(text)
	}
	tokens := make([]repository.Token, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		tokens = append(tokens, repository.Token{Text: tok.Text, POS: Universal(tok.Tag)})
	}
	t.cache.Store(text, tokens)
	return tokens
}

func fallbackTokens(text string) []repository.Token {
	fields := strings.Fields(text)
	tokens := make([]repository.Token, len(fields))
	for i, f := range fields {
		tokens[i] = repository.Token{Text: f, POS: repository.POSNoun}
	}
	return tokens
}

// Universal maps a Penn Treebank tag to the universal tag set.
func Universal(penn string) string {
	switch penn {
	case "NN", "NNS":
		return repository.POSNoun
	case "NNP", "NNPS":
		return repository.POSPropN
	case "JJ", "JJR", "JJS":
		return repository.POSAdj
	case "CD":
		return repository.POSNum
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ", "MD":
		return "VERB"
	case "RB", "RBR", "RBS", "WRB":
		return "ADV"
	case "DT", "PDT", "WDT":
		return "DET"
	case "IN", "RP":
		return "ADP"
	case "CC":
		return "CCONJ"
	case "PRP", "PRP$", "WP", "WP$", "EX":
		return "PRON"
	case "TO":
		return "PART"
	case "UH":
		return "INTJ"
	case "SYM", "$", "#":
		return "SYM"
	case ".", ",", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "HYPH", "NFP":
		return repository.POSPunct
	}
	return repository.POSOther
}
