package repository

// Token is one tagged word. POS uses universal tags (NOUN, PROPN, ADJ, NUM, ...).
type Token struct {
	Text string
	POS  string
}

// Universal part-of-speech tags the segmenter cares about.
const (
	POSNoun  = "NOUN"
	POSPropN = "PROPN"
	POSAdj   = "ADJ"
	POSNum   = "NUM"
	POSPunct = "PUNCT"
	POSOther = "X"
)

// Tagger splits text into tokens and tags each with a part of speech.
type Tagger interface {
	Name() string
	Tag(text string) []Token
}

// TokenCounter counts tokens the way the training text encoder would.
type TokenCounter interface {
	Name() string
	Count(text string) int
}
