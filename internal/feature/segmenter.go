package feature

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/repository"
)

// Segmenter splits a description component into a noun head and its modifier runs.
type Segmenter struct {
	tagger repository.Tagger
}

// NewSegmenter creates a Segmenter backed by tagger.
func NewSegmenter(tagger repository.Tagger) *Segmenter {
	return &Segmenter{tagger: tagger}
}

// Split returns [noun, noun→run1, noun→run2, ...] when the component ends in a
// noun, or the component itself otherwise.
//
// "long black hair" tags as ADJ ADJ NOUN and yields
// [hair, hair→long, hair→black].
func (s *Segmenter) Split(component string) []string {
	tokens := rejoinHyphens(s.tagger.Tag(component))

	last := len(tokens) - 1
	for last > 0 && !startsAlnum(tokens[last].Text) {
		last--
	}
	if len(tokens) <= 1 || last < 0 || !isNounTag(tokens[last].POS) {
		return []string{component}
	}

	parent := tokens[last].Text
	var runs [][]repository.Token
	var run []repository.Token
	for _, t := range tokens[:last] {
		run = append(run, t)
		if closesRun(t.POS) {
			runs = append(runs, run)
			run = nil
		}
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}

	out := make([]string, 0, len(runs)+1)
	out = append(out, parent)
	for _, r := range runs {
		out = append(out, entity.JoinPath(parent, joinTokens(r)))
	}
	return out
}

// Entries derives every checklist path of one feature: the name itself and
// name→split for each component.
func (s *Segmenter) Entries(name, description string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	out := []string{name}
	for _, c := range entity.SplitComponents(description) {
		if c == "" || c == name {
			continue
		}
		for _, split := range s.Split(c) {
			out = append(out, entity.JoinPath(name, split))
		}
	}
	return out
}

// rejoinHyphens merges "t-shirt" style words the tagger split into three tokens.
// The merged token keeps the tag of the word after the hyphen.
func rejoinHyphens(tokens []repository.Token) []repository.Token {
	out := make([]repository.Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i < len(tokens)-2 && strings.HasPrefix(tokens[i+1].Text, "-") {
			out = append(out, repository.Token{
				Text: tokens[i].Text + "-" + tokens[i+2].Text,
				POS:  tokens[i+2].POS,
			})
			i += 2
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

// joinTokens puts a space only between two alphanumeric boundaries.
func joinTokens(tokens []repository.Token) string {
	var b strings.Builder
	prevAlnum := false
	first := true
	for _, t := range tokens {
		if t.Text == "" {
			continue
		}
		if !first && prevAlnum && startsAlnum(t.Text) {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(t.Text)
		r, _ := utf8.DecodeLastRuneInString(t.Text)
		prevAlnum = isAlnum(r)
	}
	return b.String()
}

func startsAlnum(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && isAlnum(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNounTag(pos string) bool {
	return pos == repository.POSNoun || pos == repository.POSPropN
}

func closesRun(pos string) bool {
	switch pos {
	case repository.POSAdj, repository.POSNum, repository.POSNoun, repository.POSPropN:
		return true
	}
	return false
}
