package caption

import (
	"regexp"
	"strings"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
)

// DefaultTokenBudget matches the context of the CLIP text encoder minus the
// start and end tokens.
const DefaultTokenBudget = 75

// Truncate drops trailing words until caption fits budget tokens, then strips
// trailing commas. It reports whether the caption changed.
func Truncate(caption string, counter repository.TokenCounter, budget int) (string, bool) {
	out := caption
	for counter.Count(strings.TrimSpace(out)) > budget {
		words := strings.Fields(out)
		if len(words) == 0 {
			break
		}
		out = strings.Join(words[:len(words)-1], " ")
	}
	out = strings.TrimRight(out, ",")
	return out, out != caption
}

// OverBudget reports whether caption needs more than budget tokens.
func OverBudget(caption string, counter repository.TokenCounter, budget int) bool {
	return counter.Count(strings.TrimSpace(caption)) > budget
}

var wordPattern = regexp.MustCompile(`\w+|[^\w\s]`)

// WordCounter approximates tokens as words plus punctuation marks. It is
// used when no BPE encoding is configured.
type WordCounter struct{}

func (WordCounter) Name() string { return "words" }

func (WordCounter) Count(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}
