package usecase

import (
	"github.com/viralesveras/lora-tag-helper/internal/caption"
	"github.com/viralesveras/lora-tag-helper/internal/repository"
)

// Capabilities are the optional collaborators selected at startup.
type Capabilities struct {
	Tagger       repository.Tagger
	Tokens       repository.TokenCounter
	Interrogator repository.Interrogator
	TokenBudget  int
}

func (c Capabilities) counter() repository.TokenCounter {
	if c.Tokens == nil {
		return caption.WordCounter{}
	}
	return c.Tokens
}

func (c Capabilities) budget() int {
	if c.TokenBudget <= 0 {
		return caption.DefaultTokenBudget
	}
	return c.TokenBudget
}

func (c Capabilities) interrogatorName() string {
	if c.Interrogator == nil {
		return ""
	}
	return c.Interrogator.Name()
}
