// Package tiktoken counts caption tokens with a GPT-2 byte pair encoding.
package tiktoken

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding matches the GPT-2 tokenizer used to budget captions.
const Encoding = "r50k_base"

var loaderOnce sync.Once

// Counter counts tokens with an embedded BPE table, so no network access is needed.
type Counter struct {
	enc *tiktoken.Tiktoken
}

func NewCounter() (*Counter, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", Encoding, err)
	}
	return &Counter{enc: enc}, nil
}

func (c *Counter) Name() string {
	return "tiktoken:" + Encoding
}

func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
