package prose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
)

func TestUniversal(t *testing.T) {
	cases := map[string]string{
		"NN":  repository.POSNoun,
		"NNS": repository.POSNoun,
		"NNP": repository.POSPropN,
		"JJ":  repository.POSAdj,
		"CD":  repository.POSNum,
		",":   repository.POSPunct,
		"VBZ": "VERB",
		"FW":  repository.POSOther,
	}
	for penn, want := range cases {
		assert.Equal(t, want, Universal(penn), penn)
	}
}

func TestTagKeepsWordsAndCaches(t *testing.T) {
	tagger := NewTagger(zaptest.NewLogger(t))
	first := tagger.Tag("long red dress")
	require.Len(t, first, 3)
	assert.Equal(t, "dress", first[2].Text)
	assert.Equal(t, repository.POSNoun, first[2].POS)

	second := tagger.Tag("long red dress")
	assert.Equal(t, first, second)
}
