package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viralesveras/lora-tag-helper/internal/feature/featuretest"
)

func TestSegmenterSplit(t *testing.T) {
	seg := NewSegmenter(featuretest.NewTagger())

	tests := []struct {
		in   string
		want []string
	}{
		{"ball", []string{"ball"}},
		{"sitting", []string{"sitting"}},
		{"red round ball", []string{"ball", "ball→red", "ball→round"}},
		{"long black hair", []string{"hair", "hair→long", "hair→black"}},
		{"very long hair", []string{"hair", "hair→very long"}},
		{"red and blue ball", []string{"ball", "ball→red", "ball→and blue"}},
		{"2 cats", []string{"cats", "cats→2"}},
		{"blue t-shirt", []string{"t-shirt", "t-shirt→blue"}},
		{"ball.", []string{"ball"}},
		{"in Paris", []string{"Paris", "Paris→in"}},
		{"hair running", []string{"hair running"}},
		{"cat holding ball", []string{"ball", "ball→cat", "ball→holding"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, seg.Split(tt.in))
		})
	}
}

func TestSegmenterEntries(t *testing.T) {
	seg := NewSegmenter(featuretest.NewTagger())

	got := seg.Entries("hair", "long black hair, hair, , ponytail")
	assert.Equal(t, []string{
		"hair",
		"hair→hair",
		"hair→hair→long",
		"hair→hair→black",
		"hair→ponytail",
	}, got)

	assert.Nil(t, seg.Entries("  ", "red ball"))
}
