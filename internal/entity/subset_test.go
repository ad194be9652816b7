package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubsetInfo(t *testing.T) {
	valid := `{
		"lora_tag_helper_version": 1,
		"name": "cat",
		"include_lora_name": true,
		"include_artist": false,
		"include_style": false,
		"include_summary": true,
		"include_feature": true,
		"include_other_features": true,
		"include_automatic_tags": true,
		"interrogate_automatic_tags": false,
		"review_option": 2,
		"steps_per_image": "40"
	}`
	info, err := ParseSubsetInfo([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, "cat", info.Name)
	assert.Equal(t, Steps(40), info.StepsPerImage)
	assert.Equal(t, ReviewOverBudget, info.ReviewOption)
	assert.False(t, info.EnableFiltering)

	_, err = ParseSubsetInfo([]byte(`{"name": "cat", "steps_per_image": 10}`))
	assert.Error(t, err)

	_, err = ParseSubsetInfo([]byte(`not json`))
	assert.Error(t, err)
}
