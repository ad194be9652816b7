package caption

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

func testItem() entity.Item {
	item := entity.BaseItem("img", "")
	item.Artist = "jane doe"
	item.Style = "watercolor"
	item.Summary = "a cat on a sofa"
	item.Features = entity.Features{
		{Name: "mycat", Description: "tabby cat, green eyes"},
		{Name: "sofa", Description: "red sofa"},
		{Name: "empty", Description: ""},
	}
	item.AutomaticTags = "cat, sofa, indoors"
	return item
}

func allParts(name string) entity.SubsetInfo {
	info := entity.DefaultSubsetInfo()
	info.Name = name
	info.IncludeArtist = true
	info.IncludeStyle = true
	return info
}

func TestAssembleOrder(t *testing.T) {
	got := Assemble(testItem(), allParts("mycat"))
	assert.Equal(t,
		"mycat, watercolor by jane doe, a cat on a sofa, tabby cat, green eyes, red sofa, cat, sofa, indoors",
		got)
}

func TestAssembleStyleWithoutArtist(t *testing.T) {
	info := allParts("mycat")
	info.IncludeArtist = false
	info.IncludeSummary = false
	info.IncludeOtherFeatures = false
	info.IncludeAutomaticTags = false
	assert.Equal(t, "mycat, watercolor, tabby cat, green eyes", Assemble(testItem(), info))
}

func TestAssembleEmptyFeatureFallsBackToName(t *testing.T) {
	info := entity.SubsetInfo{Name: "empty", IncludeFeature: true}
	assert.Equal(t, "empty", Assemble(testItem(), info))

	info.Name = "missing"
	assert.Equal(t, "", Assemble(testItem(), info))
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"cat, tabby cat, Cat", "tabby cat"},
		{"red sofa, sofa, indoors", "red sofa, indoors"},
		{"a, b, c", "a, b, c"},
		{"", ""},
		{"mycat, watercolor by jane doe, jane doe, watercolor", "mycat, watercolor by jane doe"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Dedupe(tt.in), tt.in)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	inputs := []string{
		Assemble(testItem(), allParts("mycat")),
		"x, xy, y, yz, z, Z, zz",
		"one,two ,  three, one two, TWO",
		", , a",
	}
	for _, in := range inputs {
		once := Dedupe(in)
		assert.Equal(t, once, Dedupe(once), in)
	}
}

func TestMatches(t *testing.T) {
	caption := "mycat, tabby cat, red sofa, indoors"
	tests := []struct {
		expr string
		want bool
	}{
		{"sofa", true},
		{"SOFA", true},
		{"dog", false},
		{"dog, sofa", true},
		{"dog OR sofa", true},
		{"sofa AND dog", false},
		{"sofa AND tabby", true},
		{"NOT dog", true},
		{"NOT NOT dog", false},
		{"dog, NOT outdoors AND red", true},
		{"", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(caption, tt.expr), tt.expr)
	}
}

func TestExpression(t *testing.T) {
	info := entity.SubsetInfo{EnableFiltering: true, Filter: "sofa AND NOT dog"}
	assert.Equal(t, "sofa AND NOT dog,hair,long hair", Expression(info, []string{"hair→hair", "hair→hair→long"}))

	info.EnableFiltering = false
	assert.Equal(t, "", Expression(info, nil))
	assert.Equal(t, "outfit", Expression(info, []string{"outfit"}))
}

func TestTruncate(t *testing.T) {
	words := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		words = append(words, "cat,")
	}
	long := strings.Join(words, " ")

	out, changed := Truncate(long, WordCounter{}, 75)
	assert.True(t, changed)
	assert.LessOrEqual(t, WordCounter{}.Count(out), 75)
	assert.False(t, strings.HasSuffix(out, ","))

	short, changed := Truncate("a cat,", WordCounter{}, 75)
	assert.Equal(t, "a cat", short)
	assert.True(t, changed)

	same, changed := Truncate("a cat", WordCounter{}, 75)
	assert.Equal(t, "a cat", same)
	assert.False(t, changed)

	assert.True(t, OverBudget(long, WordCounter{}, 75))
}

func TestWordCounter(t *testing.T) {
	assert.Equal(t, 5, WordCounter{}.Count("red ball, blue sky"))
	assert.Equal(t, 0, WordCounter{}.Count("  "))
}
