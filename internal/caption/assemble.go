// Package caption builds the training caption of an exported image.
package caption

import (
	"strings"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// Assemble concatenates the enabled parts of item in fixed order: LoRA name,
// style, artist, summary, this LoRA's feature, other features, automatic tags.
// The result is not deduplicated.
func Assemble(item entity.Item, info entity.SubsetInfo) string {
	var b strings.Builder
	name := info.Name

	if info.IncludeLoRAName {
		b.WriteString(name + ", ")
	}
	if info.IncludeStyle && item.Style != "" {
		b.WriteString(item.Style)
		if info.IncludeArtist {
			b.WriteString(" by ")
		} else {
			b.WriteString(", ")
		}
	}
	if info.IncludeArtist && item.Artist != "" {
		b.WriteString(item.Artist + ", ")
	}
	if info.IncludeSummary && item.Summary != "" {
		b.WriteString(item.Summary + ", ")
	}
	if info.IncludeFeature {
		if desc, ok := item.Features.Get(name); ok {
			if desc == "" {
				desc = name
			}
			b.WriteString(desc + ", ")
		}
	}
	if info.IncludeOtherFeatures {
		for _, f := range item.Features {
			if f.Name != name && f.Description != "" {
				b.WriteString(f.Description + ", ")
			}
		}
	}
	if info.IncludeAutomaticTags && item.AutomaticTags != "" {
		b.WriteString(item.AutomaticTags)
	}
	return strings.TrimSuffix(b.String(), ", ")
}

// Build assembles and deduplicates the caption of item.
func Build(item entity.Item, info entity.SubsetInfo) string {
	return Dedupe(Assemble(item, info))
}
