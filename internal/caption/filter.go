package caption

import (
	"regexp"
	"strings"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

var orSplitter = regexp.MustCompile(",| OR ")

// Matches evaluates a filter expression against caption. Terms are
// case-insensitive substrings; "," and " OR " separate alternatives,
// " AND " joins terms and each leading "NOT " inverts a term.
func Matches(caption, expr string) bool {
	text := strings.ToLower(caption)
	for _, alt := range orSplitter.Split(expr, -1) {
		all := true
		for _, term := range strings.Split(alt, " AND ") {
			invert := false
			for strings.HasPrefix(strings.TrimSpace(term), "NOT ") {
				term = strings.TrimPrefix(strings.TrimSpace(term), "NOT ")
				invert = !invert
			}
			hit := strings.Contains(text, strings.ToLower(strings.TrimSpace(term)))
			if invert {
				hit = !hit
			}
			all = all && hit
		}
		if all {
			return true
		}
	}
	return false
}

// PresetPhrase is the caption text a checklist path stands for: the feature
// name, the noun, or "adjective noun".
func PresetPhrase(path string) string {
	parts := entity.SplitPath(path)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[1]
	}
	return parts[2] + " " + parts[1]
}

// Expression combines the user filter with preset paths as extra alternatives.
// The empty string means no filtering.
func Expression(info entity.SubsetInfo, presetPaths []string) string {
	var alts []string
	if info.EnableFiltering {
		alts = append(alts, info.Filter)
	}
	for _, p := range presetPaths {
		if phrase := PresetPhrase(p); phrase != "" {
			alts = append(alts, phrase)
		}
	}
	return strings.Join(alts, ",")
}
