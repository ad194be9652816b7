package feature

import (
	"sort"
	"strings"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// FeaturesFromSummary lists checklist feature names that appear as words in
// summary and are not checked yet.
func FeaturesFromSummary(summary string, checklist []entity.ChecklistEntry) []string {
	words := map[string]bool{}
	for _, c := range strings.Split(summary, ",") {
		for _, w := range strings.Fields(c) {
			words[w] = true
		}
	}

	active := map[string]bool{}
	for _, e := range checklist {
		if e.Checked {
			active[e.Path] = true
		}
	}

	seen := map[string]bool{}
	var out []string
	for _, e := range checklist {
		if words[e.Path] && !active[e.Path] && !seen[e.Path] {
			seen[e.Path] = true
			out = append(out, e.Path)
		}
	}
	sort.Strings(out)
	return out
}
