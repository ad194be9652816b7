package feature

import (
	"strings"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// Rename describes a dataset-wide rename or delete of a checklist node.
type Rename struct {
	Path        string `json:"path"`
	Replacement string `json:"replacement,omitempty"`
	Delete      bool   `json:"delete,omitempty"`
}

// Validate checks the path depth and that a rename has a replacement.
func (r Rename) Validate() error {
	parts := entity.SplitPath(r.Path)
	switch {
	case len(parts) == 0:
		return ErrEmptyPath
	case len(parts) > entity.MaxDepth:
		return ErrDepth
	case !r.Delete && strings.TrimSpace(r.Replacement) == "":
		return ErrEmptyReplacement
	case strings.Contains(r.Replacement, entity.Separator):
		return ErrEmptyReplacement
	}
	return nil
}

// RenameFeatures applies r to one item's features and reports whether anything changed.
func RenameFeatures(features entity.Features, r Rename) (entity.Features, bool) {
	parts := entity.SplitPath(r.Path)
	if len(parts) == 0 || len(parts) > entity.MaxDepth {
		return features, false
	}
	name := parts[0]
	row := features.Index(name)
	if row < 0 {
		return features, false
	}
	replacement := strings.TrimSpace(r.Replacement)

	out := features.Clone()
	if len(parts) == 1 {
		if r.Delete {
			return out.Delete(name), true
		}
		if replacement == name {
			return features, false
		}
		return out.Rename(name, replacement), true
	}

	noun := parts[1]
	components := out[row].Components()
	var kept []string
	changed := false
	for _, c := range components {
		words := strings.Fields(c)
		// A component without a noun head is its own depth-2 entry.
		if len(parts) == 2 && len(words) > 0 && strings.Join(words, " ") == noun {
			changed = true
			if !r.Delete {
				kept = append(kept, replacement)
			}
			continue
		}
		if len(words) == 0 || words[len(words)-1] != noun {
			kept = append(kept, c)
			continue
		}
		head := strings.Join(words[:len(words)-1], " ")

		if len(parts) == 2 {
			changed = true
			if r.Delete {
				continue
			}
			kept = append(kept, joinWords(head, replacement))
			continue
		}

		adjective := parts[2]
		newHead, ok := replaceWordRun(head, adjective, replacement, r.Delete)
		if ok {
			changed = true
			c = joinWords(newHead, noun)
		}
		kept = append(kept, c)
	}
	if !changed {
		return features, false
	}
	out[row].Description = entity.JoinComponents(kept)
	return out, true
}

// replaceWordRun finds the last whole-word occurrence of run in head and
// replaces or removes it.
func replaceWordRun(head, run, replacement string, remove bool) (string, bool) {
	words := strings.Fields(head)
	target := strings.Fields(run)
	if len(target) == 0 {
		return head, false
	}
	for i := len(words) - len(target); i >= 0; i-- {
		match := true
		for j := range target {
			if words[i+j] != target[j] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		var out []string
		out = append(out, words[:i]...)
		if !remove {
			out = append(out, replacement)
		}
		out = append(out, words[i+len(target):]...)
		return strings.Join(out, " "), true
	}
	return head, false
}

func joinWords(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
