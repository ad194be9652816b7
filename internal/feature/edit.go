package feature

import (
	"strings"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// ApplyCheck mirrors a check state change of path into the feature rows.
//
// depth 1 adds or removes the feature row, depth 2 appends or removes the
// component ending in the noun, depth 3 splices the adjective in front of the
// noun or strips it again.
func ApplyCheck(features entity.Features, path string, checked bool) (entity.Features, error) {
	parts := entity.SplitPath(path)
	switch {
	case len(parts) == 0:
		return features, ErrEmptyPath
	case len(parts) > entity.MaxDepth:
		return features, ErrDepth
	}

	name := strings.TrimSpace(parts[0])
	var noun, adjective string
	if len(parts) > 1 {
		noun = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		adjective = strings.TrimSpace(parts[2])
	}

	features = features.Clone()
	row := features.Index(name)
	desc := ""
	var components []string
	thisComponent := ""
	if row >= 0 {
		desc = features[row].Description
		if noun != "" {
			components = entity.SplitComponents(desc)
			for i := len(components) - 1; i >= 0; i-- {
				if strings.HasSuffix(components[i], noun) {
					thisComponent = components[i]
					break
				}
			}
		}
	}

	if checked {
		if noun != "" && !strings.HasSuffix(thisComponent, noun) {
			if desc != "" {
				desc += ", " + noun
			} else {
				desc = noun
			}
			thisComponent = noun
			if len(components) == 1 && components[0] == "" {
				components = []string{thisComponent}
			} else {
				components = append(components, thisComponent)
			}
		}
		if adjective != "" && !strings.Contains(thisComponent, adjective) {
			spliced := replaceLast(thisComponent, noun, adjective+" "+noun)
			for i := len(components) - 1; i >= 0; i-- {
				if components[i] == thisComponent {
					components[i] = spliced
				}
			}
			desc = entity.JoinComponents(components)
		}
		return features.Set(name, desc), nil
	}

	if row < 0 {
		return features, nil
	}
	switch len(parts) {
	case 1:
		features = features.Delete(name)
	case 2:
		if thisComponent != "" {
			for i, c := range components {
				if c == thisComponent {
					components = append(components[:i], components[i+1:]...)
					break
				}
			}
			features[row].Description = entity.JoinComponents(components)
		}
	case 3:
		if thisComponent != "" && strings.Contains(thisComponent, adjective) {
			stripped := strings.TrimSpace(strings.ReplaceAll(thisComponent, adjective+" ", ""))
			for i := len(components) - 1; i >= 0; i-- {
				if components[i] == thisComponent {
					components[i] = stripped
				}
			}
			features[row].Description = entity.JoinComponents(components)
		}
	}
	return features, nil
}

func replaceLast(s, old, replacement string) string {
	i := strings.LastIndex(s, old)
	if i < 0 {
		return s
	}
	return s[:i] + replacement + s[i+len(old):]
}
