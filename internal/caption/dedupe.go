package caption

import (
	"strings"

	"github.com/samber/lo"
)

// Dedupe collapses comma separated components that are contained in another
// component, case-insensitively. A forward pass drops components found in an
// earlier kept one, a reverse pass drops those found in a later one.
func Dedupe(caption string) string {
	forward := collapse(strings.Split(caption, ","))
	backward := collapse(lo.Reverse(forward))
	return strings.Join(lo.Reverse(backward), ", ")
}

func collapse(components []string) []string {
	var kept []string
	var keys []string
	for _, c := range components {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if lo.SomeBy(keys, func(k string) bool { return strings.Contains(k, key) }) {
			continue
		}
		kept = append(kept, c)
		keys = append(keys, key)
	}
	return kept
}
