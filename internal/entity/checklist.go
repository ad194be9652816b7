package entity

import "strings"

// Separator joins hierarchy levels in a checklist path: feature→noun→adjective.
const Separator = "→"

// MaxDepth is the deepest level a checklist path can reach.
const MaxDepth = 3

// ChecklistEntry is one node of the feature checklist.
type ChecklistEntry struct {
	Path    string `json:"path"`
	Checked bool   `json:"checked"`
}

// SplitPath breaks a checklist path into its levels.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// JoinPath is the inverse of SplitPath.
func JoinPath(parts ...string) string {
	return strings.Join(parts, Separator)
}

// Depth is the number of levels in path.
func Depth(path string) int {
	return len(SplitPath(path))
}

// Leaf returns the last level of path.
func Leaf(path string) string {
	if i := strings.LastIndex(path, Separator); i >= 0 {
		return path[i+len(Separator):]
	}
	return path
}

// Parent returns path without its last level, or "" for a top level path.
func Parent(path string) string {
	if i := strings.LastIndex(path, Separator); i >= 0 {
		return path[:i]
	}
	return ""
}

// IsWithin reports whether path equals root or is one of its descendants.
func IsWithin(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+Separator)
}
