package feature

import (
	"sort"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// Tree is the checkbox tree over checklist paths. Checking a node checks all
// of its ancestors; unchecking a node unchecks its whole subtree.
type Tree struct {
	nodes map[string]*treeNode
}

type treeNode struct {
	checked  bool
	children []string
}

// NewTree builds a tree from entries, creating missing ancestors unchecked.
func NewTree(entries []entity.ChecklistEntry) *Tree {
	t := &Tree{nodes: map[string]*treeNode{}}
	for _, e := range entries {
		t.Add(e.Path, e.Checked)
	}
	return t
}

// Add inserts path. A checked entry checks its ancestors too.
func (t *Tree) Add(path string, checked bool) {
	if path == "" {
		return
	}
	if _, ok := t.nodes[path]; !ok {
		t.nodes[path] = &treeNode{}
		if parent := entity.Parent(path); parent != "" {
			t.Add(parent, false)
			p := t.nodes[parent]
			p.children = append(p.children, path)
		}
	}
	if checked {
		t.check(path)
	}
}

// Has reports whether path is a node of the tree.
func (t *Tree) Has(path string) bool {
	_, ok := t.nodes[path]
	return ok
}

// Checked reports the state of path. Unknown nodes are unchecked.
func (t *Tree) Checked(path string) bool {
	n, ok := t.nodes[path]
	return ok && n.checked
}

// Check checks path and every ancestor.
func (t *Tree) Check(path string) error {
	if !t.Has(path) {
		return ErrUnknownNode
	}
	t.check(path)
	return nil
}

// Uncheck unchecks path and every descendant.
func (t *Tree) Uncheck(path string) error {
	if !t.Has(path) {
		return ErrUnknownNode
	}
	t.uncheck(path)
	return nil
}

// Toggle flips path and returns the new state.
func (t *Tree) Toggle(path string) (bool, error) {
	if !t.Has(path) {
		return false, ErrUnknownNode
	}
	if t.nodes[path].checked {
		t.uncheck(path)
		return false, nil
	}
	t.check(path)
	return true, nil
}

// Delete removes path and its subtree.
func (t *Tree) Delete(path string) error {
	n, ok := t.nodes[path]
	if !ok {
		return ErrUnknownNode
	}
	for _, c := range n.children {
		_ = t.Delete(c)
	}
	delete(t.nodes, path)
	if parent := entity.Parent(path); parent != "" {
		if p, ok := t.nodes[parent]; ok {
			for i, c := range p.children {
				if c == path {
					p.children = append(p.children[:i], p.children[i+1:]...)
					break
				}
			}
		}
	}
	return nil
}

// Entries lists every node sorted by path.
func (t *Tree) Entries() []entity.ChecklistEntry {
	out := make([]entity.ChecklistEntry, 0, len(t.nodes))
	for p, n := range t.nodes {
		out = append(out, entity.ChecklistEntry{Path: p, Checked: n.checked})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (t *Tree) check(path string) {
	for p := path; p != ""; p = entity.Parent(p) {
		if n, ok := t.nodes[p]; ok {
			n.checked = true
		}
	}
}

func (t *Tree) uncheck(path string) {
	n := t.nodes[path]
	n.checked = false
	for _, c := range n.children {
		t.uncheck(c)
	}
}
