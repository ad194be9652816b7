package feature

import (
	"path"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// RootDir is the key of the dataset root in an Index.
const RootDir = "."

// Index aggregates the features seen in a dataset into per-directory
// checklists. Directories are slash separated and relative to the dataset root.
type Index struct {
	seg    *Segmenter
	images map[string]entity.Features
	lists  map[string][]string
}

type knownFeatures struct {
	names      []string
	components map[string][]string
}

// NewIndex creates an empty Index.
func NewIndex(seg *Segmenter) *Index {
	return &Index{
		seg:    seg,
		images: map[string]entity.Features{},
		lists:  map[string][]string{},
	}
}

// ImageDir returns the index key of the directory holding relImage.
func ImageDir(relImage string) string {
	return path.Dir(path.Clean(strings.TrimPrefix(relImage, "/")))
}

// Ancestors lists dir followed by each of its ancestors up to RootDir.
func Ancestors(dir string) []string {
	out := []string{dir}
	for dir != RootDir && dir != "/" && dir != "" {
		dir = path.Dir(dir)
		out = append(out, dir)
	}
	return out
}

func dirDepth(dir string) int {
	if dir == RootDir {
		return 0
	}
	return strings.Count(dir, "/") + 1
}

// Add records the features of one image, replacing whatever was recorded
// for it before. relImage is the image path relative to the root.
func (x *Index) Add(relImage string, features entity.Features) {
	x.images[path.Clean(strings.TrimPrefix(relImage, "/"))] = features.Clone()
}

// aggregate groups the recorded features by image directory. Names keep their
// first-seen order over images sorted by path; every ancestor gets an entry.
func (x *Index) aggregate() map[string]*knownFeatures {
	known := map[string]*knownFeatures{}
	rels := lo.Keys(x.images)
	sort.Strings(rels)
	for _, rel := range rels {
		dirs := Ancestors(ImageDir(rel))
		for _, d := range dirs {
			if _, ok := known[d]; !ok {
				known[d] = &knownFeatures{components: map[string][]string{}}
			}
		}

		k := known[dirs[0]]
		for _, f := range x.images[rel] {
			if _, ok := k.components[f.Name]; !ok {
				k.names = append(k.names, f.Name)
				k.components[f.Name] = nil
			}
			for _, c := range f.Components() {
				if !lo.Contains(k.components[f.Name], c) {
					k.components[f.Name] = append(k.components[f.Name], c)
				}
			}
		}
	}
	return known
}

// Build derives the checklist of every known directory, root first, so an
// entry already visible from an ancestor is not repeated deeper down.
func (x *Index) Build() {
	known := x.aggregate()
	dirs := lo.Keys(known)
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := dirDepth(dirs[i]), dirDepth(dirs[j])
		if di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})

	x.lists = make(map[string][]string, len(dirs))
	for _, d := range dirs {
		k := known[d]
		ancestors := Ancestors(d)[1:]
		inherited := func(entry string) bool {
			for _, a := range ancestors {
				if lo.Contains(x.lists[a], entry) {
					return true
				}
			}
			return false
		}

		list := []string{}
		for _, name := range k.names {
			for _, entry := range x.seg.Entries(name, entity.JoinComponents(k.components[name])) {
				if !inherited(entry) && !lo.Contains(list, entry) {
					list = append(list, entry)
				}
			}
		}
		sort.Strings(list)
		x.lists[d] = list
	}
}

// Lists returns a copy of the built per-directory checklists.
func (x *Index) Lists() map[string][]string {
	out := make(map[string][]string, len(x.lists))
	for d, l := range x.lists {
		out[d] = append([]string(nil), l...)
	}
	return out
}

// Restore replaces the built checklists, typically from a cache.
func (x *Index) Restore(lists map[string][]string) {
	x.lists = make(map[string][]string, len(lists))
	for d, l := range lists {
		x.lists[d] = append([]string(nil), l...)
	}
}

// Reset forgets everything added and built.
func (x *Index) Reset() {
	x.images = map[string]entity.Features{}
	x.lists = map[string][]string{}
}

// Size is the number of entries over all directories.
func (x *Index) Size() int {
	n := 0
	for _, l := range x.lists {
		n += len(l)
	}
	return n
}

// Checklist returns the entries visible from dir: its own and every ancestor's.
func (x *Index) Checklist(dir string) []string {
	var out []string
	for _, d := range Ancestors(dir) {
		for _, e := range x.lists[d] {
			if !lo.Contains(out, e) {
				out = append(out, e)
			}
		}
	}
	sort.Strings(out)
	return out
}

// FullChecklist unions the entries of every directory.
func (x *Index) FullChecklist() []string {
	var out []string
	for _, l := range x.lists {
		out = append(out, l...)
	}
	out = lo.Uniq(out)
	sort.Strings(out)
	return out
}

// ForItem merges the known entries of dir (unchecked) with the entries derived
// from the item's own features (checked). With full set, every directory's
// entries are offered.
func (x *Index) ForItem(dir string, features entity.Features, full bool) []entity.ChecklistEntry {
	known := x.Checklist(dir)
	if full {
		known = x.FullChecklist()
	}

	checked := map[string]bool{}
	for _, e := range known {
		checked[e] = false
	}
	for _, f := range features {
		for _, e := range x.seg.Entries(f.Name, f.Description) {
			checked[e] = true
		}
	}

	paths := lo.Keys(checked)
	sort.Strings(paths)
	return lo.Map(paths, func(p string, _ int) entity.ChecklistEntry {
		return entity.ChecklistEntry{Path: p, Checked: checked[p]}
	})
}

// Suppress removes path and its descendants from the checklists of dir and its
// ancestors. The entries come back on the next Build only if an image still uses them.
func (x *Index) Suppress(dir, p string) {
	for _, d := range Ancestors(dir) {
		if l, ok := x.lists[d]; ok {
			x.lists[d] = lo.Reject(l, func(e string, _ int) bool {
				return entity.IsWithin(e, p)
			})
		}
	}
}
