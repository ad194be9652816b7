package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ItemVersion is written to every sidecar so newer files can be detected.
const ItemVersion = 1

// Crop is a rectangle given as fractions of the image size: left, top, right, bottom.
type Crop [4]float64

// FullCrop keeps the whole image.
var FullCrop = Crop{0, 0, 1, 1}

// IsFull reports whether the crop keeps the whole image.
func (c Crop) IsFull() bool {
	return c == FullCrop
}

// Item mirrors the per-image JSON sidecar.
type Item struct {
	Version       int      `json:"lora_tag_helper_version"`
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	Style         string   `json:"style"`
	Rating        int      `json:"rating"`
	Summary       string   `json:"summary"`
	Features      Features `json:"features"`
	Crop          Crop     `json:"crop"`
	AutomaticTags string   `json:"automatic_tags"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	i.Features = i.Features.Clone()
	return i
}

// Feature is one row of the feature table: a name and its comma separated description.
type Feature struct {
	Name        string
	Description string
}

// Components splits the description on commas and trims each part.
func (f Feature) Components() []string {
	return SplitComponents(f.Description)
}

// SplitComponents splits a description on commas and trims each part.
func SplitComponents(desc string) []string {
	parts := strings.Split(desc, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// JoinComponents is the inverse of SplitComponents.
func JoinComponents(components []string) string {
	return strings.Join(components, ", ")
}

// Features is an ordered name -> description mapping. It encodes as a JSON
// object and keeps key order in both directions.
type Features []Feature

// Clone returns a copy that shares no backing array.
func (fs Features) Clone() Features {
	if fs == nil {
		return nil
	}
	out := make(Features, len(fs))
	copy(out, fs)
	return out
}

// Index returns the position of name or -1.
func (fs Features) Index(name string) int {
	for i, f := range fs {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the description for name.
func (fs Features) Get(name string) (string, bool) {
	if i := fs.Index(name); i >= 0 {
		return fs[i].Description, true
	}
	return "", false
}

// Set replaces or appends name.
func (fs Features) Set(name, desc string) Features {
	if i := fs.Index(name); i >= 0 {
		fs[i].Description = desc
		return fs
	}
	return append(fs, Feature{Name: name, Description: desc})
}

// Delete removes name if present.
func (fs Features) Delete(name string) Features {
	i := fs.Index(name)
	if i < 0 {
		return fs
	}
	return append(fs[:i:i], fs[i+1:]...)
}

// Rename moves the description of from to to, in place. An existing to
// feature absorbs the description.
func (fs Features) Rename(from, to string) Features {
	i := fs.Index(from)
	if i < 0 || from == to {
		return fs
	}
	desc := fs[i].Description
	if j := fs.Index(to); j >= 0 {
		fs[j].Description = mergeDescriptions(fs[j].Description, desc)
		return fs.Delete(from)
	}
	fs[i].Name = to
	return fs
}

// Names lists feature names in order.
func (fs Features) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Equal compares names, descriptions and order.
func (fs Features) Equal(other Features) bool {
	if len(fs) != len(other) {
		return false
	}
	for i := range fs {
		if fs[i] != other[i] {
			return false
		}
	}
	return true
}

func mergeDescriptions(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + ", " + b
}

// MarshalJSON writes the features as an object in order.
func (fs Features) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping key order. Repeated keys are merged.
func (fs *Features) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*fs = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("features: expected object, got %v", tok)
	}

	out := Features{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("features: expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var desc string
		if err := json.Unmarshal(raw, &desc); err != nil {
			// Non-string values carry no description.
			desc = ""
		}
		if existing, ok := out.Get(key); ok {
			desc = mergeDescriptions(existing, desc)
		}
		out = out.Set(key, desc)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*fs = out
	return nil
}
