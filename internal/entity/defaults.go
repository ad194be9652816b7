package entity

// DefaultsFileName seeds items in a directory and everything below it.
const DefaultsFileName = "defaults.json"

// Base values for fields that no defaults file sets.
const (
	DefaultArtist = "unknown"
	DefaultStyle  = "photo"
)

// BaseItem returns the built-in defaults for an image titled title.
func BaseItem(title, prompt string) Item {
	return Item{
		Version:  ItemVersion,
		Title:    title,
		Artist:   DefaultArtist,
		Style:    DefaultStyle,
		Summary:  prompt,
		Features: Features{},
		Crop:     FullCrop,
	}
}

// DefaultsPatch selects the fields written to a defaults.json. Nil fields are left out.
type DefaultsPatch struct {
	Artist   *string  `json:"artist,omitempty"`
	Style    *string  `json:"style,omitempty"`
	Features Features `json:"features,omitempty"`
	Rating   *int     `json:"rating,omitempty"`
}

// FeatureNamesOnly keeps feature names and drops descriptions.
func FeatureNamesOnly(fs Features) Features {
	out := make(Features, 0, len(fs))
	for _, f := range fs {
		if f.Name != "" {
			out = append(out, Feature{Name: f.Name})
		}
	}
	return out
}
