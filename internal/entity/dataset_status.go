package entity

// DatasetStatus summarises the open dataset.
type DatasetStatus struct {
	Root           string `json:"root"`
	ImageCount     int    `json:"image_count"`
	CurrentIndex   int    `json:"current_index"`
	CurrentImage   string `json:"current_image,omitempty"`
	KnownFeatures  int    `json:"known_features"` // entries across all known checklists
	FullChecklist  bool   `json:"full_checklist"`
	TaggerName     string `json:"tagger"`
	TokenizerName  string `json:"tokenizer"`
	Interrogator   string `json:"interrogator"`
	CatalogEnabled bool   `json:"catalog_enabled"`
}
