package response

import "github.com/viralesveras/lora-tag-helper/internal/entity"

type ErrorResponse struct {
	Error string `json:"error"`
}

type ImagesResponse struct {
	Images       []string `json:"images"`
	CurrentIndex int      `json:"current_index"`
}

type ChecklistResponse struct {
	Dir     string   `json:"dir"`
	Entries []string `json:"entries"`
}

type RenameResponse struct {
	Changed int `json:"changed"`
}

type SelectionResponse struct {
	Images []string `json:"images"`
}

type PresetResponse struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths"`
}

// NewestSubsetResponse carries the settings that pre-fill the export form.
type NewestSubsetResponse struct {
	Subset string            `json:"subset"`
	Info   entity.SubsetInfo `json:"info"`
}

type CaptionResponse struct {
	Subset     string `json:"subset"`
	Image      string `json:"image"`
	Text       string `json:"text"`
	Tokens     int    `json:"tokens"`
	Truncated  bool   `json:"truncated"`
	OverBudget bool   `json:"over_budget"`
}

type CatalogItem struct {
	Dataset  string          `json:"dataset"`
	Path     string          `json:"path"`
	Title    string          `json:"title"`
	Rating   int             `json:"rating"`
	Features entity.Features `json:"features"`
}

type CatalogSearchResponse struct {
	Feature string        `json:"feature"`
	Items   []CatalogItem `json:"items"`
}
