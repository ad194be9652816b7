package request

import (
	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

type OpenDatasetRequest struct {
	Path          string `json:"path"`
	FullChecklist bool   `json:"full_checklist"`
}

// ClickRequest is a checklist click. Item, when set, is the unsaved working
// copy the click applies to.
type ClickRequest struct {
	Path        string       `json:"path"`
	Action      string       `json:"action"` // toggle, delete, rename, apply_selection, add_preset
	Item        *entity.Item `json:"item,omitempty"`
	Replacement string       `json:"replacement,omitempty"`
	Preset      string       `json:"preset,omitempty"`
}

type WorkingItemRequest struct {
	Item *entity.Item `json:"item,omitempty"`
}

type DefaultsRequest struct {
	Dir string `json:"dir"`
	entity.DefaultsPatch
}

type SelectionRequest struct {
	Paths []string `json:"paths"`
	Add   bool     `json:"add"`
}

type PresetRequest struct {
	Paths []string `json:"paths"`
}

type CaptionRequest struct {
	Subset   string `json:"subset"`
	Image    string `json:"image"`
	Text     string `json:"text"`
	Truncate bool   `json:"truncate"`
}

type InterrogateRequest struct {
	Overwrite bool `json:"overwrite"`
}
