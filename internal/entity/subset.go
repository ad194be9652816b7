package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// InfoFileName marks a directory as an exported subset.
const InfoFileName = "LoRA_info.json"

// DefaultSubsetName is used when no earlier subset matches a LoRA name.
const DefaultSubsetName = "100_default"

// ReviewOption decides what happens to captions after export.
type ReviewOption int

const (
	ReviewNone ReviewOption = iota
	ReviewTruncate
	ReviewOverBudget
	ReviewAll
)

// StaleFilesPolicy decides what to do with files already in a subset directory.
type StaleFilesPolicy string

const (
	StaleKeep   StaleFilesPolicy = "keep"
	StaleDelete StaleFilesPolicy = "delete"
	StaleAbort  StaleFilesPolicy = "abort"
)

// Steps is the per-image repeat count. Older info files stored it as a string.
type Steps int

func (s *Steps) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Steps(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("steps_per_image: %w", err)
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("steps_per_image: %w", err)
	}
	*s = Steps(n)
	return nil
}

// SubsetInfo is the content of LoRA_info.json.
type SubsetInfo struct {
	Version                  int          `json:"lora_tag_helper_version"`
	Name                     string       `json:"name"`
	IncludeLoRAName          bool         `json:"include_lora_name"`
	IncludeArtist            bool         `json:"include_artist"`
	IncludeStyle             bool         `json:"include_style"`
	IncludeSummary           bool         `json:"include_summary"`
	IncludeFeature           bool         `json:"include_feature"`
	IncludeOtherFeatures     bool         `json:"include_other_features"`
	IncludeAutomaticTags     bool         `json:"include_automatic_tags"`
	InterrogateAutomaticTags bool         `json:"interrogate_automatic_tags"`
	ReviewOption             ReviewOption `json:"review_option"`
	StepsPerImage            Steps        `json:"steps_per_image"`
	EnableFiltering          bool         `json:"enable_filtering"`
	Filter                   string       `json:"filter"`
	FilterRating             bool         `json:"filter_rating"`
	MinimumRating            int          `json:"minimum_rating"`
}

// requiredInfoKeys are always written, so their absence means the file is not ours.
var requiredInfoKeys = []string{
	"name",
	"include_lora_name",
	"include_artist",
	"include_style",
	"include_summary",
	"include_feature",
	"include_other_features",
	"include_automatic_tags",
	"review_option",
	"steps_per_image",
}

// ParseSubsetInfo decodes an info file and checks that it has every required key.
func ParseSubsetInfo(data []byte) (SubsetInfo, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return SubsetInfo{}, err
	}
	for _, k := range requiredInfoKeys {
		if _, ok := raw[k]; !ok {
			return SubsetInfo{}, fmt.Errorf("subset info missing %q", k)
		}
	}
	var info SubsetInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return SubsetInfo{}, err
	}
	return info, nil
}

// DefaultSubsetInfo matches the initial state of the export form.
func DefaultSubsetInfo() SubsetInfo {
	return SubsetInfo{
		Version:              ItemVersion,
		Name:                 "default",
		IncludeLoRAName:      true,
		IncludeArtist:        false,
		IncludeStyle:         false,
		IncludeSummary:       true,
		IncludeFeature:       true,
		IncludeOtherFeatures: true,
		IncludeAutomaticTags: true,
		ReviewOption:         ReviewTruncate,
		StepsPerImage:        100,
	}
}

// ExportOptions configures one subset export.
type ExportOptions struct {
	SubsetInfo
	OutputDir  string           `json:"output_dir"`
	Preset     string           `json:"preset,omitempty"`
	StaleFiles StaleFilesPolicy `json:"stale_files"`
}

// ExportResult reports the outcome of a subset export.
type ExportResult struct {
	SubsetPath  string   `json:"subset_path"`
	Images      []string `json:"images"`
	Filtered    int      `json:"filtered"`
	LowRating   int      `json:"low_rating"`
	Truncated   int      `json:"truncated"`
	StaleFiles  int      `json:"stale_files"`
	ReviewQueue []string `json:"review_queue,omitempty"`
}
