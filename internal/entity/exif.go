package entity

import "time"

// ExifInfo is the read-only EXIF summary shown next to an item.
type ExifInfo struct {
	Artist      string     `json:"artist,omitempty"`
	Description string     `json:"description,omitempty"`
	Camera      string     `json:"camera,omitempty"`
	Taken       *time.Time `json:"taken,omitempty"`
}
